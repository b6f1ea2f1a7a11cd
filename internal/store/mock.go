package store

import (
	"fmt"
	"sync"

	"fjacquet/finsort/internal/models"
)

// MockTaxonomyStore is an in-memory TaxonomyStore for tests.
type MockTaxonomyStore struct {
	mu      sync.Mutex
	Entries map[models.Direction][]models.TaxonomyEntry

	// Error flags for testing error conditions
	LoadError              error
	AddActivityError       error
	AddClassificationError error
}

// NewMockTaxonomyStore returns an empty mock store.
func NewMockTaxonomyStore() *MockTaxonomyStore {
	return &MockTaxonomyStore{Entries: map[models.Direction][]models.TaxonomyEntry{}}
}

// Load returns a copy of the entries of dir.
func (m *MockTaxonomyStore) Load(dir models.Direction) ([]models.TaxonomyEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadError != nil {
		return nil, m.LoadError
	}
	out := make([]models.TaxonomyEntry, len(m.Entries[dir]))
	for i, entry := range m.Entries[dir] {
		out[i] = models.TaxonomyEntry{
			Classification: entry.Classification,
			Attributed:     append([]string(nil), entry.Attributed...),
		}
	}
	return out, nil
}

// Options returns the sorted labels of dir.
func (m *MockTaxonomyStore) Options(dir models.Direction) ([]string, error) {
	entries, err := m.Load(dir)
	if err != nil {
		return nil, err
	}
	return Labels(entries), nil
}

// AddActivity mirrors TaxonomyStore.AddActivity.
func (m *MockTaxonomyStore) AddActivity(label, activity string, dir models.Direction) (models.Direction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AddActivityError != nil {
		return "", m.AddActivityError
	}

	directions := []models.Direction{dir}
	if dir == "" {
		directions = []models.Direction{models.Expense, models.Income}
	}
	for _, d := range directions {
		entries := m.ensure()[d]
		if i := indexOf(entries, label); i >= 0 {
			if activity != "" && !entries[i].HasActivity(activity) {
				entries[i].Attributed = append(entries[i].Attributed, activity)
			}
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownClassification, label)
}

// AddClassification mirrors TaxonomyStore.AddClassification.
func (m *MockTaxonomyStore) AddClassification(name, activity string, dir models.Direction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AddClassificationError != nil {
		return m.AddClassificationError
	}

	entries := m.ensure()[dir]
	if i := indexOf(entries, name); i >= 0 {
		if activity != "" && !entries[i].HasActivity(activity) {
			entries[i].Attributed = append(entries[i].Attributed, activity)
		}
		return nil
	}
	entry := models.TaxonomyEntry{Classification: name}
	if activity != "" {
		entry.Attributed = []string{activity}
	}
	m.Entries[dir] = append(entries, entry)
	return nil
}

func (m *MockTaxonomyStore) ensure() map[models.Direction][]models.TaxonomyEntry {
	if m.Entries == nil {
		m.Entries = map[models.Direction][]models.TaxonomyEntry{}
	}
	return m.Entries
}
