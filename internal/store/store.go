// Package store persists the Expense and Income taxonomies: each a list of
// classification labels with the activity descriptions attributed to them.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"fjacquet/finsort/internal/logging"
	"fjacquet/finsort/internal/models"
)

// ErrUnknownClassification is returned when a label exists in no taxonomy.
var ErrUnknownClassification = errors.New("unknown classification")

// Default file names, resolved like any other configuration file.
const (
	DefaultExpenseFile = "expense_classification.yaml"
	DefaultIncomeFile  = "income_classification.yaml"
)

type taxonomyFile struct {
	Classifications []models.TaxonomyEntry `yaml:"classifications"`
}

// TaxonomyStore reads and writes the two taxonomy files. It is safe for
// concurrent use.
type TaxonomyStore struct {
	ExpenseFile string
	IncomeFile  string

	mu     sync.Mutex
	logger logging.Logger
}

// NewTaxonomyStore creates a store over the given files; empty names fall
// back to the defaults.
func NewTaxonomyStore(expenseFile, incomeFile string, logger logging.Logger) *TaxonomyStore {
	if expenseFile == "" {
		expenseFile = DefaultExpenseFile
	}
	if incomeFile == "" {
		incomeFile = DefaultIncomeFile
	}
	return &TaxonomyStore{
		ExpenseFile: expenseFile,
		IncomeFile:  incomeFile,
		logger:      logging.OrDefault(logger).WithField(logging.FieldComponent, logging.ComponentStore),
	}
}

// FindConfigFile looks for filename as given, then under ./config,
// ./database and $HOME/.config/finsort.
func (s *TaxonomyStore) FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
		filepath.Join("database", filename),
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(homeDir, ".config", "finsort", filename))
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}

	return "", os.ErrNotExist
}

func (s *TaxonomyStore) fileFor(dir models.Direction) (string, error) {
	switch dir {
	case models.Expense:
		return s.ExpenseFile, nil
	case models.Income:
		return s.IncomeFile, nil
	default:
		return "", fmt.Errorf("invalid direction %q", dir)
	}
}

// writePath returns where a taxonomy is saved: the existing file if one is
// found, otherwise the absolute path or ./database/<name>.
func (s *TaxonomyStore) writePath(filename string) string {
	if path, err := s.FindConfigFile(filename); err == nil {
		return path
	}
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join("database", filename)
}

// Load returns the taxonomy of one direction. A missing file is an empty
// taxonomy.
func (s *TaxonomyStore) Load(dir models.Direction) ([]models.TaxonomyEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(dir)
}

func (s *TaxonomyStore) load(dir models.Direction) ([]models.TaxonomyEntry, error) {
	filename, err := s.fileFor(dir)
	if err != nil {
		return nil, err
	}

	filePath, err := s.FindConfigFile(filename)
	if err != nil {
		s.logger.Debug("Taxonomy file not found, starting empty",
			logging.F(logging.FieldDirection, dir), logging.F(logging.FieldFile, filename))
		return []models.TaxonomyEntry{}, nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading taxonomy file: %w", err)
	}

	var file taxonomyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		// Older files hold the bare list without the top-level key.
		var entries []models.TaxonomyEntry
		if listErr := yaml.Unmarshal(data, &entries); listErr != nil {
			return nil, fmt.Errorf("error parsing taxonomy file %s: %w", filePath, err)
		}
		file.Classifications = entries
	}
	if file.Classifications == nil {
		file.Classifications = []models.TaxonomyEntry{}
	}

	s.logger.Debug("Loaded taxonomy",
		logging.F(logging.FieldDirection, dir),
		logging.F(logging.FieldFile, filePath),
		logging.F(logging.FieldCount, len(file.Classifications)))
	return file.Classifications, nil
}

func (s *TaxonomyStore) save(dir models.Direction, entries []models.TaxonomyEntry) error {
	filename, err := s.fileFor(dir)
	if err != nil {
		return err
	}
	filePath := s.writePath(filename)

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	data, err := yaml.Marshal(taxonomyFile{Classifications: entries})
	if err != nil {
		return fmt.Errorf("error marshaling taxonomy: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("error writing taxonomy: %w", err)
	}

	s.logger.Debug("Saved taxonomy",
		logging.F(logging.FieldDirection, dir),
		logging.F(logging.FieldFile, filePath),
		logging.F(logging.FieldCount, len(entries)))
	return nil
}

// Options returns the sorted, de-duplicated labels of one direction.
func (s *TaxonomyStore) Options(dir models.Direction) ([]string, error) {
	entries, err := s.Load(dir)
	if err != nil {
		return nil, err
	}
	return Labels(entries), nil
}

// Labels extracts the sorted, de-duplicated labels of entries.
func Labels(entries []models.TaxonomyEntry) []string {
	seen := make(map[string]bool, len(entries))
	labels := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Classification == "" || seen[entry.Classification] {
			continue
		}
		seen[entry.Classification] = true
		labels = append(labels, entry.Classification)
	}
	sort.Strings(labels)
	return labels
}

// AddActivity attributes activity to an existing label. With an empty dir
// the label is looked up in the Expense taxonomy, then the Income one. It
// returns the direction that was updated.
func (s *TaxonomyStore) AddActivity(label, activity string, dir models.Direction) (models.Direction, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", fmt.Errorf("classification must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	directions := []models.Direction{dir}
	if dir == "" {
		directions = []models.Direction{models.Expense, models.Income}
	}

	for _, d := range directions {
		entries, err := s.load(d)
		if err != nil {
			return "", err
		}
		i := indexOf(entries, label)
		if i < 0 {
			continue
		}
		if activity == "" || entries[i].HasActivity(activity) {
			return d, nil
		}
		entries[i].Attributed = append(entries[i].Attributed, activity)
		if err := s.save(d, entries); err != nil {
			return "", err
		}
		s.logger.Info("Recorded classification decision",
			logging.F(logging.FieldClassification, label),
			logging.F(logging.FieldActivity, activity),
			logging.F(logging.FieldDirection, d))
		return d, nil
	}

	return "", fmt.Errorf("%w: %s", ErrUnknownClassification, label)
}

// AddClassification creates label name in dir's taxonomy, attributing
// activity to it when given. An existing label of the same name receives the
// activity instead of being duplicated.
func (s *TaxonomyStore) AddClassification(name, activity string, dir models.Direction) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("classification name must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load(dir)
	if err != nil {
		return err
	}

	if i := indexOf(entries, name); i >= 0 {
		if activity == "" || entries[i].HasActivity(activity) {
			return nil
		}
		entries[i].Attributed = append(entries[i].Attributed, activity)
	} else {
		entry := models.TaxonomyEntry{Classification: name, Attributed: []string{}}
		if activity != "" {
			entry.Attributed = append(entry.Attributed, activity)
		}
		entries = append(entries, entry)
	}

	if err := s.save(dir, entries); err != nil {
		return err
	}
	s.logger.Info("Created classification",
		logging.F(logging.FieldClassification, name),
		logging.F(logging.FieldDirection, dir))
	return nil
}

func indexOf(entries []models.TaxonomyEntry, label string) int {
	for i, entry := range entries {
		if entry.Classification == label {
			return i
		}
	}
	return -1
}
