package categorizer

import (
	"strings"

	"fjacquet/finsort/internal/models"
)

// DirectMapping resolves an activity to a label by exact, case-insensitive
// match against the attributed activities of each taxonomy. An activity may
// be attributed to several labels; they are kept in file order.
type DirectMapping struct {
	expense map[string][]string
	income  map[string][]string
}

// NewDirectMapping indexes both taxonomies.
func NewDirectMapping(expense, income []models.TaxonomyEntry) *DirectMapping {
	return &DirectMapping{
		expense: index(expense),
		income:  index(income),
	}
}

func index(entries []models.TaxonomyEntry) map[string][]string {
	m := make(map[string][]string, len(entries)*4)
	for _, entry := range entries {
		for _, activity := range entry.Attributed {
			key := normalizeActivity(activity)
			if key == "" || contains(m[key], entry.Classification) {
				continue
			}
			m[key] = append(m[key], entry.Classification)
		}
	}
	return m
}

func normalizeActivity(activity string) string {
	return strings.ToLower(strings.TrimSpace(activity))
}

func contains(labels []string, label string) bool {
	for _, l := range labels {
		if l == label {
			return true
		}
	}
	return false
}

func (d *DirectMapping) labels(dir models.Direction, activity string) []string {
	key := normalizeActivity(activity)
	if key == "" {
		return nil
	}
	switch dir {
	case models.Expense:
		return d.expense[key]
	case models.Income:
		return d.income[key]
	}
	return nil
}

// Lookup returns the first label attributed to activity in dir's taxonomy.
func (d *DirectMapping) Lookup(dir models.Direction, activity string) (string, bool) {
	labels := d.labels(dir, activity)
	if len(labels) == 0 {
		return "", false
	}
	return labels[0], true
}

// Resolve returns the label a record should carry. A current label the
// activity is attributed to is kept, so a decision recorded for this very
// record is not overridden by an older attribution of the same activity.
// Otherwise the first attributed label is returned.
func (d *DirectMapping) Resolve(dir models.Direction, activity, current string) (string, bool) {
	labels := d.labels(dir, activity)
	if len(labels) == 0 {
		return "", false
	}
	if current != models.UnclassifiedLabel && contains(labels, current) {
		return current, true
	}
	return labels[0], true
}
