// Package categorizer applies the taxonomies to ledgers and records new
// classification decisions against the taxonomy store.
package categorizer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"fjacquet/finsort/internal/logging"
	"fjacquet/finsort/internal/models"
)

// Service classifies ledgers against a TaxonomyRepository. It satisfies the
// ports of the classification queue so the workflow can run without the
// REST backend.
type Service struct {
	store  TaxonomyRepository
	logger logging.Logger
}

// NewService creates a Service over store.
func NewService(store TaxonomyRepository, logger logging.Logger) *Service {
	return &Service{
		store:  store,
		logger: logging.OrDefault(logger).WithField(logging.FieldComponent, logging.ComponentCategorize),
	}
}

// Options returns the sorted labels of dir's taxonomy.
func (s *Service) Options(ctx context.Context, dir models.Direction) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !dir.Valid() {
		return nil, fmt.Errorf("invalid direction %q", dir)
	}
	return s.store.Options(dir)
}

// AddClassification registers a new label in dir's taxonomy and attributes
// activity to it.
func (s *Service) AddClassification(ctx context.Context, name, activity string, dir models.Direction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !dir.Valid() {
		return fmt.Errorf("invalid direction %q", dir)
	}
	return s.store.AddClassification(name, activity, dir)
}

// RecordDecision attributes activity to label within dir's taxonomy.
func (s *Service) RecordDecision(ctx context.Context, label, activity string, dir models.Direction) error {
	_, err := s.AttributeActivity(ctx, label, activity, dir)
	return err
}

// AttributeActivity attributes activity to label. An empty dir looks the
// label up in both taxonomies; the direction that was updated is returned.
func (s *Service) AttributeActivity(ctx context.Context, label, activity string, dir models.Direction) (models.Direction, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if dir != "" && !dir.Valid() {
		return "", fmt.Errorf("invalid direction %q", dir)
	}
	return s.store.AddActivity(label, activity, dir)
}

// ReclassifyAll returns a new ledger where every record whose activity is
// attributed in its direction's taxonomy carries that label. A record whose
// current label is one of the labels its activity is attributed to keeps it.
// Unmatched records keep their current label; records without an amount are
// left alone. The result is stably sorted by classification.
func (s *Service) ReclassifyAll(ctx context.Context, records []models.TransactionRecord) ([]models.TransactionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	expense, err := s.store.Load(models.Expense)
	if err != nil {
		return nil, fmt.Errorf("failed to load expense taxonomy: %w", err)
	}
	income, err := s.store.Load(models.Income)
	if err != nil {
		return nil, fmt.Errorf("failed to load income taxonomy: %w", err)
	}
	mapping := NewDirectMapping(expense, income)

	out := make([]models.TransactionRecord, len(records))
	matched := 0
	for i, record := range records {
		record = record.Normalize()
		if record.HasAmount() {
			if label, ok := mapping.Resolve(record.Direction(), record.Activity, record.Classification); ok {
				record.Classification = label
				matched++
			}
		}
		out[i] = record
	}

	sort.SliceStable(out, func(i, j int) bool {
		return strings.Compare(out[i].Classification, out[j].Classification) < 0
	})

	remaining := 0
	for _, record := range out {
		if record.IsUnclassified() {
			remaining++
		}
	}

	s.logger.Info("Reclassified ledger",
		logging.F(logging.FieldCount, len(out)),
		logging.F("matched", matched),
		logging.F(logging.FieldRemaining, remaining))
	return out, nil
}
