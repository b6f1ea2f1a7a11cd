// Package ledger owns the in-memory transaction ledger of one classification
// session and the last aggregated view computed from it.
package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"fjacquet/finsort/internal/flowerror"
	"fjacquet/finsort/internal/logging"
	"fjacquet/finsort/internal/models"
	"fjacquet/finsort/internal/pivot"
)

// Aggregator groups records into pivot rows. pivot.Engine does it locally,
// api.Client delegates to the backend.
type Aggregator interface {
	Aggregate(ctx context.Context, records []models.TransactionRecord) ([]models.PivotRow, error)
}

// Session holds one loaded ledger. It is not safe for concurrent use: a
// session has a single active workflow.
type Session struct {
	id         string
	records    []models.TransactionRecord
	aggregator Aggregator
	logger     logging.Logger

	view    models.Summary
	hasView bool
}

// NewSession validates records and normalizes empty classifications to the
// unclassified sentinel. A nil aggregator aggregates in-process.
func NewSession(records []models.TransactionRecord, aggregator Aggregator, logger logging.Logger) (*Session, error) {
	normalized, err := normalize(records)
	if err != nil {
		return nil, err
	}
	if aggregator == nil {
		aggregator = pivot.NewEngine(logger)
	}

	id := uuid.NewString()
	s := &Session{
		id:         id,
		records:    normalized,
		aggregator: aggregator,
		logger: logging.OrDefault(logger).WithFields(
			logging.F(logging.FieldComponent, logging.ComponentLedger),
			logging.F(logging.FieldSession, id)),
	}

	s.logger.Info("Ledger loaded",
		logging.F(logging.FieldCount, len(normalized)),
		logging.F(logging.FieldRemaining, s.UnclassifiedCount()))
	return s, nil
}

func normalize(records []models.TransactionRecord) ([]models.TransactionRecord, error) {
	out := make([]models.TransactionRecord, len(records))
	for i, record := range records {
		record = record.Normalize()
		if err := record.Validate(); err != nil {
			return nil, &flowerror.ValidationError{
				Field:  fmt.Sprintf("record[%d]", i),
				Value:  record.Activity,
				Reason: err.Error(),
			}
		}
		out[i] = record
	}
	return out, nil
}

// ID identifies the session in logs.
func (s *Session) ID() string {
	return s.id
}

// Len returns the number of records.
func (s *Session) Len() int {
	return len(s.records)
}

// Records returns a copy of the ledger.
func (s *Session) Records() []models.TransactionRecord {
	out := make([]models.TransactionRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Queue returns one item per record still carrying the unclassified
// sentinel, in ledger order.
func (s *Session) Queue() []models.QueueItem {
	return models.BuildQueue(s.records)
}

// UnclassifiedCount returns how many records still need a label.
func (s *Session) UnclassifiedCount() int {
	n := 0
	for _, record := range s.records {
		if record.IsUnclassified() {
			n++
		}
	}
	return n
}

// Relabel sets the classification of the record at index.
func (s *Session) Relabel(index int, label string) error {
	if index < 0 || index >= len(s.records) {
		return fmt.Errorf("record index %d out of range [0,%d)", index, len(s.records))
	}
	if label == "" {
		return &flowerror.ValidationError{Field: "classification", Value: label, Reason: "must not be empty"}
	}
	s.records[index].Classification = label
	s.logger.Debug("Record relabelled",
		logging.F(logging.FieldIndex, index),
		logging.F(logging.FieldClassification, label))
	return nil
}

// Replace swaps the whole ledger for records. An invalid ledger is rejected
// and the current one kept.
func (s *Session) Replace(records []models.TransactionRecord) error {
	normalized, err := normalize(records)
	if err != nil {
		return err
	}
	s.records = normalized
	s.logger.Info("Ledger replaced",
		logging.F(logging.FieldCount, len(normalized)),
		logging.F(logging.FieldRemaining, s.UnclassifiedCount()))
	return nil
}

// Refresh recomputes the aggregated view. The rows come from the aggregator;
// the Grand Total is always computed here from the full ledger. On failure
// the previous view stays current and an AggregationError is returned.
func (s *Session) Refresh(ctx context.Context) (models.Summary, error) {
	records := s.Records()

	rows, err := s.aggregator.Aggregate(ctx, records)
	if err != nil {
		s.logger.WithError(err).Warn("Aggregation failed, keeping previous view",
			logging.F(logging.FieldCount, len(records)))
		return s.view, &flowerror.AggregationError{Records: len(records), Err: err}
	}

	s.view = models.Summary{
		Rows:       rows,
		GrandTotal: pivot.GrandTotal(records),
	}
	s.hasView = true

	s.logger.Debug("Aggregated view refreshed", logging.F(logging.FieldGroups, len(rows)))
	return s.view, nil
}

// View returns the last successfully computed summary and whether one exists.
func (s *Session) View() (models.Summary, bool) {
	return s.view, s.hasView
}
