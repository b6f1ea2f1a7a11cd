package queue

import (
	"context"

	"fjacquet/finsort/internal/models"
)

// TaxonomySource reads and extends the Expense and Income taxonomies.
type TaxonomySource interface {
	Options(ctx context.Context, dir models.Direction) ([]string, error)
	AddClassification(ctx context.Context, name, activity string, dir models.Direction) error
}

// DecisionRecorder persists one classification decision.
type DecisionRecorder interface {
	RecordDecision(ctx context.Context, label, activity string, dir models.Direction) error
}

// Reclassifier applies the completed taxonomy to a whole ledger.
type Reclassifier interface {
	ReclassifyAll(ctx context.Context, records []models.TransactionRecord) ([]models.TransactionRecord, error)
}

// Ledger is the session state the controller works on. ledger.Session
// implements it.
type Ledger interface {
	Queue() []models.QueueItem
	Records() []models.TransactionRecord
	Relabel(index int, label string) error
	Replace(records []models.TransactionRecord) error
}
