// Package pivot aggregates a ledger by classification into expense and
// income sums plus a Grand Total row.
package pivot

import (
	"context"

	"github.com/shopspring/decimal"

	"fjacquet/finsort/internal/logging"
	"fjacquet/finsort/internal/models"
)

// Rows groups records by classification and sums each side per group.
// Rows come out in the order their classification first appears in records,
// so the same input always yields the same rows. Unclassified records form
// their own group under the sentinel label.
func Rows(records []models.TransactionRecord) []models.PivotRow {
	positions := make(map[string]int)
	rows := make([]models.PivotRow, 0)

	for _, record := range records {
		label := record.Classification
		if label == "" {
			label = models.UnclassifiedLabel
		}

		i, ok := positions[label]
		if !ok {
			i = len(rows)
			positions[label] = i
			rows = append(rows, models.PivotRow{
				Classification: label,
				ExpenseSum:     decimal.Zero,
				IncomeSum:      decimal.Zero,
			})
		}
		rows[i].ExpenseSum = rows[i].ExpenseSum.Add(record.Expense)
		rows[i].IncomeSum = rows[i].IncomeSum.Add(record.Income)
	}

	return rows
}

// GrandTotal sums both sides over the full collection.
func GrandTotal(records []models.TransactionRecord) models.PivotRow {
	total := models.PivotRow{
		Classification: models.GrandTotalLabel,
		ExpenseSum:     decimal.Zero,
		IncomeSum:      decimal.Zero,
	}
	for _, record := range records {
		total.ExpenseSum = total.ExpenseSum.Add(record.Expense)
		total.IncomeSum = total.IncomeSum.Add(record.Income)
	}
	return total
}

// Pivot returns the grouped rows and the Grand Total of records.
func Pivot(records []models.TransactionRecord) models.Summary {
	return models.Summary{
		Rows:       Rows(records),
		GrandTotal: GrandTotal(records),
	}
}

// Engine runs the aggregation in-process. It has the same shape as the REST
// client's aggregation so a session can use either.
type Engine struct {
	logger logging.Logger
}

// NewEngine creates an Engine.
func NewEngine(logger logging.Logger) *Engine {
	return &Engine{
		logger: logging.OrDefault(logger).WithField(logging.FieldComponent, logging.ComponentPivot),
	}
}

// Aggregate returns the grouped rows of records, without the Grand Total.
func (e *Engine) Aggregate(ctx context.Context, records []models.TransactionRecord) ([]models.PivotRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows := Rows(records)
	e.logger.Debug("Aggregated ledger",
		logging.F(logging.FieldCount, len(records)),
		logging.F(logging.FieldGroups, len(rows)))
	return rows, nil
}
