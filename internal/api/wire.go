// Package api holds the JSON wire formats of the classification backend and
// a client for it.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	"fjacquet/finsort/internal/currencyutils"
	"fjacquet/finsort/internal/models"
)

// Endpoint paths.
const (
	PathExpenseOptions    = "/expense-options"
	PathIncomeOptions     = "/income-options"
	PathAddValue          = "/addnewvalue"
	PathAddClassification = "/addnewclassification"
	PathReclassify        = "/reclassify"
	PathPivotTable        = "/pivot-table"
	PathHealth            = "/healthz"
)

// OptionsPath returns the options endpoint of dir.
func OptionsPath(dir models.Direction) (string, error) {
	switch dir {
	case models.Expense:
		return PathExpenseOptions, nil
	case models.Income:
		return PathIncomeOptions, nil
	default:
		return "", fmt.Errorf("invalid direction %q", dir)
	}
}

// OptionsResponse is the body of the options endpoints.
type OptionsResponse struct {
	Options []string `json:"options"`
}

// AddValueRequest records one decision. ChosenType is optional; without it
// the backend looks the label up in both taxonomies.
type AddValueRequest struct {
	Classification string `json:"classification"`
	Activity       string `json:"activity"`
	ChosenType     string `json:"chosen_type,omitempty"`
}

// AddClassificationRequest registers a new label.
type AddClassificationRequest struct {
	NewClassification string `json:"new_classification"`
	SelectedActivity  string `json:"selected_activity"`
	ChosenType        string `json:"chosen_type"`
}

// StatusResponse acknowledges a write.
type StatusResponse struct {
	Status string `json:"status"`
}

// ErrorResponse carries a failure message.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RecordTuples encodes records as [date, activity, expense, income,
// classification] tuples.
func RecordTuples(records []models.TransactionRecord) [][]interface{} {
	out := make([][]interface{}, len(records))
	for i, r := range records {
		out[i] = []interface{}{
			r.Date,
			r.Activity,
			models.JSONNumber(r.Expense),
			models.JSONNumber(r.Income),
			r.Classification,
		}
	}
	return out
}

// ParseRecordTuples decodes [date, activity, expense, income,
// classification] tuples. Amounts may be numbers, numeric strings or null.
func ParseRecordTuples(data []byte) ([]models.TransactionRecord, error) {
	var tuples [][]json.RawMessage
	if err := json.Unmarshal(data, &tuples); err != nil {
		return nil, fmt.Errorf("expected an array of tuples: %w", err)
	}

	records := make([]models.TransactionRecord, len(tuples))
	for i, tuple := range tuples {
		if len(tuple) != 5 {
			return nil, fmt.Errorf("tuple %d: expected 5 fields, got %d", i, len(tuple))
		}
		var r models.TransactionRecord
		var err error
		if r.Date, err = parseText(tuple[0]); err != nil {
			return nil, fmt.Errorf("tuple %d date: %w", i, err)
		}
		if r.Activity, err = parseText(tuple[1]); err != nil {
			return nil, fmt.Errorf("tuple %d activity: %w", i, err)
		}
		if r.Expense, err = currencyutils.ParseJSONAmount(tuple[2]); err != nil {
			return nil, fmt.Errorf("tuple %d expense: %w", i, err)
		}
		if r.Income, err = currencyutils.ParseJSONAmount(tuple[3]); err != nil {
			return nil, fmt.Errorf("tuple %d income: %w", i, err)
		}
		if r.Classification, err = parseText(tuple[4]); err != nil {
			return nil, fmt.Errorf("tuple %d classification: %w", i, err)
		}
		records[i] = r
	}
	return records, nil
}

// RowTuples encodes pivot rows as [classification, expenseSum, incomeSum].
func RowTuples(rows []models.PivotRow) [][]interface{} {
	out := make([][]interface{}, len(rows))
	for i, row := range rows {
		out[i] = []interface{}{
			row.Classification,
			models.JSONNumber(row.ExpenseSum),
			models.JSONNumber(row.IncomeSum),
		}
	}
	return out
}

// ParseRowTuples decodes [classification, expenseSum, incomeSum] tuples.
func ParseRowTuples(data []byte) ([]models.PivotRow, error) {
	var tuples [][]json.RawMessage
	if err := json.Unmarshal(data, &tuples); err != nil {
		return nil, fmt.Errorf("expected an array of tuples: %w", err)
	}

	rows := make([]models.PivotRow, len(tuples))
	for i, tuple := range tuples {
		if len(tuple) != 3 {
			return nil, fmt.Errorf("row %d: expected 3 fields, got %d", i, len(tuple))
		}
		var row models.PivotRow
		var err error
		if row.Classification, err = parseText(tuple[0]); err != nil {
			return nil, fmt.Errorf("row %d classification: %w", i, err)
		}
		if row.ExpenseSum, err = currencyutils.ParseJSONAmount(tuple[1]); err != nil {
			return nil, fmt.Errorf("row %d expense: %w", i, err)
		}
		if row.IncomeSum, err = currencyutils.ParseJSONAmount(tuple[2]); err != nil {
			return nil, fmt.Errorf("row %d income: %w", i, err)
		}
		rows[i] = row
	}
	return rows, nil
}

func parseText(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("expected a string, got %s", string(raw))
	}
	return s, nil
}

