package models

import "github.com/shopspring/decimal"

// PivotRow holds the expense and income sums of one classification group.
type PivotRow struct {
	Classification string          `json:"classification" yaml:"classification"`
	ExpenseSum     decimal.Decimal `json:"expense" yaml:"expense"`
	IncomeSum      decimal.Decimal `json:"income" yaml:"income"`
}

// Summary is an aggregated view of a ledger.
type Summary struct {
	Rows       []PivotRow `json:"rows" yaml:"rows"`
	GrandTotal PivotRow   `json:"grand_total" yaml:"grand_total"`
}

// AllRows returns the group rows followed by the Grand Total row.
func (s Summary) AllRows() []PivotRow {
	out := make([]PivotRow, 0, len(s.Rows)+1)
	out = append(out, s.Rows...)
	return append(out, s.GrandTotal)
}
