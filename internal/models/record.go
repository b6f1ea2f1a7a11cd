package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"fjacquet/finsort/internal/currencyutils"
	"fjacquet/finsort/internal/dateutils"
)

// TransactionRecord is one ledger line. Exactly one of Expense and Income is
// non-zero for a record that can be queued for classification.
type TransactionRecord struct {
	Date           string          `json:"date" yaml:"date"`
	Activity       string          `json:"activity" yaml:"activity"`
	Expense        decimal.Decimal `json:"expense" yaml:"expense"`
	Income         decimal.Decimal `json:"income" yaml:"income"`
	Classification string          `json:"classification" yaml:"classification"`
}

// Direction is derived from the amounts: a zero expense means income.
func (r TransactionRecord) Direction() Direction {
	if r.Expense.IsZero() {
		return Income
	}
	return Expense
}

// Amount returns the non-zero side of the record.
func (r TransactionRecord) Amount() decimal.Decimal {
	if r.Direction() == Income {
		return r.Income
	}
	return r.Expense
}

// IsUnclassified reports whether the record carries the unclassified sentinel.
func (r TransactionRecord) IsUnclassified() bool {
	return r.Classification == UnclassifiedLabel
}

// HasAmount reports whether either side is non-zero.
func (r TransactionRecord) HasAmount() bool {
	return !r.Expense.IsZero() || !r.Income.IsZero()
}

// Normalize trims the text fields and maps an empty classification to the
// unclassified sentinel.
func (r TransactionRecord) Normalize() TransactionRecord {
	r.Date = strings.TrimSpace(r.Date)
	r.Activity = strings.TrimSpace(r.Activity)
	r.Classification = strings.TrimSpace(r.Classification)
	if r.Classification == "" {
		r.Classification = UnclassifiedLabel
	}
	return r
}

// Validate checks the amount invariants and the date, when one is present.
func (r TransactionRecord) Validate() error {
	if r.Expense.IsNegative() {
		return fmt.Errorf("expense must be non-negative, got %s", r.Expense.String())
	}
	if r.Income.IsNegative() {
		return fmt.Errorf("income must be non-negative, got %s", r.Income.String())
	}
	if !r.Expense.IsZero() && !r.Income.IsZero() {
		return fmt.Errorf("record %q has both expense %s and income %s", r.Activity, r.Expense.String(), r.Income.String())
	}
	if r.IsUnclassified() && !r.HasAmount() {
		return fmt.Errorf("unclassified record %q has neither expense nor income", r.Activity)
	}
	if r.Date != "" && !dateutils.IsValidDate(r.Date) {
		return fmt.Errorf("record %q has unparseable date %q", r.Activity, r.Date)
	}
	return nil
}

type recordJSON struct {
	Date           string          `json:"date"`
	Activity       string          `json:"activity"`
	Expense        json.RawMessage `json:"expense"`
	Income         json.RawMessage `json:"income"`
	Classification string          `json:"classification"`
}

// MarshalJSON emits amounts as JSON numbers.
func (r TransactionRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date           string      `json:"date"`
		Activity       string      `json:"activity"`
		Expense        json.Number `json:"expense"`
		Income         json.Number `json:"income"`
		Classification string      `json:"classification"`
	}{
		Date:           r.Date,
		Activity:       r.Activity,
		Expense:        JSONNumber(r.Expense),
		Income:         JSONNumber(r.Income),
		Classification: r.Classification,
	})
}

// UnmarshalJSON accepts amounts as JSON numbers, null, or strings such as
// "CHF 1'250.00" or "12,50".
func (r *TransactionRecord) UnmarshalJSON(data []byte) error {
	var raw recordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	expense, err := currencyutils.ParseJSONAmount(raw.Expense)
	if err != nil {
		return fmt.Errorf("invalid expense of %q: %w", raw.Activity, err)
	}
	income, err := currencyutils.ParseJSONAmount(raw.Income)
	if err != nil {
		return fmt.Errorf("invalid income of %q: %w", raw.Activity, err)
	}
	*r = TransactionRecord{
		Date:           raw.Date,
		Activity:       raw.Activity,
		Expense:        expense,
		Income:         income,
		Classification: raw.Classification,
	}
	return nil
}

// JSONNumber renders d as an unquoted JSON number.
func JSONNumber(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}
