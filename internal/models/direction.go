package models

import (
	"fmt"
	"strings"
)

// Direction tells whether money left (Expense) or entered (Income) the account.
type Direction string

const (
	Expense Direction = "expense"
	Income  Direction = "income"
)

// ParseDirection accepts "expense" or "income" in any case.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case Expense:
		return Expense, nil
	case Income:
		return Income, nil
	default:
		return "", fmt.Errorf("invalid direction %q: must be %q or %q", s, Expense, Income)
	}
}

// Valid reports whether d is one of the two known directions.
func (d Direction) Valid() bool {
	return d == Expense || d == Income
}

func (d Direction) String() string {
	return string(d)
}

// Title returns the direction as shown to users.
func (d Direction) Title() string {
	switch d {
	case Expense:
		return "Expense"
	case Income:
		return "Income"
	default:
		return string(d)
	}
}
