// Package currencyutils parses and formats ledger amounts.
package currencyutils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var currencyMarks = regexp.MustCompile(`[€$£₣\s]|CHF|EUR|USD`)

// ParseAmount parses amounts written as "1234.56", "1'234.56", "1,234.56",
// "1.234,56", "1234,56" or with a currency mark such as "CHF 12.50". An empty
// string is zero.
func ParseAmount(s string) (decimal.Decimal, error) {
	standardized := StandardizeAmount(s)
	if standardized == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(standardized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse amount '%s': %w", s, err)
	}
	return amount, nil
}

// ParseJSONAmount parses a JSON amount: a number, a string accepted by
// ParseAmount, or null for zero.
func ParseJSONAmount(raw json.RawMessage) (decimal.Decimal, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return decimal.Zero, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Zero, err
		}
		return ParseAmount(s)
	}
	return decimal.NewFromString(string(raw))
}

// StandardizeAmount strips currency marks and thousands separators and
// makes '.' the decimal separator.
func StandardizeAmount(s string) string {
	s = currencyMarks.ReplaceAllString(strings.ToUpper(s), "")
	s = strings.ReplaceAll(s, "'", "")

	comma := strings.LastIndex(s, ",")
	dot := strings.LastIndex(s, ".")
	switch {
	case comma >= 0 && dot >= 0 && dot < comma:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case comma >= 0 && dot >= 0:
		s = strings.ReplaceAll(s, ",", "")
	case comma >= 0 && len(s)-comma-1 <= 2 && strings.Count(s, ",") == 1:
		s = strings.Replace(s, ",", ".", 1)
	case comma >= 0:
		s = strings.ReplaceAll(s, ",", "")
	}
	return s
}

// FormatAmount renders amount with two decimals and no thousands separator.
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
