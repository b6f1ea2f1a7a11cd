// Package dateutils parses the date formats found in exported bank ledgers.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Date layouts accepted for ledger records.
const (
	DateLayoutISO       = "2006-01-02"
	DateLayoutEuropean  = "02.01.2006"
	DateLayoutFull      = "2006-01-02 15:04:05"
	DateLayoutTimestamp = "2006-01-02T15:04:05Z07:00"
	DateLayoutWithMonth = "2-Jan-2006"
)

// CommonFormats is tried in order; the first layout that parses wins.
var CommonFormats = []string{
	DateLayoutISO,
	DateLayoutEuropean,
	DateLayoutFull,
	DateLayoutTimestamp,
	DateLayoutWithMonth,
	"02/01/2006",
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
}

var whitespace = regexp.MustCompile(`\s+`)

// ParseDate parses dateStr with the first matching layout in CommonFormats
// and returns the time together with the layout that matched.
func ParseDate(dateStr string) (time.Time, string, error) {
	dateStr = CleanDateString(dateStr)
	if dateStr == "" {
		return time.Time{}, "", fmt.Errorf("empty date")
	}

	for _, layout := range CommonFormats {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return t, layout, nil
		}
	}

	return time.Time{}, "", fmt.Errorf("unable to parse date: %s", dateStr)
}

// IsValidDate reports whether dateStr parses with any supported layout.
func IsValidDate(dateStr string) bool {
	_, _, err := ParseDate(dateStr)
	return err == nil
}

// CleanDateString trims dateStr and collapses internal whitespace.
func CleanDateString(dateStr string) string {
	return whitespace.ReplaceAllString(strings.TrimSpace(dateStr), " ")
}
