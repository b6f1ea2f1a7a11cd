package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/finsort/internal/models"
	"fjacquet/finsort/internal/pivot"
)

func TestFormatSummary(t *testing.T) {
	summary := pivot.Pivot([]models.TransactionRecord{
		{Activity: "Coop", Expense: dec("50"), Classification: "Food"},
		{Activity: "ACME", Income: dec("100"), Classification: "Salary"},
		{Activity: "Migros", Expense: dec("12.5"), Classification: "Food"},
		{Activity: "Kiosk", Expense: dec("3"), Classification: models.UnclassifiedLabel},
	})

	var buf bytes.Buffer
	require.NoError(t, PrintSummary(&buf, summary))
	out := buf.String()

	for _, want := range []string{"Classification", "Expense", "Income", "Food", "62.50", "Salary", "100.00", "No classification", "3.00", "Grand Total", "65.50"} {
		assert.Contains(t, out, want)
	}
	assert.Less(t, strings.Index(out, "Food"), strings.Index(out, "Salary"))
	assert.Less(t, strings.Index(out, "Salary"), strings.Index(out, "Grand Total"))
}

func TestFormatSummary_Empty(t *testing.T) {
	out := FormatSummary(pivot.Pivot(nil))
	assert.Contains(t, out, "Grand Total")
	assert.Contains(t, out, "0.00")
}
