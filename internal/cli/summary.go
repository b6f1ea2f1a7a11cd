package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"fjacquet/finsort/internal/currencyutils"
	"fjacquet/finsort/internal/models"
)

// FormatSummary renders the pivot rows and the Grand Total as a table.
func FormatSummary(summary models.Summary) string {
	width := len("Classification")
	for _, row := range summary.AllRows() {
		if len(row.Classification) > width {
			width = len(row.Classification)
		}
	}

	label := lipgloss.NewStyle().Width(width + 2)
	amount := lipgloss.NewStyle().Width(14).Align(lipgloss.Right)
	line := func(classification, expense, income string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top,
			label.Render(classification), amount.Render(expense), amount.Render(income))
	}

	lines := []string{TableHeaderStyle.Render(line("Classification", "Expense", "Income"))}
	for _, row := range summary.Rows {
		lines = append(lines, line(row.Classification, currencyutils.FormatAmount(row.ExpenseSum), currencyutils.FormatAmount(row.IncomeSum)))
	}
	total := summary.GrandTotal
	lines = append(lines, TotalStyle.Render(line(models.GrandTotalLabel,
		currencyutils.FormatAmount(total.ExpenseSum), currencyutils.FormatAmount(total.IncomeSum))))

	return strings.Join(lines, "\n")
}

// PrintSummary writes FormatSummary(summary) to w.
func PrintSummary(w io.Writer, summary models.Summary) error {
	if _, err := fmt.Fprintln(w, FormatSummary(summary)); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}
