// Package cli renders the classification workflow in a terminal using
// lipgloss styles.
package cli

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	// AccentColor is the main theme color.
	AccentColor = lipgloss.Color("#5FAFD7")
	// ExpenseColor marks expense amounts.
	ExpenseColor = lipgloss.Color("#FF8787")
	// IncomeColor marks income amounts.
	IncomeColor = lipgloss.Color("#87D787")
	// WarningColor marks recoverable failures.
	WarningColor = lipgloss.Color("#FFD75F")
	// ErrorColor marks rejected input.
	ErrorColor = lipgloss.Color("#FF5F5F")
	// SubtleColor marks secondary text.
	SubtleColor = lipgloss.Color("#808080")

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(AccentColor)

	SubtleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(IncomeColor)

	ExpenseStyle = lipgloss.NewStyle().
			Foreground(ExpenseColor)

	IncomeStyle = lipgloss.NewStyle().
			Foreground(IncomeColor)

	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	PromptStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(AccentColor)

	// BoxStyle frames the current queue item.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(SubtleColor).
			Padding(0, 1)

	// TableHeaderStyle underlines the summary header.
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(SubtleColor)

	// TotalStyle highlights the Grand Total line.
	TotalStyle = lipgloss.NewStyle().
			Bold(true)
)

const (
	successIcon = "✓"
	errorIcon   = "✗"
	warningIcon = "!"
)

// FormatSuccess formats a success message with icon.
func FormatSuccess(message string) string {
	return SuccessStyle.Render(successIcon + " " + message)
}

// FormatError formats an error message with icon.
func FormatError(message string) string {
	return ErrorStyle.Render(errorIcon + " " + message)
}

// FormatWarning formats a warning message with icon.
func FormatWarning(message string) string {
	return WarningStyle.Render(warningIcon + " " + message)
}

// FormatPrompt formats an input prompt.
func FormatPrompt(prompt string) string {
	return PromptStyle.Render(prompt + " > ")
}

// RenderBox renders content under a title in a rounded box.
func RenderBox(title, content string) string {
	return BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, TitleStyle.Render(title), content))
}
