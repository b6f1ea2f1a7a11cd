// Package pivot implements the summary command.
package pivot

import (
	"fmt"

	"github.com/spf13/cobra"

	"fjacquet/finsort/cmd/common"
	"fjacquet/finsort/cmd/root"
	"fjacquet/finsort/internal/cli"
	"fjacquet/finsort/internal/report"
)

// FormatTable prints the terminal table instead of an export format.
const FormatTable = "table"

var (
	// Format is table, csv, json or yaml.
	Format string
	// Output is the report file; empty writes to stdout.
	Output string
)

// Cmd represents the pivot command.
var Cmd = &cobra.Command{
	Use:   "pivot <ledger.json>",
	Short: "Summarize a ledger by classification",
	Long: `Groups the ledger by classification and prints the expense and income
sums of each group followed by the Grand Total. Export as csv, json or yaml
with --format.`,
	Args: cobra.ExactArgs(1),
	RunE: pivotFunc,
}

func init() {
	Cmd.Flags().StringVarP(&Format, "format", "f", FormatTable, "Output format: table, csv, json or yaml")
	Cmd.Flags().StringVarP(&Output, "output", "o", "", "Output file (default: stdout)")
}

func pivotFunc(cmd *cobra.Command, args []string) error {
	mode, err := root.CurrentMode()
	if err != nil {
		return err
	}
	c := root.AppContainer

	if err := c.Preflight(cmd.Context(), mode); err != nil {
		return err
	}
	session, err := common.OpenLedger(c, args[0], mode)
	if err != nil {
		return err
	}

	summary, err := session.Refresh(cmd.Context())
	if err != nil {
		return err
	}

	var data []byte
	if Format == FormatTable {
		data = []byte(cli.FormatSummary(summary) + "\n")
	} else if data, err = c.GetReportGenerator().GenerateReport(summary, Format); err != nil {
		return fmt.Errorf("%w (supported: %s, %v)", err, FormatTable, report.Formats)
	}
	return common.WriteOutput(cmd.OutOrStdout(), Output, data)
}
