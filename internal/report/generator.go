// Package report renders pivot summaries for export.
package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"fjacquet/finsort/internal/currencyutils"
	"fjacquet/finsort/internal/logging"
	"fjacquet/finsort/internal/models"
)

// Supported report formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Formats lists the accepted values of the format argument.
var Formats = []string{FormatCSV, FormatJSON, FormatYAML}

// amount is a decimal rendered with two decimals. It stays a number in JSON
// and YAML.
type amount string

func newAmount(d decimal.Decimal) amount {
	return amount(currencyutils.FormatAmount(d))
}

func (a amount) MarshalJSON() ([]byte, error) {
	return []byte(a), nil
}

func (a amount) MarshalYAML() (interface{}, error) {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: string(a)}, nil
}

type reportRow struct {
	Classification string `csv:"Classification" json:"classification" yaml:"classification"`
	Expense        amount `csv:"Expense" json:"expense" yaml:"expense"`
	Income         amount `csv:"Income" json:"income" yaml:"income"`
}

type document struct {
	Rows       []reportRow `json:"rows" yaml:"rows"`
	GrandTotal reportRow   `json:"grand_total" yaml:"grand_total"`
}

func toRow(row models.PivotRow) reportRow {
	return reportRow{
		Classification: row.Classification,
		Expense:        newAmount(row.ExpenseSum),
		Income:         newAmount(row.IncomeSum),
	}
}

// ReportGenerator renders summaries in the supported formats.
type ReportGenerator struct {
	logger logging.Logger
}

// NewReportGenerator creates a ReportGenerator. A nil logger uses the default.
func NewReportGenerator(logger logging.Logger) *ReportGenerator {
	return &ReportGenerator{
		logger: logging.OrDefault(logger).WithField(logging.FieldComponent, logging.ComponentReport),
	}
}

// Generate renders summary with a default generator.
func Generate(summary models.Summary, format string) ([]byte, error) {
	return NewReportGenerator(nil).GenerateReport(summary, format)
}

// GenerateReport renders summary as csv, json or yaml. Every format carries
// the Grand Total; in CSV it is the last line.
func (g *ReportGenerator) GenerateReport(summary models.Summary, format string) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatCSV:
		return g.generateCSV(summary)
	case FormatJSON:
		return g.generateJSON(summary)
	case FormatYAML:
		return g.generateYAML(summary)
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

func (g *ReportGenerator) generateCSV(summary models.Summary) ([]byte, error) {
	all := summary.AllRows()
	rows := make([]reportRow, len(all))
	for i, row := range all {
		rows[i] = toRow(row)
	}
	rows[len(rows)-1].Classification = models.GrandTotalLabel

	out, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		g.logger.WithError(err).Error("Failed to marshal CSV report")
		return nil, fmt.Errorf("failed to marshal CSV report: %w", err)
	}
	return out, nil
}

func (g *ReportGenerator) document(summary models.Summary) document {
	doc := document{
		Rows:       make([]reportRow, len(summary.Rows)),
		GrandTotal: toRow(summary.GrandTotal),
	}
	for i, row := range summary.Rows {
		doc.Rows[i] = toRow(row)
	}
	doc.GrandTotal.Classification = models.GrandTotalLabel
	return doc
}

func (g *ReportGenerator) generateJSON(summary models.Summary) ([]byte, error) {
	out, err := json.MarshalIndent(g.document(summary), "", "  ")
	if err != nil {
		g.logger.WithError(err).Error("Failed to marshal JSON report")
		return nil, fmt.Errorf("failed to marshal JSON report: %w", err)
	}
	return append(out, '\n'), nil
}

func (g *ReportGenerator) generateYAML(summary models.Summary) ([]byte, error) {
	out, err := yaml.Marshal(g.document(summary))
	if err != nil {
		g.logger.WithError(err).Error("Failed to marshal YAML report")
		return nil, fmt.Errorf("failed to marshal YAML report: %w", err)
	}
	return out, nil
}
