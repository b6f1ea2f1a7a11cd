package pivot_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/finsort/cmd/pivot"
	"fjacquet/finsort/cmd/root"
)

func init() {
	root.Cmd.AddCommand(pivot.Cmd)
}

const mixedLedger = `[
  {"Date":"2024-03-01","Activity":"Coop","Expense":50,"Income":0,"Classification":"Food"},
  {"Date":"2024-03-25","Activity":"ACME","Expense":0,"Income":100,"Classification":"Salary"},
  {"Date":"2024-03-26","Activity":"Migros","Expense":10.25,"Income":0,"Classification":"Food"}
]`

func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("FINSORT_LOG_LEVEL", "error")
	t.Setenv("FINSORT_TAXONOMY_EXPENSE_FILE", filepath.Join(dir, "expense.yaml"))
	t.Setenv("FINSORT_TAXONOMY_INCOME_FILE", filepath.Join(dir, "income.yaml"))

	path := filepath.Join(dir, "ledger.json")
	require.NoError(t, os.WriteFile(path, []byte(mixedLedger), 0600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	pivot.Format = pivot.FormatTable
	pivot.Output = ""

	var out bytes.Buffer
	root.Cmd.SetOut(&out)
	root.Cmd.SetErr(&out)
	root.Cmd.SetArgs(append([]string{"pivot"}, args...))
	err := root.Cmd.Execute()
	return out.String(), err
}

func TestPivotCommand_Metadata(t *testing.T) {
	assert.Equal(t, "pivot <ledger.json>", pivot.Cmd.Use)
	assert.Contains(t, pivot.Cmd.Short, "Summarize a ledger")
	assert.NotNil(t, pivot.Cmd.RunE)
}

func TestPivotCommand_Flags(t *testing.T) {
	formatFlag := pivot.Cmd.Flags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "f", formatFlag.Shorthand)
	assert.Equal(t, "table", formatFlag.DefValue)

	outputFlag := pivot.Cmd.Flags().Lookup("output")
	require.NotNil(t, outputFlag)
	assert.Equal(t, "o", outputFlag.Shorthand)
}

func TestPivotCommand_Table(t *testing.T) {
	path := setup(t)

	out, err := execute(t, path)
	require.NoError(t, err)
	assert.Contains(t, out, "Food")
	assert.Contains(t, out, "60.25")
	assert.Contains(t, out, "Grand Total")
}

func TestPivotCommand_CSV(t *testing.T) {
	path := setup(t)

	out, err := execute(t, path, "--format", "csv")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Classification,Expense,Income",
		"Food,60.25,0.00",
		"Salary,0.00,100.00",
		"Grand Total,60.25,100.00",
	}, strings.Split(strings.TrimSpace(out), "\n"))
}

func TestPivotCommand_JSONToFile(t *testing.T) {
	path := setup(t)
	target := filepath.Join(filepath.Dir(path), "summary.json")

	out, err := execute(t, path, "-f", "json", "-o", target)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"grand_total"`)
}

func TestPivotCommand_Errors(t *testing.T) {
	path := setup(t)

	_, err := execute(t, path, "--format", "xml")
	assert.Error(t, err)

	_, err = execute(t, filepath.Join(filepath.Dir(path), "missing.json"))
	assert.Error(t, err)

	_, err = execute(t)
	assert.Error(t, err)
}
