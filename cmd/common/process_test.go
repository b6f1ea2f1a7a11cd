package common

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/finsort/internal/config"
	"fjacquet/finsort/internal/container"
)

func newContainer(t *testing.T) *container.Container {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.Log.Level = "error"
	cfg.Log.Format = "text"
	cfg.API.BaseURL = "http://127.0.0.1:1"
	cfg.API.TimeoutSeconds = 1
	cfg.API.Retry.MaxAttempts = 1
	cfg.Taxonomy.ExpenseFile = filepath.Join(dir, "expense.yaml")
	cfg.Taxonomy.IncomeFile = filepath.Join(dir, "income.yaml")
	c, err := container.NewContainer(cfg)
	require.NoError(t, err)
	return c
}

func TestOpenLedger(t *testing.T) {
	c := newContainer(t)
	dir := t.TempDir()

	valid := filepath.Join(dir, "ledger.json")
	require.NoError(t, os.WriteFile(valid, []byte(`[
		{"Date":"2024-03-27","Activity":"Coop","Expense":50,"Income":0,"Classification":"No classification"}
	]`), 0600))

	session, err := OpenLedger(c, valid, container.Local)
	require.NoError(t, err)
	assert.Equal(t, 1, session.Len())
	assert.Equal(t, 1, session.UnclassifiedCount())

	invalid := filepath.Join(dir, "invalid.json")
	require.NoError(t, os.WriteFile(invalid, []byte(`[
		{"Date":"2024-03-27","Activity":"Coop","Expense":50,"Income":10,"Classification":"Food"}
	]`), 0600))
	_, err = OpenLedger(c, invalid, container.Local)
	assert.Error(t, err)

	_, err = OpenLedger(c, filepath.Join(dir, "missing.json"), container.Local)
	assert.Error(t, err)
}

func TestWriteOutput(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteOutput(&buf, "", []byte("a")))
	require.NoError(t, WriteOutput(&buf, "-", []byte("b")))
	assert.Equal(t, "ab", buf.String())

	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, WriteOutput(&buf, path, []byte("c")))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "c", string(data))
	assert.Equal(t, "ab", buf.String())
}
