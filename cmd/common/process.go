// Package common contains shared functionality for command handlers.
package common

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"fjacquet/finsort/internal/container"
	"fjacquet/finsort/internal/ledger"
	"fjacquet/finsort/internal/logging"
)

// OpenLedger reads the ledger file at path and opens a session aggregated
// according to mode.
func OpenLedger(c *container.Container, path string, mode container.Mode) (*ledger.Session, error) {
	records, err := ledger.ReadFile(path)
	if err != nil {
		return nil, err
	}
	session, err := c.NewSession(records, mode)
	if err != nil {
		return nil, fmt.Errorf("invalid ledger %s: %w", path, err)
	}
	c.GetLogger().Info("Ledger loaded",
		logging.F(logging.FieldFile, path),
		logging.F(logging.FieldCount, session.Len()),
		logging.F(logging.FieldSession, session.ID()))
	return session, nil
}

// WriteOutput writes data to the file at path, or to w when path is empty or
// "-".
func WriteOutput(w io.Writer, path string, data []byte) error {
	if path == "" || path == "-" {
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
