package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"fjacquet/finsort/internal/models"
)

// Envelope is the {"parsed": [...]} shape used by the reclassify endpoint.
type Envelope struct {
	Parsed []models.TransactionRecord `json:"parsed"`
}

// Decode reads a ledger from data: either a bare JSON array of records or an
// Envelope.
func Decode(data []byte) ([]models.TransactionRecord, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty ledger document")
	}

	if trimmed[0] == '[' {
		var records []models.TransactionRecord
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("error parsing ledger records: %w", err)
		}
		return records, nil
	}

	var envelope Envelope
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("error parsing ledger envelope: %w", err)
	}
	if envelope.Parsed == nil {
		return nil, fmt.Errorf("ledger envelope has no \"parsed\" records")
	}
	return envelope.Parsed, nil
}

// ReadFile loads a ledger JSON file.
func ReadFile(path string) ([]models.TransactionRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading ledger file: %w", err)
	}
	records, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// WriteFile saves records as an indented JSON array, creating parent
// directories as needed.
func WriteFile(path string, records []models.TransactionRecord) error {
	if records == nil {
		records = []models.TransactionRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling ledger: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("error writing ledger file: %w", err)
	}
	return nil
}
