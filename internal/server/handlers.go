package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"fjacquet/finsort/internal/api"
	"fjacquet/finsort/internal/ledger"
	"fjacquet/finsort/internal/logging"
	"fjacquet/finsort/internal/models"
	"fjacquet/finsort/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, api.ErrorResponse{Error: msg})
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.logger.WithError(err).Error("Request failed", logging.F(logging.FieldOperation, op))
	writeError(w, http.StatusInternalServerError, op+" failed")
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	return data, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	data, err := readBody(w, r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func (s *Server) handleOptions(dir models.Direction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		options, err := s.backend.Options(r.Context(), dir)
		if err != nil {
			s.internalError(w, "loading "+dir.String()+" options", err)
			return
		}
		writeJSON(w, http.StatusOK, api.OptionsResponse{Options: options})
	}
}

func (s *Server) handleAddValue(w http.ResponseWriter, r *http.Request) {
	var req api.AddValueRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	label := strings.TrimSpace(req.Classification)
	if label == "" {
		writeError(w, http.StatusBadRequest, "classification is required")
		return
	}

	var dir models.Direction
	if strings.TrimSpace(req.ChosenType) != "" {
		var err error
		if dir, err = models.ParseDirection(req.ChosenType); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	if _, err := s.backend.AttributeActivity(r.Context(), label, req.Activity, dir); err != nil {
		if errors.Is(err, store.ErrUnknownClassification) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.internalError(w, "recording decision", err)
		return
	}
	writeJSON(w, http.StatusOK, api.StatusResponse{Status: "ok"})
}

func (s *Server) handleAddClassification(w http.ResponseWriter, r *http.Request) {
	var req api.AddClassificationRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	name := strings.TrimSpace(req.NewClassification)
	if name == "" {
		writeError(w, http.StatusBadRequest, "new_classification is required")
		return
	}
	dir, err := models.ParseDirection(req.ChosenType)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.backend.AddClassification(r.Context(), name, req.SelectedActivity, dir); err != nil {
		s.internalError(w, "creating classification", err)
		return
	}
	writeJSON(w, http.StatusOK, api.StatusResponse{Status: "ok"})
}

func (s *Server) handleReclassify(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	records, err := ledger.Decode(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	for i, record := range records {
		if err := record.Normalize().Validate(); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("record %d: %v", i, err))
			return
		}
	}

	out, err := s.backend.ReclassifyAll(r.Context(), records)
	if err != nil {
		s.internalError(w, "reclassification", err)
		return
	}
	writeJSON(w, http.StatusOK, ledger.Envelope{Parsed: out})
}

func (s *Server) handlePivotTable(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	records, err := api.ParseRecordTuples(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := s.aggregator.Aggregate(r.Context(), records)
	if err != nil {
		s.internalError(w, "aggregation", err)
		return
	}
	writeJSON(w, http.StatusOK, api.RowTuples(rows))
}
