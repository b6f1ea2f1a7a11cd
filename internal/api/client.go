package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"fjacquet/finsort/internal/common"
	"fjacquet/finsort/internal/ledger"
	"fjacquet/finsort/internal/logging"
	"fjacquet/finsort/internal/models"
)

const maxErrorBody = 4 << 10

// Client talks to the classification backend. Every call is bounded by the
// client timeout and retried with backoff on transient failures. It
// implements the ports of queue.Controller and ledger.Aggregator.
type Client struct {
	baseURL string
	http    *http.Client
	retry   common.RetryOptions
	logger  logging.Logger
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, timeout time.Duration, retry common.RetryOptions, logger logging.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		retry:   retry,
		logger:  logging.OrDefault(logger).WithField(logging.FieldComponent, logging.ComponentAPI),
	}
}

// Options fetches the labels of dir's taxonomy.
func (c *Client) Options(ctx context.Context, dir models.Direction) ([]string, error) {
	path, err := OptionsPath(dir)
	if err != nil {
		return nil, err
	}
	var resp OptionsResponse
	if err := c.call(ctx, http.MethodGet, path, nil, jsonDecoder(&resp)); err != nil {
		return nil, err
	}
	if resp.Options == nil {
		resp.Options = []string{}
	}
	return resp.Options, nil
}

// RecordDecision attributes activity to label in dir's taxonomy.
func (c *Client) RecordDecision(ctx context.Context, label, activity string, dir models.Direction) error {
	body := AddValueRequest{Classification: label, Activity: activity, ChosenType: dir.String()}
	return c.call(ctx, http.MethodPost, PathAddValue, body, discard)
}

// AddClassification registers label name under dir, attributed to activity.
func (c *Client) AddClassification(ctx context.Context, name, activity string, dir models.Direction) error {
	body := AddClassificationRequest{NewClassification: name, SelectedActivity: activity, ChosenType: dir.String()}
	return c.call(ctx, http.MethodPost, PathAddClassification, body, discard)
}

// ReclassifyAll sends the whole ledger and returns the reclassified one.
func (c *Client) ReclassifyAll(ctx context.Context, records []models.TransactionRecord) ([]models.TransactionRecord, error) {
	if records == nil {
		records = []models.TransactionRecord{}
	}
	var out []models.TransactionRecord
	err := c.call(ctx, http.MethodPost, PathReclassify, records, func(data []byte) error {
		parsed, err := ledger.Decode(data)
		if err != nil {
			return err
		}
		out = parsed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Aggregate returns the pivot rows computed by the backend. The backend does
// not send a Grand Total row.
func (c *Client) Aggregate(ctx context.Context, records []models.TransactionRecord) ([]models.PivotRow, error) {
	var rows []models.PivotRow
	err := c.call(ctx, http.MethodPost, PathPivotTable, RecordTuples(records), func(data []byte) error {
		parsed, err := ParseRowTuples(data)
		if err != nil {
			return err
		}
		rows = parsed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Health checks that the backend answers.
func (c *Client) Health(ctx context.Context) error {
	return c.call(ctx, http.MethodGet, PathHealth, nil, discard)
}

func jsonDecoder(v interface{}) func([]byte) error {
	return func(data []byte) error {
		return json.Unmarshal(data, v)
	}
}

func discard([]byte) error { return nil }

// call performs one request with retries. decode receives the body of a 2xx
// response; a decode failure is reported as ErrMalformedResponse and not
// retried.
func (c *Client) call(ctx context.Context, method, path string, body interface{}, decode func([]byte) error) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("failed to encode %s request: %w", path, err)
		}
	}

	attempt := 0
	op := func() error {
		attempt++
		data, err := c.do(ctx, method, path, payload)
		if err != nil {
			c.logger.WithError(err).Debug("Request failed",
				logging.F(logging.FieldMethod, method),
				logging.F(logging.FieldPath, path),
				logging.F(logging.FieldAttempt, attempt))
			if !retryable(ctx, err) {
				return common.Permanent(err)
			}
			return err
		}
		if err := decode(data); err != nil {
			return common.Permanent(fmt.Errorf("%w from %s %s: %v", ErrMalformedResponse, method, path, err))
		}
		return nil
	}

	return common.WithRetry(ctx, op, c.retry, c.logger)
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.WithError(cerr).Debug("Failed to close response body")
		}
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(data),
		}
	}
	return data, nil
}

func errorMessage(data []byte) string {
	var payload ErrorResponse
	if err := json.Unmarshal(data, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	if len(data) > maxErrorBody {
		data = data[:maxErrorBody]
	}
	return strings.TrimSpace(string(data))
}

// retryable separates transient failures (transport errors, timeouts, 429,
// 5xx) from permanent ones (other statuses, cancelled contexts).
func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Temporary()
	}
	return true
}
