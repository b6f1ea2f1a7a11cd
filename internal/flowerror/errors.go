// Package flowerror defines the typed errors returned by the classification
// workflow and the aggregation view. Every error matches its kind sentinel
// with errors.Is and none of them is fatal: each is recovered by retrying
// the operation or correcting the input.
package flowerror

import (
	"errors"
	"fmt"
)

// Error kinds.
var (
	ErrTaxonomyUnavailable     = errors.New("taxonomy unavailable")
	ErrValidation              = errors.New("validation error")
	ErrNoSelection             = errors.New("no selection")
	ErrPersistenceFailure      = errors.New("persistence failure")
	ErrReclassificationFailure = errors.New("reclassification failure")
	ErrAggregationFailure      = errors.New("aggregation failure")
	ErrInvalidState            = errors.New("invalid state")
)

// UserError is implemented by errors that carry a message fit for display.
type UserError interface {
	error
	UserMessage() string
}

// UserMessage returns the display message of the first UserError in err's
// chain, or err's text.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var ue UserError
	if errors.As(err, &ue) {
		return ue.UserMessage()
	}
	return err.Error()
}

// TaxonomyUnavailableError means the options of one direction could not be fetched.
type TaxonomyUnavailableError struct {
	Direction string
	Err       error
}

func (e *TaxonomyUnavailableError) Error() string {
	return fmt.Sprintf("taxonomy unavailable for %s: %v", e.Direction, e.Err)
}

func (e *TaxonomyUnavailableError) Unwrap() error { return e.Err }

func (e *TaxonomyUnavailableError) Is(target error) bool { return target == ErrTaxonomyUnavailable }

func (e *TaxonomyUnavailableError) UserMessage() string {
	return fmt.Sprintf("Could not load the %s classifications. Retry to try again.", e.Direction)
}

// ValidationError rejects local input before any network call.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s='%s': %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func (e *ValidationError) UserMessage() string {
	return fmt.Sprintf("Invalid %s: %s.", e.Field, e.Reason)
}

// NoSelectionError is returned when a commit has no pending label.
type NoSelectionError struct {
	Activity string
}

func (e *NoSelectionError) Error() string {
	return fmt.Sprintf("no classification selected for '%s'", e.Activity)
}

func (e *NoSelectionError) Is(target error) bool { return target == ErrNoSelection }

func (e *NoSelectionError) UserMessage() string {
	return "Choose or create a classification before saving."
}

// PersistenceError means a decision or a new label could not be stored.
type PersistenceError struct {
	Label    string
	Activity string
	Err      error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist '%s' for '%s': %v", e.Label, e.Activity, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistenceFailure }

func (e *PersistenceError) UserMessage() string {
	return fmt.Sprintf("Saving '%s' failed. Your selection is kept, try again.", e.Label)
}

// ReclassificationError means the final reclassify-all pass failed and the
// ledger was left as it was.
type ReclassificationError struct {
	Records int
	Err     error
}

func (e *ReclassificationError) Error() string {
	return fmt.Sprintf("reclassification of %d records failed: %v", e.Records, e.Err)
}

func (e *ReclassificationError) Unwrap() error { return e.Err }

func (e *ReclassificationError) Is(target error) bool { return target == ErrReclassificationFailure }

func (e *ReclassificationError) UserMessage() string {
	return "Reclassifying the ledger failed. Your labels are kept, try again."
}

// AggregationError means the pivot could not be computed; the previous view
// is still valid.
type AggregationError struct {
	Records int
	Err     error
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("aggregation of %d records failed: %v", e.Records, e.Err)
}

func (e *AggregationError) Unwrap() error { return e.Err }

func (e *AggregationError) Is(target error) bool { return target == ErrAggregationFailure }

func (e *AggregationError) UserMessage() string {
	return "The summary could not be refreshed. Showing the previous one."
}

// InvalidStateError is returned when an operation is not allowed in the
// current workflow state.
type InvalidStateError struct {
	Op    string
	State string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s not allowed in state %s", e.Op, e.State)
}

func (e *InvalidStateError) Is(target error) bool { return target == ErrInvalidState }
