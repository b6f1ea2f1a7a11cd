// Package queue walks the unclassified records of a ledger one at a time,
// lets the user pick or create a label for each, persists every decision and
// reclassifies the whole ledger once the queue is exhausted.
//
// The workflow is an explicit state machine. Items are processed from the
// last one to the first: the queue is a stack.
package queue

import (
	"context"
	"fmt"
	"strings"

	"fjacquet/finsort/internal/flowerror"
	"fjacquet/finsort/internal/logging"
	"fjacquet/finsort/internal/models"
)

// Controller drives one classification workflow. It is not safe for
// concurrent use; callers await each operation before issuing the next.
type Controller struct {
	taxonomy     TaxonomySource
	recorder     DecisionRecorder
	reclassifier Reclassifier
	logger       logging.Logger

	state     State
	ledger    Ledger
	items     []models.QueueItem
	options   []string
	created   string
	selection string
}

// NewController wires the controller to its collaborators.
func NewController(taxonomy TaxonomySource, recorder DecisionRecorder, reclassifier Reclassifier, logger logging.Logger) *Controller {
	return &Controller{
		taxonomy:     taxonomy,
		recorder:     recorder,
		reclassifier: reclassifier,
		logger:       logging.OrDefault(logger).WithField(logging.FieldComponent, logging.ComponentQueue),
		state:        Idle,
	}
}

// transition is the only place the state changes.
func (c *Controller) transition(op string, to State) error {
	if !CanTransition(c.state, to) {
		return &flowerror.InvalidStateError{Op: op, State: c.state.String()}
	}
	if c.state != to {
		c.logger.Debug("State transition",
			logging.F(logging.FieldOperation, op),
			logging.F("from", c.state.String()),
			logging.F(logging.FieldState, to.String()),
			logging.F(logging.FieldRemaining, len(c.items)))
	}
	c.state = to
	return nil
}

func (c *Controller) requireState(op string, allowed ...State) error {
	for _, s := range allowed {
		if c.state == s {
			return nil
		}
	}
	return &flowerror.InvalidStateError{Op: op, State: c.state.String()}
}

// Start loads the queue of ledger and moves to its last item. A ledger with
// nothing to classify goes straight to Done without reclassification. Start
// discards any workflow in progress.
func (c *Controller) Start(ctx context.Context, ledger Ledger) error {
	c.state = Idle
	c.ledger = ledger
	c.items = ledger.Queue()
	c.options = nil
	c.clearSelection()

	c.logger.Info("Classification queue loaded", logging.F(logging.FieldRemaining, len(c.items)))

	if len(c.items) == 0 {
		return c.transition("start", Done)
	}
	return c.advance(ctx, "start")
}

// Advance reloads the taxonomy of the current item. It is the retry path
// after TaxonomyUnavailable.
func (c *Controller) Advance(ctx context.Context) error {
	if err := c.requireState("advance", OptionsUnavailable, AwaitingSelection); err != nil {
		return err
	}
	return c.advance(ctx, "advance")
}

func (c *Controller) advance(ctx context.Context, op string) error {
	item := c.items[len(c.items)-1]
	c.clearSelection()

	options, err := c.taxonomy.Options(ctx, item.Direction)
	if err != nil {
		c.options = nil
		c.logger.WithError(err).Warn("Taxonomy fetch failed",
			logging.F(logging.FieldDirection, item.Direction),
			logging.F(logging.FieldIndex, item.Index))
		if terr := c.transition(op, OptionsUnavailable); terr != nil {
			return terr
		}
		return &flowerror.TaxonomyUnavailableError{Direction: item.Direction.String(), Err: err}
	}

	c.options = options
	return c.transition(op, AwaitingSelection)
}

// SelectLabel sets label as the pending selection. label must be one of the
// current options or the label just created.
func (c *Controller) SelectLabel(label string) error {
	if err := c.requireState("select", AwaitingSelection, ReadyToCommit); err != nil {
		return err
	}
	if !c.isOption(label) {
		return &flowerror.ValidationError{
			Field:  "classification",
			Value:  label,
			Reason: fmt.Sprintf("not a %s classification", c.items[len(c.items)-1].Direction),
		}
	}
	c.selection = label
	return c.transition("select", ReadyToCommit)
}

func (c *Controller) isOption(label string) bool {
	if label == "" {
		return false
	}
	if label == c.created {
		return true
	}
	for _, option := range c.options {
		if option == label {
			return true
		}
	}
	return false
}

// CreateLabel registers name under dir, attributed to the current activity,
// reloads the options and selects it. dir must be the current item's
// direction. When the reload fails the label stays selected and
// TaxonomyUnavailable is returned.
func (c *Controller) CreateLabel(ctx context.Context, name string, dir models.Direction) error {
	if err := c.requireState("create", AwaitingSelection, ReadyToCommit); err != nil {
		return err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return &flowerror.ValidationError{Field: "classification name", Value: name, Reason: "must not be empty"}
	}
	item := c.items[len(c.items)-1]
	if dir != item.Direction {
		return &flowerror.ValidationError{
			Field:  "direction",
			Value:  dir.String(),
			Reason: fmt.Sprintf("current item is %s", item.Direction),
		}
	}

	if err := c.taxonomy.AddClassification(ctx, name, item.Activity, dir); err != nil {
		c.logger.WithError(err).Warn("Creating classification failed",
			logging.F(logging.FieldClassification, name),
			logging.F(logging.FieldDirection, dir))
		return &flowerror.PersistenceError{Label: name, Activity: item.Activity, Err: err}
	}

	c.created = name
	c.selection = name
	if err := c.transition("create", ReadyToCommit); err != nil {
		return err
	}

	options, err := c.taxonomy.Options(ctx, dir)
	if err != nil {
		c.logger.WithError(err).Warn("Reloading options after create failed",
			logging.F(logging.FieldDirection, dir))
		return &flowerror.TaxonomyUnavailableError{Direction: dir.String(), Err: err}
	}
	c.options = options

	c.logger.Info("Classification created",
		logging.F(logging.FieldClassification, name),
		logging.F(logging.FieldDirection, dir))
	return nil
}

// Commit persists the pending selection for the current item. On success the
// record is relabelled, the item is consumed and the workflow moves to the
// next item, or reclassifies the ledger when none is left. When persisting
// fails nothing changes and Commit can be called again.
func (c *Controller) Commit(ctx context.Context) error {
	if err := c.requireState("commit", AwaitingSelection, OptionsUnavailable, ReadyToCommit); err != nil {
		return err
	}

	item := c.items[len(c.items)-1]
	if c.state != ReadyToCommit || c.selection == "" {
		return &flowerror.NoSelectionError{Activity: item.Activity}
	}
	label := c.selection

	if err := c.recorder.RecordDecision(ctx, label, item.Activity, item.Direction); err != nil {
		c.logger.WithError(err).Warn("Persisting decision failed",
			logging.F(logging.FieldClassification, label),
			logging.F(logging.FieldActivity, item.Activity))
		return &flowerror.PersistenceError{Label: label, Activity: item.Activity, Err: err}
	}

	if err := c.ledger.Relabel(item.Index, label); err != nil {
		return fmt.Errorf("decision for %q persisted but ledger update failed: %w", item.Activity, err)
	}

	c.items = c.items[:len(c.items)-1]
	c.clearSelection()

	c.logger.Info("Decision committed",
		logging.F(logging.FieldClassification, label),
		logging.F(logging.FieldActivity, item.Activity),
		logging.F(logging.FieldIndex, item.Index),
		logging.F(logging.FieldRemaining, len(c.items)))

	if len(c.items) > 0 {
		return c.advance(ctx, "commit")
	}

	c.options = nil
	if err := c.transition("commit", Reclassifying); err != nil {
		return err
	}
	return c.reclassify(ctx, "commit")
}

// Reclassify retries the final reclassification after a failure.
func (c *Controller) Reclassify(ctx context.Context) error {
	if err := c.requireState("reclassify", Reclassifying); err != nil {
		return err
	}
	return c.reclassify(ctx, "reclassify")
}

func (c *Controller) reclassify(ctx context.Context, op string) error {
	records := c.ledger.Records()

	out, err := c.reclassifier.ReclassifyAll(ctx, records)
	if err == nil {
		err = c.ledger.Replace(out)
	}
	if err != nil {
		c.logger.WithError(err).Warn("Reclassification failed, ledger kept",
			logging.F(logging.FieldCount, len(records)))
		if terr := c.transition(op, Reclassifying); terr != nil {
			return terr
		}
		return &flowerror.ReclassificationError{Records: len(records), Err: err}
	}

	c.logger.Info("Ledger reclassified", logging.F(logging.FieldCount, len(out)))
	return c.transition(op, Done)
}

func (c *Controller) clearSelection() {
	c.selection = ""
	c.created = ""
}

// State returns the current workflow state.
func (c *Controller) State() State {
	return c.state
}

// Current returns the item being classified, if any.
func (c *Controller) Current() (models.QueueItem, bool) {
	switch c.state {
	case OptionsUnavailable, AwaitingSelection, ReadyToCommit:
		return c.items[len(c.items)-1], true
	default:
		return models.QueueItem{}, false
	}
}

// Options returns a copy of the loaded options of the current item.
func (c *Controller) Options() []string {
	out := make([]string, len(c.options))
	copy(out, c.options)
	return out
}

// Selection returns the pending label, if any.
func (c *Controller) Selection() (string, bool) {
	return c.selection, c.selection != ""
}

// Remaining returns how many items are left, the current one included.
func (c *Controller) Remaining() int {
	return len(c.items)
}

// Classifying reports whether a workflow is in progress.
func (c *Controller) Classifying() bool {
	return c.state != Idle && c.state != Done
}

// FullyClassified reports whether the ledger needs no further classification.
func (c *Controller) FullyClassified() bool {
	return c.state == Done
}
