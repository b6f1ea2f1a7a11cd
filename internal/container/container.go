// Package container wires the finsort dependencies from one configuration.
package container

import (
	"context"
	"fmt"

	"fjacquet/finsort/internal/api"
	"fjacquet/finsort/internal/categorizer"
	"fjacquet/finsort/internal/config"
	"fjacquet/finsort/internal/flowerror"
	"fjacquet/finsort/internal/ledger"
	"fjacquet/finsort/internal/logging"
	"fjacquet/finsort/internal/models"
	"fjacquet/finsort/internal/pivot"
	"fjacquet/finsort/internal/queue"
	"fjacquet/finsort/internal/report"
	"fjacquet/finsort/internal/server"
	"fjacquet/finsort/internal/store"
)

// Mode selects where taxonomy reads, writes and aggregation happen.
type Mode string

const (
	// Local works on the taxonomy files directly.
	Local Mode = "local"
	// Remote goes through the REST backend at api.base_url.
	Remote Mode = "remote"
)

// Backend is everything the classification workflow needs from its side of
// the wire. categorizer.Service and api.Client implement the taxonomy part;
// the aggregator is a pivot.Engine or the same api.Client.
type Backend interface {
	queue.TaxonomySource
	queue.DecisionRecorder
	queue.Reclassifier
}

// Container holds the application dependencies. It is immutable after
// creation.
type Container struct {
	logger    logging.Logger
	config    *config.Config
	store     *store.TaxonomyStore
	service   *categorizer.Service
	engine    *pivot.Engine
	client    *api.Client
	generator *report.ReportGenerator
}

// NewContainer creates and wires all dependencies from cfg.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	logger := cfg.NewLogger()
	logging.SetLogger(logger)

	taxonomy := store.NewTaxonomyStore(cfg.Taxonomy.ExpenseFile, cfg.Taxonomy.IncomeFile, logger)

	c := &Container{
		logger:    logger,
		config:    cfg,
		store:     taxonomy,
		service:   categorizer.NewService(taxonomy, logger),
		engine:    pivot.NewEngine(logger),
		client:    api.NewClient(cfg.API.BaseURL, cfg.Timeout(), cfg.RetryOptions(), logger),
		generator: report.NewReportGenerator(logger),
	}

	logger.Debug("Container initialized",
		logging.F("expense_file", cfg.Taxonomy.ExpenseFile),
		logging.F("income_file", cfg.Taxonomy.IncomeFile),
		logging.F("base_url", cfg.API.BaseURL))
	return c, nil
}

// ParseMode accepts "local" or "remote".
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case Local, Remote:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown mode %q: must be %q or %q", s, Local, Remote)
	}
}

// Backend returns the workflow backend for mode.
func (c *Container) Backend(mode Mode) Backend {
	if mode == Remote {
		return c.client
	}
	return c.service
}

// Aggregator returns the pivot aggregator for mode.
func (c *Container) Aggregator(mode Mode) ledger.Aggregator {
	if mode == Remote {
		return c.client
	}
	return c.engine
}

// NewSession opens a ledger session aggregated according to mode.
func (c *Container) NewSession(records []models.TransactionRecord, mode Mode) (*ledger.Session, error) {
	return ledger.NewSession(records, c.Aggregator(mode), c.logger)
}

// ApplyTaxonomy classifies session against mode's taxonomy so only the
// records no attribution matches are left in the queue. On failure the
// session is left untouched.
func (c *Container) ApplyTaxonomy(ctx context.Context, session *ledger.Session, mode Mode) error {
	records := session.Records()
	out, err := c.Backend(mode).ReclassifyAll(ctx, records)
	if err == nil {
		err = session.Replace(out)
	}
	if err != nil {
		return &flowerror.ReclassificationError{Records: len(records), Err: err}
	}
	c.logger.Info("Taxonomy applied to ledger",
		logging.F(logging.FieldSession, session.ID()),
		logging.F(logging.FieldRemaining, session.UnclassifiedCount()))
	return nil
}

// Preflight checks that mode's backend answers. Local mode has nothing to
// check.
func (c *Container) Preflight(ctx context.Context, mode Mode) error {
	if mode != Remote {
		return nil
	}
	if err := c.client.Health(ctx); err != nil {
		return fmt.Errorf("backend %s is not reachable: %w", c.config.API.BaseURL, err)
	}
	return nil
}

// NewController returns a queue controller bound to mode's backend.
func (c *Container) NewController(mode Mode) *queue.Controller {
	backend := c.Backend(mode)
	return queue.NewController(backend, backend, backend, c.logger)
}

// NewServer returns the REST backend over the local taxonomy.
func (c *Container) NewServer() *server.Server {
	return server.New(server.Config{
		Address:         c.config.Server.Address,
		AllowedOrigins:  c.config.Server.AllowedOrigins,
		ShutdownTimeout: c.config.ShutdownTimeout(),
	}, c.service, c.engine, c.logger)
}

// GetLogger returns the container's logger.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetStore returns the taxonomy store.
func (c *Container) GetStore() *store.TaxonomyStore {
	return c.store
}

// GetService returns the local categorizer service.
func (c *Container) GetService() *categorizer.Service {
	return c.service
}

// GetClient returns the REST client.
func (c *Container) GetClient() *api.Client {
	return c.client
}

// GetReportGenerator returns the report generator.
func (c *Container) GetReportGenerator() *report.ReportGenerator {
	return c.generator
}

// Close releases container resources.
func (c *Container) Close() error {
	c.logger.Debug("Container closed")
	return nil
}
