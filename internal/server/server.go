// Package server exposes the taxonomy store, the reclassifier and the
// aggregation engine over HTTP/JSON.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"

	"fjacquet/finsort/internal/api"
	"fjacquet/finsort/internal/logging"
	"fjacquet/finsort/internal/models"
)

// maxBodyBytes caps request bodies; a ledger of this size is far beyond a
// personal account.
const maxBodyBytes = 16 << 20

// Backend is the classification logic behind the endpoints.
// categorizer.Service implements it.
type Backend interface {
	Options(ctx context.Context, dir models.Direction) ([]string, error)
	AttributeActivity(ctx context.Context, label, activity string, dir models.Direction) (models.Direction, error)
	AddClassification(ctx context.Context, name, activity string, dir models.Direction) error
	ReclassifyAll(ctx context.Context, records []models.TransactionRecord) ([]models.TransactionRecord, error)
}

// Aggregator computes pivot rows. pivot.Engine implements it.
type Aggregator interface {
	Aggregate(ctx context.Context, records []models.TransactionRecord) ([]models.PivotRow, error)
}

// Config holds the listener settings.
type Config struct {
	Address         string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

// Server serves the classification endpoints.
type Server struct {
	cfg        Config
	backend    Backend
	aggregator Aggregator
	logger     logging.Logger
	handler    http.Handler
}

// New builds a Server and its routes.
func New(cfg Config, backend Backend, aggregator Aggregator, logger logging.Logger) *Server {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	s := &Server{
		cfg:        cfg,
		backend:    backend,
		aggregator: aggregator,
		logger:     logging.OrDefault(logger).WithField(logging.FieldComponent, logging.ComponentServer),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+api.PathExpenseOptions, s.handleOptions(models.Expense))
	mux.HandleFunc("GET "+api.PathIncomeOptions, s.handleOptions(models.Income))
	mux.HandleFunc("POST "+api.PathAddValue, s.handleAddValue)
	mux.HandleFunc("POST "+api.PathAddClassification, s.handleAddClassification)
	mux.HandleFunc("POST "+api.PathReclassify, s.handleReclassify)
	mux.HandleFunc("POST "+api.PathPivotTable, s.handlePivotTable)
	mux.HandleFunc("GET "+api.PathHealth, handleHealth)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	})

	s.handler = s.withRequestLogging(c.Handler(mux))
	return s
}

// Handler returns the routed handler with CORS and request logging.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("Server listening", logging.F("address", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		s.logger.Info("Server shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, api.StatusResponse{Status: "ok"})
}
