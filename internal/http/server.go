// Package http serves the ledger as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"kakeibo/internal/cloudsync"
	"kakeibo/internal/core"
	"kakeibo/internal/ledger"
	"kakeibo/internal/log"
	"kakeibo/internal/middleware/ratelimit"
	"kakeibo/internal/middleware/security"
	"kakeibo/internal/services"
	"kakeibo/internal/view"
)

// Ledger is what the handlers need from services.Tracker.
type Ledger interface {
	AddExpense(ctx context.Context, c ledger.Candidate) (core.Expense, error)
	DeleteExpense(ctx context.Context, id string) (bool, error)
	Expenses() []core.Expense
	View(ctx context.Context, criteria view.Criteria, surfaces services.Surfaces) *services.View
	SyncStatus() cloudsync.Status
	SyncEnabled() bool
}

// Options tunes the server. Zero values fall back to defaults.
type Options struct {
	RequestsPerMinute int
	Headers           *security.HeadersConfig
	Logger            *log.Logger
}

type Server struct {
	http.Server
	ledger   Ledger
	detector *security.Detector
	limiter  *ratelimit.Limiter
	logger   *log.Logger

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, l Ledger, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	headers := security.DefaultHeadersConfig()
	if opts.Headers != nil {
		headers = *opts.Headers
	}

	s := &Server{
		ledger:   l,
		detector: security.NewDetector(),
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RequestsPerMinute}),
		logger:   logger.WithComponent(log.ComponentHTTP),
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(log.Middleware(s.logger))
	r.Use(log.RequestIDMiddleware(func(r *http.Request) string {
		return chimiddleware.GetReqID(r.Context())
	}))
	r.Use(log.AccessLog(s.detector.ExtractClientIP))
	r.Use(chimiddleware.Recoverer)
	r.Use(security.NewHeadersMiddleware(headers).Middleware)
	r.Use(s.detector.Middleware)

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.limiter.Middleware(s.detector.ExtractClientIP, ratelimit.Mutations, handleRateLimited))

		r.Get("/categories", s.handleCategories)
		r.Get("/view", s.handleView)
		r.Get("/sync/status", s.handleSyncStatus)

		r.Get("/expenses", s.handleListExpenses)
		r.Post("/expenses", s.handleCreateExpense)
		r.Delete("/expenses/{id}", s.handleDeleteExpense)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	s.Server = http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown gracefully shuts down the server and the rate limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
