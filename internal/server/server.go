// Package server provides the HTTP API for tumorcheck.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/tumorcheck/internal/config"
	"github.com/hyperjump/tumorcheck/internal/pipeline"
	"github.com/hyperjump/tumorcheck/internal/storage"
	"go.uber.org/zap"
)

// Server is the HTTP server for the prediction API.
type Server struct {
	inferer pipeline.Inferer
	storage storage.Storage // nil when history is disabled
	config  *config.Config
	logger  *zap.Logger
	server  *http.Server

	stale func() bool
	// broken is set once an inference fails because of the artifacts.
	broken atomic.Bool
}

// Option configures a Server.
type Option func(*Server)

// WithStaleCheck reports whether the artifacts on disk changed since they were loaded.
func WithStaleCheck(f func() bool) Option {
	return func(s *Server) { s.stale = f }
}

// NewServer creates a server with the given dependencies. store may be nil.
func NewServer(
	inferer pipeline.Inferer,
	store storage.Storage,
	cfg *config.Config,
	logger *zap.Logger,
	opts ...Option,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		inferer: inferer,
		storage: store,
		config:  cfg,
		logger:  logger,
		stale:   func() bool { return false },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router returns the HTTP handler with all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/predict", s.handlePredict)
		r.Get("/schema", s.handleSchema)
		r.Get("/predictions", s.handleListPredictions)
		r.Get("/predictions/{id}", s.handleGetPrediction)
		r.Delete("/predictions/{id}", s.handleDeletePrediction)
		r.Get("/status", s.handleStatus)
	})
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	return r
}

// Start starts the HTTP server and blocks until it stops. It returns nil
// after a graceful Stop.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// Ready reports whether the server should receive traffic.
func (s *Server) Ready() bool {
	if s.broken.Load() {
		return false
	}
	failWhenStale := s.config != nil && s.config.Artifacts.FailWhenStale
	return !(failWhenStale && s.stale())
}
