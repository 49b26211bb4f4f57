// Package api exposes the monitoring pipeline over HTTP.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vhoang/mx-sentinel/internal/alerting"
	"github.com/vhoang/mx-sentinel/internal/analyses"
	"github.com/vhoang/mx-sentinel/internal/analyzer"
	"github.com/vhoang/mx-sentinel/internal/infra/mvx"
	"github.com/vhoang/mx-sentinel/internal/registry"
)

// Config holds the HTTP server settings.
type Config struct {
	Port int
}

// Server wires the stores and the analyzer to the HTTP surface.
type Server struct {
	cfg      Config
	registry *registry.Registry
	alerts   *alerting.Store
	analyses *analyses.Store
	analyzer *analyzer.Analyzer
	provider mvx.Provider
	validate *validator.Validate
	router   *chi.Mux
	httpSrv  *http.Server
}

// New creates the API server and mounts all routes.
func New(cfg Config, reg *registry.Registry, alerts *alerting.Store, history *analyses.Store, an *analyzer.Analyzer, provider mvx.Provider) *Server {
	s := &Server{
		cfg:      cfg,
		registry: reg,
		alerts:   alerts,
		analyses: history,
		analyzer: an,
		provider: provider,
		validate: validator.New(),
		router:   chi.NewRouter(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/health", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Route("/contracts", func(r chi.Router) {
			r.Get("/", s.handleListContracts)
			r.Post("/", s.handleAddContract)
			r.Get("/{address}", s.handleGetContract)
			r.Delete("/{address}", s.handleRemoveContract)
			r.Post("/{address}/analyze", s.handleAnalyzeContract)
		})
		r.Route("/alerts", func(r chi.Router) {
			r.Get("/", s.handleListAlerts)
			r.Get("/stats", s.handleAlertStats)
			r.Get("/{id}", s.handleGetAlert)
			r.Post("/{id}/resolve", s.handleResolveAlert)
		})
		r.Get("/analyses", s.handleListAnalyses)
		r.Get("/dashboard", s.handleDashboard)
	})
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins serving. It blocks until the listener fails or the
// server is shut down.
func (s *Server) Start() error {
	s.httpSrv = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("API server listening", "port", s.cfg.Port)
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api server failed: %w", err)
	}
	return nil
}

// Shutdown stops the server, draining in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}
