// Package control wires the stores, the analyzer, the poller and the
// API server into one application lifecycle.
package control

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vhoang/mx-sentinel/internal/alerting"
	"github.com/vhoang/mx-sentinel/internal/analyses"
	"github.com/vhoang/mx-sentinel/internal/analyzer"
	"github.com/vhoang/mx-sentinel/internal/api"
	"github.com/vhoang/mx-sentinel/internal/core/config"
	"github.com/vhoang/mx-sentinel/internal/infra/ai"
	"github.com/vhoang/mx-sentinel/internal/infra/cache"
	"github.com/vhoang/mx-sentinel/internal/infra/cache/memory"
	"github.com/vhoang/mx-sentinel/internal/infra/cache/postgres"
	"github.com/vhoang/mx-sentinel/internal/infra/cache/redisstore"
	"github.com/vhoang/mx-sentinel/internal/infra/mvx"
	"github.com/vhoang/mx-sentinel/internal/poll"
	"github.com/vhoang/mx-sentinel/internal/registry"
)

// Monitor is the main application struct that manages the pipeline
// lifecycle.
type Monitor struct {
	cfg      config.AppConfig
	backend  cache.Store
	poller   *poll.Poller
	server   *api.Server
	registry *registry.Registry
	log      *slog.Logger
}

// NewMonitor creates a Monitor with all dependencies initialized.
// Backend selection follows configuration: Postgres when a database
// URL is set, otherwise Redis when a Redis URL is set, otherwise
// in-memory.
func NewMonitor(ctx context.Context, cfg config.AppConfig) (*Monitor, error) {
	backend, err := newBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}

	provider := mvx.NewGatewayClient(cfg.Gateway.URL, cfg.Gateway.Timeout)

	var aiProvider ai.Provider
	if cfg.AI.URL != "" && cfg.AI.APIKey != "" {
		aiProvider = ai.NewClient(cfg.AI.URL, cfg.AI.APIKey, cfg.AI.Model, cfg.AI.Timeout)
		slog.Info("AI source review enabled", "model", cfg.AI.Model)
	} else {
		slog.Info("AI source review disabled, no provider configured")
	}

	an := analyzer.New(analyzer.Config{
		HistoryCap: cfg.Monitor.HistoryCap,
		AICacheTTL: cfg.AI.CacheTTL,
	}, aiProvider, backend)

	alerts, err := alerting.NewStore(ctx, backend)
	if err != nil {
		return nil, fmt.Errorf("failed to init alert store: %w", err)
	}
	history, err := analyses.NewStore(ctx, backend, cfg.Monitor.AnalysisSnapshotCap)
	if err != nil {
		return nil, fmt.Errorf("failed to init analysis store: %w", err)
	}

	watchlist := poll.NewWatchlist()
	reg, err := registry.New(ctx, backend, watchlist, provider, an)
	if err != nil {
		return nil, fmt.Errorf("failed to init registry: %w", err)
	}

	poller := poll.NewPoller(
		poll.Config{ScanInterval: cfg.Monitor.ScanInterval},
		watchlist, provider, an, alerts, reg, history,
	)

	server := api.New(api.Config{Port: cfg.Server.Port}, reg, alerts, history, an, provider)

	return &Monitor{
		cfg:      cfg,
		backend:  backend,
		poller:   poller,
		server:   server,
		registry: reg,
		log:      slog.Default(),
	}, nil
}

func newBackend(ctx context.Context, cfg config.AppConfig) (cache.Store, error) {
	switch {
	case cfg.Database.URL != "":
		store, err := postgres.NewStore(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init postgres store: %w", err)
		}
		slog.Info("Using PostgreSQL persistence")
		return store, nil
	case cfg.Redis.URL != "":
		store, err := redisstore.NewStore(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to init redis store: %w", err)
		}
		slog.Info("Using Redis persistence")
		return store, nil
	default:
		slog.Info("Using in-memory persistence")
		return memory.NewMemoryStore(), nil
	}
}

// Start starts the API server and the poll loop.
func (m *Monitor) Start(ctx context.Context) error {
	go func() {
		if err := m.server.Start(); err != nil {
			m.log.Error("API server failed", "error", err)
		}
	}()

	go func() {
		if err := m.poller.Start(ctx); err != nil {
			m.log.Error("Poller failed", "error", err)
		}
	}()

	m.log.Info("Monitor started",
		"port", m.cfg.Server.Port,
		"scan_interval", m.cfg.Monitor.ScanInterval,
		"contracts", len(m.registry.List()),
	)
	return nil
}

// Stop stops the poller, drains the API server and closes the
// persistence backend.
func (m *Monitor) Stop(ctx context.Context) error {
	m.log.Info("Stopping monitor...")

	m.poller.Stop()

	if err := m.server.Shutdown(ctx); err != nil {
		m.log.Warn("API server shutdown failed", "error", err)
	}
	if err := m.backend.Close(); err != nil {
		m.log.Warn("Failed to close persistence backend", "error", err)
	}
	return nil
}
