package poll

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vhoang/mx-sentinel/internal/core/domain"
	"github.com/vhoang/mx-sentinel/internal/infra/mvx"
	"github.com/vhoang/mx-sentinel/internal/monitoring"
)

// TransactionAnalyzer runs the per-transaction detection path.
type TransactionAnalyzer interface {
	AnalyzeTransaction(ctx context.Context, tx *domain.Transaction, code string) *domain.DetectionResult
}

// AlertSink raises alerts from findings.
type AlertSink interface {
	CreateFromFinding(ctx context.Context, finding *domain.DetectionResult) (*domain.Alert, bool)
}

// ContractTracker receives per-contract bookkeeping updates.
type ContractTracker interface {
	IncrementAlertCount(ctx context.Context, address string, highRisk bool)
	MarkAnalyzed(ctx context.Context, address string)
}

// Recorder keeps the rolling analysis history.
type Recorder interface {
	Record(ctx context.Context, result *domain.DetectionResult)
}

// Config holds the poller settings.
type Config struct {
	ScanInterval time.Duration
}

// Poller drives the fixed-interval scan loop. One pass per tick over
// the watchlist; a provider failure for one address is logged and the
// rest of the pass continues.
type Poller struct {
	cfg       Config
	watchlist *Watchlist
	provider  mvx.Provider
	analyzer  TransactionAnalyzer
	alerts    AlertSink
	tracker   ContractTracker
	recorder  Recorder

	lastSeen  map[string]string
	codeCache map[string]string
	mu        sync.Mutex

	running atomic.Bool
	stopped atomic.Bool
	stop    chan struct{}
}

// NewPoller creates a poller over the given watchlist.
func NewPoller(cfg Config, watchlist *Watchlist, provider mvx.Provider, analyzer TransactionAnalyzer, alerts AlertSink, tracker ContractTracker, recorder Recorder) *Poller {
	if cfg.ScanInterval <= 0 {
		cfg.ScanInterval = 10 * time.Second
	}
	return &Poller{
		cfg:       cfg,
		watchlist: watchlist,
		provider:  provider,
		analyzer:  analyzer,
		alerts:    alerts,
		tracker:   tracker,
		recorder:  recorder,
		lastSeen:  make(map[string]string),
		codeCache: make(map[string]string),
		stop:      make(chan struct{}),
	}
}

// Start begins the scan loop and blocks until the context is
// cancelled or Stop is called.
func (p *Poller) Start(ctx context.Context) error {
	if !p.running.CompareAndSwap(false, true) {
		return fmt.Errorf("poller already running")
	}
	defer p.running.Store(false)

	ticker := time.NewTicker(p.cfg.ScanInterval)
	defer ticker.Stop()

	slog.Info("Poller started", "interval", p.cfg.ScanInterval)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-p.stop:
			return nil
		case <-ticker.C:
			p.RunOnce(ctx)
		}
	}
}

// Stop signals the scan loop to exit. Safe to call more than once.
func (p *Poller) Stop() {
	if p.stopped.CompareAndSwap(false, true) {
		close(p.stop)
	}
}

// RunOnce performs a single pass over all watched addresses.
func (p *Poller) RunOnce(ctx context.Context) {
	for _, address := range p.watchlist.Addresses() {
		if ctx.Err() != nil {
			return
		}
		if err := p.scanAddress(ctx, address); err != nil {
			slog.Warn("Scan failed, will retry next tick", "address", address, "error", err)
		}
	}
	monitoring.PollCyclesTotal.Inc()
}

// scanAddress checks one address for an unseen transaction and runs
// the detection path on it.
func (p *Poller) scanAddress(ctx context.Context, address string) error {
	hash, err := p.provider.LatestTransaction(ctx, address)
	if err != nil {
		return fmt.Errorf("latest transaction lookup failed: %w", err)
	}
	if hash == "" || hash == p.seen(address) {
		return nil
	}

	tx, err := p.provider.GetTransaction(ctx, hash)
	if err != nil {
		return fmt.Errorf("transaction fetch failed: %w", err)
	}
	if tx == nil {
		// Listed but not retrievable yet; try again next tick.
		return nil
	}

	finding := p.analyzer.AnalyzeTransaction(ctx, tx, p.contractCode(ctx, address))
	finding.ContractAddress = address
	p.markSeen(address, hash)

	p.recorder.Record(ctx, finding)
	if alert, created := p.alerts.CreateFromFinding(ctx, finding); created {
		p.tracker.IncrementAlertCount(ctx, address, finding.RiskScore.IsHighRisk())
		slog.Info("Alert raised",
			"alert_id", alert.ID,
			"address", address,
			"tx", hash,
			"score", finding.RiskScore.Score,
			"level", finding.RiskScore.Level,
		)
	}
	p.tracker.MarkAnalyzed(ctx, address)
	return nil
}

// contractCode returns the deployed code for an address, fetched once
// and cached for the process lifetime. A fetch failure degrades to
// payload-only detection for this pass.
func (p *Poller) contractCode(ctx context.Context, address string) string {
	p.mu.Lock()
	code, ok := p.codeCache[address]
	p.mu.Unlock()
	if ok {
		return code
	}

	code, err := p.provider.GetAccountCode(ctx, address)
	if err != nil {
		slog.Warn("Code fetch failed, detecting on payload only", "address", address, "error", err)
		return ""
	}

	p.mu.Lock()
	p.codeCache[address] = code
	p.mu.Unlock()
	return code
}

func (p *Poller) seen(address string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastSeen[address]
}

func (p *Poller) markSeen(address, hash string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastSeen[address] = hash
}
