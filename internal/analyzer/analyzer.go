// Package analyzer orchestrates the detector pipeline: it owns the
// per-contract value history, fans a transaction out to every pattern
// detector, runs the anomaly check and produces a scored finding.
package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vhoang/mx-sentinel/internal/core/domain"
	"github.com/vhoang/mx-sentinel/internal/detect"
	"github.com/vhoang/mx-sentinel/internal/infra/ai"
	"github.com/vhoang/mx-sentinel/internal/infra/cache"
	"github.com/vhoang/mx-sentinel/internal/monitoring"
	"github.com/vhoang/mx-sentinel/internal/score"
)

// Analyzer runs all detectors for transactions and contracts.
type Analyzer struct {
	detectors  []detect.PatternDetector
	history    *detect.History
	ai         ai.Provider
	cache      cache.Store
	aiCacheTTL time.Duration
}

// Config holds analyzer settings.
type Config struct {
	HistoryCap int
	AICacheTTL time.Duration
}

// New creates an analyzer. ai may be nil when no review provider is
// configured; the contract path then runs category detectors only.
func New(cfg Config, aiProvider ai.Provider, store cache.Store) *Analyzer {
	return &Analyzer{
		detectors:  detect.Builtin(),
		history:    detect.NewHistory(cfg.HistoryCap),
		ai:         aiProvider,
		cache:      store,
		aiCacheTTL: cfg.AICacheTTL,
	}
}

// AnalyzeTransaction runs every pattern detector plus the anomaly
// check against one transaction. It never returns an error: an
// internal fault yields a degraded finding (no matches, no anomaly,
// score 0/unknown) instead of failing the pipeline.
func (a *Analyzer) AnalyzeTransaction(ctx context.Context, tx *domain.Transaction, code string) (result *domain.DetectionResult) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Transaction analysis failed, returning degraded result",
				"tx", tx.Hash, "panic", r)
			result = &domain.DetectionResult{
				ID:              uuid.NewString(),
				TransactionHash: tx.Hash,
				ContractAddress: tx.Receiver,
				RiskScore:       score.Degraded(),
				Timestamp:       time.Now(),
				Details:         fmt.Sprintf("analysis error: %v", r),
			}
		}
	}()

	monitoring.TransactionsAnalyzed.Inc()

	// Record the value first; the anomaly check judges the new value
	// against the history that preceded it.
	value := detect.ParseValue(tx.Value)
	prior := a.history.Observe(tx.Receiver, value)

	var matched []domain.Pattern
	for _, d := range a.detectors {
		if detect.SafeDetect(d, tx, code) {
			matched = append(matched, d.Pattern())
			monitoring.PatternMatchesTotal.WithLabelValues(d.Pattern().ID).Inc()
		}
	}

	verdict := detect.EvaluateAnomaly(value, prior)
	if verdict.IsAnomaly {
		monitoring.AnomaliesDetected.Inc()
	}

	return &domain.DetectionResult{
		ID:              uuid.NewString(),
		TransactionHash: tx.Hash,
		ContractAddress: tx.Receiver,
		IsAnomaly:       verdict.IsAnomaly,
		MatchedPatterns: matched,
		RiskScore:       score.FromPatterns(matched, verdict.IsAnomaly),
		Timestamp:       time.Now(),
		Details:         buildDetails(matched, verdict),
	}
}

// HistoryLen reports how many values are retained for an address.
func (a *Analyzer) HistoryLen(address string) int {
	return a.history.Len(address)
}

// buildDetails renders the human-readable explanation attached to a
// finding: matched pattern names and descriptions, plus the anomaly
// figures when the value is an outlier.
func buildDetails(matched []domain.Pattern, verdict detect.AnomalyVerdict) string {
	if len(matched) == 0 && !verdict.IsAnomaly {
		return "No security issues detected"
	}

	var sb strings.Builder
	for i, p := range matched {
		if i > 0 {
			sb.WriteString("; ")
		}
		fmt.Fprintf(&sb, "%s: %s", p.Name, p.Description)
	}
	if verdict.IsAnomaly {
		if sb.Len() > 0 {
			sb.WriteString("; ")
		}
		fmt.Fprintf(&sb, "Anomalous transaction value %.4g deviates from historical mean %.4g (z-score %.2f)",
			verdict.Value, verdict.Mean, verdict.ZScore)
	}
	return sb.String()
}
