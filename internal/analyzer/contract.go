package analyzer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vhoang/mx-sentinel/internal/core/domain"
	"github.com/vhoang/mx-sentinel/internal/detect"
	"github.com/vhoang/mx-sentinel/internal/infra/ai"
	"github.com/vhoang/mx-sentinel/internal/score"
)

// AnalyzeContract is the higher-latency source-level path: the AI
// reviewer and the four category detectors run concurrently, and a
// failure on either side never aborts the other. Category detectors
// see a synthetic placeholder transaction since no live transaction
// exists during static review.
func (a *Analyzer) AnalyzeContract(ctx context.Context, address, code, fileName string) (*domain.AnalysisResult, error) {
	placeholder := &domain.Transaction{
		Hash:     "static-analysis",
		Receiver: address,
		Value:    "0",
	}

	var (
		mu         sync.Mutex
		report     *ai.Report
		categories = make([]domain.CategoryResult, len(a.detectors))
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		r, err := a.reviewSource(gctx, address, code)
		if err != nil {
			// No opinion; category detectors still deliver.
			slog.Warn("AI source review unavailable", "contract", address, "error", err)
			return nil
		}
		mu.Lock()
		report = r
		mu.Unlock()
		return nil
	})

	for i, d := range a.detectors {
		g.Go(func() error {
			matched := detect.SafeDetect(d, placeholder, code)
			mu.Lock()
			categories[i] = domain.CategoryResult{
				Category: d.Pattern().Category,
				Matched:  matched,
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &domain.AnalysisResult{
		ID:              uuid.NewString(),
		ContractAddress: address,
		FileName:        fileName,
		Categories:      categories,
		Timestamp:       time.Now(),
	}

	if report != nil {
		result.Summary = report.Summary
		for _, v := range report.Vulnerabilities {
			v.PatternID = MapVulnerabilityPattern(v.Type)
			result.Vulnerabilities = append(result.Vulnerabilities, v)
			result.Anomalies = append(result.Anomalies, domain.AnomalyRecord{
				PatternID:   v.PatternID,
				Type:        v.Type,
				Severity:    v.RiskLevel,
				Score:       score.AnomalySeverityScore(v.RiskLevel),
				Description: v.Explanation,
			})
		}
	}

	// Use the reviewer's score when it provided one; otherwise derive
	// the penalty-down score from the vulnerability list.
	if report != nil && report.RiskScore != nil {
		result.SecurityScore = score.ContractScore(*report.RiskScore)
	} else {
		result.SecurityScore = score.FromVulnerabilities(result.Vulnerabilities, false)
	}
	result.RiskBand = score.BandFor(result.SecurityScore.Score)

	return result, nil
}

// reviewSource calls the AI provider, caching reports by contract
// address and source hash so repeated reviews of unchanged code are
// served locally.
func (a *Analyzer) reviewSource(ctx context.Context, address, code string) (*ai.Report, error) {
	if a.ai == nil {
		return nil, nil
	}

	key := aiCacheKey(address, code)
	if a.cache != nil {
		if blob, ok, err := a.cache.Get(ctx, key); err == nil && ok {
			var cached ai.Report
			if err := json.Unmarshal(blob, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	report, err := a.ai.AnalyzeSource(ctx, address, code)
	if err != nil || report == nil {
		return nil, err
	}

	if a.cache != nil {
		if blob, err := json.Marshal(report); err == nil {
			if err := a.cache.Set(ctx, key, blob, a.aiCacheTTL); err != nil {
				slog.Warn("Failed to cache AI report", "contract", address, "error", err)
			}
		}
	}
	return report, nil
}

func aiCacheKey(address, code string) string {
	sum := sha256.Sum256([]byte(code))
	return fmt.Sprintf("ai:%s:%s", address, hex.EncodeToString(sum[:]))
}

// MapVulnerabilityPattern maps an AI-reported vulnerability type onto
// a known pattern id by case-insensitive keyword match. Types that fit
// no category fall back to the generic pattern.
func MapVulnerabilityPattern(vulnType string) string {
	t := strings.ToLower(vulnType)
	switch {
	case strings.Contains(t, "reentran"):
		return domain.PatternReentrancy
	case strings.Contains(t, "overflow"), strings.Contains(t, "underflow"):
		return domain.PatternOverflow
	case strings.Contains(t, "access control"), strings.Contains(t, "permission"):
		return domain.PatternAccessControl
	case strings.Contains(t, "flash loan"), strings.Contains(t, "price manipulation"):
		return domain.PatternFlashLoan
	default:
		return domain.PatternGeneric
	}
}
