// Package score turns detector output into risk scores. Two scoring
// conventions coexist and must not be conflated: the transaction path
// accumulates severity weights up from 0, the contract path subtracts
// severity penalties down from 100. Results are tagged with the scheme
// that produced them.
package score

import "github.com/vhoang/mx-sentinel/internal/core/domain"

// Transaction-level severity weights, summed and clamped to 100.
var transactionWeights = map[domain.Severity]int{
	domain.SeverityCritical: 25,
	domain.SeverityHigh:     15,
	domain.SeverityMedium:   10,
	domain.SeverityLow:      5,
}

// Contract-level severity penalties, subtracted from 100.
var contractPenalties = map[domain.Severity]int{
	domain.SeverityCritical: 30,
	domain.SeverityHigh:     15,
	domain.SeverityMedium:   7,
	domain.SeverityLow:      3,
}

// Severity scores attached to per-vulnerability anomaly records.
var anomalySeverityScores = map[domain.Severity]int{
	domain.SeverityCritical: 10,
	domain.SeverityHigh:     7,
	domain.SeverityMedium:   4,
	domain.SeverityLow:      1,
}

const anomalyWeight = 20

// FromPatterns computes the transaction-level risk score: severity
// weights summed, +20 for an anomaly, clamped to 0..100.
func FromPatterns(matched []domain.Pattern, isAnomaly bool) domain.RiskScore {
	total := 0
	for _, p := range matched {
		total += transactionWeights[p.Severity]
	}
	if isAnomaly {
		total += anomalyWeight
	}
	total = clamp(total)

	return domain.RiskScore{
		Score:  total,
		Level:  LevelFor(total),
		Scheme: domain.SchemeTransaction,
	}
}

// FromVulnerabilities computes the contract-level security score:
// severity penalties subtracted from 100, a further -20 for an
// anomaly, floored at 0.
func FromVulnerabilities(vulns []domain.Vulnerability, isAnomaly bool) domain.RiskScore {
	total := 100
	for _, v := range vulns {
		total -= contractPenalties[v.RiskLevel]
	}
	if isAnomaly {
		total -= anomalyWeight
	}
	total = clamp(total)

	return domain.RiskScore{
		Score:  total,
		Level:  LevelFor(total),
		Scheme: domain.SchemeContract,
	}
}

// ContractScore wraps a raw contract-level score (e.g. one reported by
// the AI reviewer) in the tagged type.
func ContractScore(raw int) domain.RiskScore {
	raw = clamp(raw)
	return domain.RiskScore{
		Score:  raw,
		Level:  LevelFor(raw),
		Scheme: domain.SchemeContract,
	}
}

// Degraded is the fail-safe score used when an analysis could not run:
// zero with the level "unknown".
func Degraded() domain.RiskScore {
	return domain.RiskScore{
		Score:  0,
		Level:  domain.RiskLevelUnknown,
		Scheme: domain.SchemeTransaction,
	}
}

// LevelFor derives the categorical level from a 0-100 score. Level is
// a pure function of score so the two can never desync.
func LevelFor(score int) domain.RiskLevel {
	switch {
	case score >= 75:
		return domain.RiskLevelCritical
	case score >= 50:
		return domain.RiskLevelHigh
	case score >= 25:
		return domain.RiskLevelMedium
	case score > 0:
		return domain.RiskLevelLow
	default:
		return domain.RiskLevelNone
	}
}

// Contract-level risk bands reported alongside the security score.
const (
	BandLowRisk      = "Low Risk"
	BandModerateRisk = "Moderate Risk"
	BandHighRisk     = "High Risk"
	BandCriticalRisk = "Critical Risk"
)

// BandFor buckets a contract security score: high scores are safe.
func BandFor(score int) string {
	switch {
	case score >= 90:
		return BandLowRisk
	case score >= 70:
		return BandModerateRisk
	case score >= 40:
		return BandHighRisk
	default:
		return BandCriticalRisk
	}
}

// AnomalySeverityScore maps a vulnerability severity to the numeric
// score carried by its anomaly record.
func AnomalySeverityScore(sev domain.Severity) int {
	if s, ok := anomalySeverityScores[sev]; ok {
		return s
	}
	return anomalySeverityScores[domain.SeverityLow]
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
