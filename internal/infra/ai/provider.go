// Package ai wraps the external source-review provider. Responses are
// normalized to a strict schema at this boundary; anything malformed
// degrades to "no opinion" instead of leaking loose JSON into the core.
package ai

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/vhoang/mx-sentinel/internal/core/domain"
)

// Report is the normalized outcome of one source review.
type Report struct {
	Vulnerabilities []domain.Vulnerability `json:"vulnerabilities"`
	RiskScore       *int                   `json:"risk_score,omitempty"`
	Summary         string                 `json:"summary,omitempty"`
}

// Provider reviews contract source. A nil report with a nil error is a
// valid "no opinion" response and must be tolerated by callers.
type Provider interface {
	AnalyzeSource(ctx context.Context, address, code string) (*Report, error)
}

// rawReport mirrors the loose JSON shape providers actually emit.
type rawReport struct {
	Vulnerabilities []rawVulnerability `json:"vulnerabilities"`
	RiskScore       *int               `json:"risk_score"`
	Summary         string             `json:"summary"`
}

type rawVulnerability struct {
	Type           string `json:"type"`
	RiskLevel      string `json:"risk_level"`
	Location       string `json:"location"`
	Explanation    string `json:"explanation"`
	Recommendation string `json:"recommendation"`
}

// Normalize validates a raw provider payload against the schema.
// Malformed JSON, or a payload with no usable vulnerability entries
// and no summary, yields nil: no opinion.
func Normalize(payload []byte) *Report {
	var raw rawReport
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil
	}

	report := &Report{
		RiskScore: raw.RiskScore,
		Summary:   strings.TrimSpace(raw.Summary),
	}
	if report.RiskScore != nil {
		s := *report.RiskScore
		if s < 0 || s > 100 {
			report.RiskScore = nil
		}
	}

	for _, v := range raw.Vulnerabilities {
		vulnType := strings.TrimSpace(v.Type)
		if vulnType == "" {
			// Type is required; drop the entry.
			continue
		}
		report.Vulnerabilities = append(report.Vulnerabilities, domain.Vulnerability{
			Type:           vulnType,
			RiskLevel:      normalizeSeverity(v.RiskLevel),
			Location:       strings.TrimSpace(v.Location),
			Explanation:    strings.TrimSpace(v.Explanation),
			Recommendation: strings.TrimSpace(v.Recommendation),
		})
	}

	if len(report.Vulnerabilities) == 0 && report.Summary == "" && report.RiskScore == nil {
		return nil
	}
	return report
}

// normalizeSeverity maps free-form provider severities onto the known
// set, defaulting to medium for unrecognized values.
func normalizeSeverity(s string) domain.Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical":
		return domain.SeverityCritical
	case "high":
		return domain.SeverityHigh
	case "medium", "moderate":
		return domain.SeverityMedium
	case "low", "info", "informational":
		return domain.SeverityLow
	default:
		return domain.SeverityMedium
	}
}
