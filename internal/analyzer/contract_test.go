package analyzer

import (
	"context"
	"errors"
	"testing"

	"github.com/vhoang/mx-sentinel/internal/core/domain"
	"github.com/vhoang/mx-sentinel/internal/infra/ai"
	"github.com/vhoang/mx-sentinel/internal/infra/cache/memory"
)

type mockAI struct {
	report *ai.Report
	err    error
	calls  int
}

func (m *mockAI) AnalyzeSource(ctx context.Context, address, code string) (*ai.Report, error) {
	m.calls++
	return m.report, m.err
}

func intPtr(v int) *int { return &v }

func TestAnalyzeContract_MapsVulnerabilities(t *testing.T) {
	provider := &mockAI{
		report: &ai.Report{
			Vulnerabilities: []domain.Vulnerability{
				{Type: "Reentrancy attack", RiskLevel: domain.SeverityCritical},
				{Type: "Integer Overflow in mint", RiskLevel: domain.SeverityHigh},
				{Type: "Broken permission model", RiskLevel: domain.SeverityMedium},
				{Type: "Price manipulation via flash loan", RiskLevel: domain.SeverityCritical},
				{Type: "Unbounded loop", RiskLevel: domain.SeverityLow},
			},
			Summary: "five findings",
		},
	}
	a := New(Config{HistoryCap: 100}, provider, memory.NewMemoryStore())

	result, err := a.AnalyzeContract(context.Background(), "erd1c", "fn main() {}", "lib.rs")
	if err != nil {
		t.Fatalf("AnalyzeContract failed: %v", err)
	}

	wantPatterns := []string{
		domain.PatternReentrancy,
		domain.PatternOverflow,
		domain.PatternAccessControl,
		domain.PatternFlashLoan,
		domain.PatternGeneric,
	}
	if len(result.Vulnerabilities) != len(wantPatterns) {
		t.Fatalf("Expected %d vulnerabilities, got %d", len(wantPatterns), len(result.Vulnerabilities))
	}
	for i, want := range wantPatterns {
		if result.Vulnerabilities[i].PatternID != want {
			t.Errorf("Vulnerability %d mapped to %s, want %s", i, result.Vulnerabilities[i].PatternID, want)
		}
	}

	// One anomaly record per vulnerability, severity-scored.
	if len(result.Anomalies) != 5 {
		t.Fatalf("Expected 5 anomaly records, got %d", len(result.Anomalies))
	}
	if result.Anomalies[0].Score != 10 {
		t.Errorf("Expected critical anomaly score 10, got %d", result.Anomalies[0].Score)
	}
	if result.Anomalies[4].Score != 1 {
		t.Errorf("Expected low anomaly score 1, got %d", result.Anomalies[4].Score)
	}

	// Penalty scheme: 100 - 30 - 15 - 7 - 30 - 3 = 15 => Critical Risk band.
	if result.SecurityScore.Score != 15 {
		t.Errorf("Expected security score 15, got %d", result.SecurityScore.Score)
	}
	if result.SecurityScore.Scheme != domain.SchemeContract {
		t.Errorf("Expected contract scheme, got %s", result.SecurityScore.Scheme)
	}
	if result.RiskBand != "Critical Risk" {
		t.Errorf("Expected Critical Risk band, got %s", result.RiskBand)
	}
}

func TestAnalyzeContract_UsesProviderScore(t *testing.T) {
	provider := &mockAI{report: &ai.Report{RiskScore: intPtr(92), Summary: "clean"}}
	a := New(Config{HistoryCap: 100}, provider, memory.NewMemoryStore())

	result, err := a.AnalyzeContract(context.Background(), "erd1c", "fn main() {}", "")
	if err != nil {
		t.Fatalf("AnalyzeContract failed: %v", err)
	}
	if result.SecurityScore.Score != 92 {
		t.Errorf("Expected provider score 92, got %d", result.SecurityScore.Score)
	}
	if result.RiskBand != "Low Risk" {
		t.Errorf("Expected Low Risk band, got %s", result.RiskBand)
	}
}

func TestAnalyzeContract_AIFailureTolerated(t *testing.T) {
	provider := &mockAI{err: errors.New("provider down")}
	a := New(Config{HistoryCap: 100}, provider, memory.NewMemoryStore())

	code := `
fn withdraw(&self) {
    self.send().direct_egld(&caller, &amount);
}
`
	result, err := a.AnalyzeContract(context.Background(), "erd1c", code, "")
	if err != nil {
		t.Fatalf("Expected AI failure to be tolerated, got %v", err)
	}

	// Category detectors still ran.
	if len(result.Categories) != 4 {
		t.Fatalf("Expected 4 category results, got %d", len(result.Categories))
	}
	matchedAccessControl := false
	for _, c := range result.Categories {
		if c.Category == "access-control" && c.Matched {
			matchedAccessControl = true
		}
	}
	if !matchedAccessControl {
		t.Error("Expected access-control category to match the unprotected withdraw")
	}

	// No AI opinion: empty vulnerability list scores 100.
	if result.SecurityScore.Score != 100 {
		t.Errorf("Expected score 100 without findings, got %d", result.SecurityScore.Score)
	}
}

func TestAnalyzeContract_CachesReport(t *testing.T) {
	provider := &mockAI{report: &ai.Report{Summary: "cached", RiskScore: intPtr(80)}}
	a := New(Config{HistoryCap: 100}, provider, memory.NewMemoryStore())
	ctx := context.Background()

	if _, err := a.AnalyzeContract(ctx, "erd1c", "fn main() {}", ""); err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	if _, err := a.AnalyzeContract(ctx, "erd1c", "fn main() {}", ""); err != nil {
		t.Fatalf("second call failed: %v", err)
	}

	if provider.calls != 1 {
		t.Errorf("Expected 1 provider call for unchanged code, got %d", provider.calls)
	}

	// Changed source misses the cache.
	if _, err := a.AnalyzeContract(ctx, "erd1c", "fn main() { changed }", ""); err != nil {
		t.Fatalf("third call failed: %v", err)
	}
	if provider.calls != 2 {
		t.Errorf("Expected 2 provider calls after source change, got %d", provider.calls)
	}
}

func TestMapVulnerabilityPattern(t *testing.T) {
	cases := []struct {
		vulnType string
		want     string
	}{
		{"REENTRANCY", domain.PatternReentrancy},
		{"integer underflow", domain.PatternOverflow},
		{"missing access control", domain.PatternAccessControl},
		{"flash loan exposure", domain.PatternFlashLoan},
		{"price manipulation", domain.PatternFlashLoan},
		{"something else", domain.PatternGeneric},
	}
	for _, c := range cases {
		if got := MapVulnerabilityPattern(c.vulnType); got != c.want {
			t.Errorf("MapVulnerabilityPattern(%q) = %s, want %s", c.vulnType, got, c.want)
		}
	}
}
