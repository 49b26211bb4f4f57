package domain

// RiskLevel is the categorical bucket derived from a numeric score.
type RiskLevel string

const (
	RiskLevelNone     RiskLevel = "none"
	RiskLevelLow      RiskLevel = "low"
	RiskLevelMedium   RiskLevel = "medium"
	RiskLevelHigh     RiskLevel = "high"
	RiskLevelCritical RiskLevel = "critical"
	RiskLevelUnknown  RiskLevel = "unknown"
)

// ScoreScheme tags which scoring convention produced a score. The
// transaction path accumulates up from 0; the contract path subtracts
// penalties from 100. The two must never be compared directly.
type ScoreScheme string

const (
	SchemeTransaction ScoreScheme = "transaction"
	SchemeContract    ScoreScheme = "contract"
)

// RiskScore pairs a clamped 0-100 score with its derived level.
// Level is always recomputed from Score, never stored independently.
type RiskScore struct {
	Score  int         `json:"score"`
	Level  RiskLevel   `json:"level"`
	Scheme ScoreScheme `json:"scheme"`
}

// IsHighRisk reports whether the score should count toward a
// contract's high-risk alert tally.
func (r RiskScore) IsHighRisk() bool {
	return r.Level == RiskLevelHigh || r.Level == RiskLevelCritical
}
