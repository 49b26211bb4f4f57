package domain

// Severity classifies how dangerous a vulnerability pattern is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Pattern describes a named vulnerability heuristic. Detection logic
// lives in the detect package; Pattern carries the static identity and
// severity that scoring and alerting attach to a match.
type Pattern struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	Category    string   `json:"category"`
}

// Known pattern ids, defined once at startup.
const (
	PatternReentrancy    = "reentrancy"
	PatternOverflow      = "integer-overflow"
	PatternAccessControl = "access-control"
	PatternFlashLoan     = "flash-loan"
	// PatternGeneric is the fallback for AI findings that fit no
	// known category.
	PatternGeneric = "generic-vulnerability"
)
