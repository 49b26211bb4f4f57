package domain

import "time"

// DetectionResult is the outcome of running all detectors against one
// transaction. It is consumed to build an Alert, never persisted as-is.
type DetectionResult struct {
	ID              string    `json:"id"`
	TransactionHash string    `json:"transaction_hash"`
	ContractAddress string    `json:"contract_address"`
	IsAnomaly       bool      `json:"is_anomaly"`
	MatchedPatterns []Pattern `json:"matched_patterns"`
	RiskScore       RiskScore `json:"risk_score"`
	Timestamp       time.Time `json:"timestamp"`
	Details         string    `json:"details"`
}

// Vulnerability is a single finding from the AI source review,
// normalized at the collaborator boundary.
type Vulnerability struct {
	Type           string   `json:"type"`
	RiskLevel      Severity `json:"risk_level"`
	Location       string   `json:"location,omitempty"`
	Explanation    string   `json:"explanation"`
	Recommendation string   `json:"recommendation"`
	PatternID      string   `json:"pattern_id,omitempty"`
}

// CategoryResult is the outcome of one category detector during a
// contract-level analysis.
type CategoryResult struct {
	Category string `json:"category"`
	Matched  bool   `json:"matched"`
	Error    string `json:"error,omitempty"`
}

// AnomalyRecord carries a severity-derived numeric score for one
// AI-found vulnerability, for downstream alerting.
type AnomalyRecord struct {
	PatternID   string   `json:"pattern_id"`
	Type        string   `json:"type"`
	Severity    Severity `json:"severity"`
	Score       int      `json:"score"`
	Description string   `json:"description"`
}

// AnalysisResult is the outcome of the higher-latency contract-level
// analysis path (AI review plus category detectors).
type AnalysisResult struct {
	ID              string           `json:"id"`
	ContractAddress string           `json:"contract_address"`
	FileName        string           `json:"file_name,omitempty"`
	Vulnerabilities []Vulnerability  `json:"vulnerabilities"`
	Categories      []CategoryResult `json:"categories"`
	Anomalies       []AnomalyRecord  `json:"anomalies"`
	SecurityScore   RiskScore        `json:"security_score"`
	RiskBand        string           `json:"risk_band"`
	Summary         string           `json:"summary,omitempty"`
	Timestamp       time.Time        `json:"timestamp"`
}
