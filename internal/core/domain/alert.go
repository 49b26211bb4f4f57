package domain

import "time"

// Alert is a persisted, resolvable record created from a finding with
// at least one matched pattern or an anomaly. Lifecycle is one-way:
// Open -> Resolved.
type Alert struct {
	ID              string    `json:"id"`
	ContractAddress string    `json:"contract_address"`
	TransactionHash string    `json:"transaction_hash"`
	RiskScore       RiskScore `json:"risk_score"`
	Details         string    `json:"details"`
	Timestamp       time.Time `json:"timestamp"`
	PatternIDs      []string  `json:"pattern_ids"`
	Resolved        bool      `json:"resolved"`
	ResolutionNotes string    `json:"resolution_notes,omitempty"`
}

// AlertFilter narrows an alert listing. Nil fields match everything.
type AlertFilter struct {
	ContractAddress string
	Resolved        *bool
	MinRiskScore    *int
}

// AlertStats aggregates the current alert population.
type AlertStats struct {
	Total        int                  `json:"total"`
	Open         int                  `json:"open"`
	ByLevel      map[RiskLevel]int    `json:"by_level"`
	TopContracts []ContractAlertCount `json:"top_contracts"`
	TopPatterns  []PatternOccurrence  `json:"top_patterns"`
}

// ContractAlertCount is one entry of the top-contracts ranking.
type ContractAlertCount struct {
	Address string `json:"address"`
	Count   int    `json:"count"`
}

// PatternOccurrence is one entry of the top-patterns ranking.
type PatternOccurrence struct {
	PatternID string `json:"pattern_id"`
	Count     int    `json:"count"`
}
