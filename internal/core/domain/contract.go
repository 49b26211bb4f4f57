package domain

import "time"

// Contract is a monitored smart contract. Address uniquely identifies
// one record. Invariant: AlertCount >= HighRiskAlerts >= 0.
type Contract struct {
	Address        string            `json:"address"`
	Name           string            `json:"name,omitempty"`
	AddedAt        time.Time         `json:"added_at"`
	LastAnalyzedAt *time.Time        `json:"last_analyzed_at,omitempty"`
	SecurityScore  *RiskScore        `json:"security_score,omitempty"`
	IsVerified     bool              `json:"is_verified"`
	AlertCount     int               `json:"alert_count"`
	HighRiskAlerts int               `json:"high_risk_alerts"`
	Tags           []string          `json:"tags"`
	Metadata       map[string]string `json:"metadata"`
}
