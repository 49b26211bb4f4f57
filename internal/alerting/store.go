// Package alerting persists findings as resolvable alerts. The
// in-memory table is authoritative for the process lifetime; every
// mutation writes a full snapshot through to the configured backend so
// alerts survive restarts.
package alerting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/vhoang/mx-sentinel/internal/core/domain"
	"github.com/vhoang/mx-sentinel/internal/infra/cache"
	"github.com/vhoang/mx-sentinel/internal/monitoring"
)

// ErrAlertNotFound is returned when an alert id is unknown.
var ErrAlertNotFound = errors.New("alert not found")

const snapshotKey = "snapshot:alerts"

const topListSize = 5

// Store owns the alert table. All mutation goes through one mutex so
// id generation and snapshot writes never interleave.
type Store struct {
	alerts  map[string]*domain.Alert
	order   []string // insertion order, drives tie-breaks
	nextSeq int64
	backend cache.Store
	mu      sync.Mutex
}

// NewStore creates an alert store, reloading any persisted snapshot
// and recomputing the id counter from the highest numeric suffix.
func NewStore(ctx context.Context, backend cache.Store) (*Store, error) {
	s := &Store{
		alerts:  make(map[string]*domain.Alert),
		nextSeq: 1,
		backend: backend,
	}

	blob, ok, err := backend.Get(ctx, snapshotKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load alert snapshot: %w", err)
	}
	if !ok {
		return s, nil
	}

	var alerts []*domain.Alert
	if err := json.Unmarshal(blob, &alerts); err != nil {
		return nil, fmt.Errorf("corrupt alert snapshot: %w", err)
	}
	for _, a := range alerts {
		s.alerts[a.ID] = a
		s.order = append(s.order, a.ID)
		if seq, ok := sequenceOf(a.ID); ok && seq >= s.nextSeq {
			s.nextSeq = seq + 1
		}
	}
	slog.Info("Loaded alert snapshot", "count", len(alerts), "next_seq", s.nextSeq)
	return s, nil
}

// sequenceOf extracts the numeric sequence suffix of an alert id.
func sequenceOf(id string) (int64, bool) {
	idx := strings.LastIndexByte(id, '-')
	if idx < 0 {
		return 0, false
	}
	seq, err := strconv.ParseInt(id[idx+1:], 10, 64)
	if err != nil {
		return 0, false
	}
	return seq, true
}

// CreateFromFinding raises an alert for a finding with at least one
// matched pattern or an anomaly. Clean findings create nothing and
// return (nil, false).
func (s *Store) CreateFromFinding(ctx context.Context, finding *domain.DetectionResult) (*domain.Alert, bool) {
	if len(finding.MatchedPatterns) == 0 && !finding.IsAnomaly {
		return nil, false
	}

	patternIDs := make([]string, 0, len(finding.MatchedPatterns))
	for _, p := range finding.MatchedPatterns {
		patternIDs = append(patternIDs, p.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	alert := &domain.Alert{
		ID:              fmt.Sprintf("alert-%d-%d", time.Now().Unix(), s.nextSeq),
		ContractAddress: finding.ContractAddress,
		TransactionHash: finding.TransactionHash,
		RiskScore:       finding.RiskScore,
		Details:         finding.Details,
		Timestamp:       finding.Timestamp,
		PatternIDs:      patternIDs,
	}
	s.nextSeq++
	s.alerts[alert.ID] = alert
	s.order = append(s.order, alert.ID)

	monitoring.AlertsRaisedTotal.WithLabelValues(string(alert.RiskScore.Level)).Inc()
	s.persistLocked(ctx)

	return copyAlert(alert), true
}

// List returns alerts matching the filter, newest first. Equal
// timestamps keep most-recently-created first.
func (s *Store) List(filter domain.AlertFilter) []*domain.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.Alert, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		a := s.alerts[s.order[i]]
		if filter.ContractAddress != "" && a.ContractAddress != filter.ContractAddress {
			continue
		}
		if filter.Resolved != nil && a.Resolved != *filter.Resolved {
			continue
		}
		if filter.MinRiskScore != nil && a.RiskScore.Score < *filter.MinRiskScore {
			continue
		}
		out = append(out, copyAlert(a))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

// Get returns the alert with the given id.
func (s *Store) Get(id string) (*domain.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.alerts[id]
	if !ok {
		return nil, ErrAlertNotFound
	}
	return copyAlert(a), nil
}

// Resolve marks an alert resolved and records the notes. Resolving an
// already-resolved alert updates the notes and stays resolved; an
// unknown id reports ErrAlertNotFound and changes nothing.
func (s *Store) Resolve(ctx context.Context, id, notes string) (*domain.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.alerts[id]
	if !ok {
		return nil, ErrAlertNotFound
	}

	a.Resolved = true
	if notes != "" {
		a.ResolutionNotes = notes
	}
	s.persistLocked(ctx)

	return copyAlert(a), nil
}

// Stats aggregates the alert population: counts per risk level and
// the top five contracts and patterns by alert count, ties broken by
// insertion order.
func (s *Store) Stats() domain.AlertStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := domain.AlertStats{
		Total:   len(s.alerts),
		ByLevel: make(map[domain.RiskLevel]int),
	}

	contractCounts := make(map[string]int)
	contractFirst := make(map[string]int)
	patternCounts := make(map[string]int)
	patternFirst := make(map[string]int)

	for i, id := range s.order {
		a := s.alerts[id]
		stats.ByLevel[a.RiskScore.Level]++
		if !a.Resolved {
			stats.Open++
		}

		if _, seen := contractCounts[a.ContractAddress]; !seen {
			contractFirst[a.ContractAddress] = i
		}
		contractCounts[a.ContractAddress]++

		for _, pid := range a.PatternIDs {
			if _, seen := patternCounts[pid]; !seen {
				patternFirst[pid] = len(patternFirst)
			}
			patternCounts[pid]++
		}
	}

	for addr, count := range contractCounts {
		stats.TopContracts = append(stats.TopContracts, domain.ContractAlertCount{Address: addr, Count: count})
	}
	sort.SliceStable(stats.TopContracts, func(i, j int) bool {
		a, b := stats.TopContracts[i], stats.TopContracts[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return contractFirst[a.Address] < contractFirst[b.Address]
	})
	if len(stats.TopContracts) > topListSize {
		stats.TopContracts = stats.TopContracts[:topListSize]
	}

	for pid, count := range patternCounts {
		stats.TopPatterns = append(stats.TopPatterns, domain.PatternOccurrence{PatternID: pid, Count: count})
	}
	sort.SliceStable(stats.TopPatterns, func(i, j int) bool {
		a, b := stats.TopPatterns[i], stats.TopPatterns[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return patternFirst[a.PatternID] < patternFirst[b.PatternID]
	})
	if len(stats.TopPatterns) > topListSize {
		stats.TopPatterns = stats.TopPatterns[:topListSize]
	}

	return stats
}

// persistLocked writes the full snapshot through to the backend. A
// write failure is logged; in-memory state stays authoritative for
// this process, at the risk of losing the delta on restart.
func (s *Store) persistLocked(ctx context.Context) {
	alerts := make([]*domain.Alert, 0, len(s.order))
	for _, id := range s.order {
		alerts = append(alerts, s.alerts[id])
	}

	blob, err := json.Marshal(alerts)
	if err != nil {
		slog.Error("Failed to marshal alert snapshot", "error", err)
		return
	}
	if err := s.backend.Set(ctx, snapshotKey, blob, 0); err != nil {
		slog.Error("Failed to persist alert snapshot", "error", err)
	}
}

func copyAlert(a *domain.Alert) *domain.Alert {
	out := *a
	out.PatternIDs = append([]string(nil), a.PatternIDs...)
	return &out
}
