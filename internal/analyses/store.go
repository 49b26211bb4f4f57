// Package analyses keeps a rolling history of per-transaction
// findings so recent activity stays queryable across restarts.
package analyses

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vhoang/mx-sentinel/internal/core/domain"
	"github.com/vhoang/mx-sentinel/internal/infra/cache"
)

const snapshotKey = "snapshot:analyses"

// DefaultCap bounds the retained history when no cap is configured.
const DefaultCap = 500

// Store holds the most recent detection results, oldest evicted first.
type Store struct {
	records []*domain.DetectionResult
	cap     int
	backend cache.Store
	mu      sync.Mutex
}

// NewStore creates an analysis history store, reloading any persisted
// snapshot. Reloaded records beyond the cap are dropped oldest-first.
func NewStore(ctx context.Context, backend cache.Store, capacity int) (*Store, error) {
	if capacity <= 0 {
		capacity = DefaultCap
	}
	s := &Store{cap: capacity, backend: backend}

	blob, ok, err := backend.Get(ctx, snapshotKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load analysis snapshot: %w", err)
	}
	if ok {
		var records []*domain.DetectionResult
		if err := json.Unmarshal(blob, &records); err != nil {
			return nil, fmt.Errorf("corrupt analysis snapshot: %w", err)
		}
		if len(records) > capacity {
			records = records[len(records)-capacity:]
		}
		s.records = records
		slog.Info("Loaded analysis snapshot", "count", len(records))
	}
	return s, nil
}

// Record appends a finding, evicting the oldest past the cap, and
// writes the snapshot through.
func (s *Store) Record(ctx context.Context, result *domain.DetectionResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, result)
	if len(s.records) > s.cap {
		s.records = s.records[len(s.records)-s.cap:]
	}
	s.persistLocked(ctx)
}

// List returns up to limit findings, newest first. An empty address
// matches everything; limit <= 0 means no limit.
func (s *Store) List(address string, limit int) []*domain.DetectionResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.DetectionResult, 0, len(s.records))
	for i := len(s.records) - 1; i >= 0; i-- {
		r := s.records[i]
		if address != "" && r.ContractAddress != address {
			continue
		}
		copied := *r
		out = append(out, &copied)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// Len reports the number of retained findings.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func (s *Store) persistLocked(ctx context.Context) {
	blob, err := json.Marshal(s.records)
	if err != nil {
		slog.Error("Failed to marshal analysis snapshot", "error", err)
		return
	}
	if err := s.backend.Set(ctx, snapshotKey, blob, 0); err != nil {
		slog.Error("Failed to persist analysis snapshot", "error", err)
	}
}
