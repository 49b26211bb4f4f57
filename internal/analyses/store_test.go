package analyses

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/vhoang/mx-sentinel/internal/core/domain"
	"github.com/vhoang/mx-sentinel/internal/infra/cache/memory"
)

func record(address string, score int) *domain.DetectionResult {
	return &domain.DetectionResult{
		ID:              fmt.Sprintf("det-%s-%d", address, score),
		ContractAddress: address,
		RiskScore:       domain.RiskScore{Score: score, Level: domain.RiskLevelLow, Scheme: domain.SchemeTransaction},
		Timestamp:       time.Now(),
	}
}

func TestRecordAndList(t *testing.T) {
	ctx := context.Background()
	s, err := NewStore(ctx, memory.NewMemoryStore(), 10)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	s.Record(ctx, record("erd1aaa", 15))
	s.Record(ctx, record("erd1bbb", 25))
	s.Record(ctx, record("erd1aaa", 45))

	all := s.List("", 0)
	if len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}
	if all[0].RiskScore.Score != 45 {
		t.Errorf("expected newest first, got score %d", all[0].RiskScore.Score)
	}

	filtered := s.List("erd1aaa", 0)
	if len(filtered) != 2 {
		t.Errorf("expected 2 records for erd1aaa, got %d", len(filtered))
	}

	limited := s.List("", 2)
	if len(limited) != 2 {
		t.Errorf("expected limit of 2, got %d", len(limited))
	}
}

func TestRollingEviction(t *testing.T) {
	ctx := context.Background()
	s, err := NewStore(ctx, memory.NewMemoryStore(), 5)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	for i := 0; i < 8; i++ {
		s.Record(ctx, record("erd1aaa", i))
	}

	if s.Len() != 5 {
		t.Fatalf("expected 5 retained records, got %d", s.Len())
	}
	list := s.List("", 0)
	if list[len(list)-1].RiskScore.Score != 3 {
		t.Errorf("oldest retained should be score 3, got %d", list[len(list)-1].RiskScore.Score)
	}
}

func TestSnapshotReload(t *testing.T) {
	ctx := context.Background()
	backend := memory.NewMemoryStore()

	s, err := NewStore(ctx, backend, 5)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	s.Record(ctx, record("erd1aaa", 15))
	s.Record(ctx, record("erd1bbb", 25))

	reloaded, err := NewStore(ctx, backend, 5)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Len() != 2 {
		t.Fatalf("expected 2 reloaded records, got %d", reloaded.Len())
	}

	// A smaller cap on reload keeps only the newest records.
	trimmed, err := NewStore(ctx, backend, 1)
	if err != nil {
		t.Fatalf("trimmed reload: %v", err)
	}
	list := trimmed.List("", 0)
	if len(list) != 1 || list[0].ContractAddress != "erd1bbb" {
		t.Errorf("expected only newest record retained, got %v", list)
	}
}
