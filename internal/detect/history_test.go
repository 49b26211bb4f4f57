package detect

import "testing"

func TestHistory_FIFOEviction(t *testing.T) {
	h := NewHistory(1000)

	for i := 0; i < 1001; i++ {
		h.Observe("erd1contract", float64(i))
	}

	if got := h.Len("erd1contract"); got != 1000 {
		t.Errorf("Expected history length 1000 after 1001 appends, got %d", got)
	}

	// The oldest entry (0) was evicted: the next snapshot starts at 1.
	snapshot := h.Observe("erd1contract", 1001)
	if snapshot[0] != 1 {
		t.Errorf("Expected oldest retained value 1, got %f", snapshot[0])
	}
}

func TestHistory_SnapshotExcludesCurrent(t *testing.T) {
	h := NewHistory(10)

	if prior := h.Observe("addr", 5); len(prior) != 0 {
		t.Errorf("Expected empty prior history, got %d values", len(prior))
	}
	if prior := h.Observe("addr", 7); len(prior) != 1 || prior[0] != 5 {
		t.Errorf("Expected prior history [5], got %v", prior)
	}
}

func TestHistory_PerAddressIsolation(t *testing.T) {
	h := NewHistory(10)
	h.Observe("a", 1)
	h.Observe("b", 2)

	if h.Len("a") != 1 || h.Len("b") != 1 {
		t.Error("Expected per-address histories to be independent")
	}
}
