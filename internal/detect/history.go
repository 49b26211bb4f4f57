package detect

import "sync"

// History keeps a bounded FIFO of recent transaction values per
// contract address, feeding the anomaly statistics. It is rebuilt from
// observed traffic and never persisted.
type History struct {
	cap    int
	values map[string][]float64
	mu     sync.Mutex
}

// NewHistory creates a history retaining up to cap values per address.
func NewHistory(cap int) *History {
	if cap <= 0 {
		cap = 1000
	}
	return &History{
		cap:    cap,
		values: make(map[string][]float64),
	}
}

// Observe returns a copy of the history recorded BEFORE this value,
// then appends the value, evicting the oldest entry beyond the cap.
// Snapshot and append happen under one lock, so concurrent observers
// of the same address serialize and each anomaly check judges a value
// against exactly the observations that preceded it.
func (h *History) Observe(address string, value float64) []float64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	prior := h.values[address]
	out := make([]float64, len(prior))
	copy(out, prior)

	vals := append(prior, value)
	if len(vals) > h.cap {
		vals = vals[len(vals)-h.cap:]
	}
	h.values[address] = vals

	return out
}

// Len returns the number of retained values for the address.
func (h *History) Len(address string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.values[address])
}
