// Package poll watches monitored contract addresses for new
// transactions at a fixed interval and feeds them to the analyzer.
package poll

import (
	"strings"
	"sync"
)

// Watchlist is the in-memory set of monitored addresses, shared
// between the registry (which mutates it) and the poller (which
// iterates it).
type Watchlist struct {
	addresses map[string]struct{}
	mu        sync.RWMutex
}

// NewWatchlist creates an empty watchlist.
func NewWatchlist() *Watchlist {
	return &Watchlist{
		addresses: make(map[string]struct{}),
	}
}

// Watch adds an address to the set.
func (w *Watchlist) Watch(address string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.addresses[strings.ToLower(address)] = struct{}{}
}

// Unwatch removes an address from the set.
func (w *Watchlist) Unwatch(address string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.addresses, strings.ToLower(address))
}

// Contains checks if an address is watched.
func (w *Watchlist) Contains(address string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, exists := w.addresses[strings.ToLower(address)]
	return exists
}

// Size returns the number of watched addresses.
func (w *Watchlist) Size() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.addresses)
}

// Addresses returns all watched addresses.
func (w *Watchlist) Addresses() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	result := make([]string, 0, len(w.addresses))
	for addr := range w.addresses {
		result = append(result, addr)
	}
	return result
}
