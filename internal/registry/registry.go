// Package registry tracks monitored contracts. It owns the contract
// table, keeps the poller's watchlist in sync, and snapshots the table
// through the persistence backend on every mutation.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vhoang/mx-sentinel/internal/core/domain"
	"github.com/vhoang/mx-sentinel/internal/infra/cache"
	"github.com/vhoang/mx-sentinel/internal/infra/mvx"
)

// ErrContractNotFound is returned when an address is not registered.
var ErrContractNotFound = errors.New("contract not found")

const snapshotKey = "snapshot:contracts"

// Watchlist is the set of addresses the poller observes. The registry
// registers and unregisters addresses as contracts come and go.
type Watchlist interface {
	Watch(address string)
	Unwatch(address string)
}

// ContractAnalyzer runs the contract-level analysis path.
type ContractAnalyzer interface {
	AnalyzeContract(ctx context.Context, address, code, fileName string) (*domain.AnalysisResult, error)
}

// Registry owns the monitored-contract table.
type Registry struct {
	contracts map[string]*domain.Contract
	order     []string
	backend   cache.Store
	watchlist Watchlist
	provider  mvx.Provider
	analyzer  ContractAnalyzer
	mu        sync.Mutex
}

// New creates a registry, reloading any persisted contract snapshot
// and re-registering every contract with the watchlist.
func New(ctx context.Context, backend cache.Store, watchlist Watchlist, provider mvx.Provider, analyzer ContractAnalyzer) (*Registry, error) {
	r := &Registry{
		contracts: make(map[string]*domain.Contract),
		backend:   backend,
		watchlist: watchlist,
		provider:  provider,
		analyzer:  analyzer,
	}

	blob, ok, err := backend.Get(ctx, snapshotKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load contract snapshot: %w", err)
	}
	if ok {
		var contracts []*domain.Contract
		if err := json.Unmarshal(blob, &contracts); err != nil {
			return nil, fmt.Errorf("corrupt contract snapshot: %w", err)
		}
		for _, c := range contracts {
			c.Address = strings.ToLower(c.Address)
			r.contracts[c.Address] = c
			r.order = append(r.order, c.Address)
			watchlist.Watch(c.Address)
		}
		slog.Info("Loaded contract snapshot", "count", len(contracts))
	}
	return r, nil
}

// Add registers a contract for monitoring. Adding a known address is
// idempotent and returns the existing record unchanged. New contracts
// trigger a first analysis in the background; its failure is logged,
// never surfaced.
//
// Addresses are lowercased on entry so every later lookup, whatever
// casing the caller used, lands on the same record.
func (r *Registry) Add(ctx context.Context, address, name string, tags []string) (*domain.Contract, error) {
	address = strings.ToLower(address)
	r.mu.Lock()
	if existing, ok := r.contracts[address]; ok {
		out := copyContract(existing)
		r.mu.Unlock()
		return out, nil
	}

	contract := &domain.Contract{
		Address:  address,
		Name:     name,
		AddedAt:  time.Now(),
		Tags:     append([]string(nil), tags...),
		Metadata: make(map[string]string),
	}
	r.contracts[address] = contract
	r.order = append(r.order, address)
	r.persistLocked(ctx)
	out := copyContract(contract)
	r.mu.Unlock()

	r.watchlist.Watch(address)
	go r.firstAnalysis(address)

	slog.Info("Registered contract", "address", address, "name", name)
	return out, nil
}

// firstAnalysis runs the initial contract-level analysis for a newly
// added address. Any failure is logged and the contract stays
// registered with no score until the next analysis.
func (r *Registry) firstAnalysis(address string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	code, err := r.provider.GetAccountCode(ctx, address)
	if err != nil {
		slog.Warn("Initial analysis skipped, code fetch failed", "address", address, "error", err)
		return
	}
	result, err := r.analyzer.AnalyzeContract(ctx, address, code, "")
	if err != nil {
		slog.Warn("Initial contract analysis failed", "address", address, "error", err)
		return
	}
	r.UpdateAfterAnalysis(ctx, address, result)
}

// Remove unregisters a contract and stops watching its address.
func (r *Registry) Remove(ctx context.Context, address string) error {
	address = strings.ToLower(address)
	r.mu.Lock()
	if _, ok := r.contracts[address]; !ok {
		r.mu.Unlock()
		return ErrContractNotFound
	}
	delete(r.contracts, address)
	for i, a := range r.order {
		if a == address {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.persistLocked(ctx)
	r.mu.Unlock()

	r.watchlist.Unwatch(address)
	slog.Info("Removed contract", "address", address)
	return nil
}

// UpdateAfterAnalysis records the latest contract-level score. A
// contract removed since the analysis started is silently skipped.
func (r *Registry) UpdateAfterAnalysis(ctx context.Context, address string, result *domain.AnalysisResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.contracts[strings.ToLower(address)]
	if !ok {
		return
	}
	now := time.Now()
	c.LastAnalyzedAt = &now
	score := result.SecurityScore
	c.SecurityScore = &score
	r.persistLocked(ctx)
}

// IncrementAlertCount bumps the contract's alert counters when an
// alert is raised against it. Unknown addresses are ignored; alerts
// can outlive their contract's registration.
func (r *Registry) IncrementAlertCount(ctx context.Context, address string, highRisk bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.contracts[strings.ToLower(address)]
	if !ok {
		return
	}
	c.AlertCount++
	if highRisk {
		c.HighRiskAlerts++
	}
	r.persistLocked(ctx)
}

// MarkAnalyzed stamps the last-analyzed time without changing the
// score, used by the transaction poll path.
func (r *Registry) MarkAnalyzed(ctx context.Context, address string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.contracts[strings.ToLower(address)]
	if !ok {
		return
	}
	now := time.Now()
	c.LastAnalyzedAt = &now
	r.persistLocked(ctx)
}

// Get returns the contract registered at address.
func (r *Registry) Get(address string) (*domain.Contract, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.contracts[strings.ToLower(address)]
	if !ok {
		return nil, ErrContractNotFound
	}
	return copyContract(c), nil
}

// List returns all monitored contracts in registration order.
func (r *Registry) List() []*domain.Contract {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*domain.Contract, 0, len(r.order))
	for _, address := range r.order {
		out = append(out, copyContract(r.contracts[address]))
	}
	return out
}

// Addresses returns the monitored addresses, sorted for determinism.
func (r *Registry) Addresses() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := append([]string(nil), r.order...)
	sort.Strings(out)
	return out
}

func (r *Registry) persistLocked(ctx context.Context) {
	contracts := make([]*domain.Contract, 0, len(r.order))
	for _, address := range r.order {
		contracts = append(contracts, r.contracts[address])
	}

	blob, err := json.Marshal(contracts)
	if err != nil {
		slog.Error("Failed to marshal contract snapshot", "error", err)
		return
	}
	if err := r.backend.Set(ctx, snapshotKey, blob, 0); err != nil {
		slog.Error("Failed to persist contract snapshot", "error", err)
	}
}

func copyContract(c *domain.Contract) *domain.Contract {
	out := *c
	out.Tags = append([]string(nil), c.Tags...)
	if c.Metadata != nil {
		out.Metadata = make(map[string]string, len(c.Metadata))
		for k, v := range c.Metadata {
			out.Metadata[k] = v
		}
	}
	if c.SecurityScore != nil {
		score := *c.SecurityScore
		out.SecurityScore = &score
	}
	if c.LastAnalyzedAt != nil {
		t := *c.LastAnalyzedAt
		out.LastAnalyzedAt = &t
	}
	return &out
}
