// Package mvx provides access to MultiversX chain data. The core only
// depends on the Provider interface; the gateway client is one
// implementation.
package mvx

import (
	"context"

	"github.com/vhoang/mx-sentinel/internal/core/domain"
)

// NetworkStatus is the subset of chain metadata the monitor reports.
type NetworkStatus struct {
	ChainID     string `json:"chain_id"`
	ShardCount  uint32 `json:"shard_count"`
	MinGasPrice uint64 `json:"min_gas_price"`
}

// Provider reads chain data. Absence (unknown transaction, address
// without code or activity) is reported as a zero value with a nil
// error, never as an error.
type Provider interface {
	// GetTransaction fetches a transaction by hash; nil when unknown.
	GetTransaction(ctx context.Context, hash string) (*domain.Transaction, error)

	// GetAccountCode returns the deployed source/bytecode for an
	// address, or "" when the account carries none.
	GetAccountCode(ctx context.Context, address string) (string, error)

	// GetNetworkStatus returns chain metadata.
	GetNetworkStatus(ctx context.Context) (*NetworkStatus, error)

	// LatestTransaction returns the hash of the most recent
	// transaction involving the address, or "" when there is none.
	LatestTransaction(ctx context.Context, address string) (string, error)
}
