package mvx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/vhoang/mx-sentinel/internal/core/domain"
	"github.com/vhoang/mx-sentinel/internal/monitoring"
)

const (
	// Gateway hiccups get a fixed-backoff retry before the caller
	// gives up for the cycle.
	retryAttempts = 3
	retryDelay    = 2 * time.Second
)

// GatewayClient implements Provider against the MultiversX gateway
// REST API.
type GatewayClient struct {
	baseURL string
	client  *http.Client
}

// NewGatewayClient creates a gateway client.
func NewGatewayClient(baseURL string, timeout time.Duration) *GatewayClient {
	return &GatewayClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// gatewayResponse is the envelope every gateway endpoint returns.
type gatewayResponse struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
	Code  string          `json:"code"`
}

type gatewayTransaction struct {
	Hash      string `json:"hash"`
	TxHash    string `json:"txHash"`
	Sender    string `json:"sender"`
	Receiver  string `json:"receiver"`
	Value     string `json:"value"`
	Data      string `json:"data"`
	GasLimit  uint64 `json:"gasLimit"`
	GasPrice  uint64 `json:"gasPrice"`
	Timestamp uint64 `json:"timestamp"`
}

func (t *gatewayTransaction) toDomain() *domain.Transaction {
	hash := t.Hash
	if hash == "" {
		hash = t.TxHash
	}
	return &domain.Transaction{
		Hash:      hash,
		Sender:    t.Sender,
		Receiver:  t.Receiver,
		Value:     t.Value,
		Data:      []byte(t.Data),
		GasLimit:  t.GasLimit,
		GasPrice:  t.GasPrice,
		Timestamp: t.Timestamp,
	}
}

// GetTransaction fetches a transaction by hash. An unknown hash is
// reported as (nil, nil).
func (c *GatewayClient) GetTransaction(ctx context.Context, hash string) (*domain.Transaction, error) {
	var payload struct {
		Transaction gatewayTransaction `json:"transaction"`
	}
	found, err := c.get(ctx, "/transaction/"+hash, &payload)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return payload.Transaction.toDomain(), nil
}

// GetAccountCode returns the code deployed at an address, "" if none.
func (c *GatewayClient) GetAccountCode(ctx context.Context, address string) (string, error) {
	var payload struct {
		Account struct {
			Code string `json:"code"`
		} `json:"account"`
	}
	found, err := c.get(ctx, "/address/"+address, &payload)
	if err != nil {
		return "", err
	}
	if !found {
		return "", nil
	}
	return payload.Account.Code, nil
}

// GetNetworkStatus returns chain metadata from the network config.
func (c *GatewayClient) GetNetworkStatus(ctx context.Context) (*NetworkStatus, error) {
	var payload struct {
		Config struct {
			ChainID     string `json:"erd_chain_id"`
			ShardCount  uint32 `json:"erd_num_shards_without_meta"`
			MinGasPrice uint64 `json:"erd_min_gas_price"`
		} `json:"config"`
	}
	found, err := c.get(ctx, "/network/config", &payload)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("gateway returned no network config")
	}
	return &NetworkStatus{
		ChainID:     payload.Config.ChainID,
		ShardCount:  payload.Config.ShardCount,
		MinGasPrice: payload.Config.MinGasPrice,
	}, nil
}

// LatestTransaction returns the most recent transaction hash for an
// address, "" when the address has no recorded activity.
func (c *GatewayClient) LatestTransaction(ctx context.Context, address string) (string, error) {
	var payload struct {
		Transactions []gatewayTransaction `json:"transactions"`
	}
	found, err := c.get(ctx, "/address/"+address+"/transactions?size=1", &payload)
	if err != nil {
		return "", err
	}
	if !found || len(payload.Transactions) == 0 {
		return "", nil
	}
	tx := payload.Transactions[0]
	if tx.Hash != "" {
		return tx.Hash, nil
	}
	return tx.TxHash, nil
}

// get performs a GET with bounded fixed-backoff retry and unwraps the
// gateway envelope into out. It returns found=false for a 404 or an
// explicit gateway error body.
func (c *GatewayClient) get(ctx context.Context, path string, out any) (found bool, err error) {
	backoff := retry.WithMaxRetries(retryAttempts-1, retry.NewConstant(retryDelay))

	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if reqErr != nil {
			return reqErr
		}

		monitoring.GatewayCallsTotal.WithLabelValues(path).Inc()
		resp, doErr := c.client.Do(req)
		if doErr != nil {
			monitoring.GatewayErrorsTotal.WithLabelValues("network").Inc()
			return retry.RetryableError(doErr)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			found = false
			return nil
		}
		if resp.StatusCode >= 500 {
			monitoring.GatewayErrorsTotal.WithLabelValues("server").Inc()
			return retry.RetryableError(fmt.Errorf("gateway returned %d", resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			monitoring.GatewayErrorsTotal.WithLabelValues("client").Inc()
			return fmt.Errorf("gateway returned %d", resp.StatusCode)
		}

		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return retry.RetryableError(readErr)
		}

		var envelope gatewayResponse
		if jsonErr := json.Unmarshal(body, &envelope); jsonErr != nil {
			return fmt.Errorf("malformed gateway response: %w", jsonErr)
		}
		if envelope.Error != "" {
			// The gateway reports unknown entities as an error body;
			// treat that as absence, not failure.
			found = false
			return nil
		}
		if jsonErr := json.Unmarshal(envelope.Data, out); jsonErr != nil {
			return fmt.Errorf("malformed gateway data: %w", jsonErr)
		}
		found = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("gateway request %s failed: %w", path, err)
	}
	return found, nil
}
