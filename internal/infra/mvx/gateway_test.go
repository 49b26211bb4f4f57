package mvx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func envelope(data any) map[string]any {
	return map[string]any{"data": data, "error": "", "code": "successful"}
}

func newGatewayServer(t *testing.T, handler http.HandlerFunc) *GatewayClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewGatewayClient(srv.URL, 2*time.Second)
}

func TestGetTransaction(t *testing.T) {
	client := newGatewayServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transaction/abc123" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(envelope(map[string]any{
			"transaction": map[string]any{
				"txHash":   "abc123",
				"sender":   "erd1sender",
				"receiver": "erd1receiver",
				"value":    "5000000000000000000",
				"data":     "d2l0aGRyYXdAMDA=",
			},
		}))
	})

	tx, err := client.GetTransaction(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	if tx == nil || tx.Hash != "abc123" || tx.Value != "5000000000000000000" {
		t.Errorf("unexpected transaction %+v", tx)
	}
}

func TestGetTransactionUnknown(t *testing.T) {
	client := newGatewayServer(t, func(w http.ResponseWriter, r *http.Request) {
		// The gateway reports unknown hashes inside the envelope.
		json.NewEncoder(w).Encode(map[string]any{
			"data":  nil,
			"error": "transaction not found",
			"code":  "internal_issue",
		})
	})

	tx, err := client.GetTransaction(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unknown hash must not be an error: %v", err)
	}
	if tx != nil {
		t.Errorf("expected nil transaction, got %+v", tx)
	}
}

func TestGetAccountCode(t *testing.T) {
	client := newGatewayServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(envelope(map[string]any{
			"account": map[string]any{"code": "fn init() {}"},
		}))
	})

	code, err := client.GetAccountCode(context.Background(), "erd1contract")
	if err != nil {
		t.Fatalf("GetAccountCode: %v", err)
	}
	if code != "fn init() {}" {
		t.Errorf("unexpected code %q", code)
	}
}

func TestLatestTransaction(t *testing.T) {
	client := newGatewayServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(envelope(map[string]any{
			"transactions": []map[string]any{{"hash": "tx-9"}},
		}))
	})

	hash, err := client.LatestTransaction(context.Background(), "erd1contract")
	if err != nil {
		t.Fatalf("LatestTransaction: %v", err)
	}
	if hash != "tx-9" {
		t.Errorf("unexpected hash %q", hash)
	}
}

func TestLatestTransactionNoActivity(t *testing.T) {
	client := newGatewayServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(envelope(map[string]any{
			"transactions": []map[string]any{},
		}))
	})

	hash, err := client.LatestTransaction(context.Background(), "erd1quiet")
	if err != nil {
		t.Fatalf("LatestTransaction: %v", err)
	}
	if hash != "" {
		t.Errorf("expected empty hash, got %q", hash)
	}
}

func TestGetNetworkStatus(t *testing.T) {
	client := newGatewayServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(envelope(map[string]any{
			"config": map[string]any{
				"erd_chain_id":                "1",
				"erd_num_shards_without_meta": 3,
				"erd_min_gas_price":           1000000000,
			},
		}))
	})

	status, err := client.GetNetworkStatus(context.Background())
	if err != nil {
		t.Fatalf("GetNetworkStatus: %v", err)
	}
	if status.ChainID != "1" || status.ShardCount != 3 {
		t.Errorf("unexpected status %+v", status)
	}
}
