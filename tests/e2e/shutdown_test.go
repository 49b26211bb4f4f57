package e2e

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/vhoang/mx-sentinel/internal/control"
	"github.com/vhoang/mx-sentinel/internal/core/config"
)

func TestGracefulShutdown(t *testing.T) {
	gateway := fakeGateway(t)
	defer gateway.Close()

	const port = 18754
	cfg := config.AppConfig{
		Server:  config.ServerConfig{Port: port},
		Monitor: config.MonitorConfig{ScanInterval: 50 * time.Millisecond, HistoryCap: 100, AnalysisSnapshotCap: 100},
		Gateway: config.GatewayConfig{URL: gateway.URL, Timeout: 2 * time.Second},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := control.NewMonitor(ctx, cfg)
	if err != nil {
		t.Fatalf("NewMonitor: %v", err)
	}
	if err := app.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// Wait for the API server to come up, then probe it.
	var resp *http.Response
	deadline := time.Now().Add(3 * time.Second)
	for {
		resp, err = http.Get(fmt.Sprintf("http://localhost:%d/health", port))
		if err == nil || time.Now().After(deadline) {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("health endpoint never came up: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health returned %d", resp.StatusCode)
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	done := make(chan error, 1)
	go func() { done <- app.Stop(shutdownCtx) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Stop: %v", err)
		}
	case <-time.After(12 * time.Second):
		t.Fatal("shutdown timed out")
	}
}
