package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults if necessary
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Monitor.ScanInterval == 0 {
		cfg.Monitor.ScanInterval = 10 * time.Second
	}
	if cfg.Monitor.HistoryCap == 0 {
		cfg.Monitor.HistoryCap = 1000
	}
	if cfg.Monitor.AnalysisSnapshotCap == 0 {
		cfg.Monitor.AnalysisSnapshotCap = 500
	}
	if cfg.Gateway.URL == "" {
		cfg.Gateway.URL = "https://gateway.multiversx.com"
	}
	if cfg.Gateway.Timeout == 0 {
		cfg.Gateway.Timeout = 10 * time.Second
	}
	if cfg.AI.Timeout == 0 {
		cfg.AI.Timeout = 30 * time.Second
	}
	if cfg.AI.CacheTTL == 0 {
		cfg.AI.CacheTTL = time.Hour
	}

	return &cfg, nil
}
