package config

import (
	"time"

	"github.com/vhoang/mx-sentinel/internal/infra/cache/postgres"
	redisstore "github.com/vhoang/mx-sentinel/internal/infra/cache/redisstore"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig      `yaml:"server"`
	Monitor  MonitorConfig     `yaml:"monitor"`
	Gateway  GatewayConfig     `yaml:"gateway"`
	AI       AIConfig          `yaml:"ai"`
	Redis    redisstore.Config `yaml:"redis"`
	Database postgres.Config   `yaml:"database"`
	Logging  LoggingConfig     `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// MonitorConfig holds transaction polling and analysis settings.
type MonitorConfig struct {
	ScanInterval        time.Duration `yaml:"scan_interval"`
	HistoryCap          int           `yaml:"history_cap"`           // per-contract value history
	AnalysisSnapshotCap int           `yaml:"analysis_snapshot_cap"` // analyses kept per snapshot
}

// GatewayConfig holds MultiversX gateway settings.
type GatewayConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// AIConfig holds the external source-review provider settings.
type AIConfig struct {
	URL      string        `yaml:"url"`
	APIKey   string        `yaml:"api_key"`
	Model    string        `yaml:"model"`
	Timeout  time.Duration `yaml:"timeout"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}
