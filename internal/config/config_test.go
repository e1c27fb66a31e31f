package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Strategy.TopN != 10 {
		t.Errorf("expected top_n=10, got %d", cfg.Strategy.TopN)
	}
	if cfg.Strategy.LookbackMonths != 12 {
		t.Errorf("expected lookback_months=12, got %d", cfg.Strategy.LookbackMonths)
	}
	if cfg.Strategy.MinCoverage != 0.8 {
		t.Errorf("expected min_coverage=0.8, got %f", cfg.Strategy.MinCoverage)
	}
	if cfg.Strategy.RiskFreeRate != 0.04 {
		t.Errorf("expected risk_free_rate=0.04, got %f", cfg.Strategy.RiskFreeRate)
	}
	if cfg.API.Port != 8080 {
		t.Errorf("expected api.port=8080, got %d", cfg.API.Port)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected logging.level=info, got %s", cfg.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	yaml := `
strategy:
  top_n: 5
  commission_pct: 0.002
data:
  cache_path: ""
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	if cfg.Strategy.TopN != 5 {
		t.Errorf("expected top_n=5, got %d", cfg.Strategy.TopN)
	}
	if cfg.Strategy.CommissionPct != 0.002 {
		t.Errorf("expected commission_pct=0.002, got %f", cfg.Strategy.CommissionPct)
	}
	if cfg.Data.CachePath != "" {
		t.Errorf("expected empty cache_path, got %q", cfg.Data.CachePath)
	}
	// Values absent from the file keep their defaults.
	if cfg.Strategy.LookbackMonths != 12 {
		t.Errorf("expected default lookback_months=12, got %d", cfg.Strategy.LookbackMonths)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if _, err := LoadFromFile("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name string
		cfg  LoggingConfig
	}{
		{"console info", LoggingConfig{Level: "info", Format: "console"}},
		{"json debug", LoggingConfig{Level: "debug", Format: "json"}},
		{"unknown level falls back", LoggingConfig{Level: "chatty"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.cfg)
			if err != nil {
				t.Fatalf("NewLogger: %v", err)
			}
			if logger == nil {
				t.Fatal("NewLogger returned nil")
			}
		})
	}
}
