// Package config handles configuration loading for the momentum
// backtester. It supports YAML config files with environment variable
// overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Strategy StrategyConfig `mapstructure:"strategy" yaml:"strategy"`
	Data     DataConfig     `mapstructure:"data"     yaml:"data"`
	API      APIConfig      `mapstructure:"api"      yaml:"api"`
	Logging  LoggingConfig  `mapstructure:"logging"  yaml:"logging"`
}

// StrategyConfig holds the momentum strategy parameters.
type StrategyConfig struct {
	TopN           int     `mapstructure:"top_n"            yaml:"top_n"`            // portfolio size
	LookbackMonths int     `mapstructure:"lookback_months"  yaml:"lookback_months"`  // momentum window, most recent month excluded
	MinCoverage    float64 `mapstructure:"min_coverage"     yaml:"min_coverage"`     // required fraction of expected bars in the window
	RiskFreeRate   float64 `mapstructure:"risk_free_rate"   yaml:"risk_free_rate"`   // annual, e.g. 0.04
	CommissionPct  float64 `mapstructure:"commission_pct"   yaml:"commission_pct"`   // per detected turnover, 0 disables
	InitialCapital float64 `mapstructure:"initial_capital"  yaml:"initial_capital"`  // INR, display only
}

// DataConfig holds price data retrieval and caching settings.
type DataConfig struct {
	UniverseFile   string `mapstructure:"universe_file"    yaml:"universe_file"`    // CSV of index constituents
	CachePath      string `mapstructure:"cache_path"       yaml:"cache_path"`       // SQLite price cache, "" disables
	CacheTTL       int    `mapstructure:"cache_ttl"        yaml:"cache_ttl"`        // seconds, in-memory quote cache
	RatePerSecond  int    `mapstructure:"rate_per_second"  yaml:"rate_per_second"`  // Yahoo Finance request budget
	FetchParallel  int    `mapstructure:"fetch_parallel"   yaml:"fetch_parallel"`   // concurrent symbol fetches
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "console" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.momentum/config.yaml (home directory)
//  3. /etc/momentum/config.yaml (system)
//
// Environment variables override config file values.
// Format: MOMENTUM_<SECTION>_<KEY>, e.g., MOMENTUM_STRATEGY_TOP_N
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".momentum"))
	v.AddConfigPath("/etc/momentum")

	v.SetEnvPrefix("MOMENTUM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found — that's fine, use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("MOMENTUM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Strategy defaults: 12-minus-1 momentum, top 10, monthly rebalance.
	v.SetDefault("strategy.top_n", 10)
	v.SetDefault("strategy.lookback_months", 12)
	v.SetDefault("strategy.min_coverage", 0.8)
	v.SetDefault("strategy.risk_free_rate", 0.04)
	v.SetDefault("strategy.commission_pct", 0.0)
	v.SetDefault("strategy.initial_capital", 1000000) // ₹10 lakh

	// Data defaults.
	v.SetDefault("data.universe_file", "ind_nifty50list.csv")
	v.SetDefault("data.cache_path", ".cache/prices.db")
	v.SetDefault("data.cache_ttl", 300) // 5 minutes
	v.SetDefault("data.rate_per_second", 5)
	v.SetDefault("data.fetch_parallel", 5)

	// API defaults.
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})

	// Logging defaults.
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
