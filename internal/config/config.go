// Package config defines the typed runtime configuration. Every
// recognized option is enumerated here and validated at startup
// instead of being read ad hoc at point of use.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Defaults mirror the original deployment profile.
const (
	DefaultMaxConcurrentScans = 5
	DefaultScanTimeout        = 30 * time.Minute
	DefaultRateLimit          = 100
	DefaultRateWindow         = 60 * time.Minute
	DefaultFetchTimeout       = 10 * time.Second
	DefaultMatchThreshold     = 0.5
	DefaultResultsDir         = "./results"
	DefaultTemplatesDir       = "./templates"
)

// ExternalTool configures the optional out-of-process scanning tool.
type ExternalTool struct {
	Name           string   `mapstructure:"name"`
	Command        string   `mapstructure:"command"`
	Args           []string `mapstructure:"args"`
	TimeoutSeconds int      `mapstructure:"timeout_seconds"`
}

// Config is the validated runtime configuration.
type Config struct {
	ResultsDir   string `mapstructure:"results_dir"`
	TemplatesDir string `mapstructure:"templates_dir"`

	MaxConcurrentScans int           `mapstructure:"max_concurrent_scans"`
	ScanTimeout        time.Duration `mapstructure:"scan_timeout"`

	RateLimit  int           `mapstructure:"rate_limit"`
	RateWindow time.Duration `mapstructure:"rate_window"`

	RequestsPerSecond int           `mapstructure:"requests_per_second"`
	FetchTimeout      time.Duration `mapstructure:"fetch_timeout"`
	MatchThreshold    float64       `mapstructure:"match_threshold"`

	ExternalTool ExternalTool `mapstructure:"external_tool"`
}

// FromViper loads the configuration, applies defaults and validates it.
func FromViper(v *viper.Viper) (*Config, error) {
	v.SetDefault("results_dir", DefaultResultsDir)
	v.SetDefault("templates_dir", DefaultTemplatesDir)
	v.SetDefault("max_concurrent_scans", DefaultMaxConcurrentScans)
	v.SetDefault("scan_timeout", DefaultScanTimeout)
	v.SetDefault("rate_limit", DefaultRateLimit)
	v.SetDefault("rate_window", DefaultRateWindow)
	v.SetDefault("requests_per_second", 0)
	v.SetDefault("fetch_timeout", DefaultFetchTimeout)
	v.SetDefault("match_threshold", DefaultMatchThreshold)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects out-of-range options before any component starts.
func (c *Config) Validate() error {
	if c.MaxConcurrentScans <= 0 {
		return fmt.Errorf("max_concurrent_scans must be positive, got %d", c.MaxConcurrentScans)
	}
	if c.ScanTimeout <= 0 {
		return fmt.Errorf("scan_timeout must be positive, got %s", c.ScanTimeout)
	}
	if c.RateLimit <= 0 {
		return fmt.Errorf("rate_limit must be positive, got %d", c.RateLimit)
	}
	if c.RateWindow <= 0 {
		return fmt.Errorf("rate_window must be positive, got %s", c.RateWindow)
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("requests_per_second cannot be negative, got %d", c.RequestsPerSecond)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch_timeout must be positive, got %s", c.FetchTimeout)
	}
	if c.MatchThreshold <= 0 || c.MatchThreshold > 1 {
		return fmt.Errorf("match_threshold must be in (0, 1], got %g", c.MatchThreshold)
	}
	return nil
}
