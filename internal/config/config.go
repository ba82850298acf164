package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Matching MatchingConfig `yaml:"matching"`
	Analysis AnalysisConfig `yaml:"analysis"`
}

// DatabaseConfig configures SQLite storage.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// MatchingConfig sets default counternarrative constraints.
type MatchingConfig struct {
	MinCredibility float64 `yaml:"min_credibility"`
	Limit          int     `yaml:"limit"`
}

// AnalysisConfig configures the optional article analysis pipeline. Without
// an API key the analysis endpoints report the feature as disabled; the
// catalogue endpoints do not depend on it.
type AnalysisConfig struct {
	Enabled    bool   `yaml:"enabled"`
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	ReaderURL  string `yaml:"reader_url"`
	MaxChars   int    `yaml:"max_chars"`
	RatePerMin int    `yaml:"rate_per_min"`
	CacheTTL   string `yaml:"cache_ttl"`
	UserAgent  string `yaml:"user_agent"`
}

// ParseCacheTTL returns the fetched-content cache TTL as time.Duration.
func (a AnalysisConfig) ParseCacheTTL() time.Duration {
	d, err := time.ParseDuration(a.CacheTTL)
	if err != nil {
		return time.Hour
	}
	return d
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "./sourceinfo.db"},
		Server:   ServerConfig{Port: 8080},
		Matching: MatchingConfig{
			MinCredibility: 60,
			Limit:          10,
		},
		Analysis: AnalysisConfig{
			BaseURL:    "https://openrouter.ai/api/v1",
			Model:      "anthropic/claude-sonnet-4",
			ReaderURL:  "https://r.jina.ai/",
			MaxChars:   15000,
			RatePerMin: 10,
			CacheTTL:   "1h",
			UserAgent:  "sourceinfo/0.1",
		},
	}
}

// Load reads configuration from a YAML file and applies env var overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides overrides config values with environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SOURCEINFO_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("OPENROUTER_API_KEY"); v != "" {
		cfg.Analysis.APIKey = v
		cfg.Analysis.Enabled = true
	}
}
