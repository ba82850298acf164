package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sourceinfo/sourceinfo/internal/config"
)

func TestDefault(t *testing.T) {
	t.Setenv("SOURCEINFO_DB_PATH", "")
	t.Setenv("OPENROUTER_API_KEY", "")

	cfg, err := config.Load("")
	require.NoError(t, err)

	require.Equal(t, "./sourceinfo.db", cfg.Database.Path)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, 60.0, cfg.Matching.MinCredibility)
	require.Equal(t, 10, cfg.Matching.Limit)
	require.False(t, cfg.Analysis.Enabled)
	require.Equal(t, "https://openrouter.ai/api/v1", cfg.Analysis.BaseURL)
	require.Equal(t, "anthropic/claude-sonnet-4", cfg.Analysis.Model)
	require.Equal(t, "https://r.jina.ai/", cfg.Analysis.ReaderURL)
	require.Equal(t, 15000, cfg.Analysis.MaxChars)
	require.Equal(t, time.Hour, cfg.Analysis.ParseCacheTTL())
}

func TestLoadFile(t *testing.T) {
	t.Setenv("SOURCEINFO_DB_PATH", "")
	t.Setenv("OPENROUTER_API_KEY", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
database:
  path: /data/catalogue.db
server:
  port: 9090
matching:
  min_credibility: 70
  limit: 5
analysis:
  model: openai/gpt-4o-mini
  cache_ttl: 30m
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	require.Equal(t, "/data/catalogue.db", cfg.Database.Path)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, 70.0, cfg.Matching.MinCredibility)
	require.Equal(t, 5, cfg.Matching.Limit)
	require.Equal(t, "openai/gpt-4o-mini", cfg.Analysis.Model)
	require.Equal(t, 30*time.Minute, cfg.Analysis.ParseCacheTTL())
	// Unset fields keep defaults.
	require.Equal(t, "https://r.jina.ai/", cfg.Analysis.ReaderURL)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SOURCEINFO_DB_PATH", "/tmp/override.db")
	t.Setenv("OPENROUTER_API_KEY", "sk-or-test")

	cfg, err := config.Load("")
	require.NoError(t, err)

	require.Equal(t, "/tmp/override.db", cfg.Database.Path)
	require.Equal(t, "sk-or-test", cfg.Analysis.APIKey)
	require.True(t, cfg.Analysis.Enabled)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load("/nonexistent/config.yaml")
	require.Error(t, err)
}

func TestParseCacheTTLInvalid(t *testing.T) {
	a := config.AnalysisConfig{CacheTTL: "bogus"}
	require.Equal(t, time.Hour, a.ParseCacheTTL())
}
