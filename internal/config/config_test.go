package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, "https://tfgames.site", cfg.Origin.BaseURL)
	require.Equal(t, 15, cfg.Origin.TimeoutSeconds)
	require.Equal(t, 100, cfg.Crawler.Concurrency)
	require.Equal(t, int64(5*1024*1024), cfg.Crawler.MaxPageBytes)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "data/search/documents.jsonl", cfg.Search.ExportPath)
	require.True(t, cfg.Logging.Development)
	require.Equal(t, 15*time.Second, cfg.HTTPTimeout())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
origin:
  base_url: https://mirror.example
  timeout_seconds: 30
crawler:
  concurrency: 8
  archive_dir: /tmp/archive
db:
  dsn: postgres://localhost/tfgs
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "https://mirror.example", cfg.Origin.BaseURL)
	require.Equal(t, 30, cfg.Origin.TimeoutSeconds)
	require.Equal(t, 8, cfg.Crawler.Concurrency)
	require.Equal(t, "/tmp/archive", cfg.Crawler.ArchiveDir)
	require.Equal(t, "postgres://localhost/tfgs", cfg.DB.DSN)
	require.Equal(t, 9090, cfg.Server.Port)
	// Untouched keys keep their defaults.
	require.Equal(t, int64(5*1024*1024), cfg.Crawler.MaxPageBytes)
	require.Equal(t, "data/search/documents.jsonl", cfg.Search.ExportPath)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("TFGS_ORIGIN_BASE_URL", "https://env.example")
	t.Setenv("TFGS_CRAWLER_CONCURRENCY", "3")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "https://env.example", cfg.Origin.BaseURL)
	require.Equal(t, 3, cfg.Crawler.Concurrency)
}

func TestValidate(t *testing.T) {
	base := Config{
		Origin:  OriginConfig{BaseURL: "https://tfgames.site", TimeoutSeconds: 15},
		Crawler: CrawlerConfig{Concurrency: 100, MaxPageBytes: 1024},
		Server:  ServerConfig{Port: 8080},
	}
	require.NoError(t, base.Validate())

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing base url", func(c *Config) { c.Origin.BaseURL = "" }},
		{"zero timeout", func(c *Config) { c.Origin.TimeoutSeconds = 0 }},
		{"zero concurrency", func(c *Config) { c.Crawler.Concurrency = 0 }},
		{"zero max page bytes", func(c *Config) { c.Crawler.MaxPageBytes = 0 }},
		{"zero port", func(c *Config) { c.Server.Port = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
