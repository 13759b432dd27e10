// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Origin  OriginConfig  `mapstructure:"origin"`
	Crawler CrawlerConfig `mapstructure:"crawler"`
	DB      DBConfig      `mapstructure:"db"`
	Server  ServerConfig  `mapstructure:"server"`
	Search  SearchConfig  `mapstructure:"search"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// OriginConfig describes the site being ingested.
type OriginConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	UserAgent      string `mapstructure:"user_agent"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// CrawlerConfig governs the fetch pool and optional page archive.
type CrawlerConfig struct {
	Concurrency  int    `mapstructure:"concurrency"`
	ArchiveDir   string `mapstructure:"archive_dir"`
	MaxPageBytes int64  `mapstructure:"max_page_bytes"`
}

// DBConfig controls access to the relational store.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// ServerConfig controls the read API server.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// SearchConfig controls the search-document export.
type SearchConfig struct {
	ExportPath string `mapstructure:"export_path"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from an optional file plus TFGS_* environment
// variables.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TFGS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("origin.base_url", "https://tfgames.site")
	v.SetDefault("origin.user_agent", "tfgs-backend/1.0")
	v.SetDefault("origin.timeout_seconds", 15)
	v.SetDefault("crawler.concurrency", 100)
	v.SetDefault("crawler.archive_dir", "")
	v.SetDefault("crawler.max_page_bytes", 5*1024*1024)
	v.SetDefault("db.max_conns", 4)
	v.SetDefault("server.port", 8080)
	v.SetDefault("search.export_path", "data/search/documents.jsonl")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Origin.BaseURL == "" {
		return fmt.Errorf("origin.base_url must be set")
	}
	if c.Origin.TimeoutSeconds <= 0 {
		return fmt.Errorf("origin.timeout_seconds must be > 0")
	}
	if c.Crawler.Concurrency <= 0 {
		return fmt.Errorf("crawler.concurrency must be > 0")
	}
	if c.Crawler.MaxPageBytes <= 0 {
		return fmt.Errorf("crawler.max_page_bytes must be > 0")
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	return nil
}

// HTTPTimeout converts the origin timeout into a duration.
func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.Origin.TimeoutSeconds) * time.Second
}
