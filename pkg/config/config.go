package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-pkgz/lgr"
	"gopkg.in/yaml.v3"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" json:"server" jsonschema:"description=Server configuration"`
	Database DatabaseConfig `yaml:"database" json:"database" jsonschema:"description=Database configuration"`
	Schedule ScheduleConfig `yaml:"schedule" json:"schedule" jsonschema:"description=Refresh scheduler configuration"`
	Fetcher  FetcherConfig  `yaml:"fetcher" json:"fetcher" jsonschema:"description=Feed fetcher configuration"`
}

// ServerConfig holds http server settings
type ServerConfig struct {
	Listen  string        `yaml:"listen" json:"listen" jsonschema:"default=:8080,description=HTTP server listen address"`
	Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=60s,description=HTTP server timeout"`
}

// DatabaseConfig holds storage settings
type DatabaseConfig struct {
	DSN             string `yaml:"dsn" json:"dsn" jsonschema:"default=file:feedkeeper.db?mode=rwc&_txlock=immediate,description=SQLite DSN or postgres:// URL"`
	MaxOpenConns    int    `yaml:"max_open_conns" json:"max_open_conns" jsonschema:"default=10,minimum=1,description=Maximum number of open connections"`
	MaxIdleConns    int    `yaml:"max_idle_conns" json:"max_idle_conns" jsonschema:"default=5,minimum=0,description=Maximum number of idle connections"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime" json:"conn_max_lifetime" jsonschema:"default=3600,minimum=0,description=Connection maximum lifetime in seconds"`
}

// ScheduleConfig holds refresh scheduler settings
type ScheduleConfig struct {
	Enabled        bool          `yaml:"enabled" json:"enabled" jsonschema:"default=true,description=Run periodic refresh of stale feeds"`
	UpdateInterval time.Duration `yaml:"update_interval" json:"update_interval" jsonschema:"default=30m,description=Scheduler tick interval"`
	StaleAfter     time.Duration `yaml:"stale_after" json:"stale_after" jsonschema:"default=30m,description=Feeds attempted more recently are not refreshed"`
	MaxWorkers     int           `yaml:"max_workers" json:"max_workers" jsonschema:"default=5,minimum=1,description=Maximum concurrent refreshes per tick"`
}

// FetcherConfig holds feed download settings
type FetcherConfig struct {
	Timeout     time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=Timeout of a single feed fetch"`
	UserAgent   string        `yaml:"user_agent" json:"user_agent" jsonschema:"default=feedkeeper/1.0,description=User agent for feed requests"`
	MaxBodySize int64         `yaml:"max_body_size" json:"max_body_size" jsonschema:"default=10485760,minimum=1,description=Maximum feed document size in bytes"`
	PoolSize    int           `yaml:"pool_size" json:"pool_size" jsonschema:"default=10,minimum=1,description=Maximum concurrent fetches"`
}

// Load reads configuration from a YAML file. Missing sections get defaults, so an empty file is valid.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	// schedule is enabled unless set explicitly
	cfg := Config{Schedule: ScheduleConfig{Enabled: true}}
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.SetDefaults()

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// schema validation is supplementary
	if err := VerifyAgainstEmbeddedSchema(&cfg); err != nil {
		lgr.Printf("[WARN] schema validation failed: %v", err)
	}

	return &cfg, nil
}

// Default returns configuration with all defaults, used when no config file is given
func Default() *Config {
	cfg := Config{Schedule: ScheduleConfig{Enabled: true}}
	cfg.SetDefaults()
	return &cfg
}

// SetDefaults fills zero values
func (c *Config) SetDefaults() {
	if c.Server.Listen == "" {
		c.Server.Listen = ":8080"
	}
	if c.Server.Timeout == 0 {
		c.Server.Timeout = 60 * time.Second // must exceed fetcher timeout
	}

	if c.Database.DSN == "" {
		c.Database.DSN = "file:feedkeeper.db?mode=rwc&_txlock=immediate"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 3600
	}

	if c.Schedule.UpdateInterval == 0 {
		c.Schedule.UpdateInterval = 30 * time.Minute
	}
	if c.Schedule.StaleAfter == 0 {
		c.Schedule.StaleAfter = c.Schedule.UpdateInterval
	}
	if c.Schedule.MaxWorkers == 0 {
		c.Schedule.MaxWorkers = 5
	}

	if c.Fetcher.Timeout == 0 {
		c.Fetcher.Timeout = 30 * time.Second
	}
	if c.Fetcher.UserAgent == "" {
		c.Fetcher.UserAgent = "feedkeeper/1.0"
	}
	if c.Fetcher.MaxBodySize == 0 {
		c.Fetcher.MaxBodySize = 10 << 20
	}
	if c.Fetcher.PoolSize == 0 {
		c.Fetcher.PoolSize = 10
	}
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	if cfg.Server.Timeout < time.Second {
		return fmt.Errorf("server timeout must be at least 1 second")
	}
	if cfg.Database.MaxOpenConns < 1 {
		return fmt.Errorf("database.max_open_conns must be at least 1")
	}
	if cfg.Database.MaxIdleConns < 0 || cfg.Database.ConnMaxLifetime < 0 {
		return fmt.Errorf("database.max_idle_conns and conn_max_lifetime must be non-negative")
	}
	if cfg.Schedule.UpdateInterval < time.Second {
		return fmt.Errorf("schedule.update_interval must be at least 1 second")
	}
	if cfg.Schedule.StaleAfter < 0 {
		return fmt.Errorf("schedule.stale_after must be non-negative")
	}
	if cfg.Schedule.MaxWorkers < 1 {
		return fmt.Errorf("schedule.max_workers must be at least 1")
	}
	if cfg.Fetcher.Timeout < time.Second {
		return fmt.Errorf("fetcher timeout must be at least 1 second")
	}
	if cfg.Server.Timeout <= cfg.Fetcher.Timeout {
		return fmt.Errorf("server timeout %v must be greater than fetcher timeout %v", cfg.Server.Timeout, cfg.Fetcher.Timeout)
	}
	if cfg.Fetcher.MaxBodySize < 1 {
		return fmt.Errorf("fetcher.max_body_size must be positive")
	}
	if cfg.Fetcher.PoolSize < 1 {
		return fmt.Errorf("fetcher.pool_size must be at least 1")
	}
	return nil
}

// GetServerConfig returns server configuration
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}
