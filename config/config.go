// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Plans    PlansConfig    `yaml:"plans"`
	Events   EventsConfig   `yaml:"events"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DatabaseConfig configures the database.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "sqlite" or "memory"
	DSN    string `yaml:"dsn"`
}

// PlansConfig configures plan lookup.
// Use "static" for a fixed list of pro users or "remote" to delegate to an
// external identity service.
type PlansConfig struct {
	Mode     string       `yaml:"mode"` // "static" or "remote"
	ProUsers []string     `yaml:"pro_users,omitempty"`
	Remote   RemoteConfig `yaml:"remote,omitempty"`
}

// RemoteConfig configures a remote service endpoint.
type RemoteConfig struct {
	URL     string        `yaml:"url"`
	APIKey  string        `yaml:"api_key,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// EventsConfig configures the async event publisher.
type EventsConfig struct {
	Enabled bool `yaml:"enabled"`
	Buffer  int  `yaml:"buffer"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // Enable /metrics endpoint
	Path    string `yaml:"path"`    // Custom path (default: /metrics)
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(&cfg)

	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadFromEnv creates configuration entirely from environment variables.
// This is useful for Docker deployments where no config file is needed.
//
// Environment variables:
//
//	COURSEGATE_DATABASE_DRIVER - Database driver: sqlite or memory (default: sqlite)
//	COURSEGATE_DATABASE_DSN    - Database path (default: coursegate.db)
//	COURSEGATE_SERVER_HOST     - Server host (default: 0.0.0.0)
//	COURSEGATE_SERVER_PORT     - Server port (default: 8080)
//	COURSEGATE_PLANS_MODE      - Plan lookup mode: static or remote (default: static)
//	COURSEGATE_LOG_LEVEL       - Log level: debug, info, warn, error (default: info)
//	COURSEGATE_LOG_FORMAT      - Log format: json or console (default: json)
//	COURSEGATE_METRICS_ENABLED - Enable /metrics endpoint (default: true)
func LoadFromEnv() (*Config, error) {
	var cfg Config

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadWithFallback tries to load from file, falls back to environment
// variables when the file does not exist.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return LoadFromEnv()
}

// applyEnvOverrides applies COURSEGATE_* environment variables to the config.
// Environment variables always override file-based configuration.
func applyEnvOverrides(cfg *Config) {
	// Server configuration
	if v := os.Getenv("COURSEGATE_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("COURSEGATE_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("COURSEGATE_SERVER_READ_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if v := os.Getenv("COURSEGATE_SERVER_WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}

	// Database configuration
	if v := os.Getenv("COURSEGATE_DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("COURSEGATE_DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}

	// Plans configuration
	if v := os.Getenv("COURSEGATE_PLANS_MODE"); v != "" {
		cfg.Plans.Mode = v
	}
	if v := os.Getenv("COURSEGATE_PLANS_PRO_USERS"); v != "" {
		cfg.Plans.ProUsers = splitList(v)
	}
	if v := os.Getenv("COURSEGATE_PLANS_REMOTE_URL"); v != "" {
		cfg.Plans.Remote.URL = v
	}

	// Events configuration
	if v := os.Getenv("COURSEGATE_EVENTS_ENABLED"); v != "" {
		cfg.Events.Enabled = parseBool(v)
	}
	if v := os.Getenv("COURSEGATE_EVENTS_BUFFER"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Events.Buffer = n
		}
	}

	// Logging configuration
	if v := os.Getenv("COURSEGATE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("COURSEGATE_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	// Metrics configuration
	if v := os.Getenv("COURSEGATE_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
	if v := os.Getenv("COURSEGATE_METRICS_PATH"); v != "" {
		cfg.Metrics.Path = v
	}
}

// parseBool parses a boolean from common string values.
func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

// splitList parses a comma-separated list, trimming whitespace.
func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func setDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60 * time.Second
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "coursegate.db"
	}

	if cfg.Plans.Mode == "" {
		cfg.Plans.Mode = "static"
	}

	if cfg.Events.Buffer == 0 {
		cfg.Events.Buffer = 256
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}

func validate(cfg *Config) error {
	validDrivers := map[string]bool{"sqlite": true, "memory": true}
	if !validDrivers[cfg.Database.Driver] {
		return fmt.Errorf("database.driver must be 'sqlite' or 'memory', got %q", cfg.Database.Driver)
	}
	if cfg.Database.Driver == "sqlite" && cfg.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required when database.driver is 'sqlite'")
	}

	validPlanModes := map[string]bool{"static": true, "remote": true}
	if !validPlanModes[cfg.Plans.Mode] {
		return fmt.Errorf("plans.mode must be 'static' or 'remote', got %q", cfg.Plans.Mode)
	}
	if cfg.Plans.Mode == "remote" && cfg.Plans.Remote.URL == "" {
		return fmt.Errorf("plans.remote.url is required when plans.mode is 'remote'")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	return nil
}
