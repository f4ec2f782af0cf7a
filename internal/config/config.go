// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage backends accepted in STORAGE_BACKEND.
const (
	BackendSQLite   = "sqlite"
	BackendJSONFile = "jsonfile"
	BackendFallback = "fallback"
)

// Config holds the server settings.
type Config struct {
	Port            int           `env:"PORT" envDefault:"8080"`
	StorageBackend  string        `env:"STORAGE_BACKEND" envDefault:"fallback"`
	DBPath          string        `env:"DB_PATH" envDefault:"./data/splitright.db"`
	DataDir         string        `env:"DATA_DIR" envDefault:"./data"`
	StaleAfter      time.Duration `env:"STALE_AFTER" envDefault:"720h"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	AdminSecret     string        `env:"ADMIN_SECRET"`
	AdminTokenTTL   time.Duration `env:"ADMIN_TOKEN_TTL" envDefault:"24h"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads an optional .env file, then parses the environment into a Config.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()
	return Parse()
}

// Parse parses the current environment into a Config and validates it.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and the backend name.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	switch c.StorageBackend {
	case BackendSQLite, BackendJSONFile, BackendFallback:
	default:
		return fmt.Errorf("invalid STORAGE_BACKEND %q (want sqlite, jsonfile or fallback)", c.StorageBackend)
	}
	if c.StaleAfter < 0 {
		return fmt.Errorf("STALE_AFTER must not be negative")
	}
	if c.AdminTokenTTL <= 0 {
		return fmt.Errorf("ADMIN_TOKEN_TTL must be positive")
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// ResetEnabled reports whether the admin reset endpoint is served.
func (c *Config) ResetEnabled() bool {
	return c.AdminSecret != ""
}
