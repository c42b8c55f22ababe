// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/mcoot/eventgames/internal/model"
)

// Storage backends accepted by STORAGE_TYPE
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"
)

// Config holds everything the server reads from its environment
type Config struct {
	HTTPHost     string             `env:"HTTP_HOST"`
	HTTPPort     int                `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel     slog.Level         `env:"LOG_LEVEL" envDefault:"INFO"`
	StorageType  string             `env:"STORAGE_TYPE" envDefault:"memory"`
	RedisURL     string             `env:"REDIS_URL" envDefault:"redis://localhost:6379"`
	SQLitePath   string             `env:"SQLITE_PATH" envDefault:"data/eventgames.db"`
	ResultPolicy model.ResultPolicy `env:"RESULT_POLICY" envDefault:"first"`
	AdminSecret  string             `env:"ADMIN_SECRET"`
	Teams        []string           `env:"TEAMS" envSeparator:","`
}

// Load parses and validates the process environment
func Load() (*Config, error) {
	return LoadFrom(nil)
}

// LoadFrom parses the given variables instead of the process environment.
// A nil map reads the real environment.
func LoadFrom(vars map[string]string) (*Config, error) {
	opts := env.Options{}
	if vars != nil {
		opts.Environment = vars
	}

	cfg, err := env.ParseAsWithOptions[Config](opts)
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	cfg.Teams = cleanTeams(cfg.Teams)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot start with
func (c *Config) Validate() error {
	var errs []error

	switch c.StorageType {
	case StorageMemory, StorageRedis, StorageSQLite:
	default:
		errs = append(errs, fmt.Errorf("STORAGE_TYPE must be memory, redis or sqlite, got %q", c.StorageType))
	}
	if c.StorageType == StorageRedis && c.RedisURL == "" {
		errs = append(errs, errors.New("REDIS_URL is required when STORAGE_TYPE=redis"))
	}
	if c.StorageType == StorageSQLite && strings.TrimSpace(c.SQLitePath) == "" {
		errs = append(errs, errors.New("SQLITE_PATH is required when STORAGE_TYPE=sqlite"))
	}
	if !c.ResultPolicy.Valid() {
		errs = append(errs, fmt.Errorf("RESULT_POLICY must be first or best, got %q", c.ResultPolicy))
	}
	if c.HTTPPort < 0 || c.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("HTTP_PORT out of range: %d", c.HTTPPort))
	}

	return errors.Join(errs...)
}

// cleanTeams trims names and drops empty entries left by stray commas
func cleanTeams(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}
