// Package config loads runtime settings from NOODLIX_* environment
// variables.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Prefix of every environment variable, e.g. NOODLIX_DATA_DIR
const Prefix = "NOODLIX"

// Config holds all runtime configuration
type Config struct {
	// DataDir holds the snapshot and user table; empty keeps state in memory
	DataDir  string `split_words:"true"`
	Compress bool   `default:"false"`
	// SeedFile replaces the built-in layout for a fresh filesystem
	SeedFile string `split_words:"true"`

	Hostname     string `default:"noodlix"`
	RootPassword string `split_words:"true" default:"toor"`

	FetchTimeout   time.Duration `split_words:"true" default:"15s"`
	FetchRateLimit float64       `split_words:"true" default:"5"`
	FetchRetries   int           `split_words:"true" default:"2"`
	UserAgent      string        `split_words:"true" default:"Noodlix/1.0 (Bashimi Shell)"`

	ScriptTimeout time.Duration `split_words:"true" default:"5s"`

	LogLevel string `split_words:"true" default:"warn"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Hostname:       "noodlix",
		RootPassword:   "toor",
		FetchTimeout:   15 * time.Second,
		FetchRateLimit: 5,
		FetchRetries:   2,
		UserAgent:      "Noodlix/1.0 (Bashimi Shell)",
		ScriptTimeout:  5 * time.Second,
		LogLevel:       "warn",
	}
}
