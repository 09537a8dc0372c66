// Package config loads the deployment configuration for the chatbot engine.
//
// Per-invocation options (debug, one-shot query) stay on CLI flags; this
// file covers what changes between deployments: endpoints, retry budget,
// result caps, and the static site information the controller answers with
// directly.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Contact is the static site information behind the direct-info intents.
type Contact struct {
	Address string `yaml:"address"`
	Phone   string `yaml:"phone"`
	Email   string `yaml:"email"`
	Hours   string `yaml:"hours"`
}

// Config is the full deployment configuration.
type Config struct {
	// RecordsURL is the methodologies API endpoint.
	RecordsURL string `yaml:"records_url"`
	// TablePage is the rendered methodology table used when the API fails.
	TablePage string `yaml:"table_page"`
	// LocalRecords is a JSON file used as the last record source.
	LocalRecords string `yaml:"local_records"`

	// FallbackURL is the remote reasoning endpoint; empty disables it.
	FallbackURL string `yaml:"fallback_url"`
	// ContextTokens bounds the local context sent with a reasoning request.
	ContextTokens int `yaml:"context_tokens"`

	// RetryAttempts and RetryBackoffSeconds shape the record-load retry.
	RetryAttempts       int `yaml:"retry_attempts"`
	RetryBackoffSeconds int `yaml:"retry_backoff_seconds"`

	// MaxResults caps scored records before grouping.
	MaxResults int `yaml:"max_results"`

	Contact Contact `yaml:"contact"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		RecordsURL:          "/api/metodologias",
		FallbackURL:         "",
		ContextTokens:       800,
		RetryAttempts:       3,
		RetryBackoffSeconds: 1,
		MaxResults:          25,
	}
}

// Load reads a YAML configuration file, filling unset fields with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %q: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %q: %w", path, err)
	}

	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 3
	}
	if cfg.RetryBackoffSeconds <= 0 {
		cfg.RetryBackoffSeconds = 1
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 25
	}
	if cfg.ContextTokens <= 0 {
		cfg.ContextTokens = 800
	}
	return cfg, nil
}

// RetryBackoff returns the backoff step as a duration.
func (c *Config) RetryBackoff() time.Duration {
	return time.Duration(c.RetryBackoffSeconds) * time.Second
}
