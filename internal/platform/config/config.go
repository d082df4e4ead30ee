// Copyright (c) 2026 Crescendo. All rights reserved.
// Author: ops@crescendo.live

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, clients) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the engine is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the Crescendo sync engine.
type Config struct {

	// Ops server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis) — run checkpoints and enrichment token cache.
	RedisURL string `env:"REDIS_URL,required"`

	// Upstream catalog API
	CatalogBaseURL string `env:"CATALOG_BASE_URL" envDefault:"https://api.showgrid.io/v1/events"`
	CatalogAPIKey  string `env:"CATALOG_API_KEY,required"`

	// PerPage is the page size requested from the catalog API. Values above
	// the upstream cap of 100 are clamped by the client.
	PerPage int `env:"CATALOG_PER_PAGE" envDefault:"100"`

	// Worker pool sizing. Workers=1 is the sequential fallback mode.
	Workers int `env:"SYNC_WORKERS" envDefault:"5"`

	// BatchPause is the pause between concurrent page batches.
	BatchPause time.Duration `env:"SYNC_BATCH_PAUSE" envDefault:"50ms"`

	// Genre enrichment API (optional; backfill is skipped when unset)
	EnrichClientID     string `env:"ENRICH_CLIENT_ID"`
	EnrichClientSecret string `env:"ENRICH_CLIENT_SECRET"`
	EnrichBaseURL      string `env:"ENRICH_BASE_URL"  envDefault:"https://api.spotify.com/v1"`
	EnrichTokenURL     string `env:"ENRICH_TOKEN_URL" envDefault:"https://accounts.spotify.com/api/token"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	return cfg, nil
}

// IsDevelopment reports whether the engine is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the engine is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// EnrichmentConfigured reports whether genre backfill credentials are present.
func (c *Config) EnrichmentConfigured() bool {
	return c.EnrichClientID != "" && c.EnrichClientSecret != ""
}
