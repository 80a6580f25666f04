// Cinegraph - TMDB Catalog Reconciliation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinegraph

// Package config defines the Cinegraph configuration surface and its
// layered loading (defaults, YAML file, environment variables).
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the root configuration for a Cinegraph run.
type Config struct {
	TMDB     TMDBConfig     `koanf:"tmdb"`
	Database DatabaseConfig `koanf:"database"`
	Search   SearchConfig   `koanf:"search"`
	Sync     SyncConfig     `koanf:"sync"`
	Staging  StagingConfig  `koanf:"staging"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// TMDBConfig configures the upstream metadata API.
type TMDBConfig struct {
	// APIKeys is the ordered credential set rotated across requests.
	APIKeys []string `koanf:"api_keys" validate:"required,min=1"`

	// BaseURL is the API root, e.g. https://api.themoviedb.org/3.
	BaseURL string `koanf:"base_url" validate:"required,url"`

	// ExportBaseURL is the root for the daily ID export dumps.
	ExportBaseURL string `koanf:"export_base_url" validate:"required,url"`

	// RequestsPerSecond is the token-bucket refill rate shared by all
	// upstream requests for this process.
	RequestsPerSecond float64 `koanf:"requests_per_second" validate:"gt=0"`

	// Concurrency bounds in-flight detail fetches and changes pages.
	Concurrency int `koanf:"concurrency" validate:"gte=1,lte=100"`

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration `koanf:"timeout"`

	// MaxRetries bounds retry attempts on 429/5xx/network failures.
	MaxRetries int `koanf:"max_retries" validate:"gte=0,lte=10"`

	// RetryBaseDelay is the initial backoff delay.
	RetryBaseDelay time.Duration `koanf:"retry_base_delay"`
}

// DatabaseConfig configures the Postgres connection pool.
type DatabaseConfig struct {
	// DSN is a pgx connection string or URL.
	DSN string `koanf:"dsn" validate:"required"`

	// MaxConns bounds the pgxpool size.
	MaxConns int32 `koanf:"max_conns" validate:"gte=1"`

	// StatementTimeout bounds each chunk transaction at the server.
	StatementTimeout time.Duration `koanf:"statement_timeout"`
}

// SearchConfig configures the search-index projection.
type SearchConfig struct {
	Enabled bool   `koanf:"enabled"`
	URL     string `koanf:"url" validate:"required_if=Enabled true,omitempty,url"`
	APIKey  string `koanf:"api_key" validate:"required_if=Enabled true"`

	// BatchSize is the document count per bulk import request.
	BatchSize int `koanf:"batch_size" validate:"gte=1"`
}

// SyncConfig selects which entity kinds a run reconciles and how.
type SyncConfig struct {
	// CurrentDate overrides the run date (YYYY-MM-DD). Empty means today.
	CurrentDate string `koanf:"current_date" validate:"omitempty,datetime=2006-01-02"`

	Language   bool `koanf:"language"`
	Country    bool `koanf:"country"`
	Genre      bool `koanf:"genre"`
	Keyword    bool `koanf:"keyword"`
	Collection bool `koanf:"collection"`
	Company    bool `koanf:"company"`
	Network    bool `koanf:"network"`
	Person     bool `koanf:"person"`
	Movie      bool `koanf:"movie"`
	Serie      bool `koanf:"serie"`

	// UpdatePopularity enables the bulk popularity refresh for kinds
	// that carry a popularity column.
	UpdatePopularity bool `koanf:"update_popularity"`

	// ExtraLanguages lists locale tags fetched in addition to the
	// default language for translated kinds (collections, genres).
	ExtraLanguages []string `koanf:"extra_languages"`
}

// StagingConfig configures the on-disk CSV scratch space.
type StagingConfig struct {
	// Dir is the scratch directory for staging CSVs. Empty means the
	// system temp directory.
	Dir string `koanf:"dir"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"omitempty,oneof=trace debug info warn warning error fatal panic disabled"`
	Format string `koanf:"format" validate:"omitempty,oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// EnabledKinds returns the kind names selected by this config, in no
// particular order. Resolution of FK-dependency ordering belongs to the
// kind registry, not here.
func (c *SyncConfig) EnabledKinds() []string {
	kinds := []struct {
		name string
		on   bool
	}{
		{"language", c.Language},
		{"country", c.Country},
		{"genre", c.Genre},
		{"keyword", c.Keyword},
		{"collection", c.Collection},
		{"company", c.Company},
		{"network", c.Network},
		{"person", c.Person},
		{"movie", c.Movie},
		{"serie", c.Serie},
	}
	var out []string
	for _, k := range kinds {
		if k.on {
			out = append(out, k.name)
		}
	}
	return out
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config field %s failed %q validation", fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("config validation: %w", err)
	}
	for _, key := range c.TMDB.APIKeys {
		if key == "" {
			return fmt.Errorf("tmdb.api_keys must not contain empty entries")
		}
	}
	return nil
}
