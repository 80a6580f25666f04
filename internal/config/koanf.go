// Cinegraph - TMDB Catalog Reconciliation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinegraph

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/cinegraph/config.yaml",
	"/etc/cinegraph/config.yml",
}

// ConfigPathEnvVar overrides the config file path when set.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all sensible default values.
// These are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		TMDB: TMDBConfig{
			APIKeys:           nil,
			BaseURL:           "https://api.themoviedb.org/3",
			ExportBaseURL:     "http://files.tmdb.org/p/exports",
			RequestsPerSecond: 40,
			Concurrency:       20,
			Timeout:           30 * time.Second,
			MaxRetries:        5,
			RetryBaseDelay:    1 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:              "",
			MaxConns:         20,
			StatementTimeout: 5 * time.Minute,
		},
		Search: SearchConfig{
			Enabled:   false,
			URL:       "",
			APIKey:    "",
			BatchSize: 10000,
		},
		Sync: SyncConfig{
			Language:         true,
			Country:          true,
			Genre:            true,
			Keyword:          true,
			Collection:       true,
			Company:          true,
			Network:          true,
			Person:           true,
			Movie:            true,
			Serie:            true,
			UpdatePopularity: true,
			ExtraLanguages:   []string{},
		},
		Staging: StagingConfig{
			Dir: "",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load builds configuration using koanf v2 with layered sources:
//  1. Defaults: built-in sensible defaults
//  2. Config file: optional YAML file (if found)
//  3. Environment variables: override any setting
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// TMDB_API_KEYS -> tmdb.api_keys, POSTGRES_DSN -> database.dsn, etc.
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths defines which config paths are parsed as
// comma-separated slices when supplied through the environment.
var sliceConfigPaths = []string{
	"tmdb.api_keys",
	"sync.extra_languages",
}

// processSliceFields converts comma-separated string values to slices
// for known slice fields. Env vars come in as strings; the config
// expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}
		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc maps environment variable names to koanf config
// paths. Unmapped keys are dropped so random environment variables do
// not pollute the config.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// TMDB upstream
		"tmdb_api_keys":            "tmdb.api_keys",
		"tmdb_base_url":            "tmdb.base_url",
		"tmdb_export_base_url":     "tmdb.export_base_url",
		"tmdb_requests_per_second": "tmdb.requests_per_second",
		"tmdb_concurrency":         "tmdb.concurrency",
		"tmdb_timeout":             "tmdb.timeout",
		"tmdb_max_retries":         "tmdb.max_retries",
		"tmdb_retry_base_delay":    "tmdb.retry_base_delay",

		// Database
		"postgres_dsn":               "database.dsn",
		"postgres_max_conns":         "database.max_conns",
		"postgres_statement_timeout": "database.statement_timeout",

		// Search index
		"search_enabled":    "search.enabled",
		"search_url":        "search.url",
		"search_api_key":    "search.api_key",
		"search_batch_size": "search.batch_size",

		// Sync selection
		"sync_current_date":      "sync.current_date",
		"sync_language":          "sync.language",
		"sync_country":           "sync.country",
		"sync_genre":             "sync.genre",
		"sync_keyword":           "sync.keyword",
		"sync_collection":        "sync.collection",
		"sync_company":           "sync.company",
		"sync_network":           "sync.network",
		"sync_person":            "sync.person",
		"sync_movie":             "sync.movie",
		"sync_serie":             "sync.serie",
		"sync_update_popularity": "sync.update_popularity",
		"sync_extra_languages":   "sync.extra_languages",

		// Staging
		"staging_dir": "staging.dir",

		// Logging
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	return ""
}
