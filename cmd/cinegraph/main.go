// Cinegraph - TMDB Catalog Reconciliation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinegraph

// Package main is the entry point for the Cinegraph reconciliation run.
//
// Cinegraph mirrors the TMDB catalog into Postgres once a day and
// projects a denormalized subset into a Typesense search index. One
// invocation is one run: it diffs the daily ID exports against the
// database, prunes rows that left the upstream universe, refetches
// missing and changed entities, bulk-loads them chunk by chunk and
// finally refreshes the search collections.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (TMDB_API_KEYS, POSTGRES_DSN, SEARCH_URL, ...)
//   - Config file (config.yaml, or CONFIG_PATH)
//   - Built-in defaults
//
// # Orchestrator mode
//
// The --only flag restricts a run to a comma-separated subset of kinds
// (language, country, genre, keyword, collection, company, network,
// person, movie, serie) or to the search projection alone ("search").
// An external scheduler can use it to run each kind as an isolated
// process; kinds still execute in dependency order within one
// invocation.
//
// # Signal handling
//
// SIGINT and SIGTERM cancel the run: in-flight requests abort, the open
// chunk transaction rolls back, staging files are removed and the sync
// log row is marked failed.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/tomtom215/cinegraph/internal/config"
	"github.com/tomtom215/cinegraph/internal/db"
	"github.com/tomtom215/cinegraph/internal/logging"
	"github.com/tomtom215/cinegraph/internal/search"
	"github.com/tomtom215/cinegraph/internal/sync"
	"github.com/tomtom215/cinegraph/internal/tmdb"
)

func main() {
	var only string
	flag.StringVar(&only, "only", "", "comma-separated kinds to sync (or \"search\"); empty runs everything enabled")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Int("api_keys", len(cfg.TMDB.APIKeys)).
		Bool("search_enabled", cfg.Search.Enabled).
		Msg("Starting Cinegraph")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, &cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	kindNames, wantSearch := splitSelection(only)

	if only == "" || len(kindNames) > 0 {
		client := tmdb.NewClient(&cfg.TMDB)
		runner := sync.NewRunner(client, pool, cfg)
		if err := runner.Run(ctx, kindNames); err != nil {
			logging.Error().Err(err).Msg("Reconciliation run failed")
			os.Exit(1)
		}
	}

	if cfg.Search.Enabled && (only == "" || wantSearch) {
		projection := search.NewProjection(pool, search.NewClient(&cfg.Search))
		if err := projection.Run(ctx); err != nil {
			logging.Error().Err(err).Msg("Search projection failed")
			os.Exit(1)
		}
	}

	logging.Info().Msg("Run complete")
}

// splitSelection parses the --only flag: kind names select
// database-side kinds, "search" requests the projection.
func splitSelection(only string) (kindNames []string, wantSearch bool) {
	for _, part := range strings.Split(only, ",") {
		part = strings.TrimSpace(part)
		switch part {
		case "":
		case "search":
			wantSearch = true
		default:
			kindNames = append(kindNames, part)
		}
	}
	return kindNames, wantSearch
}
