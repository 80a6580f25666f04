// Cinegraph - TMDB Catalog Reconciliation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinegraph

package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tomtom215/cinegraph/internal/config"
	"github.com/tomtom215/cinegraph/internal/kinds"
	"github.com/tomtom215/cinegraph/internal/logging"
	"github.com/tomtom215/cinegraph/internal/tmdb"
)

// Runner executes the daily reconciliation for every selected kind in
// foreign-key dependency order. A kind failure aborts the run so
// dependent kinds never load against stale reference sets.
type Runner struct {
	client *tmdb.Client
	pool   *pgxpool.Pool
	cfg    *config.Config
}

func NewRunner(client *tmdb.Client, pool *pgxpool.Pool, cfg *config.Config) *Runner {
	return &Runner{client: client, pool: pool, cfg: cfg}
}

// Date resolves the run date: the configured override, or today in UTC.
func (r *Runner) Date() (time.Time, error) {
	if r.cfg.Sync.CurrentDate == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	date, err := time.Parse("2006-01-02", r.cfg.Sync.CurrentDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing sync.current_date: %w", err)
	}
	return date, nil
}

// selectKinds resolves which kinds this run covers, in run order. An
// explicit only list overrides the config toggles.
func (r *Runner) selectKinds(only []string) ([]kinds.Kind, error) {
	want := make(map[string]bool)
	if len(only) > 0 {
		for _, name := range only {
			if _, err := kinds.Get(kinds.Kind(name)); err != nil {
				return nil, err
			}
			want[name] = true
		}
	} else {
		for _, name := range r.cfg.Sync.EnabledKinds() {
			want[name] = true
		}
	}

	var selected []kinds.Kind
	for _, kind := range kinds.Order {
		if want[string(kind)] {
			selected = append(selected, kind)
		}
	}
	return selected, nil
}

// Run reconciles every selected kind for the resolved run date.
func (r *Runner) Run(ctx context.Context, only []string) error {
	date, err := r.Date()
	if err != nil {
		return err
	}
	selected, err := r.selectKinds(only)
	if err != nil {
		return err
	}
	if len(selected) == 0 {
		logging.Warn().Msg("No kinds selected, nothing to do")
		return nil
	}

	logging.Info().
		Time("date", date).
		Int("kinds", len(selected)).
		Msg("Starting reconciliation run")

	refFlow := NewRefFlow(r.client, r.pool, r.cfg)
	for _, kind := range selected {
		started := time.Now()
		var err error
		switch kind {
		case kinds.Language, kinds.Country, kinds.Genre, kinds.Keyword:
			err = refFlow.Run(ctx, kind, date)
		default:
			var driver *Driver
			driver, err = NewEntityDriver(kind, r.client, r.pool, r.cfg)
			if err == nil {
				err = driver.Run(ctx, date)
			}
		}
		if err != nil {
			return fmt.Errorf("syncing %s: %w", kind, err)
		}
		logging.Info().
			Str("kind", string(kind)).
			Dur("elapsed", time.Since(started)).
			Msg("Kind reconciled")
	}

	logging.Info().Time("date", date).Msg("Reconciliation run complete")
	return nil
}
