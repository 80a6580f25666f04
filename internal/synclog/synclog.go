// Cinegraph - TMDB Catalog Reconciliation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinegraph

// Package synclog records one row per sync run in the sync_logs table
// and walks it through the run's lifecycle. The latest success row of
// a type anchors the incremental changes window of the next run.
package synclog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tomtom215/cinegraph/internal/logging"
)

// Status is one step of a sync run's lifecycle.
type Status string

const (
	StatusInitialized        Status = "initialized"
	StatusFetchingData       Status = "fetching_data"
	StatusDataFetched        Status = "data_fetched"
	StatusSyncingToDB        Status = "syncing_to_db"
	StatusUpdatingPopularity Status = "updating_popularity"
	StatusSuccess            Status = "success"
	StatusFailed             Status = "failed"
)

const table = "sync_logs"

// Log is one sync_logs row.
type Log struct {
	ID     int64
	Type   string
	Status Status
	Date   time.Time
}

// Manager creates and advances sync runs.
type Manager struct {
	pool *pgxpool.Pool
}

func NewManager(pool *pgxpool.Pool) *Manager {
	return &Manager{pool: pool}
}

// Run is one in-flight sync run.
type Run struct {
	pool    *pgxpool.Pool
	current Log

	// LastSuccess is the most recent successful run of the same type,
	// nil on the first ever run.
	LastSuccess *Log
}

// Start inserts a new run row in the initialized state and loads the
// previous success marker for the type.
func (m *Manager) Start(ctx context.Context, syncType string, date time.Time) (*Run, error) {
	run := &Run{pool: m.pool}

	err := m.pool.QueryRow(ctx,
		fmt.Sprintf("INSERT INTO %s (type, status, date) VALUES ($1, $2, $3) RETURNING id", table),
		syncType, string(StatusInitialized), date,
	).Scan(&run.current.ID)
	if err != nil {
		return nil, fmt.Errorf("creating sync log for %s: %w", syncType, err)
	}
	run.current.Type = syncType
	run.current.Status = StatusInitialized
	run.current.Date = date

	last := Log{}
	err = m.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT id, type, status, date FROM %s WHERE type = $1 AND status = $2 ORDER BY date DESC LIMIT 1", table),
		syncType, string(StatusSuccess),
	).Scan(&last.ID, &last.Type, &last.Status, &last.Date)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		// first run for this type
	case err != nil:
		return nil, fmt.Errorf("loading last success log for %s: %w", syncType, err)
	default:
		run.LastSuccess = &last
	}

	logging.Info().
		Str("type", syncType).
		Int64("log_id", run.current.ID).
		Msg("Sync run started")
	return run, nil
}

// Current returns a copy of the run's row.
func (r *Run) Current() Log { return r.current }

func (r *Run) advance(ctx context.Context, status Status) error {
	_, err := r.pool.Exec(ctx,
		fmt.Sprintf("UPDATE %s SET status = $1, updated_at = NOW() WHERE id = $2", table),
		string(status), r.current.ID)
	if err != nil {
		return fmt.Errorf("advancing sync log %d to %s: %w", r.current.ID, status, err)
	}
	r.current.Status = status
	logging.Debug().
		Str("type", r.current.Type).
		Int64("log_id", r.current.ID).
		Str("status", string(status)).
		Msg("Sync run advanced")
	return nil
}

func (r *Run) FetchingData(ctx context.Context) error { return r.advance(ctx, StatusFetchingData) }
func (r *Run) DataFetched(ctx context.Context) error  { return r.advance(ctx, StatusDataFetched) }
func (r *Run) SyncingToDB(ctx context.Context) error  { return r.advance(ctx, StatusSyncingToDB) }
func (r *Run) UpdatingPopularity(ctx context.Context) error {
	return r.advance(ctx, StatusUpdatingPopularity)
}
func (r *Run) Success(ctx context.Context) error { return r.advance(ctx, StatusSuccess) }

// Failed marks the run failed. Errors are logged rather than returned
// so the terminal transition never masks the failure that caused it.
// The failure that brought us here often cancelled the run context, so
// the update runs on a detached, bounded context.
func (r *Run) Failed(ctx context.Context) {
	ctx, cancel := terminalContext(ctx)
	defer cancel()
	if err := r.advance(ctx, StatusFailed); err != nil {
		logging.Err(err).
			Int64("log_id", r.current.ID).
			Msg("Failed to mark sync run as failed")
	}
}

// terminalContext strips cancellation from ctx while keeping its values
// and bounds the terminal update with its own deadline.
func terminalContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
}
