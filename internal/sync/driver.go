// Cinegraph - TMDB Catalog Reconciliation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinegraph

// Package sync runs the daily reconciliation flows: one driver per
// entity kind plus the lightweight reference-kind flows, orchestrated
// in dependency order by the Runner.
package sync

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/cinegraph/internal/config"
	"github.com/tomtom215/cinegraph/internal/db"
	"github.com/tomtom215/cinegraph/internal/kinds"
	"github.com/tomtom215/cinegraph/internal/logging"
	"github.com/tomtom215/cinegraph/internal/mapper"
	"github.com/tomtom215/cinegraph/internal/metrics"
	"github.com/tomtom215/cinegraph/internal/staging"
	"github.com/tomtom215/cinegraph/internal/synclog"
	"github.com/tomtom215/cinegraph/internal/tmdb"
)

// errSkipAdult marks an entity dropped for adult content rather than
// failed.
var errSkipAdult = errors.New("adult content")

// fetchFunc fetches one entity and maps it to staged rows.
type fetchFunc func(ctx context.Context, id int64, refs *mapper.Refs) (mapper.RowSet, error)

// Driver reconciles one export-driven kind: diff the daily export
// against the database, prune, refill changed and missing entities in
// bounded chunks, then refresh popularity.
type Driver struct {
	client *tmdb.Client
	pool   *pgxpool.Pool
	cfg    *config.Config
	spec   kinds.Spec
	fetch  fetchFunc
}

func newDriver(client *tmdb.Client, pool *pgxpool.Pool, cfg *config.Config, spec kinds.Spec, fetch fetchFunc) *Driver {
	return &Driver{client: client, pool: pool, cfg: cfg, spec: spec, fetch: fetch}
}

// Run executes one full reconciliation of the kind for the given day.
func (d *Driver) Run(ctx context.Context, date time.Time) (err error) {
	started := time.Now()
	run, err := synclog.NewManager(d.pool).Start(ctx, d.spec.SyncType(), date)
	if err != nil {
		return err
	}
	defer func() {
		status := "success"
		if err != nil {
			status = "failed"
			run.Failed(ctx)
		}
		metrics.ObserveSync(string(d.spec.Kind), status, time.Since(started))
	}()

	if err = run.FetchingData(ctx); err != nil {
		return err
	}

	scores, err := d.client.ExportIDs(ctx, d.spec.ExportName, date)
	if err != nil {
		return fmt.Errorf("fetching %s export: %w", d.spec.Kind, err)
	}
	dbIDs, err := db.IDSet(ctx, d.pool, d.spec.Primary.Name)
	if err != nil {
		return err
	}

	var extra []int64
	for id := range dbIDs {
		if _, ok := scores[id]; !ok {
			extra = append(extra, id)
		}
	}
	missing := make(map[int64]struct{})
	for id := range scores {
		if _, ok := dbIDs[id]; !ok {
			missing[id] = struct{}{}
		}
	}
	if d.spec.ChangesPath != "" && run.LastSuccess != nil {
		changed, err := d.client.ChangedIDs(ctx, d.spec.ChangesPath, run.LastSuccess.Date, date)
		if err != nil {
			return fmt.Errorf("fetching changed %s ids: %w", d.spec.Kind, err)
		}
		for id := range changed {
			missing[id] = struct{}{}
		}
	}
	if err = run.DataFetched(ctx); err != nil {
		return err
	}

	logging.Info().
		Str("kind", string(d.spec.Kind)).
		Int("upstream", len(scores)).
		Int("in_db", len(dbIDs)).
		Int("extra", len(extra)).
		Int("to_fetch", len(missing)).
		Msg("Reconciliation plan computed")

	if err = run.SyncingToDB(ctx); err != nil {
		return err
	}
	pruned, err := db.Prune(ctx, d.pool, d.spec.Primary.Name, extra)
	if err != nil {
		return err
	}
	metrics.SyncEntitiesPruned.WithLabelValues(string(d.spec.Kind)).Add(float64(pruned))

	refs, err := db.RefSets(ctx, d.pool, d.spec.References)
	if err != nil {
		return err
	}
	if err = d.fill(ctx, missing, refs); err != nil {
		return err
	}

	if d.spec.UpdatePopularity && d.cfg.Sync.UpdatePopularity {
		if err = run.UpdatingPopularity(ctx); err != nil {
			return err
		}
		if _, err = db.UpdatePopularity(ctx, d.pool, d.spec.Primary.Name, scores); err != nil {
			return err
		}
	}

	return run.Success(ctx)
}

// fill fetches and loads the missing entities in chunks.
func (d *Driver) fill(ctx context.Context, missing map[int64]struct{}, refs *mapper.Refs) error {
	if len(missing) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(missing))
	for id := range missing {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	loader := db.NewLoader(d.pool, d.spec)
	for start := 0; start < len(ids); start += d.spec.ChunkSize {
		end := start + d.spec.ChunkSize
		if end > len(ids) {
			end = len(ids)
		}
		if err := d.fillChunk(ctx, loader, ids[start:end], refs); err != nil {
			return err
		}
	}
	return nil
}

func (d *Driver) fillChunk(ctx context.Context, loader *db.Loader, ids []int64, refs *mapper.Refs) error {
	files, err := newChunkFiles(d.cfg.Staging.Dir, d.spec.Tables())
	if err != nil {
		return err
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.client.Concurrency())
	for _, id := range ids {
		g.Go(func() error {
			rows, err := d.fetch(gctx, id, refs)
			if err != nil {
				reason := "fetch_failed"
				if errors.Is(err, errSkipAdult) {
					reason = "adult"
				} else {
					logging.Err(err).
						Str("kind", string(d.spec.Kind)).
						Int64("id", id).
						Msg("Skipping entity")
				}
				metrics.SyncEntitiesSkipped.WithLabelValues(string(d.spec.Kind), reason).Inc()
				return nil
			}

			mu.Lock()
			defer mu.Unlock()
			for table, file := range files {
				if err := file.Append(rows[table]); err != nil {
					return fmt.Errorf("staging rows for %s: %w", table, err)
				}
			}
			metrics.SyncEntitiesFetched.WithLabelValues(string(d.spec.Kind)).Inc()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		deleteStaged(files)
		return err
	}

	if err := loader.LoadChunk(ctx, files); err != nil {
		deleteStaged(files)
		return err
	}
	return nil
}

// newChunkFiles creates one staging file per table. On failure the
// files already created are removed so a partial chunk leaves nothing
// behind in the staging directory.
func newChunkFiles(dir string, tables []kinds.Table) (map[string]*staging.File, error) {
	files := make(map[string]*staging.File)
	for _, table := range tables {
		file, err := staging.New(dir, table.Name, table.Columns)
		if err != nil {
			deleteStaged(files)
			return nil, err
		}
		files[table.Name] = file
	}
	return files, nil
}

func deleteStaged(files map[string]*staging.File) {
	for _, file := range files {
		if err := file.Delete(); err != nil {
			logging.Err(err).Str("path", file.Path()).Msg("Failed to remove staged file")
		}
	}
}
