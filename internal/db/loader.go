// Cinegraph - TMDB Catalog Reconciliation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinegraph

package db

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tomtom215/cinegraph/internal/kinds"
	"github.com/tomtom215/cinegraph/internal/logging"
	"github.com/tomtom215/cinegraph/internal/metrics"
	"github.com/tomtom215/cinegraph/internal/staging"
)

// Loader applies staged CSV chunks to one kind's tables. Every chunk
// is a single transaction: session temp tables cloned from the
// targets, COPY of each CSV, referential delete passes, then the
// per-table conflict-aware inserts.
type Loader struct {
	pool *pgxpool.Pool
	spec kinds.Spec
}

func NewLoader(pool *pgxpool.Pool, spec kinds.Spec) *Loader {
	return &Loader{pool: pool, spec: spec}
}

// LoadChunk commits one chunk of staged files, keyed by table name.
// Staged files are deduplicated on their conflict keys first, and
// deleted once the transaction commits.
func (l *Loader) LoadChunk(ctx context.Context, files map[string]*staging.File) error {
	primary := files[l.spec.Primary.Name]
	if primary == nil || primary.Empty() {
		logging.Debug().
			Str("kind", string(l.spec.Kind)).
			Msg("Skipping empty chunk")
		return deleteFiles(files)
	}

	start := time.Now()
	tables := l.spec.Tables()

	for _, table := range tables {
		file := files[table.Name]
		if file == nil || len(table.ConflictKeys) == 0 {
			continue
		}
		if err := file.Dedup(table.ConflictKeys); err != nil {
			return fmt.Errorf("deduplicating %s: %w", table.Name, err)
		}
	}

	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning chunk transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Stage everything first so delete scopes can reference any temp.
	temps := make(map[string]string, len(tables))
	for _, table := range tables {
		file := files[table.Name]
		if file == nil {
			continue
		}
		if err := file.Flush(); err != nil {
			return fmt.Errorf("flushing %s: %w", table.Name, err)
		}

		temp := tempTableName(table.Name)
		temps[table.Name] = temp
		if _, err := tx.Exec(ctx, createTempSQL(temp, table.Name)); err != nil {
			return fmt.Errorf("creating temp table for %s: %w", table.Name, err)
		}

		f, err := os.Open(file.Path())
		if err != nil {
			return fmt.Errorf("opening staged file for %s: %w", table.Name, err)
		}
		_, err = tx.Conn().PgConn().CopyFrom(ctx, f, copySQL(temp, table.Columns))
		f.Close()
		if err != nil {
			return fmt.Errorf("copying rows into %s: %w", temp, err)
		}
		metrics.ChunkRowsCopied.WithLabelValues(string(l.spec.Kind), table.Name).
			Add(float64(file.Rows()))
	}

	for _, child := range l.spec.Children {
		if child.DeleteKey == "" {
			continue
		}
		if _, staged := temps[child.Name]; !staged {
			continue
		}
		scope := temps[l.spec.Primary.Name]
		if child.DeleteScope != "" {
			scope = temps[child.DeleteScope]
		}
		if scope == "" {
			continue
		}

		var stmt string
		if child.KeepStaged {
			stmt = deletePreservingSQL(child.Name, temps[child.Name], child.DeleteKey, scope)
		} else {
			stmt = deleteScopedSQL(child.Name, child.DeleteKey, scope)
		}
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("clearing previous rows of %s: %w", child.Name, err)
		}
	}

	for _, table := range tables {
		temp, staged := temps[table.Name]
		if !staged {
			continue
		}
		if _, err := tx.Exec(ctx, insertSQL(table, temp)); err != nil {
			return fmt.Errorf("inserting into %s: %w", table.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing chunk: %w", err)
	}

	metrics.ChunkCommitDuration.WithLabelValues(string(l.spec.Kind)).
		Observe(time.Since(start).Seconds())
	logging.Info().
		Str("kind", string(l.spec.Kind)).
		Int("entities", primary.Rows()).
		Dur("elapsed", time.Since(start)).
		Msg("Chunk committed")

	return deleteFiles(files)
}

func deleteFiles(files map[string]*staging.File) error {
	for name, file := range files {
		if file == nil {
			continue
		}
		if err := file.Delete(); err != nil {
			return fmt.Errorf("removing staged file for %s: %w", name, err)
		}
	}
	return nil
}
