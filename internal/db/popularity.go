// Cinegraph - TMDB Catalog Reconciliation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinegraph

package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tomtom215/cinegraph/internal/logging"
)

// UpdatePopularity refreshes the popularity column of a table from the
// daily export scores. The comparison runs inside Postgres so only
// rows whose value actually changed are written.
func UpdatePopularity(ctx context.Context, pool *pgxpool.Pool, table string, scores map[int64]float64) (int64, error) {
	if len(scores) == 0 {
		logging.Info().Str("table", table).Msg("No popularity scores to apply")
		return 0, nil
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("beginning popularity transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	temp := fmt.Sprintf("temp_%s_popularity_update", table)
	create := fmt.Sprintf(
		"CREATE TEMP TABLE %s (id BIGINT PRIMARY KEY, popularity REAL) ON COMMIT DROP", temp)
	if _, err := tx.Exec(ctx, create); err != nil {
		return 0, fmt.Errorf("creating popularity temp table: %w", err)
	}

	rows := make([][]any, 0, len(scores))
	for id, popularity := range scores {
		rows = append(rows, []any{id, popularity})
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{temp},
		[]string{"id", "popularity"}, pgx.CopyFromRows(rows)); err != nil {
		return 0, fmt.Errorf("staging popularity scores: %w", err)
	}

	update := fmt.Sprintf(`
		UPDATE %s AS main_table
		SET popularity = temp_table.popularity
		FROM %s AS temp_table
		WHERE main_table.id = temp_table.id
		  AND main_table.popularity IS DISTINCT FROM temp_table.popularity`,
		table, temp)
	tag, err := tx.Exec(ctx, update)
	if err != nil {
		return 0, fmt.Errorf("applying popularity update: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("committing popularity update: %w", err)
	}

	logging.Info().
		Str("table", table).
		Int("staged", len(scores)).
		Int64("updated", tag.RowsAffected()).
		Msg("Popularity refreshed")
	return tag.RowsAffected(), nil
}
