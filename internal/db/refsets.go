// Cinegraph - TMDB Catalog Reconciliation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinegraph

package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tomtom215/cinegraph/internal/kinds"
	"github.com/tomtom215/cinegraph/internal/logging"
	"github.com/tomtom215/cinegraph/internal/mapper"
)

// IDSet loads the integer primary keys of a table.
func IDSet(ctx context.Context, pool *pgxpool.Pool, table string) (map[int64]struct{}, error) {
	rows, err := pool.Query(ctx, fmt.Sprintf("SELECT id FROM %s", table))
	if err != nil {
		return nil, fmt.Errorf("loading ids of %s: %w", table, err)
	}
	defer rows.Close()

	set := make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning id of %s: %w", table, err)
		}
		set[id] = struct{}{}
	}
	return set, rows.Err()
}

// KeySet loads the string primary keys of a table.
func KeySet(ctx context.Context, pool *pgxpool.Pool, table, column string) (map[string]struct{}, error) {
	rows, err := pool.Query(ctx, fmt.Sprintf("SELECT %s FROM %s", column, table))
	if err != nil {
		return nil, fmt.Errorf("loading keys of %s: %w", table, err)
	}
	defer rows.Close()

	set := make(map[string]struct{})
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scanning key of %s: %w", table, err)
		}
		set[key] = struct{}{}
	}
	return set, rows.Err()
}

// RefSets loads the reference key sets a kind's mapper filters
// against. Only the requested kinds are queried.
func RefSets(ctx context.Context, pool *pgxpool.Pool, want []kinds.Kind) (*mapper.Refs, error) {
	refs := &mapper.Refs{}
	for _, kind := range want {
		spec, err := kinds.Get(kind)
		if err != nil {
			return nil, err
		}

		switch kind {
		case kinds.Language:
			refs.Languages, err = KeySet(ctx, pool, spec.Primary.Name, "iso_639_1")
		case kinds.Country:
			refs.Countries, err = KeySet(ctx, pool, spec.Primary.Name, "iso_3166_1")
		case kinds.Genre:
			refs.Genres, err = IDSet(ctx, pool, spec.Primary.Name)
		case kinds.Keyword:
			refs.Keywords, err = IDSet(ctx, pool, spec.Primary.Name)
		case kinds.Collection:
			refs.Collections, err = IDSet(ctx, pool, spec.Primary.Name)
		case kinds.Company:
			refs.Companies, err = IDSet(ctx, pool, spec.Primary.Name)
		case kinds.Network:
			refs.Networks, err = IDSet(ctx, pool, spec.Primary.Name)
		case kinds.Person:
			refs.Persons, err = IDSet(ctx, pool, spec.Primary.Name)
		default:
			err = fmt.Errorf("kind %s is not a reference kind", kind)
		}
		if err != nil {
			return nil, err
		}
	}
	return refs, nil
}

// Prune deletes rows the upstream universe no longer contains.
func Prune(ctx context.Context, pool *pgxpool.Pool, table string, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ANY($1)", table), ids)
	if err != nil {
		return 0, fmt.Errorf("pruning %s: %w", table, err)
	}
	logging.Warn().
		Str("table", table).
		Int64("rows", tag.RowsAffected()).
		Msg("Pruned rows absent upstream")
	return tag.RowsAffected(), nil
}

// PruneKeys is Prune for tables keyed by an ISO code instead of an id.
func PruneKeys(ctx context.Context, pool *pgxpool.Pool, table, column string, keys []string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	tag, err := pool.Exec(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE %s = ANY($1)", table, column), keys)
	if err != nil {
		return 0, fmt.Errorf("pruning %s: %w", table, err)
	}
	logging.Warn().
		Str("table", table).
		Int64("rows", tag.RowsAffected()).
		Msg("Pruned rows absent upstream")
	return tag.RowsAffected(), nil
}
