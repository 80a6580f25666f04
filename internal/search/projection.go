// Cinegraph - TMDB Catalog Reconciliation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinegraph

package search

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tomtom215/cinegraph/internal/logging"
	"github.com/tomtom215/cinegraph/internal/metrics"
)

const movieQuery = `
SELECT
    m.id,
    m.original_title,
    m.popularity::float,
    COALESCE(g.genre_ids, '{}') AS genre_ids,
    rt.runtime,
    rel.release_ts,
    COALESCE(titles.titles, '{}') AS titles
FROM tmdb_movie m
LEFT JOIN LATERAL (
    SELECT ARRAY_REMOVE(ARRAY_AGG(DISTINCT btrim(t.title)), NULL) AS titles
    FROM tmdb_movie_translations t
    WHERE t.movie_id = m.id
      AND t.title IS NOT NULL
      AND btrim(t.title) <> ''
) titles ON TRUE
LEFT JOIN LATERAL (
    SELECT t.runtime
    FROM tmdb_movie_translations t
    WHERE t.movie_id = m.id
      AND t.runtime IS NOT NULL
      AND t.runtime > 0
    ORDER BY (t.iso_639_1 = m.original_language) DESC
    LIMIT 1
) rt ON TRUE
LEFT JOIN LATERAL (
    SELECT EXTRACT(EPOCH FROM r.release_date)::bigint AS release_ts
    FROM tmdb_movie_release_dates r
    WHERE r.movie_id = m.id
      AND r.release_type IN (2,3)
    ORDER BY r.release_date ASC
    LIMIT 1
) rel ON TRUE
LEFT JOIN LATERAL (
    SELECT ARRAY_AGG(DISTINCT mg.genre_id)::int[] AS genre_ids
    FROM tmdb_movie_genres mg
    WHERE mg.movie_id = m.id
) g ON TRUE
ORDER BY m.id`

const serieQuery = `
SELECT
    s.id,
    s.original_name,
    s.popularity::float,
    COALESCE(g.genre_ids, '{}') AS genre_ids,
    s.number_of_episodes,
    s.number_of_seasons,
    s.vote_average::float,
    s.vote_count::int,
    s.status,
    s.type,
    EXTRACT(EPOCH FROM s.first_air_date)::bigint AS first_air_ts,
    EXTRACT(EPOCH FROM s.last_air_date)::bigint AS last_air_ts,
    COALESCE(names.names, '{}') AS names
FROM tmdb_tv_series s
LEFT JOIN LATERAL (
    SELECT ARRAY_REMOVE(ARRAY_AGG(DISTINCT btrim(t.name)), NULL) AS names
    FROM tmdb_tv_series_translations t
    WHERE t.serie_id = s.id
      AND t.name IS NOT NULL
      AND btrim(t.name) <> ''
) names ON TRUE
LEFT JOIN LATERAL (
    SELECT ARRAY_AGG(DISTINCT sg.genre_id)::int[] AS genre_ids
    FROM tmdb_tv_series_genres sg
    WHERE sg.serie_id = s.id
) g ON TRUE
ORDER BY s.id`

const personQuery = `
SELECT
    p.id,
    p.name,
    p.popularity::float,
    p.known_for_department,
    COALESCE(p.also_known_as, '{}')
FROM tmdb_person p
ORDER BY p.id`

// collection binds a declared schema to its denormalizing query and
// row-to-document mapper.
type collection struct {
	schema CollectionSchema
	query  string
	scan   func(rows pgx.Rows) (any, int64, error)
}

var collections = []collection{
	{schema: movieSchema, query: movieQuery, scan: scanMovie},
	{schema: serieSchema, query: serieQuery, scan: scanSerie},
	{schema: personSchema, query: personQuery, scan: scanPerson},
}

// Projection streams the reconciled catalog into the search index.
type Projection struct {
	pool   *pgxpool.Pool
	client *Client
}

func NewProjection(pool *pgxpool.Pool, client *Client) *Projection {
	return &Projection{pool: pool, client: client}
}

// Run projects every collection: reconcile the schema, upsert all
// current rows, then delete documents whose ids left the database.
func (p *Projection) Run(ctx context.Context) error {
	for _, coll := range collections {
		if err := p.project(ctx, coll); err != nil {
			return fmt.Errorf("projecting %s: %w", coll.schema.Name, err)
		}
	}
	return nil
}

func (p *Projection) project(ctx context.Context, coll collection) error {
	if err := p.reconcileSchema(ctx, &coll.schema); err != nil {
		return err
	}

	dbIDs, upserted, err := p.upsertAll(ctx, coll)
	if err != nil {
		return err
	}
	metrics.SearchDocumentsUpserted.WithLabelValues(coll.schema.Name).Add(float64(upserted))

	deleted, err := p.deleteStale(ctx, coll.schema.Name, dbIDs)
	if err != nil {
		return err
	}
	metrics.SearchDocumentsDeleted.WithLabelValues(coll.schema.Name).Add(float64(deleted))

	logging.Info().
		Str("collection", coll.schema.Name).
		Int("upserted", upserted).
		Int("deleted", deleted).
		Msg("Collection projected")
	return nil
}

// reconcileSchema creates the collection if absent and rebuilds it if
// the stored schema drifted from the declared one.
func (p *Projection) reconcileSchema(ctx context.Context, declared *CollectionSchema) error {
	stored, err := p.client.GetCollection(ctx, declared.Name)
	switch {
	case err == nil:
		if declared.Matches(stored) {
			return nil
		}
		logging.Warn().Str("collection", declared.Name).Msg("Schema drift detected, rebuilding collection")
		if err := p.client.DropCollection(ctx, declared.Name); err != nil {
			return err
		}
	case isNotFound(err):
		logging.Info().Str("collection", declared.Name).Msg("Creating collection")
	default:
		return err
	}
	return p.client.CreateCollection(ctx, declared)
}

// upsertAll streams the denormalizing query and imports documents in
// client-sized batches. It returns the full database id set for stale
// deletion.
func (p *Projection) upsertAll(ctx context.Context, coll collection) (map[int64]struct{}, int, error) {
	rows, err := p.pool.Query(ctx, coll.query)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	ids := make(map[int64]struct{})
	batch := make([]any, 0, p.client.batchSize)
	upserted := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := p.client.Upsert(ctx, coll.schema.Name, batch)
		upserted += n
		batch = batch[:0]
		return err
	}

	for rows.Next() {
		doc, id, err := coll.scan(rows)
		if err != nil {
			return nil, upserted, err
		}
		ids[id] = struct{}{}
		batch = append(batch, doc)
		if len(batch) >= p.client.batchSize {
			if err := flush(); err != nil {
				return nil, upserted, err
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, upserted, err
	}
	if err := flush(); err != nil {
		return nil, upserted, err
	}
	return ids, upserted, nil
}

func (p *Projection) deleteStale(ctx context.Context, name string, dbIDs map[int64]struct{}) (int, error) {
	indexed, err := p.client.ExportIDs(ctx, name)
	if err != nil {
		return 0, err
	}
	var stale []int64
	for id := range indexed {
		if _, ok := dbIDs[id]; !ok {
			stale = append(stale, id)
		}
	}
	if len(stale) == 0 {
		return 0, nil
	}
	sort.Slice(stale, func(i, j int) bool { return stale[i] < stale[j] })
	if err := p.client.DeleteIDs(ctx, name, stale); err != nil {
		return 0, err
	}
	return len(stale), nil
}
