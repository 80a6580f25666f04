// Cinegraph - TMDB Catalog Reconciliation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinegraph

package sync

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tomtom215/cinegraph/internal/config"
	"github.com/tomtom215/cinegraph/internal/db"
	"github.com/tomtom215/cinegraph/internal/kinds"
	"github.com/tomtom215/cinegraph/internal/mapper"
	"github.com/tomtom215/cinegraph/internal/metrics"
	"github.com/tomtom215/cinegraph/internal/synclog"
	"github.com/tomtom215/cinegraph/internal/tmdb"
)

// RefFlow reconciles the small reference kinds whose id universe comes
// from an API listing or export rather than per-entity detail fetches:
// languages, countries, genres and keywords.
type RefFlow struct {
	client *tmdb.Client
	pool   *pgxpool.Pool
	cfg    *config.Config
}

func NewRefFlow(client *tmdb.Client, pool *pgxpool.Pool, cfg *config.Config) *RefFlow {
	return &RefFlow{client: client, pool: pool, cfg: cfg}
}

// Run executes the reference flow for kind.
func (f *RefFlow) Run(ctx context.Context, kind kinds.Kind, date time.Time) error {
	spec, err := kinds.Get(kind)
	if err != nil {
		return err
	}
	var body func(ctx context.Context, date time.Time, spec kinds.Spec, run *synclog.Run) error
	switch kind {
	case kinds.Language:
		body = f.languages
	case kinds.Country:
		body = f.countries
	case kinds.Genre:
		body = f.genres
	case kinds.Keyword:
		body = f.keywords
	default:
		return fmt.Errorf("kind %s is not a reference kind", kind)
	}
	return f.run(ctx, spec, date, body)
}

func (f *RefFlow) run(ctx context.Context, spec kinds.Spec, date time.Time, body func(context.Context, time.Time, kinds.Spec, *synclog.Run) error) (err error) {
	started := time.Now()
	run, err := synclog.NewManager(f.pool).Start(ctx, spec.SyncType(), date)
	if err != nil {
		return err
	}
	defer func() {
		status := "success"
		if err != nil {
			status = "failed"
			run.Failed(ctx)
		}
		metrics.ObserveSync(string(spec.Kind), status, time.Since(started))
	}()

	if err = run.FetchingData(ctx); err != nil {
		return err
	}
	if err = body(ctx, date, spec, run); err != nil {
		return err
	}
	return run.Success(ctx)
}

func (f *RefFlow) languages(ctx context.Context, _ time.Time, spec kinds.Spec, run *synclog.Run) error {
	var entries []mapper.LanguageEntry
	if err := f.client.Get(ctx, "configuration/languages", nil, &entries); err != nil {
		return err
	}
	if err := run.DataFetched(ctx); err != nil {
		return err
	}
	if err := run.SyncingToDB(ctx); err != nil {
		return err
	}

	upstream := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		upstream[e.ISO639] = struct{}{}
	}
	if err := f.pruneKeys(ctx, spec, "iso_639_1", upstream); err != nil {
		return err
	}
	return f.stageAndLoad(ctx, spec, mapper.LanguageRows(entries, defaultLanguageCode))
}

func (f *RefFlow) countries(ctx context.Context, _ time.Time, spec kinds.Spec, run *synclog.Run) error {
	byLanguage := make(map[string][]mapper.CountryEntry)
	codes := append([]string{defaultLanguageCode}, extraLanguageCodes(f.cfg.Sync.ExtraLanguages)...)
	for _, code := range codes {
		params := url.Values{"language": {localeTag(code)}}
		var entries []mapper.CountryEntry
		if err := f.client.Get(ctx, "configuration/countries", params, &entries); err != nil {
			return err
		}
		byLanguage[code] = entries
	}
	if err := run.DataFetched(ctx); err != nil {
		return err
	}
	if err := run.SyncingToDB(ctx); err != nil {
		return err
	}

	upstream := make(map[string]struct{})
	for _, e := range byLanguage[defaultLanguageCode] {
		upstream[e.ISO3166] = struct{}{}
	}
	if err := f.pruneKeys(ctx, spec, "iso_3166_1", upstream); err != nil {
		return err
	}
	return f.stageAndLoad(ctx, spec, mapper.CountryRows(byLanguage, defaultLanguageCode))
}

// genreList is the payload shape of /genre/movie/list and /genre/tv/list.
type genreList struct {
	Genres []mapper.GenreEntry `json:"genres"`
}

func (f *RefFlow) genres(ctx context.Context, _ time.Time, spec kinds.Spec, run *synclog.Run) error {
	byLanguage := make(map[string][]mapper.GenreEntry)
	codes := append([]string{defaultLanguageCode}, extraLanguageCodes(f.cfg.Sync.ExtraLanguages)...)
	for _, code := range codes {
		params := url.Values{"language": {localeTag(code)}}
		merged := make(map[int64]string)
		for _, media := range []string{"movie", "tv"} {
			var list genreList
			if err := f.client.Get(ctx, "genre/"+media+"/list", params, &list); err != nil {
				return err
			}
			for _, g := range list.Genres {
				merged[g.ID] = g.Name
			}
		}
		entries := make([]mapper.GenreEntry, 0, len(merged))
		for id, name := range merged {
			entries = append(entries, mapper.GenreEntry{ID: id, Name: name})
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
		byLanguage[code] = entries
	}
	if err := run.DataFetched(ctx); err != nil {
		return err
	}
	if err := run.SyncingToDB(ctx); err != nil {
		return err
	}

	upstream := make(map[int64]struct{})
	for _, g := range byLanguage[defaultLanguageCode] {
		upstream[g.ID] = struct{}{}
	}
	if err := f.pruneIDs(ctx, spec, upstream); err != nil {
		return err
	}
	return f.stageAndLoad(ctx, spec, mapper.GenreRows(byLanguage, defaultLanguageCode))
}

// keywords diffs the daily keyword export against the table: extras are
// pruned and only ids the table does not know yet are inserted. Keyword
// names come straight from the export, so no detail fetches happen.
func (f *RefFlow) keywords(ctx context.Context, date time.Time, spec kinds.Spec, run *synclog.Run) error {
	names, err := f.client.ExportNames(ctx, spec.ExportName, date)
	if err != nil {
		return fmt.Errorf("fetching keyword export: %w", err)
	}
	if err := run.DataFetched(ctx); err != nil {
		return err
	}
	if err := run.SyncingToDB(ctx); err != nil {
		return err
	}

	upstream := make(map[int64]struct{}, len(names))
	for id := range names {
		upstream[id] = struct{}{}
	}
	if err := f.pruneIDs(ctx, spec, upstream); err != nil {
		return err
	}

	dbIDs, err := db.IDSet(ctx, f.pool, spec.Primary.Name)
	if err != nil {
		return err
	}
	missing := make(map[int64]string)
	for id, name := range names {
		if _, ok := dbIDs[id]; !ok {
			missing[id] = name
		}
	}
	metrics.SyncEntitiesFetched.WithLabelValues(string(spec.Kind)).Add(float64(len(missing)))
	if len(missing) == 0 {
		return nil
	}
	return f.stageAndLoad(ctx, spec, mapper.KeywordRows(missing))
}

func (f *RefFlow) pruneIDs(ctx context.Context, spec kinds.Spec, upstream map[int64]struct{}) error {
	dbIDs, err := db.IDSet(ctx, f.pool, spec.Primary.Name)
	if err != nil {
		return err
	}
	var extra []int64
	for id := range dbIDs {
		if _, ok := upstream[id]; !ok {
			extra = append(extra, id)
		}
	}
	pruned, err := db.Prune(ctx, f.pool, spec.Primary.Name, extra)
	if err != nil {
		return err
	}
	metrics.SyncEntitiesPruned.WithLabelValues(string(spec.Kind)).Add(float64(pruned))
	return nil
}

func (f *RefFlow) pruneKeys(ctx context.Context, spec kinds.Spec, column string, upstream map[string]struct{}) error {
	current, err := db.KeySet(ctx, f.pool, spec.Primary.Name, column)
	if err != nil {
		return err
	}
	var extra []string
	for key := range current {
		if _, ok := upstream[key]; !ok {
			extra = append(extra, key)
		}
	}
	pruned, err := db.PruneKeys(ctx, f.pool, spec.Primary.Name, column, extra)
	if err != nil {
		return err
	}
	metrics.SyncEntitiesPruned.WithLabelValues(string(spec.Kind)).Add(float64(pruned))
	return nil
}

// stageAndLoad writes one staging file per table and loads the lot as a
// single chunk.
func (f *RefFlow) stageAndLoad(ctx context.Context, spec kinds.Spec, rows mapper.RowSet) error {
	files, err := newChunkFiles(f.cfg.Staging.Dir, spec.Tables())
	if err != nil {
		return err
	}
	for _, table := range spec.Tables() {
		if err := files[table.Name].Append(rows[table.Name]); err != nil {
			deleteStaged(files)
			return fmt.Errorf("staging rows for %s: %w", table.Name, err)
		}
	}
	if err := db.NewLoader(f.pool, spec).LoadChunk(ctx, files); err != nil {
		deleteStaged(files)
		return err
	}
	return nil
}
