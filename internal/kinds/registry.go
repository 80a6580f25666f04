// Cinegraph - TMDB Catalog Reconciliation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinegraph

// Package kinds is the static catalog of every entity kind the pipeline
// reconciles: which Postgres tables a kind owns, how each table is keyed
// and refreshed, where the kind's upstream data comes from, and which
// reference sets its mapper needs for foreign-key filtering.
package kinds

import "fmt"

// Kind identifies one reconciled entity family.
type Kind string

const (
	Language   Kind = "language"
	Country    Kind = "country"
	Genre      Kind = "genre"
	Keyword    Kind = "keyword"
	Collection Kind = "collection"
	Company    Kind = "company"
	Network    Kind = "network"
	Person     Kind = "person"
	Movie      Kind = "movie"
	Serie      Kind = "serie"
)

// ConflictAction selects how staged rows land in the target table.
type ConflictAction int

const (
	// InsertOnly inserts staged rows as-is. Tables refreshed with a
	// delete-then-insert pass use this.
	InsertOnly ConflictAction = iota
	// InsertIgnore inserts with ON CONFLICT DO NOTHING.
	InsertIgnore
	// UpsertUpdate inserts with ON CONFLICT DO UPDATE on every
	// non-key column.
	UpsertUpdate
)

// Table describes one target table and how a chunk of staged rows is
// applied to it.
type Table struct {
	Name         string
	Columns      []string
	ConflictKeys []string
	OnConflict   ConflictAction

	// DeleteKey names the column matched against the staged scope
	// table's ids to clear previous rows before insert. Empty means no
	// pre-delete.
	DeleteKey string
	// DeleteScope names the staged table whose ids bound the
	// pre-delete. Empty means the kind's primary table.
	DeleteScope string
	// KeepStaged flips the pre-delete to prune-only: rows inside the
	// scope whose id is absent from this table's own staged rows are
	// deleted, staged rows are then upserted. Seasons and episodes use
	// this so untouched siblings survive a partial refresh.
	KeepStaged bool
}

// Spec is the full reconciliation profile of one kind.
type Spec struct {
	Kind     Kind
	Primary  Table
	Children []Table

	// ChunkSize bounds how many entities are fetched and loaded per
	// transaction. Zero means the kind loads in a single pass.
	ChunkSize int

	// ExportName is the daily id-export file stem, e.g. "movie_ids".
	// Empty when the kind's id universe comes from an API listing
	// instead.
	ExportName string

	// ChangesPath is the incremental changes endpoint segment, e.g.
	// "movie". Empty when the kind has no changes feed.
	ChangesPath string

	UpdatePopularity bool

	// References lists the kinds whose primary-key sets the mapper
	// needs loaded before this kind runs.
	References []Kind
}

// SyncType is the sync-log discriminator for the kind, by convention
// its primary table name.
func (s Spec) SyncType() string { return s.Primary.Name }

// Tables returns the primary table followed by every child, in load
// order.
func (s Spec) Tables() []Table {
	out := make([]Table, 0, len(s.Children)+1)
	out = append(out, s.Primary)
	return append(out, s.Children...)
}

// Order is the fixed run order of the daily flow. Reference kinds come
// first so the entity mappers can filter against fresh key sets, and
// movie/serie come last because their child tables point at everything
// else.
var Order = []Kind{
	Language, Country, Genre, Keyword,
	Collection, Company, Network,
	Person, Movie, Serie,
}

// Get returns the spec for a kind.
func Get(kind Kind) (Spec, error) {
	spec, ok := registry[kind]
	if !ok {
		return Spec{}, fmt.Errorf("unknown kind %q", kind)
	}
	return spec, nil
}

// All returns every spec in run order.
func All() []Spec {
	out := make([]Spec, 0, len(Order))
	for _, k := range Order {
		out = append(out, registry[k])
	}
	return out
}

var registry = map[Kind]Spec{
	Language: {
		Kind: Language,
		Primary: Table{
			Name:         "tmdb_language",
			Columns:      []string{"iso_639_1", "name_in_native_language"},
			ConflictKeys: []string{"iso_639_1"},
			OnConflict:   InsertIgnore,
		},
		Children: []Table{
			{
				Name:         "tmdb_language_translation",
				Columns:      []string{"iso_639_1", "name", "language"},
				ConflictKeys: []string{"iso_639_1", "language"},
				OnConflict:   UpsertUpdate,
			},
		},
	},
	Country: {
		Kind: Country,
		Primary: Table{
			Name:         "tmdb_country",
			Columns:      []string{"iso_3166_1"},
			ConflictKeys: []string{"iso_3166_1"},
			OnConflict:   InsertIgnore,
		},
		Children: []Table{
			{
				Name:         "tmdb_country_translation",
				Columns:      []string{"iso_3166_1", "name", "language"},
				ConflictKeys: []string{"iso_3166_1", "language"},
				OnConflict:   UpsertUpdate,
			},
		},
	},
	Genre: {
		Kind: Genre,
		Primary: Table{
			Name:         "tmdb_genre",
			Columns:      []string{"id"},
			ConflictKeys: []string{"id"},
			OnConflict:   InsertIgnore,
		},
		Children: []Table{
			{
				Name:         "tmdb_genre_translation",
				Columns:      []string{"genre", "name", "language"},
				ConflictKeys: []string{"genre", "language"},
				OnConflict:   UpsertUpdate,
			},
		},
	},
	Keyword: {
		Kind: Keyword,
		Primary: Table{
			Name:         "tmdb_keyword",
			Columns:      []string{"id", "name"},
			ConflictKeys: []string{"id"},
			OnConflict:   UpsertUpdate,
		},
		ExportName: "keyword_ids",
	},
	Collection: {
		Kind: Collection,
		Primary: Table{
			Name:         "tmdb_collection",
			Columns:      []string{"id", "name"},
			ConflictKeys: []string{"id"},
			OnConflict:   UpsertUpdate,
		},
		Children: []Table{
			{
				Name:         "tmdb_collection_translation",
				Columns:      []string{"collection", "title", "overview", "homepage", "iso_639_1", "iso_3166_1"},
				ConflictKeys: []string{"collection", "iso_639_1", "iso_3166_1"},
				OnConflict:   InsertOnly,
				DeleteKey:    "collection",
			},
		},
		ChunkSize:  100,
		ExportName: "collection_ids",
	},
	Company: {
		Kind: Company,
		Primary: Table{
			Name:         "tmdb_company",
			Columns:      []string{"id", "name", "description", "headquarters", "homepage", "origin_country", "parent_company"},
			ConflictKeys: []string{"id"},
			OnConflict:   UpsertUpdate,
		},
		Children: []Table{
			{
				Name:         "tmdb_company_image",
				Columns:      []string{"id", "company", "file_path", "file_type", "aspect_ratio", "height", "width", "vote_average", "vote_count"},
				ConflictKeys: []string{"id"},
				OnConflict:   InsertOnly,
				DeleteKey:    "company",
			},
			{
				Name:         "tmdb_company_alternative_name",
				Columns:      []string{"company", "name"},
				ConflictKeys: []string{"company", "name"},
				OnConflict:   InsertOnly,
				DeleteKey:    "company",
			},
		},
		ChunkSize:  100,
		ExportName: "production_company_ids",
	},
	Network: {
		Kind: Network,
		Primary: Table{
			Name:         "tmdb_network",
			Columns:      []string{"id", "name", "headquarters", "homepage", "origin_country"},
			ConflictKeys: []string{"id"},
			OnConflict:   UpsertUpdate,
		},
		Children: []Table{
			{
				Name:         "tmdb_network_image",
				Columns:      []string{"id", "network", "file_path", "file_type", "aspect_ratio", "height", "width", "vote_average", "vote_count"},
				ConflictKeys: []string{"id"},
				OnConflict:   InsertOnly,
				DeleteKey:    "network",
			},
			{
				Name:         "tmdb_network_alternative_name",
				Columns:      []string{"network", "name", "type"},
				ConflictKeys: []string{"network", "name", "type"},
				OnConflict:   InsertOnly,
				DeleteKey:    "network",
			},
		},
		ChunkSize:  100,
		ExportName: "tv_network_ids",
	},
	Person: {
		Kind: Person,
		Primary: Table{
			Name:         "tmdb_person",
			Columns:      []string{"id", "adult", "also_known_as", "birthday", "deathday", "gender", "homepage", "imdb_id", "known_for_department", "name", "place_of_birth", "popularity", "profile_path"},
			ConflictKeys: []string{"id"},
			OnConflict:   UpsertUpdate,
		},
		Children: []Table{
			{
				Name:         "tmdb_person_translation",
				Columns:      []string{"person", "biography", "language"},
				ConflictKeys: []string{"person", "language"},
				OnConflict:   UpsertUpdate,
			},
		},
		ChunkSize:        500,
		ExportName:       "person_ids",
		ChangesPath:      "person",
		UpdatePopularity: true,
	},
	Movie: {
		Kind: Movie,
		Primary: Table{
			Name:         "tmdb_movie",
			Columns:      []string{"id", "adult", "budget", "original_language", "original_title", "popularity", "revenue", "status", "vote_average", "vote_count", "belongs_to_collection", "updated_at"},
			ConflictKeys: []string{"id"},
			OnConflict:   UpsertUpdate,
		},
		Children: []Table{
			{
				Name:         "tmdb_movie_alternative_titles",
				Columns:      []string{"movie_id", "iso_3166_1", "title", "type"},
				ConflictKeys: []string{"movie_id", "iso_3166_1", "title", "type"},
				DeleteKey:    "movie_id",
			},
			{
				Name:         "tmdb_movie_credits",
				Columns:      []string{"id", "movie_id", "person_id", "department", "job"},
				ConflictKeys: []string{"id"},
				DeleteKey:    "movie_id",
			},
			{
				Name:         "tmdb_movie_external_ids",
				Columns:      []string{"movie_id", "source", "value"},
				ConflictKeys: []string{"movie_id", "source"},
				DeleteKey:    "movie_id",
			},
			{
				Name:         "tmdb_movie_genres",
				Columns:      []string{"movie_id", "genre_id"},
				ConflictKeys: []string{"movie_id", "genre_id"},
				DeleteKey:    "movie_id",
			},
			{
				Name:         "tmdb_movie_images",
				Columns:      []string{"movie_id", "file_path", "type", "aspect_ratio", "height", "width", "vote_average", "vote_count", "iso_639_1"},
				ConflictKeys: []string{"movie_id", "file_path", "type"},
				DeleteKey:    "movie_id",
			},
			{
				Name:         "tmdb_movie_keywords",
				Columns:      []string{"movie_id", "keyword_id"},
				ConflictKeys: []string{"movie_id", "keyword_id"},
				DeleteKey:    "movie_id",
			},
			{
				Name:         "tmdb_movie_origin_country",
				Columns:      []string{"movie_id", "iso_3166_1"},
				ConflictKeys: []string{"movie_id", "iso_3166_1"},
				DeleteKey:    "movie_id",
			},
			{
				Name:         "tmdb_movie_production_companies",
				Columns:      []string{"movie_id", "company_id"},
				ConflictKeys: []string{"movie_id", "company_id"},
				DeleteKey:    "movie_id",
			},
			{
				Name:         "tmdb_movie_production_countries",
				Columns:      []string{"movie_id", "iso_3166_1"},
				ConflictKeys: []string{"movie_id", "iso_3166_1"},
				DeleteKey:    "movie_id",
			},
			{
				Name:         "tmdb_movie_release_dates",
				Columns:      []string{"movie_id", "iso_3166_1", "release_date", "certification", "iso_639_1", "note", "release_type", "descriptors"},
				ConflictKeys: []string{"movie_id", "iso_3166_1", "iso_639_1", "release_type"},
				DeleteKey:    "movie_id",
			},
			{
				// Roles ride on credits one-to-one, so the credits
				// pre-delete already clears them via the FK cascade.
				Name:         "tmdb_movie_roles",
				Columns:      []string{"credit_id", "character", `"order"`},
				ConflictKeys: []string{"credit_id"},
			},
			{
				Name:         "tmdb_movie_spoken_languages",
				Columns:      []string{"movie_id", "iso_639_1"},
				ConflictKeys: []string{"movie_id", "iso_639_1"},
				DeleteKey:    "movie_id",
			},
			{
				Name:         "tmdb_movie_translations",
				Columns:      []string{"movie_id", "overview", "tagline", "title", "homepage", "runtime", "iso_639_1", "iso_3166_1"},
				ConflictKeys: []string{"movie_id", "iso_639_1", "iso_3166_1"},
				DeleteKey:    "movie_id",
			},
			{
				Name:         "tmdb_movie_videos",
				Columns:      []string{"id", "movie_id", "iso_639_1", "iso_3166_1", "name", "key", "site", "size", "type", "official", "published_at"},
				ConflictKeys: []string{"id"},
				DeleteKey:    "movie_id",
			},
		},
		ChunkSize:        512,
		ExportName:       "movie_ids",
		ChangesPath:      "movie",
		UpdatePopularity: true,
		References:       []Kind{Language, Country, Genre, Keyword, Collection, Company, Person},
	},
	Serie: {
		Kind: Serie,
		Primary: Table{
			Name:         "tmdb_tv_series",
			Columns:      []string{"id", "adult", "in_production", "original_language", "original_name", "popularity", "status", "type", "vote_average", "vote_count", "number_of_episodes", "number_of_seasons", "first_air_date", "last_air_date"},
			ConflictKeys: []string{"id"},
			OnConflict:   UpsertUpdate,
		},
		Children: []Table{
			{
				Name:         "tmdb_tv_series_alternative_titles",
				Columns:      []string{"serie_id", "iso_3166_1", "title", "type"},
				ConflictKeys: []string{"serie_id", "iso_3166_1", "title", "type"},
				DeleteKey:    "serie_id",
			},
			{
				Name:         "tmdb_tv_series_content_ratings",
				Columns:      []string{"serie_id", "iso_3166_1", "rating", "descriptors"},
				ConflictKeys: []string{"serie_id", "iso_3166_1", "rating"},
				DeleteKey:    "serie_id",
			},
			{
				Name:         "tmdb_tv_series_external_ids",
				Columns:      []string{"serie_id", "source", "value"},
				ConflictKeys: []string{"serie_id", "source"},
				DeleteKey:    "serie_id",
			},
			{
				Name:         "tmdb_tv_series_genres",
				Columns:      []string{"serie_id", "genre_id"},
				ConflictKeys: []string{"serie_id", "genre_id"},
				DeleteKey:    "serie_id",
			},
			{
				Name:         "tmdb_tv_series_images",
				Columns:      []string{"serie_id", "file_path", "type", "aspect_ratio", "height", "width", "vote_average", "vote_count", "iso_639_1"},
				ConflictKeys: []string{"serie_id", "file_path", "type"},
				DeleteKey:    "serie_id",
			},
			{
				Name:         "tmdb_tv_series_keywords",
				Columns:      []string{"serie_id", "keyword_id"},
				ConflictKeys: []string{"serie_id", "keyword_id"},
				DeleteKey:    "serie_id",
			},
			{
				Name:         "tmdb_tv_series_languages",
				Columns:      []string{"serie_id", "iso_639_1"},
				ConflictKeys: []string{"serie_id", "iso_639_1"},
				DeleteKey:    "serie_id",
			},
			{
				Name:         "tmdb_tv_series_networks",
				Columns:      []string{"serie_id", "network_id"},
				ConflictKeys: []string{"serie_id", "network_id"},
				DeleteKey:    "serie_id",
			},
			{
				Name:         "tmdb_tv_series_origin_country",
				Columns:      []string{"serie_id", "iso_3166_1"},
				ConflictKeys: []string{"serie_id", "iso_3166_1"},
				DeleteKey:    "serie_id",
			},
			{
				Name:         "tmdb_tv_series_production_companies",
				Columns:      []string{"serie_id", "company_id"},
				ConflictKeys: []string{"serie_id", "company_id"},
				DeleteKey:    "serie_id",
			},
			{
				Name:         "tmdb_tv_series_production_countries",
				Columns:      []string{"serie_id", "iso_3166_1"},
				ConflictKeys: []string{"serie_id", "iso_3166_1"},
				DeleteKey:    "serie_id",
			},
			{
				Name:         "tmdb_tv_series_spoken_languages",
				Columns:      []string{"serie_id", "iso_639_1"},
				ConflictKeys: []string{"serie_id", "iso_639_1"},
				DeleteKey:    "serie_id",
			},
			{
				Name:         "tmdb_tv_series_translations",
				Columns:      []string{"serie_id", "name", "overview", "homepage", "tagline", "iso_639_1", "iso_3166_1"},
				ConflictKeys: []string{"serie_id", "iso_639_1", "iso_3166_1"},
				DeleteKey:    "serie_id",
			},
			{
				Name:         "tmdb_tv_series_videos",
				Columns:      []string{"id", "serie_id", "iso_639_1", "iso_3166_1", "name", "key", "site", "size", "type", "official", "published_at"},
				ConflictKeys: []string{"id"},
				DeleteKey:    "serie_id",
			},
			{
				Name:         "tmdb_tv_series_credits",
				Columns:      []string{"id", "serie_id", "person_id", "department", "job", "character", "episode_count"},
				ConflictKeys: []string{"id"},
				DeleteKey:    "serie_id",
			},
			{
				Name:         "tmdb_tv_series_seasons",
				Columns:      []string{"id", "serie_id", "season_number", "vote_average", "vote_count", "poster_path"},
				ConflictKeys: []string{"id"},
				OnConflict:   UpsertUpdate,
				DeleteKey:    "serie_id",
				KeepStaged:   true,
			},
			{
				Name:         "tmdb_tv_series_seasons_credits",
				Columns:      []string{"credit_id", "season_id", `"order"`},
				ConflictKeys: []string{"credit_id", "season_id"},
				DeleteKey:    "season_id",
				DeleteScope:  "tmdb_tv_series_seasons",
			},
			{
				Name:         "tmdb_tv_series_seasons_translations",
				Columns:      []string{"season_id", "name", "overview", "iso_639_1", "iso_3166_1"},
				ConflictKeys: []string{"season_id", "iso_639_1", "iso_3166_1"},
				DeleteKey:    "season_id",
				DeleteScope:  "tmdb_tv_series_seasons",
			},
			{
				Name:         "tmdb_tv_series_episodes",
				Columns:      []string{"id", "season_id", "air_date", "episode_number", "episode_type", "name", "overview", "production_code", "runtime", "still_path", "vote_average", "vote_count"},
				ConflictKeys: []string{"id"},
				OnConflict:   UpsertUpdate,
				DeleteKey:    "season_id",
				DeleteScope:  "tmdb_tv_series_seasons",
				KeepStaged:   true,
			},
			{
				Name:         "tmdb_tv_series_episodes_credits",
				Columns:      []string{"credit_id", "episode_id"},
				ConflictKeys: []string{"credit_id", "episode_id"},
				DeleteKey:    "episode_id",
				DeleteScope:  "tmdb_tv_series_episodes",
			},
		},
		ChunkSize:        500,
		ExportName:       "tv_series_ids",
		ChangesPath:      "tv",
		UpdatePopularity: true,
		References:       []Kind{Language, Country, Genre, Keyword, Network, Company, Person},
	},
}
