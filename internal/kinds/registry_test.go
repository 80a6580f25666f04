// Cinegraph - TMDB Catalog Reconciliation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinegraph

package kinds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUnknownKind(t *testing.T) {
	_, err := Get(Kind("franchise"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "franchise")
}

func TestOrderCoversRegistry(t *testing.T) {
	assert.Len(t, Order, len(registry))
	seen := make(map[Kind]bool)
	for _, k := range Order {
		_, err := Get(k)
		require.NoError(t, err, "kind %s in Order but not registered", k)
		assert.False(t, seen[k], "kind %s listed twice", k)
		seen[k] = true
	}
}

func TestReferencesRunBeforeDependents(t *testing.T) {
	position := make(map[Kind]int)
	for i, k := range Order {
		position[k] = i
	}
	for _, spec := range All() {
		for _, ref := range spec.References {
			refPos, ok := position[ref]
			require.True(t, ok, "%s references unknown kind %s", spec.Kind, ref)
			assert.Less(t, refPos, position[spec.Kind],
				"%s must run after its reference %s", spec.Kind, ref)
		}
	}
}

func TestTableShapes(t *testing.T) {
	for _, spec := range All() {
		for _, table := range spec.Tables() {
			assert.NotEmpty(t, table.Name, "%s has unnamed table", spec.Kind)
			assert.NotEmpty(t, table.Columns, "%s missing columns", table.Name)

			cols := make(map[string]bool, len(table.Columns))
			for _, c := range table.Columns {
				assert.False(t, cols[c], "%s declares column %s twice", table.Name, c)
				cols[c] = true
			}
			for _, key := range table.ConflictKeys {
				assert.True(t, cols[key], "%s conflict key %s is not a column", table.Name, key)
			}
			if table.DeleteKey != "" {
				assert.True(t, cols[table.DeleteKey], "%s delete key %s is not a column", table.Name, table.DeleteKey)
			}
			if table.KeepStaged {
				assert.NotEmpty(t, table.DeleteKey, "%s keeps staged rows but has no scoping key", table.Name)
				assert.Equal(t, UpsertUpdate, table.OnConflict, "%s keeps staged rows so it must upsert", table.Name)
			}
		}
	}
}

func TestDeleteScopesAreStagedTables(t *testing.T) {
	for _, spec := range All() {
		staged := make(map[string]bool, len(spec.Children)+1)
		for _, table := range spec.Tables() {
			staged[table.Name] = true
		}
		for _, child := range spec.Children {
			if child.DeleteScope != "" {
				assert.True(t, staged[child.DeleteScope],
					"%s delete scope %s is not staged by kind %s", child.Name, child.DeleteScope, spec.Kind)
			}
		}
	}
}

func TestSerieSeasonCarveOut(t *testing.T) {
	spec, err := Get(Serie)
	require.NoError(t, err)

	var season, episode *Table
	for i := range spec.Children {
		switch spec.Children[i].Name {
		case "tmdb_tv_series_seasons":
			season = &spec.Children[i]
		case "tmdb_tv_series_episodes":
			episode = &spec.Children[i]
		}
	}
	require.NotNil(t, season)
	require.NotNil(t, episode)

	assert.True(t, season.KeepStaged)
	assert.Equal(t, "serie_id", season.DeleteKey)
	assert.Empty(t, season.DeleteScope, "season prune is scoped by the staged series")

	assert.True(t, episode.KeepStaged)
	assert.Equal(t, "season_id", episode.DeleteKey)
	assert.Equal(t, "tmdb_tv_series_seasons", episode.DeleteScope)
}

func TestMovieRolesSkipPreDelete(t *testing.T) {
	spec, err := Get(Movie)
	require.NoError(t, err)
	for _, child := range spec.Children {
		if child.Name == "tmdb_movie_roles" {
			assert.Empty(t, child.DeleteKey)
			return
		}
	}
	t.Fatal("movie roles table not registered")
}

func TestSyncTypeMatchesPrimaryTable(t *testing.T) {
	spec, err := Get(Language)
	require.NoError(t, err)
	assert.Equal(t, "tmdb_language", spec.SyncType())
}
