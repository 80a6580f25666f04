// Cinegraph - TMDB Catalog Reconciliation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinegraph

package sync

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/cinegraph/internal/kinds"
)

func TestNewChunkFilesCreatesOnePerTable(t *testing.T) {
	dir := t.TempDir()
	tables := []kinds.Table{
		{Name: "tmdb_movie", Columns: []string{"id", "title"}},
		{Name: "tmdb_movie_genres", Columns: []string{"movie_id", "genre_id"}},
	}

	files, err := newChunkFiles(dir, tables)
	require.NoError(t, err)
	defer deleteStaged(files)

	require.Len(t, files, 2)
	assert.Equal(t, []string{"id", "title"}, files["tmdb_movie"].Columns())
}

func TestNewChunkFilesRemovesPartialSet(t *testing.T) {
	dir := t.TempDir()
	tables := []kinds.Table{
		{Name: "tmdb_movie", Columns: []string{"id"}},
		// A prefix pointing into a missing subdirectory fails creation
		// after the first file already exists.
		{Name: "missing/tmdb_movie_genres", Columns: []string{"movie_id"}},
	}

	files, err := newChunkFiles(dir, tables)
	require.Error(t, err)
	assert.Nil(t, files)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "files from the failed chunk must not linger")
}
