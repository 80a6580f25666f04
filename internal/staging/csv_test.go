// Cinegraph - TMDB Catalog Reconciliation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinegraph

package staging

import (
	"encoding/csv"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestNewWritesHeader(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, "tmdb_movie", []string{"id", "popularity"})
	require.NoError(t, err)
	defer s.Delete()

	require.NoError(t, s.Flush())
	records := readAll(t, s.Path())
	require.Len(t, records, 1)
	assert.Equal(t, []string{"id", "popularity"}, records[0])
	assert.True(t, s.Empty())
	assert.True(t, strings.HasPrefix(s.Path(), dir))
	assert.Contains(t, s.Path(), "tmdb_movie_")
}

func TestUniqueFilenames(t *testing.T) {
	dir := t.TempDir()
	a, err := New(dir, "x", []string{"id"})
	require.NoError(t, err)
	defer a.Delete()
	b, err := New(dir, "x", []string{"id"})
	require.NoError(t, err)
	defer b.Delete()

	assert.NotEqual(t, a.Path(), b.Path())
}

func TestAppendRejectsBadWidth(t *testing.T) {
	s, err := New(t.TempDir(), "x", []string{"id", "name"})
	require.NoError(t, err)
	defer s.Delete()

	assert.Error(t, s.Append([][]string{{"1"}}))
	assert.NoError(t, s.Append([][]string{{"1", "a"}}))
}

func TestDedupKeepsLastOccurrence(t *testing.T) {
	s, err := New(t.TempDir(), "x", []string{"movie_id", "iso_3166_1", "title"})
	require.NoError(t, err)
	defer s.Delete()

	require.NoError(t, s.Append([][]string{
		{"1", "US", "first"},
		{"2", "FR", "keep"},
		{"1", "US", "second"},
		{"1", "DE", "keep"},
		{"1", "US", "third"},
	}))
	require.NoError(t, s.Dedup([]string{"movie_id", "iso_3166_1"}))

	records := readAll(t, s.Path())
	require.Len(t, records, 4)
	assert.Equal(t, []string{"2", "FR", "keep"}, records[1])
	assert.Equal(t, []string{"1", "DE", "keep"}, records[2])
	assert.Equal(t, []string{"1", "US", "third"}, records[3])
	assert.Equal(t, 3, s.Rows())
}

func TestDedupIsIdempotent(t *testing.T) {
	s, err := New(t.TempDir(), "x", []string{"id", "v"})
	require.NoError(t, err)
	defer s.Delete()

	require.NoError(t, s.Append([][]string{{"1", "a"}, {"1", "b"}, {"2", "c"}}))
	require.NoError(t, s.Dedup([]string{"id"}))
	first := readAll(t, s.Path())
	require.NoError(t, s.Dedup([]string{"id"}))
	assert.Equal(t, first, readAll(t, s.Path()))
}

func TestDedupUnknownKey(t *testing.T) {
	s, err := New(t.TempDir(), "x", []string{"id"})
	require.NoError(t, err)
	defer s.Delete()

	require.NoError(t, s.Append([][]string{{"1"}}))
	assert.Error(t, s.Dedup([]string{"nope"}))
}

func TestAppendAfterDedup(t *testing.T) {
	s, err := New(t.TempDir(), "x", []string{"id"})
	require.NoError(t, err)
	defer s.Delete()

	require.NoError(t, s.Append([][]string{{"1"}, {"1"}}))
	require.NoError(t, s.Dedup([]string{"id"}))
	require.NoError(t, s.Append([][]string{{"2"}}))
	require.NoError(t, s.Flush())

	records := readAll(t, s.Path())
	assert.Equal(t, [][]string{{"id"}, {"1"}, {"2"}}, records)
}

func TestDeleteRemovesFile(t *testing.T) {
	s, err := New(t.TempDir(), "x", []string{"id"})
	require.NoError(t, err)
	path := s.Path()

	require.NoError(t, s.Delete())
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))

	// Second delete is a no-op.
	assert.NoError(t, s.Delete())
}
