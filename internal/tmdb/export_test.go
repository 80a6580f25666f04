// Cinegraph - TMDB Catalog Reconciliation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinegraph

package tmdb

import (
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gzipBody(t *testing.T, lines ...string) []byte {
	t.Helper()
	var buf strings.Builder
	gzw := gzip.NewWriter(nopWriteCloser{&buf})
	_, err := gzw.Write([]byte(strings.Join(lines, "\n")))
	require.NoError(t, err)
	require.NoError(t, gzw.Close())
	return []byte(buf.String())
}

type nopWriteCloser struct{ w *strings.Builder }

func (n nopWriteCloser) Write(p []byte) (int, error) { return n.w.Write(p) }

func TestStreamExportParsesGzippedLines(t *testing.T) {
	date := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	var requested string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = r.URL.Path
		w.Write(gzipBody(t,
			`{"adult":false,"id":3924,"original_title":"Blondie","popularity":2.569,"video":false}`,
			`{"adult":true,"id":5,"popularity":9.1}`,
			``,
			`{"adult":false,"id":6,"popularity":0.5}`,
		))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))

	var rows []ExportRow
	err := c.StreamExport(context.Background(), "movie_ids", date, func(chunk []ExportRow) error {
		rows = append(rows, chunk...)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, "/exports/movie_ids_01_02_2024.json.gz", requested)
	require.Len(t, rows, 3)
	assert.Equal(t, int64(3924), rows[0].ID)
	assert.InDelta(t, 2.569, rows[0].Popularity, 1e-9)
	assert.True(t, rows[1].Adult)
}

func TestExportIDsDropsAdultRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(gzipBody(t,
			`{"adult":false,"id":1,"popularity":1.5}`,
			`{"adult":true,"id":2,"popularity":2.5}`,
			`{"adult":false,"id":3,"popularity":3.5}`,
		))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))

	ids, err := c.ExportIDs(context.Background(), "movie_ids", time.Now())
	require.NoError(t, err)
	assert.Equal(t, map[int64]float64{1: 1.5, 3: 3.5}, ids)
}

func TestExportNames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(gzipBody(t,
			`{"id":30,"name":"individual"}`,
			`{"id":212,"name":"london england"}`,
		))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))

	names, err := c.ExportNames(context.Background(), "keyword_ids", time.Now())
	require.NoError(t, err)
	assert.Equal(t, map[int64]string{30: "individual", 212: "london england"}, names)
}

func TestStreamExportMissingFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))

	err := c.StreamExport(context.Background(), "movie_ids", time.Now(), func([]ExportRow) error { return nil })
	assert.ErrorIs(t, err, ErrExportUnavailable)
}

func TestStreamExportEmptyFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(gzipBody(t))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))

	err := c.StreamExport(context.Background(), "movie_ids", time.Now(), func([]ExportRow) error { return nil })
	assert.ErrorIs(t, err, ErrExportUnavailable)
}
