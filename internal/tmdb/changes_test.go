// Cinegraph - TMDB Catalog Reconciliation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinegraph

package tmdb

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangedIDsPaginates(t *testing.T) {
	pages := map[string]string{
		"1": `{"results":[{"id":1},{"id":2,"adult":false}],"page":1,"total_pages":3,"total_results":5}`,
		"2": `{"results":[{"id":3},{"id":4,"adult":true}],"page":2,"total_pages":3,"total_results":5}`,
		"3": `{"results":[{"id":5}],"page":3,"total_pages":3,"total_results":5}`,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/movie/changes", r.URL.Path)
		assert.Equal(t, "2024-01-01", r.URL.Query().Get("start_date"))
		assert.Equal(t, "2024-01-02", r.URL.Query().Get("end_date"))
		fmt.Fprint(w, pages[r.URL.Query().Get("page")])
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	ids, err := c.ChangedIDs(context.Background(), "movie", start, end)
	require.NoError(t, err)

	// Adult-flagged change is dropped; the count mismatch against
	// total_results is a warning only.
	assert.Equal(t, map[int64]struct{}{1: {}, 2: {}, 3: {}, 5: {}}, ids)
}

func TestChangedIDsSinglePage(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `{"results":[{"id":7}],"page":1,"total_pages":1,"total_results":1}`)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))

	ids, err := c.ChangedIDs(context.Background(), "person", time.Now(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, map[int64]struct{}{7: {}}, ids)
	assert.Equal(t, 1, calls)
}

func TestChangedIDsFirstPageError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))

	_, err := c.ChangedIDs(context.Background(), "tv", time.Now(), time.Now())
	assert.Error(t, err)
}
