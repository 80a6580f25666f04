// Cinegraph - TMDB Catalog Reconciliation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinegraph

package tmdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/cinegraph/internal/config"
)

func testConfig(baseURL string) *config.TMDBConfig {
	return &config.TMDBConfig{
		APIKeys:           []string{"key-a", "key-b"},
		BaseURL:           baseURL,
		ExportBaseURL:     baseURL + "/exports",
		RequestsPerSecond: 1000,
		Concurrency:       4,
		Timeout:           5 * time.Second,
		MaxRetries:        3,
		RetryBaseDelay:    time.Millisecond,
	}
}

func TestKeyPoolRotation(t *testing.T) {
	pool := NewKeyPool([]string{"a", "b", "c"})
	got := []string{pool.Next(), pool.Next(), pool.Next(), pool.Next()}
	assert.Equal(t, []string{"a", "b", "c", "a"}, got)
	assert.Equal(t, 3, pool.Size())
}

func TestKeyPoolEmpty(t *testing.T) {
	pool := NewKeyPool(nil)
	assert.Equal(t, "", pool.Next())
}

func TestGetInjectsRotatedAPIKey(t *testing.T) {
	var keys []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keys = append(keys, r.URL.Query().Get("api_key"))
		w.Write([]byte(`{"id": 603, "title": "The Matrix"}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))

	var out struct {
		ID    int64  `json:"id"`
		Title string `json:"title"`
	}
	require.NoError(t, c.Get(context.Background(), "movie/603", nil, &out))
	require.NoError(t, c.Get(context.Background(), "movie/604", nil, &out))

	assert.Equal(t, int64(603), out.ID)
	assert.Equal(t, []string{"key-a", "key-b"}, keys)
}

func TestGetRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch calls.Add(1) {
		case 1:
			w.WriteHeader(http.StatusServiceUnavailable)
		case 2:
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			w.Write([]byte(`{"id": 1}`))
		}
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))

	var out struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, c.Get(context.Background(), "movie/1", nil, &out))
	assert.Equal(t, int64(1), out.ID)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGetFailsFastOnNotFound(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))

	err := c.Get(context.Background(), "movie/999", nil, nil)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, int32(1), calls.Load(), "4xx must not be retried")
}

func TestGetExhaustsRetryBudget(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))

	err := c.Get(context.Background(), "movie/1", nil, nil)
	require.Error(t, err)

	var ue *UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, http.StatusInternalServerError, ue.StatusCode)
	assert.True(t, ue.Temporary())
	// Initial attempt plus MaxRetries.
	assert.Equal(t, int32(4), calls.Load())
}

func TestEndpointClass(t *testing.T) {
	assert.Equal(t, "movie", endpointClass("movie/603"))
	assert.Equal(t, "tv", endpointClass("tv/42/season/1"))
	assert.Equal(t, "configuration", endpointClass("configuration"))
}
