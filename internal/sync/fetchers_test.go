// Cinegraph - TMDB Catalog Reconciliation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinegraph

package sync

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/cinegraph/internal/config"
	"github.com/tomtom215/cinegraph/internal/mapper"
	"github.com/tomtom215/cinegraph/internal/tmdb"
)

func testClient(baseURL string) *tmdb.Client {
	return tmdb.NewClient(&config.TMDBConfig{
		APIKeys:           []string{"key"},
		BaseURL:           baseURL,
		ExportBaseURL:     baseURL + "/exports",
		RequestsPerSecond: 1000,
		Concurrency:       4,
		Timeout:           5 * time.Second,
		MaxRetries:        0,
		RetryBaseDelay:    time.Millisecond,
	})
}

func testRefs() *mapper.Refs {
	return &mapper.Refs{
		Languages:   map[string]struct{}{"en": {}},
		Countries:   map[string]struct{}{"US": {}},
		Genres:      map[int64]struct{}{28: {}},
		Keywords:    map[int64]struct{}{},
		Collections: map[int64]struct{}{},
		Companies:   map[int64]struct{}{},
		Networks:    map[int64]struct{}{},
		Persons:     map[int64]struct{}{1: {}},
	}
}

func TestFetchMovieMergesImageRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/movie/603":
			assert.Contains(t, r.URL.Query().Get("append_to_response"), "credits")
			assert.Equal(t, "en,fr,es,ja,de", r.URL.Query().Get("include_video_language"))
			w.Write([]byte(`{"id": 603, "adult": false, "original_title": "The Matrix",
				"original_language": "en", "genres": [{"id": 28}]}`))
		case "/movie/603/images":
			w.Write([]byte(`{"posters": [{"file_path": "/p.jpg", "height": 100, "width": 50}]}`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	rows, err := fetchMovie(testClient(srv.URL))(context.Background(), 603, testRefs())
	require.NoError(t, err)

	require.Len(t, rows["tmdb_movie"], 1)
	assert.Equal(t, "603", rows["tmdb_movie"][0][0])
	assert.Equal(t, [][]string{{"603", "28"}}, rows["tmdb_movie_genres"])
	require.Len(t, rows["tmdb_movie_images"], 1)
	assert.Equal(t, "/p.jpg", rows["tmdb_movie_images"][0][1])
}

func TestFetchMovieSkipsAdult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": 1, "adult": true}`))
	}))
	defer srv.Close()

	_, err := fetchMovie(testClient(srv.URL))(context.Background(), 1, testRefs())
	assert.True(t, errors.Is(err, errSkipAdult))
}

func TestFetchSerieToleratesSeasonFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tv/42":
			assert.Contains(t, r.URL.Query().Get("append_to_response"), "aggregate_credits")
			assert.Equal(t, "en,fr,es,ja,de", r.URL.Query().Get("include_video_language"))
			w.Write([]byte(`{"id": 42, "original_name": "Show",
				"seasons": [{"id": 100, "season_number": 1}, {"id": 101, "season_number": 2}]}`))
		case "/tv/42/season/1":
			w.Write([]byte(`{"id": 100, "season_number": 1,
				"episodes": [{"id": 1000, "episode_number": 1, "name": "Pilot"}]}`))
		case "/tv/42/season/2":
			w.WriteHeader(http.StatusNotFound)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	rows, err := fetchSerie(testClient(srv.URL))(context.Background(), 42, testRefs())
	require.NoError(t, err)

	require.Len(t, rows["tmdb_tv_series"], 1)
	require.Len(t, rows["tmdb_tv_series_seasons"], 1, "failed season must be dropped")
	assert.Equal(t, "100", rows["tmdb_tv_series_seasons"][0][0])
	require.Len(t, rows["tmdb_tv_series_episodes"], 1)
}

func TestFetchPersonRequestsEachLanguage(t *testing.T) {
	var langs []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		langs = append(langs, r.URL.Query().Get("language"))
		w.Write([]byte(`{"id": 7, "name": "Someone", "biography": "bio"}`))
	}))
	defer srv.Close()

	rows, err := fetchPerson(testClient(srv.URL), []string{"fr"})(context.Background(), 7, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"en-US", "fr-FR"}, langs)
	require.Len(t, rows["tmdb_person"], 1)
	assert.Len(t, rows["tmdb_person_translation"], 2)
}

func TestFetchCompanyToleratesMissingSubResources(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/company/5":
			w.Write([]byte(`{"id": 5, "name": "Studio"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	rows, err := fetchCompany(testClient(srv.URL))(context.Background(), 5, nil)
	require.NoError(t, err)

	require.Len(t, rows["tmdb_company"], 1)
	assert.Empty(t, rows["tmdb_company_image"])
	assert.Empty(t, rows["tmdb_company_alternative_name"])
}

func TestNewEntityDriverRejectsReferenceKinds(t *testing.T) {
	_, err := NewEntityDriver("genre", nil, nil, &config.Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not export-driven")
}
