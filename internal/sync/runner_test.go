// Cinegraph - TMDB Catalog Reconciliation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinegraph

package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/cinegraph/internal/config"
	"github.com/tomtom215/cinegraph/internal/kinds"
)

func TestSelectKindsFollowsRunOrder(t *testing.T) {
	cfg := &config.Config{}
	cfg.Sync.Serie = true
	cfg.Sync.Language = true
	cfg.Sync.Movie = true

	r := NewRunner(nil, nil, cfg)
	selected, err := r.selectKinds(nil)
	require.NoError(t, err)
	assert.Equal(t, []kinds.Kind{kinds.Language, kinds.Movie, kinds.Serie}, selected)
}

func TestSelectKindsOnlyOverridesConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Sync.Movie = true

	r := NewRunner(nil, nil, cfg)
	selected, err := r.selectKinds([]string{"keyword", "genre"})
	require.NoError(t, err)
	assert.Equal(t, []kinds.Kind{kinds.Genre, kinds.Keyword}, selected)
}

func TestSelectKindsRejectsUnknown(t *testing.T) {
	r := NewRunner(nil, nil, &config.Config{})
	_, err := r.selectKinds([]string{"album"})
	require.Error(t, err)
}

func TestDateDefaultsToTodayUTC(t *testing.T) {
	r := NewRunner(nil, nil, &config.Config{})
	date, err := r.Date()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, date.Location())
	assert.Equal(t, 0, date.Hour())
}

func TestDateHonorsOverride(t *testing.T) {
	cfg := &config.Config{}
	cfg.Sync.CurrentDate = "2026-08-01"
	r := NewRunner(nil, nil, cfg)

	date, err := r.Date()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), date)
}

func TestLocaleTag(t *testing.T) {
	assert.Equal(t, "en-US", localeTag("en"))
	assert.Equal(t, "fr-FR", localeTag("fr"))
	assert.Equal(t, "eo", localeTag("eo"), "unknown codes pass through")
}

func TestExtraLanguageCodesFiltersDefault(t *testing.T) {
	assert.Equal(t, []string{"fr", "ja"}, extraLanguageCodes([]string{"fr", "en", "", "ja"}))
	assert.Nil(t, extraLanguageCodes([]string{"en"}))
}
