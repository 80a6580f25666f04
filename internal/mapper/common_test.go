// Cinegraph - TMDB Catalog Reconciliation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinegraph

package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextArray(t *testing.T) {
	tests := []struct {
		name  string
		elems []string
		want  string
	}{
		{"empty", nil, ""},
		{"single", []string{"violence"}, `{"violence"}`},
		{"multiple", []string{"a", "b"}, `{"a","b"}`},
		{"quotes escaped", []string{`say "hi"`}, `{"say \"hi\""}`},
		{"backslash escaped", []string{`a\b`}, `{"a\\b"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, textArray(tt.elems))
		})
	}
}

func TestSplitLanguageTag(t *testing.T) {
	lang, region := splitLanguageTag("fr-FR")
	assert.Equal(t, "fr", lang)
	assert.Equal(t, "FR", region)

	lang, region = splitLanguageTag("en")
	assert.Equal(t, "en", lang)
	assert.Empty(t, region)
}

func TestExternalIDRowsSkipEmptyAndSort(t *testing.T) {
	rows := externalIDRows("42", map[string]any{
		"wikidata_id":  "Q555",
		"imdb_id":      "tt0137523",
		"facebook_id":  "",
		"tvdb_id":      float64(0),
		"instagram_id": nil,
	})

	assert.Equal(t, [][]string{
		{"42", "imdb", "tt0137523"},
		{"42", "wikidata", "Q555"},
	}, rows)
}

func TestFormatFloatDropsTrailingZeros(t *testing.T) {
	assert.Equal(t, "7.3", formatFloat(7.3))
	assert.Equal(t, "0", formatFloat(0))
}

func TestRowSetAppend(t *testing.T) {
	rs := RowSet{"a": {{"1"}}}
	rs.Append(RowSet{"a": {{"2"}}, "b": {{"3"}}})
	assert.Len(t, rs["a"], 2)
	assert.Len(t, rs["b"], 1)
}
