// Cinegraph - TMDB Catalog Reconciliation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinegraph

package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenreRows(t *testing.T) {
	rs := GenreRows(map[string][]GenreEntry{
		"en": {{ID: 18, Name: "Drama"}, {ID: 35, Name: "Comedy"}},
		"fr": {{ID: 18, Name: "Drame"}},
	}, "en")

	assert.Equal(t, [][]string{{"18"}, {"35"}}, rs["tmdb_genre"])
	assert.Equal(t, [][]string{
		{"18", "Drama", "en"},
		{"35", "Comedy", "en"},
		{"18", "Drame", "fr"},
	}, rs["tmdb_genre_translation"])
}

func TestKeywordRowsSortedByID(t *testing.T) {
	rs := KeywordRows(map[int64]string{30: "fight", 10: "club"})
	assert.Equal(t, [][]string{{"10", "club"}, {"30", "fight"}}, rs["tmdb_keyword"])
}

func TestLanguageRows(t *testing.T) {
	rs := LanguageRows([]LanguageEntry{
		{ISO639: "fr", EnglishName: "French", Name: "Français"},
	}, "en")

	assert.Equal(t, [][]string{{"fr", "Français"}}, rs["tmdb_language"])
	assert.Equal(t, [][]string{{"fr", "French", "en"}}, rs["tmdb_language_translation"])
}

func TestCountryRowsDefaultAndExtraLanguages(t *testing.T) {
	rs := CountryRows(map[string][]CountryEntry{
		"en": {{ISO3166: "FR", EnglishName: "France", NativeName: "France"}},
		"fr": {{ISO3166: "FR", EnglishName: "France", NativeName: "France métropolitaine"}},
	}, "en")

	assert.Equal(t, [][]string{{"FR"}}, rs["tmdb_country"])
	assert.Equal(t, [][]string{
		{"FR", "France", "en"},
		{"FR", "France métropolitaine", "fr"},
	}, rs["tmdb_country_translation"])
}

func TestPersonRows(t *testing.T) {
	rs := PersonRows(map[string]*PersonDetails{
		"en": {
			ID: 819, Name: "Edward Norton", AlsoKnownAs: []string{"Ed Norton"},
			Birthday: "1969-08-18", Gender: 2, IMDbID: "nm0001570",
			KnownForDepartment: "Acting", Popularity: 21.5, Biography: "An actor.",
		},
		"fr": {ID: 819, Biography: "Un acteur."},
	}, "en")

	require.Len(t, rs["tmdb_person"], 1)
	row := rs["tmdb_person"][0]
	assert.Equal(t, "819", row[0])
	assert.Equal(t, `{"Ed Norton"}`, row[2])
	assert.Equal(t, "nm0001570", row[7])
	assert.Equal(t, "Edward Norton", row[9])

	assert.Equal(t, [][]string{
		{"819", "An actor.", "en"},
		{"819", "Un acteur.", "fr"},
	}, rs["tmdb_person_translation"])
}

func TestPersonRowsMissingDefaultLanguage(t *testing.T) {
	rs := PersonRows(map[string]*PersonDetails{"fr": {ID: 819}}, "en")
	assert.Empty(t, rs)
}

func TestCollectionRows(t *testing.T) {
	rs := CollectionRows(map[string]*CollectionDetails{
		"en-US": {ID: 1000, Name: "Star Wars Collection", Overview: "A saga."},
		"fr-FR": {ID: 1000, Name: "Saga Star Wars"},
		"de-DE": {},
	}, "en-US")

	assert.Equal(t, [][]string{{"1000", "Star Wars Collection"}}, rs["tmdb_collection"])
	assert.Equal(t, [][]string{
		{"1000", "Star Wars Collection", "A saga.", "", "en", "US"},
		{"1000", "Saga Star Wars", "", "", "fr", "FR"},
	}, rs["tmdb_collection_translation"])
}

func TestCompanyRows(t *testing.T) {
	rs := CompanyRows(
		&CompanyDetails{ID: 508, Name: "Regency", OriginCountry: "US", ParentCompany: &IDRef{ID: 104}},
		&LogoList{Logos: []LogoImage{{ID: "abc", FilePath: "/r.png", FileType: ".png"}}},
		&AlternativeNameList{Results: []AlternativeName{{Name: "Regency Enterprises"}}},
	)

	assert.Equal(t, [][]string{{"508", "Regency", "", "", "", "US", "104"}}, rs["tmdb_company"])
	require.Len(t, rs["tmdb_company_image"], 1)
	assert.Equal(t, "abc", rs["tmdb_company_image"][0][0])
	assert.Equal(t, [][]string{{"508", "Regency Enterprises"}}, rs["tmdb_company_alternative_name"])
}

func TestNetworkRows(t *testing.T) {
	rs := NetworkRows(
		&NetworkDetails{ID: 213, Name: "Netflix", OriginCountry: "US"},
		nil,
		&AlternativeNameList{Results: []AlternativeName{{Name: "Netflix Originals", Type: "brand"}}},
	)

	assert.Equal(t, [][]string{{"213", "Netflix", "", "", "US"}}, rs["tmdb_network"])
	assert.Empty(t, rs["tmdb_network_image"])
	assert.Equal(t, [][]string{{"213", "Netflix Originals", "brand"}}, rs["tmdb_network_alternative_name"])
}
