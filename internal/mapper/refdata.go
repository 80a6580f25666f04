// Cinegraph - TMDB Catalog Reconciliation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinegraph

package mapper

import "sort"

// GenreEntry is one element of a /genre/<media>/list response.
type GenreEntry struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// GenreRows maps the per-language genre listings. byLanguage is keyed
// by language code; the default language defines the tmdb_genre key
// set and every language contributes localized names.
func GenreRows(byLanguage map[string][]GenreEntry, defaultLanguage string) RowSet {
	rs := RowSet{}

	for _, g := range byLanguage[defaultLanguage] {
		rs["tmdb_genre"] = append(rs["tmdb_genre"], []string{formatInt(g.ID)})
	}

	languages := make([]string, 0, len(byLanguage))
	for lang := range byLanguage {
		languages = append(languages, lang)
	}
	sort.Strings(languages)
	for _, lang := range languages {
		for _, g := range byLanguage[lang] {
			rs["tmdb_genre_translation"] = append(rs["tmdb_genre_translation"],
				[]string{formatInt(g.ID), g.Name, lang})
		}
	}
	return rs
}

// KeywordRows maps export-supplied keyword names, sorted by id for
// stable output.
func KeywordRows(names map[int64]string) RowSet {
	ids := make([]int64, 0, len(names))
	for id := range names {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	rs := RowSet{}
	for _, id := range ids {
		rs["tmdb_keyword"] = append(rs["tmdb_keyword"], []string{formatInt(id), names[id]})
	}
	return rs
}

// LanguageEntry is one element of /configuration/languages.
type LanguageEntry struct {
	ISO639      string `json:"iso_639_1"`
	EnglishName string `json:"english_name"`
	Name        string `json:"name"`
}

// LanguageRows maps the language listing to tmdb_language plus
// English display names keyed by the default language code.
func LanguageRows(languages []LanguageEntry, defaultLanguage string) RowSet {
	rs := RowSet{}
	for _, l := range languages {
		rs["tmdb_language"] = append(rs["tmdb_language"], []string{l.ISO639, l.Name})
		rs["tmdb_language_translation"] = append(rs["tmdb_language_translation"],
			[]string{l.ISO639, l.EnglishName, defaultLanguage})
	}
	return rs
}

// CountryEntry is one element of /configuration/countries.
type CountryEntry struct {
	ISO3166     string `json:"iso_3166_1"`
	EnglishName string `json:"english_name"`
	NativeName  string `json:"native_name"`
}

// CountryRows maps the country listing. The default language takes
// the English name; each extra language row carries the native name
// the endpoint localized for that request.
func CountryRows(byLanguage map[string][]CountryEntry, defaultLanguage string) RowSet {
	rs := RowSet{}

	for _, c := range byLanguage[defaultLanguage] {
		rs["tmdb_country"] = append(rs["tmdb_country"], []string{c.ISO3166})
		rs["tmdb_country_translation"] = append(rs["tmdb_country_translation"],
			[]string{c.ISO3166, c.EnglishName, defaultLanguage})
	}

	languages := make([]string, 0, len(byLanguage))
	for lang := range byLanguage {
		if lang != defaultLanguage {
			languages = append(languages, lang)
		}
	}
	sort.Strings(languages)
	for _, lang := range languages {
		for _, c := range byLanguage[lang] {
			rs["tmdb_country_translation"] = append(rs["tmdb_country_translation"],
				[]string{c.ISO3166, c.NativeName, lang})
		}
	}
	return rs
}
