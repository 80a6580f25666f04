// Cinegraph - TMDB Catalog Reconciliation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinegraph

package search

import "sort"

// Field is one schema field of a collection.
type Field struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Optional bool   `json:"optional,omitempty"`
}

// CollectionSchema is the declared shape of one collection.
type CollectionSchema struct {
	Name                string  `json:"name"`
	Fields              []Field `json:"fields"`
	DefaultSortingField string  `json:"default_sorting_field,omitempty"`
}

// Normalized returns a copy with fields sorted by name, so stored and
// declared schemas compare independently of field order.
func (s *CollectionSchema) Normalized() *CollectionSchema {
	out := &CollectionSchema{
		Name:                s.Name,
		DefaultSortingField: s.DefaultSortingField,
		Fields:              append([]Field(nil), s.Fields...),
	}
	sort.Slice(out.Fields, func(i, j int) bool { return out.Fields[i].Name < out.Fields[j].Name })
	return out
}

// Matches reports whether two schemas agree after normalization. The
// server decorates stored schemas with extra attributes; only the
// declared surface is compared.
func (s *CollectionSchema) Matches(other *CollectionSchema) bool {
	a, b := s.Normalized(), other.Normalized()
	if a.Name != b.Name || a.DefaultSortingField != b.DefaultSortingField || len(a.Fields) != len(b.Fields) {
		return false
	}
	for i := range a.Fields {
		if a.Fields[i] != b.Fields[i] {
			return false
		}
	}
	return true
}

var movieSchema = CollectionSchema{
	Name: "movies",
	Fields: []Field{
		{Name: "original_title", Type: "string"},
		{Name: "titles", Type: "string[]"},
		{Name: "popularity", Type: "float"},
		{Name: "genre_ids", Type: "int32[]"},
		{Name: "runtime", Type: "int32", Optional: true},
		{Name: "release_date", Type: "int64", Optional: true},
	},
	DefaultSortingField: "popularity",
}

var serieSchema = CollectionSchema{
	Name: "tv_series",
	Fields: []Field{
		{Name: "original_name", Type: "string"},
		{Name: "names", Type: "string[]"},
		{Name: "popularity", Type: "float"},
		{Name: "genre_ids", Type: "int32[]"},
		{Name: "number_of_episodes", Type: "int32", Optional: true},
		{Name: "number_of_seasons", Type: "int32", Optional: true},
		{Name: "vote_average", Type: "float", Optional: true},
		{Name: "vote_count", Type: "int32", Optional: true},
		{Name: "status", Type: "string", Optional: true},
		{Name: "type", Type: "string", Optional: true},
		{Name: "first_air_date", Type: "int64", Optional: true},
		{Name: "last_air_date", Type: "int64", Optional: true},
	},
	DefaultSortingField: "popularity",
}

var personSchema = CollectionSchema{
	Name: "persons",
	Fields: []Field{
		{Name: "name", Type: "string"},
		{Name: "also_known_as", Type: "string[]"},
		{Name: "popularity", Type: "float"},
		{Name: "known_for_department", Type: "string", Optional: true},
	},
	DefaultSortingField: "popularity",
}
