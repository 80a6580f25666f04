// Cinegraph - TMDB Catalog Reconciliation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinegraph

// Package mapper turns decoded TMDB API payloads into CSV rows shaped
// for the staging tables declared in internal/kinds. Mappers are pure:
// they never touch the network or the database, and foreign keys are
// filtered against pre-loaded reference sets so COPY never trips a
// constraint.
package mapper

import (
	"strconv"
	"strings"
	"time"
)

// RowSet groups staged rows by target table name.
type RowSet map[string][][]string

// Append merges other into rs.
func (rs RowSet) Append(other RowSet) {
	for table, rows := range other {
		rs[table] = append(rs[table], rows...)
	}
}

// Refs holds the primary-key sets of the reference kinds a mapper
// filters against. Rows pointing at a key absent from the set are
// dropped rather than breaking the load.
type Refs struct {
	Languages   map[string]struct{}
	Countries   map[string]struct{}
	Genres      map[int64]struct{}
	Keywords    map[int64]struct{}
	Collections map[int64]struct{}
	Companies   map[int64]struct{}
	Networks    map[int64]struct{}
	Persons     map[int64]struct{}
}

func (r *Refs) hasLanguage(code string) bool {
	_, ok := r.Languages[code]
	return ok
}

func (r *Refs) hasCountry(code string) bool {
	_, ok := r.Countries[code]
	return ok
}

func (r *Refs) hasGenre(id int64) bool {
	_, ok := r.Genres[id]
	return ok
}

func (r *Refs) hasKeyword(id int64) bool {
	_, ok := r.Keywords[id]
	return ok
}

func (r *Refs) hasCollection(id int64) bool {
	_, ok := r.Collections[id]
	return ok
}

func (r *Refs) hasCompany(id int64) bool {
	_, ok := r.Companies[id]
	return ok
}

func (r *Refs) hasNetwork(id int64) bool {
	_, ok := r.Networks[id]
	return ok
}

func (r *Refs) hasPerson(id int64) bool {
	_, ok := r.Persons[id]
	return ok
}

// Empty CSV fields load as NULL under COPY ... WITH CSV, so string
// formatting only has to leave absent values blank.

func formatInt(v int64) string { return strconv.FormatInt(v, 10) }

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatBool(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

// formatIntPtr renders a missing integer as NULL instead of zero.
func formatIntPtr(v *int64) string {
	if v == nil {
		return ""
	}
	return formatInt(*v)
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// textArray renders a Postgres text[] literal, quoting every element.
func textArray(elems []string) string {
	if len(elems) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteByte('{')
	for i, e := range elems {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(strings.ReplaceAll(e, `\`, `\\`), `"`, `\"`))
		b.WriteByte('"')
	}
	b.WriteByte('}')
	return b.String()
}

// splitLanguageTag splits a BCP 47 request tag like "fr-FR" into its
// language and region parts.
func splitLanguageTag(tag string) (iso639, iso3166 string) {
	lang, region, found := strings.Cut(tag, "-")
	if !found {
		return tag, ""
	}
	return lang, region
}

// externalSource normalizes an external-id payload key ("imdb_id") to
// its bare source name ("imdb").
func externalSource(key string) string {
	return strings.TrimSuffix(key, "_id")
}
