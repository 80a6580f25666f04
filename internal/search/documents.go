// Cinegraph - TMDB Catalog Reconciliation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinegraph

package search

import (
	"sort"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
)

// MovieDocument is the denormalized movie record stored in the index.
// Document ids are strings by protocol.
type MovieDocument struct {
	ID            string   `json:"id"`
	OriginalTitle string   `json:"original_title"`
	Titles        []string `json:"titles"`
	Popularity    float64  `json:"popularity"`
	GenreIDs      []int32  `json:"genre_ids"`
	Runtime       *int32   `json:"runtime,omitempty"`
	ReleaseDate   *int64   `json:"release_date,omitempty"`
}

type SerieDocument struct {
	ID               string   `json:"id"`
	OriginalName     string   `json:"original_name"`
	Names            []string `json:"names"`
	Popularity       float64  `json:"popularity"`
	GenreIDs         []int32  `json:"genre_ids"`
	NumberOfEpisodes *int32   `json:"number_of_episodes,omitempty"`
	NumberOfSeasons  *int32   `json:"number_of_seasons,omitempty"`
	VoteAverage      *float64 `json:"vote_average,omitempty"`
	VoteCount        *int32   `json:"vote_count,omitempty"`
	Status           string   `json:"status,omitempty"`
	Type             string   `json:"type,omitempty"`
	FirstAirDate     *int64   `json:"first_air_date,omitempty"`
	LastAirDate      *int64   `json:"last_air_date,omitempty"`
}

type PersonDocument struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	AlsoKnownAs        []string `json:"also_known_as"`
	Popularity         float64  `json:"popularity"`
	KnownForDepartment string   `json:"known_for_department,omitempty"`
}

// titleSet merges translated titles with the original one, trimmed and
// deduplicated, sorted for stable documents.
func titleSet(titles []string, original string) []string {
	seen := make(map[string]struct{}, len(titles)+1)
	for _, t := range titles {
		if t = strings.TrimSpace(t); t != "" {
			seen[t] = struct{}{}
		}
	}
	if original = strings.TrimSpace(original); original != "" {
		seen[original] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

func scanMovie(rows pgx.Rows) (any, int64, error) {
	var (
		id            int64
		originalTitle *string
		popularity    *float64
		genreIDs      []int32
		runtime       *int32
		releaseTS     *int64
		titles        []string
	)
	if err := rows.Scan(&id, &originalTitle, &popularity, &genreIDs, &runtime, &releaseTS, &titles); err != nil {
		return nil, 0, err
	}

	original := ""
	if originalTitle != nil {
		original = *originalTitle
	}
	doc := &MovieDocument{
		ID:            strconv.FormatInt(id, 10),
		OriginalTitle: original,
		Titles:        titleSet(titles, original),
		Popularity:    deref(popularity),
		GenreIDs:      genreIDs,
		Runtime:       runtime,
		ReleaseDate:   releaseTS,
	}
	if doc.GenreIDs == nil {
		doc.GenreIDs = []int32{}
	}
	return doc, id, nil
}

func scanSerie(rows pgx.Rows) (any, int64, error) {
	var (
		id           int64
		originalName *string
		popularity   *float64
		genreIDs     []int32
		episodes     *int32
		seasons      *int32
		voteAverage  *float64
		voteCount    *int32
		status       *string
		serieType    *string
		firstAirTS   *int64
		lastAirTS    *int64
		names        []string
	)
	if err := rows.Scan(&id, &originalName, &popularity, &genreIDs, &episodes, &seasons,
		&voteAverage, &voteCount, &status, &serieType, &firstAirTS, &lastAirTS, &names); err != nil {
		return nil, 0, err
	}

	original := ""
	if originalName != nil {
		original = *originalName
	}
	doc := &SerieDocument{
		ID:               strconv.FormatInt(id, 10),
		OriginalName:     original,
		Names:            titleSet(names, original),
		Popularity:       deref(popularity),
		GenreIDs:         genreIDs,
		NumberOfEpisodes: episodes,
		NumberOfSeasons:  seasons,
		VoteAverage:      voteAverage,
		VoteCount:        voteCount,
		FirstAirDate:     firstAirTS,
		LastAirDate:      lastAirTS,
	}
	if status != nil {
		doc.Status = *status
	}
	if serieType != nil {
		doc.Type = *serieType
	}
	if doc.GenreIDs == nil {
		doc.GenreIDs = []int32{}
	}
	return doc, id, nil
}

func scanPerson(rows pgx.Rows) (any, int64, error) {
	var (
		id          int64
		name        *string
		popularity  *float64
		department  *string
		alsoKnownAs []string
	)
	if err := rows.Scan(&id, &name, &popularity, &department, &alsoKnownAs); err != nil {
		return nil, 0, err
	}

	doc := &PersonDocument{
		ID:          strconv.FormatInt(id, 10),
		AlsoKnownAs: titleSet(alsoKnownAs, ""),
		Popularity:  deref(popularity),
	}
	if name != nil {
		doc.Name = *name
	}
	if department != nil {
		doc.KnownForDepartment = *department
	}
	return doc, id, nil
}
