// Cinegraph - TMDB Catalog Reconciliation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinegraph

package mapper

import (
	"sort"
	"strconv"
	"time"
)

// MovieDetails is the movie detail payload with every sub-resource the
// pipeline appends in a single request, plus the image set fetched
// separately (the appended variant only carries the request language).
type MovieDetails struct {
	ID                  int64    `json:"id"`
	Adult               bool     `json:"adult"`
	Budget              int64    `json:"budget"`
	OriginalLanguage    string   `json:"original_language"`
	OriginalTitle       string   `json:"original_title"`
	Popularity          float64  `json:"popularity"`
	Revenue             int64    `json:"revenue"`
	Status              string   `json:"status"`
	VoteAverage         float64  `json:"vote_average"`
	VoteCount           int64    `json:"vote_count"`
	BelongsToCollection *IDRef   `json:"belongs_to_collection"`
	OriginCountry       []string `json:"origin_country"`

	AlternativeTitles struct {
		Titles []AlternativeTitle `json:"titles"`
	} `json:"alternative_titles"`
	Credits     CreditList     `json:"credits"`
	ExternalIDs map[string]any `json:"external_ids"`
	Genres      []IDRef        `json:"genres"`
	Images      ImageSet       `json:"images"`
	Keywords    struct {
		Keywords []IDRef `json:"keywords"`
	} `json:"keywords"`
	ProductionCompanies []IDRef `json:"production_companies"`
	ProductionCountries []struct {
		ISO3166 string `json:"iso_3166_1"`
	} `json:"production_countries"`
	ReleaseDates struct {
		Results []ReleaseDateGroup `json:"results"`
	} `json:"release_dates"`
	SpokenLanguages []struct {
		ISO639 string `json:"iso_639_1"`
	} `json:"spoken_languages"`
	Translations TranslationList `json:"translations"`
	Videos       struct {
		Results []Video `json:"results"`
	} `json:"videos"`
}

// IDRef is any referenced sub-object where only the id matters.
type IDRef struct {
	ID int64 `json:"id"`
}

type AlternativeTitle struct {
	ISO3166 string `json:"iso_3166_1"`
	Title   string `json:"title"`
	Type    string `json:"type"`
}

type CreditList struct {
	Cast []CastCredit `json:"cast"`
	Crew []CrewCredit `json:"crew"`
}

type CastCredit struct {
	CreditID  string `json:"credit_id"`
	PersonID  int64  `json:"id"`
	Character string `json:"character"`
	Order     int64  `json:"order"`
}

type CrewCredit struct {
	CreditID   string `json:"credit_id"`
	PersonID   int64  `json:"id"`
	Department string `json:"department"`
	Job        string `json:"job"`
}

type ImageSet struct {
	Backdrops []Image `json:"backdrops"`
	Posters   []Image `json:"posters"`
	Logos     []Image `json:"logos"`
}

type Image struct {
	FilePath    string  `json:"file_path"`
	AspectRatio float64 `json:"aspect_ratio"`
	Height      int64   `json:"height"`
	Width       int64   `json:"width"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int64   `json:"vote_count"`
	ISO639      string  `json:"iso_639_1"`
}

type ReleaseDateGroup struct {
	ISO3166      string        `json:"iso_3166_1"`
	ReleaseDates []ReleaseDate `json:"release_dates"`
}

type ReleaseDate struct {
	Certification string   `json:"certification"`
	Descriptors   []string `json:"descriptors"`
	ISO639        string   `json:"iso_639_1"`
	Note          string   `json:"note"`
	ReleaseDate   string   `json:"release_date"`
	Type          int64    `json:"type"`
}

type TranslationList struct {
	Translations []Translation `json:"translations"`
}

type Translation struct {
	ISO639  string          `json:"iso_639_1"`
	ISO3166 string          `json:"iso_3166_1"`
	Data    TranslationData `json:"data"`
}

type TranslationData struct {
	Homepage string `json:"homepage"`
	Name     string `json:"name"`
	Overview string `json:"overview"`
	Runtime  int64  `json:"runtime"`
	Tagline  string `json:"tagline"`
	Title    string `json:"title"`
}

type Video struct {
	ID          string `json:"id"`
	ISO639      string `json:"iso_639_1"`
	ISO3166     string `json:"iso_3166_1"`
	Name        string `json:"name"`
	Key         string `json:"key"`
	Site        string `json:"site"`
	Size        int64  `json:"size"`
	Type        string `json:"type"`
	Official    bool   `json:"official"`
	PublishedAt string `json:"published_at"`
}

// MovieRows maps one movie payload to rows for tmdb_movie and its
// child tables.
func MovieRows(m *MovieDetails, refs *Refs, now time.Time) RowSet {
	id := formatInt(m.ID)
	rs := RowSet{}

	collection := ""
	if m.BelongsToCollection != nil && refs.hasCollection(m.BelongsToCollection.ID) {
		collection = formatInt(m.BelongsToCollection.ID)
	}
	rs["tmdb_movie"] = [][]string{{
		id,
		formatBool(m.Adult),
		formatInt(m.Budget),
		m.OriginalLanguage,
		m.OriginalTitle,
		formatFloat(m.Popularity),
		formatInt(m.Revenue),
		m.Status,
		formatFloat(m.VoteAverage),
		formatInt(m.VoteCount),
		collection,
		formatTimestamp(now),
	}}

	for _, t := range m.AlternativeTitles.Titles {
		rs["tmdb_movie_alternative_titles"] = append(rs["tmdb_movie_alternative_titles"],
			[]string{id, t.ISO3166, t.Title, t.Type})
	}

	for _, c := range m.Credits.Cast {
		if !refs.hasPerson(c.PersonID) {
			continue
		}
		rs["tmdb_movie_credits"] = append(rs["tmdb_movie_credits"],
			[]string{c.CreditID, id, formatInt(c.PersonID), "Acting", "Actor"})
		rs["tmdb_movie_roles"] = append(rs["tmdb_movie_roles"],
			[]string{c.CreditID, c.Character, formatInt(c.Order)})
	}
	for _, c := range m.Credits.Crew {
		if !refs.hasPerson(c.PersonID) {
			continue
		}
		rs["tmdb_movie_credits"] = append(rs["tmdb_movie_credits"],
			[]string{c.CreditID, id, formatInt(c.PersonID), c.Department, c.Job})
	}

	rs["tmdb_movie_external_ids"] = externalIDRows(id, m.ExternalIDs)

	for _, g := range m.Genres {
		if refs.hasGenre(g.ID) {
			rs["tmdb_movie_genres"] = append(rs["tmdb_movie_genres"], []string{id, formatInt(g.ID)})
		}
	}

	rs["tmdb_movie_images"] = imageRows(id, m.Images)

	for _, k := range m.Keywords.Keywords {
		if refs.hasKeyword(k.ID) {
			rs["tmdb_movie_keywords"] = append(rs["tmdb_movie_keywords"], []string{id, formatInt(k.ID)})
		}
	}

	for _, c := range m.OriginCountry {
		if refs.hasCountry(c) {
			rs["tmdb_movie_origin_country"] = append(rs["tmdb_movie_origin_country"], []string{id, c})
		}
	}
	for _, c := range m.ProductionCompanies {
		if refs.hasCompany(c.ID) {
			rs["tmdb_movie_production_companies"] = append(rs["tmdb_movie_production_companies"],
				[]string{id, formatInt(c.ID)})
		}
	}
	for _, c := range m.ProductionCountries {
		if refs.hasCountry(c.ISO3166) {
			rs["tmdb_movie_production_countries"] = append(rs["tmdb_movie_production_countries"],
				[]string{id, c.ISO3166})
		}
	}

	for _, group := range m.ReleaseDates.Results {
		for _, rd := range group.ReleaseDates {
			rs["tmdb_movie_release_dates"] = append(rs["tmdb_movie_release_dates"], []string{
				id, group.ISO3166, rd.ReleaseDate, rd.Certification, rd.ISO639,
				rd.Note, formatInt(rd.Type), textArray(rd.Descriptors),
			})
		}
	}

	for _, l := range m.SpokenLanguages {
		if refs.hasLanguage(l.ISO639) {
			rs["tmdb_movie_spoken_languages"] = append(rs["tmdb_movie_spoken_languages"],
				[]string{id, l.ISO639})
		}
	}

	for _, t := range m.Translations.Translations {
		d := t.Data
		if d.Homepage == "" && d.Overview == "" && d.Runtime == 0 && d.Tagline == "" && d.Title == "" {
			continue
		}
		runtime := ""
		if d.Runtime != 0 {
			runtime = formatInt(d.Runtime)
		}
		rs["tmdb_movie_translations"] = append(rs["tmdb_movie_translations"], []string{
			id, d.Overview, d.Tagline, d.Title, d.Homepage, runtime, t.ISO639, t.ISO3166,
		})
	}

	for _, v := range m.Videos.Results {
		rs["tmdb_movie_videos"] = append(rs["tmdb_movie_videos"], []string{
			v.ID, id, v.ISO639, v.ISO3166, v.Name, v.Key, v.Site,
			formatInt(v.Size), v.Type, formatBool(v.Official), v.PublishedAt,
		})
	}

	return rs
}

// imageRows flattens one image set into typed rows.
func imageRows(parent string, images ImageSet) [][]string {
	groups := []struct {
		kind   string
		images []Image
	}{
		{"backdrop", images.Backdrops},
		{"poster", images.Posters},
		{"logo", images.Logos},
	}
	var rows [][]string
	for _, g := range groups {
		for _, img := range g.images {
			rows = append(rows, []string{
				parent, img.FilePath, g.kind,
				formatFloat(img.AspectRatio), formatInt(img.Height), formatInt(img.Width),
				formatFloat(img.VoteAverage), formatInt(img.VoteCount), img.ISO639,
			})
		}
	}
	return rows
}

// externalIDRows flattens the external-id object, skipping empty
// values and sorting sources for stable output.
func externalIDRows(parent string, ids map[string]any) [][]string {
	keys := make([]string, 0, len(ids))
	for k := range ids {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var rows [][]string
	for _, key := range keys {
		value := ""
		switch v := ids[key].(type) {
		case string:
			value = v
		case float64:
			if v != 0 {
				value = strconv.FormatFloat(v, 'f', -1, 64)
			}
		}
		if value == "" {
			continue
		}
		rows = append(rows, []string{parent, externalSource(key), value})
	}
	return rows
}
