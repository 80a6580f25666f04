// Cinegraph - TMDB Catalog Reconciliation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinegraph

package mapper

import "sort"

// PersonDetails is one person detail response. The biography is the
// only localized field the pipeline keeps, so the same struct serves
// every request language.
type PersonDetails struct {
	ID                 int64    `json:"id"`
	Adult              bool     `json:"adult"`
	AlsoKnownAs        []string `json:"also_known_as"`
	Biography          string   `json:"biography"`
	Birthday           string   `json:"birthday"`
	Deathday           string   `json:"deathday"`
	Gender             int64    `json:"gender"`
	Homepage           string   `json:"homepage"`
	IMDbID             string   `json:"imdb_id"`
	KnownForDepartment string   `json:"known_for_department"`
	Name               string   `json:"name"`
	PlaceOfBirth       string   `json:"place_of_birth"`
	Popularity         float64  `json:"popularity"`
	ProfilePath        string   `json:"profile_path"`
}

// PersonRows maps the per-language detail responses of one person.
// byLanguage is keyed by language code; the default language supplies
// the tmdb_person row, every language contributes a biography row.
func PersonRows(byLanguage map[string]*PersonDetails, defaultLanguage string) RowSet {
	base, ok := byLanguage[defaultLanguage]
	if !ok || base == nil {
		return RowSet{}
	}
	id := formatInt(base.ID)

	rs := RowSet{
		"tmdb_person": {{
			id,
			formatBool(base.Adult),
			textArray(base.AlsoKnownAs),
			base.Birthday,
			base.Deathday,
			formatInt(base.Gender),
			base.Homepage,
			base.IMDbID,
			base.KnownForDepartment,
			base.Name,
			base.PlaceOfBirth,
			formatFloat(base.Popularity),
			base.ProfilePath,
		}},
	}

	languages := make([]string, 0, len(byLanguage))
	for lang := range byLanguage {
		languages = append(languages, lang)
	}
	sort.Strings(languages)
	for _, lang := range languages {
		p := byLanguage[lang]
		if p == nil {
			continue
		}
		rs["tmdb_person_translation"] = append(rs["tmdb_person_translation"],
			[]string{id, p.Biography, lang})
	}
	return rs
}
