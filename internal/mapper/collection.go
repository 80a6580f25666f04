// Cinegraph - TMDB Catalog Reconciliation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinegraph

package mapper

import "sort"

// CollectionDetails is one collection detail response in a single
// request language.
type CollectionDetails struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Overview string `json:"overview"`
	Homepage string `json:"homepage"`
}

// CollectionRows maps the per-language detail responses of one
// collection. byTag is keyed by the request language tag ("fr-FR");
// the default tag supplies the tmdb_collection row, every tag with a
// localized name or overview contributes a translation row.
func CollectionRows(byTag map[string]*CollectionDetails, defaultTag string) RowSet {
	base, ok := byTag[defaultTag]
	if !ok || base == nil {
		return RowSet{}
	}
	id := formatInt(base.ID)

	rs := RowSet{
		"tmdb_collection": {{id, base.Name}},
	}

	tags := make([]string, 0, len(byTag))
	for tag := range byTag {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	for _, tag := range tags {
		c := byTag[tag]
		if c == nil || (c.Name == "" && c.Overview == "" && c.Homepage == "") {
			continue
		}
		iso639, iso3166 := splitLanguageTag(tag)
		rs["tmdb_collection_translation"] = append(rs["tmdb_collection_translation"],
			[]string{id, c.Name, c.Overview, c.Homepage, iso639, iso3166})
	}
	return rs
}
