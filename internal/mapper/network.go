// Cinegraph - TMDB Catalog Reconciliation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinegraph

package mapper

// NetworkDetails is one TV network detail response.
type NetworkDetails struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Headquarters  string `json:"headquarters"`
	Homepage      string `json:"homepage"`
	OriginCountry string `json:"origin_country"`
}

// NetworkRows maps one network's detail, image and alternative-name
// responses.
func NetworkRows(n *NetworkDetails, images *LogoList, names *AlternativeNameList) RowSet {
	id := formatInt(n.ID)

	rs := RowSet{
		"tmdb_network": {{id, n.Name, n.Headquarters, n.Homepage, n.OriginCountry}},
	}

	if images != nil {
		for _, logo := range images.Logos {
			rs["tmdb_network_image"] = append(rs["tmdb_network_image"], []string{
				logo.ID, id, logo.FilePath, logo.FileType,
				formatFloat(logo.AspectRatio), formatInt(logo.Height), formatInt(logo.Width),
				formatFloat(logo.VoteAverage), formatInt(logo.VoteCount),
			})
		}
	}
	if names != nil {
		for _, alt := range names.Results {
			rs["tmdb_network_alternative_name"] = append(rs["tmdb_network_alternative_name"],
				[]string{id, alt.Name, alt.Type})
		}
	}
	return rs
}
