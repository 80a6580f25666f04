// Cinegraph - TMDB Catalog Reconciliation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinegraph

package mapper

// CompanyDetails is one production-company detail response.
type CompanyDetails struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Headquarters  string `json:"headquarters"`
	Homepage      string `json:"homepage"`
	OriginCountry string `json:"origin_country"`
	ParentCompany *IDRef `json:"parent_company"`
}

// LogoImage is one entry of a company or network logo listing. Logo
// ids are opaque strings, unlike the numeric media ids elsewhere.
type LogoImage struct {
	ID          string  `json:"id"`
	FilePath    string  `json:"file_path"`
	FileType    string  `json:"file_type"`
	AspectRatio float64 `json:"aspect_ratio"`
	Height      int64   `json:"height"`
	Width       int64   `json:"width"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int64   `json:"vote_count"`
}

// LogoList is the /images response of companies and networks.
type LogoList struct {
	Logos []LogoImage `json:"logos"`
}

// AlternativeNameList is the /alternative_names response.
type AlternativeNameList struct {
	Results []AlternativeName `json:"results"`
}

type AlternativeName struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// CompanyRows maps one company's detail, image and alternative-name
// responses.
func CompanyRows(c *CompanyDetails, images *LogoList, names *AlternativeNameList) RowSet {
	id := formatInt(c.ID)

	parent := ""
	if c.ParentCompany != nil {
		parent = formatInt(c.ParentCompany.ID)
	}
	rs := RowSet{
		"tmdb_company": {{
			id, c.Name, c.Description, c.Headquarters, c.Homepage, c.OriginCountry, parent,
		}},
	}

	if images != nil {
		for _, logo := range images.Logos {
			rs["tmdb_company_image"] = append(rs["tmdb_company_image"], []string{
				logo.ID, id, logo.FilePath, logo.FileType,
				formatFloat(logo.AspectRatio), formatInt(logo.Height), formatInt(logo.Width),
				formatFloat(logo.VoteAverage), formatInt(logo.VoteCount),
			})
		}
	}
	if names != nil {
		for _, n := range names.Results {
			rs["tmdb_company_alternative_name"] = append(rs["tmdb_company_alternative_name"],
				[]string{id, n.Name})
		}
	}
	return rs
}
