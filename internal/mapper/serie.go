// Cinegraph - TMDB Catalog Reconciliation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinegraph

package mapper

// SerieDetails is the TV series detail payload with its appended
// sub-resources. Seasons hold the per-season detail responses fetched
// one by one, not the bare season stubs of the base payload.
type SerieDetails struct {
	ID               int64   `json:"id"`
	Adult            bool    `json:"adult"`
	InProduction     bool    `json:"in_production"`
	OriginalLanguage string  `json:"original_language"`
	OriginalName     string  `json:"original_name"`
	Popularity       float64 `json:"popularity"`
	Status           string  `json:"status"`
	Type             string  `json:"type"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int64   `json:"vote_count"`
	NumberOfEpisodes int64   `json:"number_of_episodes"`
	NumberOfSeasons  int64   `json:"number_of_seasons"`
	FirstAirDate     string  `json:"first_air_date"`
	LastAirDate      string  `json:"last_air_date"`

	AlternativeTitles struct {
		Results []AlternativeTitle `json:"results"`
	} `json:"alternative_titles"`
	ContentRatings struct {
		Results []ContentRating `json:"results"`
	} `json:"content_ratings"`
	ExternalIDs map[string]any `json:"external_ids"`
	Genres      []IDRef        `json:"genres"`
	Images      ImageSet       `json:"images"`
	Keywords    struct {
		Results []IDRef `json:"results"`
	} `json:"keywords"`
	Languages           []string `json:"languages"`
	Networks            []IDRef  `json:"networks"`
	OriginCountry       []string `json:"origin_country"`
	ProductionCompanies []IDRef  `json:"production_companies"`
	ProductionCountries []struct {
		ISO3166 string `json:"iso_3166_1"`
	} `json:"production_countries"`
	SpokenLanguages []struct {
		ISO639 string `json:"iso_639_1"`
	} `json:"spoken_languages"`
	Translations     TranslationList  `json:"translations"`
	AggregateCredits AggregateCredits `json:"aggregate_credits"`
	Videos           struct {
		Results []Video `json:"results"`
	} `json:"videos"`

	Seasons []SeasonDetails `json:"seasons"`
}

type ContentRating struct {
	ISO3166     string   `json:"iso_3166_1"`
	Rating      string   `json:"rating"`
	Descriptors []string `json:"descriptors"`
}

// AggregateCredits spreads one person's work on a series across roles
// (cast) or jobs (crew), each with its own credit id.
type AggregateCredits struct {
	Cast []AggregateCastCredit `json:"cast"`
	Crew []AggregateCrewCredit `json:"crew"`
}

type AggregateCastCredit struct {
	PersonID int64 `json:"id"`
	Roles    []struct {
		CreditID     string `json:"credit_id"`
		Character    string `json:"character"`
		EpisodeCount int64  `json:"episode_count"`
	} `json:"roles"`
}

type AggregateCrewCredit struct {
	PersonID   int64  `json:"id"`
	Department string `json:"department"`
	Jobs       []struct {
		CreditID     string `json:"credit_id"`
		Job          string `json:"job"`
		EpisodeCount int64  `json:"episode_count"`
	} `json:"jobs"`
}

// SeasonDetails is one season detail response with credits and
// translations appended.
type SeasonDetails struct {
	ID           int64   `json:"id"`
	SeasonNumber int64   `json:"season_number"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int64   `json:"vote_count"`
	PosterPath   string  `json:"poster_path"`

	Credits      CreditList       `json:"credits"`
	Translations TranslationList  `json:"translations"`
	Episodes     []EpisodeDetails `json:"episodes"`
}

type EpisodeDetails struct {
	ID             int64   `json:"id"`
	AirDate        string  `json:"air_date"`
	EpisodeNumber  int64   `json:"episode_number"`
	EpisodeType    string  `json:"episode_type"`
	Name           string  `json:"name"`
	Overview       string  `json:"overview"`
	ProductionCode string  `json:"production_code"`
	Runtime        int64   `json:"runtime"`
	StillPath      string  `json:"still_path"`
	VoteAverage    float64 `json:"vote_average"`
	VoteCount      int64   `json:"vote_count"`

	Crew       []CrewCredit `json:"crew"`
	GuestStars []CastCredit `json:"guest_stars"`
}

// SerieRows maps one series payload, its seasons and their episodes to
// rows for tmdb_tv_series and every child table.
func SerieRows(s *SerieDetails, refs *Refs) RowSet {
	id := formatInt(s.ID)
	rs := RowSet{}

	runtime := ""
	if s.NumberOfEpisodes != 0 {
		runtime = formatInt(s.NumberOfEpisodes)
	}
	seasons := ""
	if s.NumberOfSeasons != 0 {
		seasons = formatInt(s.NumberOfSeasons)
	}
	rs["tmdb_tv_series"] = [][]string{{
		id,
		formatBool(s.Adult),
		formatBool(s.InProduction),
		s.OriginalLanguage,
		s.OriginalName,
		formatFloat(s.Popularity),
		s.Status,
		s.Type,
		formatFloat(s.VoteAverage),
		formatInt(s.VoteCount),
		runtime,
		seasons,
		s.FirstAirDate,
		s.LastAirDate,
	}}

	for _, t := range s.AlternativeTitles.Results {
		rs["tmdb_tv_series_alternative_titles"] = append(rs["tmdb_tv_series_alternative_titles"],
			[]string{id, t.ISO3166, t.Title, t.Type})
	}
	for _, cr := range s.ContentRatings.Results {
		rs["tmdb_tv_series_content_ratings"] = append(rs["tmdb_tv_series_content_ratings"],
			[]string{id, cr.ISO3166, cr.Rating, textArray(cr.Descriptors)})
	}

	rs["tmdb_tv_series_external_ids"] = externalIDRows(id, s.ExternalIDs)

	for _, g := range s.Genres {
		if refs.hasGenre(g.ID) {
			rs["tmdb_tv_series_genres"] = append(rs["tmdb_tv_series_genres"], []string{id, formatInt(g.ID)})
		}
	}

	rs["tmdb_tv_series_images"] = imageRows(id, s.Images)

	for _, k := range s.Keywords.Results {
		if refs.hasKeyword(k.ID) {
			rs["tmdb_tv_series_keywords"] = append(rs["tmdb_tv_series_keywords"], []string{id, formatInt(k.ID)})
		}
	}
	for _, l := range s.Languages {
		if refs.hasLanguage(l) {
			rs["tmdb_tv_series_languages"] = append(rs["tmdb_tv_series_languages"], []string{id, l})
		}
	}
	for _, n := range s.Networks {
		if refs.hasNetwork(n.ID) {
			rs["tmdb_tv_series_networks"] = append(rs["tmdb_tv_series_networks"], []string{id, formatInt(n.ID)})
		}
	}
	for _, c := range s.OriginCountry {
		if refs.hasCountry(c) {
			rs["tmdb_tv_series_origin_country"] = append(rs["tmdb_tv_series_origin_country"], []string{id, c})
		}
	}
	for _, c := range s.ProductionCompanies {
		if refs.hasCompany(c.ID) {
			rs["tmdb_tv_series_production_companies"] = append(rs["tmdb_tv_series_production_companies"],
				[]string{id, formatInt(c.ID)})
		}
	}
	for _, c := range s.ProductionCountries {
		if refs.hasCountry(c.ISO3166) {
			rs["tmdb_tv_series_production_countries"] = append(rs["tmdb_tv_series_production_countries"],
				[]string{id, c.ISO3166})
		}
	}
	for _, l := range s.SpokenLanguages {
		if refs.hasLanguage(l.ISO639) {
			rs["tmdb_tv_series_spoken_languages"] = append(rs["tmdb_tv_series_spoken_languages"],
				[]string{id, l.ISO639})
		}
	}

	for _, t := range s.Translations.Translations {
		d := t.Data
		if d.Name == "" && d.Overview == "" && d.Homepage == "" && d.Tagline == "" {
			continue
		}
		rs["tmdb_tv_series_translations"] = append(rs["tmdb_tv_series_translations"], []string{
			id, d.Name, d.Overview, d.Homepage, d.Tagline, t.ISO639, t.ISO3166,
		})
	}

	for _, v := range s.Videos.Results {
		rs["tmdb_tv_series_videos"] = append(rs["tmdb_tv_series_videos"], []string{
			v.ID, id, v.ISO639, v.ISO3166, v.Name, v.Key, v.Site,
			formatInt(v.Size), v.Type, formatBool(v.Official), v.PublishedAt,
		})
	}

	for _, c := range s.AggregateCredits.Cast {
		if !refs.hasPerson(c.PersonID) {
			continue
		}
		for _, role := range c.Roles {
			rs["tmdb_tv_series_credits"] = append(rs["tmdb_tv_series_credits"], []string{
				role.CreditID, id, formatInt(c.PersonID), "Acting", "Actor",
				role.Character, formatInt(role.EpisodeCount),
			})
		}
	}
	for _, c := range s.AggregateCredits.Crew {
		if !refs.hasPerson(c.PersonID) {
			continue
		}
		for _, job := range c.Jobs {
			rs["tmdb_tv_series_credits"] = append(rs["tmdb_tv_series_credits"], []string{
				job.CreditID, id, formatInt(c.PersonID), c.Department, job.Job,
				"", formatInt(job.EpisodeCount),
			})
		}
	}

	for i := range s.Seasons {
		rs.Append(seasonRows(id, &s.Seasons[i]))
	}

	return rs
}

// seasonRows maps one season detail, its credits, translations and
// episodes.
func seasonRows(serieID string, season *SeasonDetails) RowSet {
	id := formatInt(season.ID)
	rs := RowSet{}

	rs["tmdb_tv_series_seasons"] = [][]string{{
		id, serieID, formatInt(season.SeasonNumber),
		formatFloat(season.VoteAverage), formatInt(season.VoteCount), season.PosterPath,
	}}

	for _, c := range season.Credits.Cast {
		rs["tmdb_tv_series_seasons_credits"] = append(rs["tmdb_tv_series_seasons_credits"],
			[]string{c.CreditID, id, formatInt(c.Order)})
	}

	for _, t := range season.Translations.Translations {
		d := t.Data
		if d.Name == "" && d.Overview == "" {
			continue
		}
		rs["tmdb_tv_series_seasons_translations"] = append(rs["tmdb_tv_series_seasons_translations"],
			[]string{id, d.Name, d.Overview, t.ISO639, t.ISO3166})
	}

	for _, ep := range season.Episodes {
		epID := formatInt(ep.ID)
		runtime := ""
		if ep.Runtime != 0 {
			runtime = formatInt(ep.Runtime)
		}
		rs["tmdb_tv_series_episodes"] = append(rs["tmdb_tv_series_episodes"], []string{
			epID, id, ep.AirDate, formatInt(ep.EpisodeNumber), ep.EpisodeType,
			ep.Name, ep.Overview, ep.ProductionCode, runtime, ep.StillPath,
			formatFloat(ep.VoteAverage), formatInt(ep.VoteCount),
		})
		for _, c := range ep.Crew {
			rs["tmdb_tv_series_episodes_credits"] = append(rs["tmdb_tv_series_episodes_credits"],
				[]string{c.CreditID, epID})
		}
		for _, c := range ep.GuestStars {
			rs["tmdb_tv_series_episodes_credits"] = append(rs["tmdb_tv_series_episodes_credits"],
				[]string{c.CreditID, epID})
		}
	}

	return rs
}
