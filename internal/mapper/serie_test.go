// Cinegraph - TMDB Catalog Reconciliation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinegraph

package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSerie() *SerieDetails {
	s := &SerieDetails{
		ID:               1399,
		InProduction:     false,
		OriginalLanguage: "en",
		OriginalName:     "Game of Thrones",
		Popularity:       369.6,
		Status:           "Ended",
		Type:             "Scripted",
		VoteAverage:      8.4,
		VoteCount:        21857,
		NumberOfEpisodes: 73,
		NumberOfSeasons:  8,
		FirstAirDate:     "2011-04-17",
		LastAirDate:      "2019-05-19",
	}
	s.Networks = []IDRef{{ID: 213}, {ID: 999}}
	s.Genres = []IDRef{{ID: 18}}
	s.AggregateCredits.Cast = []AggregateCastCredit{{
		PersonID: 819,
		Roles: []struct {
			CreditID     string `json:"credit_id"`
			Character    string `json:"character"`
			EpisodeCount int64  `json:"episode_count"`
		}{
			{CreditID: "ac1", Character: "Jon Snow", EpisodeCount: 62},
		},
	}}
	s.AggregateCredits.Crew = []AggregateCrewCredit{{
		PersonID:   404,
		Department: "Production",
		Jobs: []struct {
			CreditID     string `json:"credit_id"`
			Job          string `json:"job"`
			EpisodeCount int64  `json:"episode_count"`
		}{
			{CreditID: "ac2", Job: "Producer", EpisodeCount: 10},
		},
	}}
	s.Seasons = []SeasonDetails{{
		ID:           3624,
		SeasonNumber: 1,
		VoteAverage:  8.3,
		PosterPath:   "/s1.jpg",
		Episodes: []EpisodeDetails{{
			ID:            63056,
			EpisodeNumber: 1,
			Name:          "Winter Is Coming",
			Runtime:       62,
			Crew:          []CrewCredit{{CreditID: "ec1"}},
			GuestStars:    []CastCredit{{CreditID: "ec2"}},
		}},
	}}
	return s
}

func TestSerieRowsPrimaryRow(t *testing.T) {
	rs := SerieRows(testSerie(), testRefs())

	require.Len(t, rs["tmdb_tv_series"], 1)
	assert.Equal(t, []string{
		"1399", "false", "false", "en", "Game of Thrones", "369.6",
		"Ended", "Scripted", "8.4", "21857", "73", "8", "2011-04-17", "2019-05-19",
	}, rs["tmdb_tv_series"][0])
}

func TestSerieRowsNetworkFilter(t *testing.T) {
	rs := SerieRows(testSerie(), testRefs())
	assert.Equal(t, [][]string{{"1399", "213"}}, rs["tmdb_tv_series_networks"])
}

func TestSerieRowsAggregateCredits(t *testing.T) {
	rs := SerieRows(testSerie(), testRefs())

	// crew person 404 is not in the reference set
	require.Len(t, rs["tmdb_tv_series_credits"], 1)
	assert.Equal(t, []string{"ac1", "1399", "819", "Acting", "Actor", "Jon Snow", "62"},
		rs["tmdb_tv_series_credits"][0])
}

func TestSerieRowsSeasonsAndEpisodes(t *testing.T) {
	rs := SerieRows(testSerie(), testRefs())

	require.Len(t, rs["tmdb_tv_series_seasons"], 1)
	assert.Equal(t, []string{"3624", "1399", "1", "8.3", "0", "/s1.jpg"},
		rs["tmdb_tv_series_seasons"][0])

	require.Len(t, rs["tmdb_tv_series_episodes"], 1)
	episode := rs["tmdb_tv_series_episodes"][0]
	assert.Equal(t, "63056", episode[0])
	assert.Equal(t, "3624", episode[1])
	assert.Equal(t, "Winter Is Coming", episode[5])
	assert.Equal(t, "62", episode[8])

	assert.Equal(t, [][]string{{"ec1", "63056"}, {"ec2", "63056"}},
		rs["tmdb_tv_series_episodes_credits"])
}

func TestSerieRowsSeasonTranslationsSkipEmpty(t *testing.T) {
	s := testSerie()
	s.Seasons[0].Translations.Translations = []Translation{
		{ISO639: "fr", ISO3166: "FR", Data: TranslationData{Name: "Saison 1"}},
		{ISO639: "de", ISO3166: "DE"},
	}
	rs := SerieRows(s, testRefs())

	require.Len(t, rs["tmdb_tv_series_seasons_translations"], 1)
	assert.Equal(t, []string{"3624", "Saison 1", "", "fr", "FR"},
		rs["tmdb_tv_series_seasons_translations"][0])
}

func TestSerieRowsContentRatings(t *testing.T) {
	s := testSerie()
	s.ContentRatings.Results = []ContentRating{
		{ISO3166: "US", Rating: "TV-MA", Descriptors: []string{"V"}},
	}
	rs := SerieRows(s, testRefs())

	assert.Equal(t, [][]string{{"1399", "US", "TV-MA", `{"V"}`}},
		rs["tmdb_tv_series_content_ratings"])
}
