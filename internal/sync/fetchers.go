// Cinegraph - TMDB Catalog Reconciliation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinegraph

package sync

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tomtom215/cinegraph/internal/config"
	"github.com/tomtom215/cinegraph/internal/kinds"
	"github.com/tomtom215/cinegraph/internal/logging"
	"github.com/tomtom215/cinegraph/internal/mapper"
	"github.com/tomtom215/cinegraph/internal/tmdb"
)

// NewEntityDriver builds the reconciliation driver for an export-driven
// kind. Reference kinds (language, country, genre, keyword) have their
// own flows and are rejected here.
func NewEntityDriver(kind kinds.Kind, client *tmdb.Client, pool *pgxpool.Pool, cfg *config.Config) (*Driver, error) {
	spec, err := kinds.Get(kind)
	if err != nil {
		return nil, err
	}

	var fetch fetchFunc
	switch kind {
	case kinds.Movie:
		fetch = fetchMovie(client)
	case kinds.Serie:
		fetch = fetchSerie(client)
	case kinds.Person:
		fetch = fetchPerson(client, cfg.Sync.ExtraLanguages)
	case kinds.Collection:
		fetch = fetchCollection(client, cfg.Sync.ExtraLanguages)
	case kinds.Company:
		fetch = fetchCompany(client)
	case kinds.Network:
		fetch = fetchNetwork(client)
	default:
		return nil, fmt.Errorf("kind %s is not export-driven", kind)
	}
	return newDriver(client, pool, cfg, spec, fetch), nil
}

// fetchMovie retrieves a movie with every staged sub-resource appended,
// plus the language-complete image set which the append form truncates.
func fetchMovie(client *tmdb.Client) fetchFunc {
	return func(ctx context.Context, id int64, refs *mapper.Refs) (mapper.RowSet, error) {
		params := url.Values{
			"append_to_response":     {"alternative_titles,credits,external_ids,keywords,release_dates,translations,videos"},
			"include_video_language": {videoLanguages},
		}
		var m mapper.MovieDetails
		if err := client.Get(ctx, fmt.Sprintf("movie/%d", id), params, &m); err != nil {
			return nil, err
		}
		if m.Adult {
			return nil, errSkipAdult
		}
		var images mapper.ImageSet
		if err := client.Get(ctx, fmt.Sprintf("movie/%d/images", id), nil, &images); err != nil {
			return nil, err
		}
		m.Images = images
		return mapper.MovieRows(&m, refs, time.Now().UTC()), nil
	}
}

// fetchSerie retrieves a series and then each of its seasons in detail.
// A season fetch failure drops that season only, not the series.
func fetchSerie(client *tmdb.Client) fetchFunc {
	return func(ctx context.Context, id int64, refs *mapper.Refs) (mapper.RowSet, error) {
		params := url.Values{
			"append_to_response":     {"alternative_titles,content_ratings,external_ids,images,keywords,videos,aggregate_credits,translations"},
			"include_video_language": {videoLanguages},
		}
		var s mapper.SerieDetails
		if err := client.Get(ctx, fmt.Sprintf("tv/%d", id), params, &s); err != nil {
			return nil, err
		}
		if s.Adult {
			return nil, errSkipAdult
		}

		seasons := make([]mapper.SeasonDetails, 0, len(s.Seasons))
		for _, summary := range s.Seasons {
			path := fmt.Sprintf("tv/%d/season/%d", id, summary.SeasonNumber)
			seasonParams := url.Values{"append_to_response": {"credits,translations"}}
			var season mapper.SeasonDetails
			if err := client.Get(ctx, path, seasonParams, &season); err != nil {
				logging.Err(err).
					Int64("serie_id", id).
					Int64("season_number", summary.SeasonNumber).
					Msg("Skipping season")
				continue
			}
			seasons = append(seasons, season)
		}
		s.Seasons = seasons
		return mapper.SerieRows(&s, refs), nil
	}
}

// fetchPerson retrieves a person in the default language plus every
// configured extra language for translation rows.
func fetchPerson(client *tmdb.Client, extraLanguages []string) fetchFunc {
	return func(ctx context.Context, id int64, _ *mapper.Refs) (mapper.RowSet, error) {
		byLanguage := make(map[string]*mapper.PersonDetails)
		codes := append([]string{defaultLanguageCode}, extraLanguageCodes(extraLanguages)...)
		for _, code := range codes {
			params := url.Values{"language": {localeTag(code)}}
			var p mapper.PersonDetails
			if err := client.Get(ctx, fmt.Sprintf("person/%d", id), params, &p); err != nil {
				return nil, err
			}
			byLanguage[code] = &p
		}
		return mapper.PersonRows(byLanguage, defaultLanguageCode), nil
	}
}

// fetchCollection retrieves a collection once per configured language;
// translation rows key on the language of each request.
func fetchCollection(client *tmdb.Client, extraLanguages []string) fetchFunc {
	return func(ctx context.Context, id int64, _ *mapper.Refs) (mapper.RowSet, error) {
		byTag := make(map[string]*mapper.CollectionDetails)
		codes := append([]string{defaultLanguageCode}, extraLanguageCodes(extraLanguages)...)
		for _, code := range codes {
			tag := localeTag(code)
			params := url.Values{"language": {tag}}
			var c mapper.CollectionDetails
			if err := client.Get(ctx, fmt.Sprintf("collection/%d", id), params, &c); err != nil {
				return nil, err
			}
			byTag[tag] = &c
		}
		return mapper.CollectionRows(byTag, defaultLanguageTag), nil
	}
}

func fetchCompany(client *tmdb.Client) fetchFunc {
	return func(ctx context.Context, id int64, _ *mapper.Refs) (mapper.RowSet, error) {
		var c mapper.CompanyDetails
		if err := client.Get(ctx, fmt.Sprintf("company/%d", id), nil, &c); err != nil {
			return nil, err
		}
		images, names, err := logosAndAliases(ctx, client, fmt.Sprintf("company/%d", id))
		if err != nil {
			return nil, err
		}
		return mapper.CompanyRows(&c, images, names), nil
	}
}

func fetchNetwork(client *tmdb.Client) fetchFunc {
	return func(ctx context.Context, id int64, _ *mapper.Refs) (mapper.RowSet, error) {
		var n mapper.NetworkDetails
		if err := client.Get(ctx, fmt.Sprintf("network/%d", id), nil, &n); err != nil {
			return nil, err
		}
		images, names, err := logosAndAliases(ctx, client, fmt.Sprintf("network/%d", id))
		if err != nil {
			return nil, err
		}
		return mapper.NetworkRows(&n, images, names), nil
	}
}

// logosAndAliases fetches the image and alternative-name sub-resources
// shared by companies and networks. A missing sub-resource is treated
// as empty.
func logosAndAliases(ctx context.Context, client *tmdb.Client, base string) (*mapper.LogoList, *mapper.AlternativeNameList, error) {
	var images mapper.LogoList
	if err := client.Get(ctx, base+"/images", nil, &images); err != nil {
		if !tmdb.IsNotFound(err) {
			return nil, nil, err
		}
	}
	var names mapper.AlternativeNameList
	if err := client.Get(ctx, base+"/alternative_names", nil, &names); err != nil {
		if !tmdb.IsNotFound(err) {
			return nil, nil, err
		}
	}
	return &images, &names, nil
}
