// Cinegraph - TMDB Catalog Reconciliation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinegraph

package tmdb

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/cinegraph/internal/logging"
)

// changesPage is one page of the /{kind}/changes endpoint.
type changesPage struct {
	Results []struct {
		ID    int64 `json:"id"`
		Adult *bool `json:"adult"`
	} `json:"results"`
	Page         int `json:"page"`
	TotalPages   int `json:"total_pages"`
	TotalResults int `json:"total_results"`
}

// ChangedIDs returns the union of IDs the upstream reports as modified
// for the kind path prefix (for example "movie", "tv", "person") within
// the inclusive [start, end] window. The first page is fetched serially
// to learn the page count; the remainder fan out under the client's
// concurrency cap.
func (c *Client) ChangedIDs(ctx context.Context, kindPath string, start, end time.Time) (map[int64]struct{}, error) {
	params := url.Values{}
	params.Set("start_date", start.Format("2006-01-02"))
	params.Set("end_date", end.Format("2006-01-02"))

	first, err := c.changesPage(ctx, kindPath, params, 1)
	if err != nil {
		return nil, fmt.Errorf("fetch changes page 1: %w", err)
	}

	ids := make(map[int64]struct{}, first.TotalResults)
	var mu sync.Mutex
	collect := func(page *changesPage) {
		mu.Lock()
		defer mu.Unlock()
		for _, r := range page.Results {
			if r.Adult != nil && *r.Adult {
				continue
			}
			ids[r.ID] = struct{}{}
		}
	}
	collect(first)

	if first.TotalPages > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(c.Concurrency())
		for page := 2; page <= first.TotalPages; page++ {
			g.Go(func() error {
				p, err := c.changesPage(gctx, kindPath, params, page)
				if err != nil {
					return fmt.Errorf("fetch changes page %d: %w", page, err)
				}
				collect(p)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	// Upstream deduplicates IDs across pages, so a shortfall against
	// total_results is expected and only worth a warning.
	if len(ids) != first.TotalResults {
		logging.Warn().
			Str("kind_path", kindPath).
			Int("collected", len(ids)).
			Int("total_results", first.TotalResults).
			Msg("changed-ID count differs from upstream total")
	}

	return ids, nil
}

func (c *Client) changesPage(ctx context.Context, kindPath string, base url.Values, page int) (*changesPage, error) {
	params := url.Values{}
	for k, vs := range base {
		params[k] = vs
	}
	params.Set("page", strconv.Itoa(page))

	var out changesPage
	if err := c.Get(ctx, kindPath+"/changes", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
