// Cinegraph - TMDB Catalog Reconciliation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinegraph

package tmdb

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/cinegraph/internal/logging"
)

// ExportChunkSize is the number of export rows handed to the consumer
// callback at a time. The file is never materialized in memory.
const ExportChunkSize = 100_000

// ExportRow is one line of the daily ID dump. Name is only present for
// kinds whose export carries it (keywords, collections, companies).
type ExportRow struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Popularity float64 `json:"popularity"`
	Adult      bool    `json:"adult"`
}

// StreamExport downloads the daily export for exportName (for example
// "movie_ids") and date, decompressing and parsing on the fly. Rows are
// delivered to fn in chunks of at most ExportChunkSize; a non-nil error
// from fn aborts the stream. Returns ErrExportUnavailable when the file
// is absent or empty.
func (c *Client) StreamExport(ctx context.Context, exportName string, date time.Time, fn func(rows []ExportRow) error) error {
	exportURL := fmt.Sprintf("%s/%s_%s.json.gz", c.exportBaseURL, exportName, date.Format("01_02_2006"))

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.retryBaseDelay
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(c.maxRetries)), ctx)

	resp, err := backoff.RetryWithData(func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, exportURL, http.NoBody)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("create export request: %w", err))
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("download export %s: %w", exportURL, err)
		}
		switch {
		case resp.StatusCode == http.StatusOK:
			return resp, nil
		case resp.StatusCode >= 500:
			drainBody(resp.Body)
			resp.Body.Close()
			return nil, &UpstreamError{StatusCode: resp.StatusCode, URL: exportURL}
		default:
			// The export host answers 403/404 for dates with no dump.
			drainBody(resp.Body)
			resp.Body.Close()
			return nil, backoff.Permanent(fmt.Errorf("%w: %s returned %d", ErrExportUnavailable, exportURL, resp.StatusCode))
		}
	}, policy)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	gz, err := gzip.NewReader(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %s is not valid gzip: %v", ErrExportUnavailable, exportURL, err)
	}
	defer gz.Close()

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	chunk := make([]ExportRow, 0, ExportChunkSize)
	total := 0
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var row ExportRow
		if err := json.Unmarshal(line, &row); err != nil {
			logging.Warn().Err(err).Str("export", exportName).Msg("skipping malformed export line")
			continue
		}
		chunk = append(chunk, row)
		total++
		if len(chunk) == ExportChunkSize {
			if err := fn(chunk); err != nil {
				return err
			}
			chunk = chunk[:0]
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read export %s: %w", exportURL, err)
	}
	if len(chunk) > 0 {
		if err := fn(chunk); err != nil {
			return err
		}
	}
	if total == 0 {
		return fmt.Errorf("%w: %s is empty", ErrExportUnavailable, exportURL)
	}

	logging.Debug().Str("export", exportName).Int("rows", total).Msg("export streamed")
	return nil
}

// ExportIDs collects the full export into an id -> popularity map,
// discarding adult-flagged rows so they are treated as absent upstream.
func (c *Client) ExportIDs(ctx context.Context, exportName string, date time.Time) (map[int64]float64, error) {
	ids := make(map[int64]float64)
	err := c.StreamExport(ctx, exportName, date, func(rows []ExportRow) error {
		for _, row := range rows {
			if row.Adult {
				continue
			}
			ids[row.ID] = row.Popularity
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// ExportNames collects the export into an id -> name map for kinds whose
// dump carries names (keywords). Adult rows are discarded.
func (c *Client) ExportNames(ctx context.Context, exportName string, date time.Time) (map[int64]string, error) {
	names := make(map[int64]string)
	err := c.StreamExport(ctx, exportName, date, func(rows []ExportRow) error {
		for _, row := range rows {
			if row.Adult {
				continue
			}
			names[row.ID] = row.Name
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}
