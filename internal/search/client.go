// Cinegraph - TMDB Catalog Reconciliation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinegraph

// Package search projects the reconciled catalog into a Typesense
// index: schema reconciliation, bulk document upserts and stale-id
// deletion per collection.
package search

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cinegraph/internal/config"
	"github.com/tomtom215/cinegraph/internal/logging"
)

// ErrCollectionNotFound reports a 404 on a collection endpoint.
var ErrCollectionNotFound = errors.New("collection not found")

func isNotFound(err error) bool { return errors.Is(err, ErrCollectionNotFound) }

// Client speaks the Typesense HTTP API.
type Client struct {
	baseURL   string
	apiKey    string
	batchSize int
	http      *http.Client
}

func NewClient(cfg *config.SearchConfig) *Client {
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = 10000
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.URL, "/"),
		apiKey:    cfg.APIKey,
		batchSize: batch,
		http:      &http.Client{Timeout: 2 * time.Minute},
	}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-TYPESENSE-API-KEY", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request %s %s: %w", method, path, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, fmt.Errorf("%s %s: %w", method, path, ErrCollectionNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, fmt.Errorf("search request %s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return resp, nil
}

// CreateCollection creates a collection from the given schema.
func (c *Client) CreateCollection(ctx context.Context, schema *CollectionSchema) error {
	payload, err := json.Marshal(schema)
	if err != nil {
		return err
	}
	resp, err := c.do(ctx, http.MethodPost, "/collections", nil, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// GetCollection retrieves the stored schema of a collection.
func (c *Client) GetCollection(ctx context.Context, name string) (*CollectionSchema, error) {
	resp, err := c.do(ctx, http.MethodGet, "/collections/"+name, nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var schema CollectionSchema
	if err := json.NewDecoder(resp.Body).Decode(&schema); err != nil {
		return nil, fmt.Errorf("decoding schema of %s: %w", name, err)
	}
	return &schema, nil
}

// DropCollection deletes a collection and all its documents.
func (c *Client) DropCollection(ctx context.Context, name string) error {
	resp, err := c.do(ctx, http.MethodDelete, "/collections/"+name, nil, nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// importResult is one line of a bulk-import response.
type importResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Upsert bulk-imports documents with action=upsert, batching at the
// configured size. It returns the number of documents the index
// accepted.
func (c *Client) Upsert(ctx context.Context, collection string, docs []any) (int, error) {
	imported := 0
	for start := 0; start < len(docs); start += c.batchSize {
		end := start + c.batchSize
		if end > len(docs) {
			end = len(docs)
		}
		n, err := c.importBatch(ctx, collection, docs[start:end])
		imported += n
		if err != nil {
			return imported, err
		}
	}
	return imported, nil
}

func (c *Client) importBatch(ctx context.Context, collection string, docs []any) (int, error) {
	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	for _, doc := range docs {
		if err := enc.Encode(doc); err != nil {
			return 0, err
		}
	}

	query := url.Values{"action": {"upsert"}}
	resp, err := c.do(ctx, http.MethodPost, "/collections/"+collection+"/documents/import", query, &body)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	// The import endpoint answers one JSON result per input line even
	// on partial failure.
	imported := 0
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var res importResult
		if err := json.Unmarshal(scanner.Bytes(), &res); err != nil {
			return imported, fmt.Errorf("decoding import result: %w", err)
		}
		if res.Success {
			imported++
		} else {
			logging.Warn().
				Str("collection", collection).
				Str("error", res.Error).
				Msg("Document rejected by search index")
		}
	}
	return imported, scanner.Err()
}

// ExportIDs streams every document id in the collection.
func (c *Client) ExportIDs(ctx context.Context, collection string) (map[int64]struct{}, error) {
	query := url.Values{"include_fields": {"id"}}
	resp, err := c.do(ctx, http.MethodGet, "/collections/"+collection+"/documents/export", query, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	ids := make(map[int64]struct{})
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var doc struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(line, &doc); err != nil {
			return nil, fmt.Errorf("decoding exported document: %w", err)
		}
		id, err := strconv.ParseInt(doc.ID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("non-numeric document id %q in %s", doc.ID, collection)
		}
		ids[id] = struct{}{}
	}
	return ids, scanner.Err()
}

// DeleteIDs removes documents by id through the filter-delete endpoint,
// batching the filter list.
func (c *Client) DeleteIDs(ctx context.Context, collection string, ids []int64) error {
	for start := 0; start < len(ids); start += c.batchSize {
		end := start + c.batchSize
		if end > len(ids) {
			end = len(ids)
		}
		parts := make([]string, 0, end-start)
		for _, id := range ids[start:end] {
			parts = append(parts, strconv.FormatInt(id, 10))
		}
		query := url.Values{"filter_by": {"id:=[" + strings.Join(parts, ",") + "]"}}
		resp, err := c.do(ctx, http.MethodDelete, "/collections/"+collection+"/documents", query, nil)
		if err != nil {
			return err
		}
		resp.Body.Close()
	}
	return nil
}
