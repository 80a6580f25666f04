// Cinegraph - TMDB Catalog Reconciliation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinegraph

// Package tmdb implements the upstream metadata API client: credential
// rotation, a process-global token bucket, transient-failure retry with
// exponential backoff, circuit breaking, the daily export stream and
// the paginated changes endpoint.
package tmdb

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/cinegraph/internal/config"
	"github.com/tomtom215/cinegraph/internal/logging"
	"github.com/tomtom215/cinegraph/internal/metrics"
)

// maxErrorBodySize limits how much of an error response body is read
// for diagnostics.
const maxErrorBodySize = 64 * 1024

// maxRetryAfter caps how long a single 429 Retry-After hint can stall
// one attempt.
const maxRetryAfter = 60 * time.Second

// Client is the rate-limited TMDB API client shared by all drivers.
type Client struct {
	baseURL       string
	exportBaseURL string
	keys          *KeyPool
	httpClient    *http.Client
	limiter       *rate.Limiter
	cb            *gobreaker.CircuitBreaker[[]byte]

	concurrency    int
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewClient builds a Client from configuration.
func NewClient(cfg *config.TMDBConfig) *Client {
	cbName := "tmdb-api"
	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", stateToString(from)).
				Str("to", stateToString(to)).
				Msg("circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, stateToString(from), stateToString(to)).Inc()
		},
	})

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	baseDelay := cfg.RetryBaseDelay
	if baseDelay <= 0 {
		baseDelay = time.Second
	}

	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		exportBaseURL:  strings.TrimRight(cfg.ExportBaseURL, "/"),
		keys:           NewKeyPool(cfg.APIKeys),
		httpClient:     &http.Client{Timeout: timeout},
		limiter:        rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), int(cfg.RequestsPerSecond)+1),
		cb:             cb,
		concurrency:    cfg.Concurrency,
		maxRetries:     cfg.MaxRetries,
		retryBaseDelay: baseDelay,
	}
}

// Concurrency returns the configured fan-out bound for callers that
// issue parallel requests through this client.
func (c *Client) Concurrency() int {
	if c.concurrency < 1 {
		return 1
	}
	return c.concurrency
}

// Get issues a GET against the API, injecting a rotated api_key, and
// decodes the JSON response into result. The path is relative to the
// base URL, e.g. "movie/603".
func (c *Client) Get(ctx context.Context, path string, params url.Values, result interface{}) error {
	body, err := c.cb.Execute(func() ([]byte, error) {
		return c.doWithRetry(ctx, path, params)
	})
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// doWithRetry performs one logical GET with bounded exponential-backoff
// retries for transient failures (429, 5xx, network errors).
func (c *Client) doWithRetry(ctx context.Context, path string, params url.Values) ([]byte, error) {
	class := endpointClass(path)

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.retryBaseDelay
	eb.MaxInterval = 30 * time.Second
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(c.maxRetries)), ctx)

	return backoff.RetryWithData(func() ([]byte, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, backoff.Permanent(err)
		}

		reqURL := fmt.Sprintf("%s/%s", c.baseURL, path)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("create request: %w", err))
		}
		q := url.Values{}
		for k, vs := range params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		q.Set("api_key", c.keys.Next())
		req.URL.RawQuery = q.Encode()
		req.Header.Set("Accept", "application/json")

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			metrics.UpstreamRetriesTotal.WithLabelValues("network").Inc()
			return nil, fmt.Errorf("request %s: %w", path, err)
		}
		defer resp.Body.Close()

		metrics.ObserveUpstreamRequest(class, resp.StatusCode, time.Since(start))

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return nil, fmt.Errorf("read %s response: %w", path, err)
			}
			return body, nil

		case resp.StatusCode == http.StatusTooManyRequests:
			drainBody(resp.Body)
			metrics.UpstreamRetriesTotal.WithLabelValues("rate_limited").Inc()
			waitRetryAfter(ctx, resp.Header.Get("Retry-After"))
			return nil, &UpstreamError{StatusCode: resp.StatusCode, URL: path}

		case resp.StatusCode >= 500:
			drainBody(resp.Body)
			metrics.UpstreamRetriesTotal.WithLabelValues("server_error").Inc()
			return nil, &UpstreamError{StatusCode: resp.StatusCode, URL: path}

		default:
			drainBody(resp.Body)
			return nil, backoff.Permanent(&UpstreamError{StatusCode: resp.StatusCode, URL: path})
		}
	}, policy)
}

// waitRetryAfter honors an upstream Retry-After hint, bounded by
// maxRetryAfter and the context deadline.
func waitRetryAfter(ctx context.Context, header string) {
	if header == "" {
		return
	}
	secs, err := strconv.Atoi(header)
	if err != nil || secs <= 0 {
		return
	}
	delay := time.Duration(secs) * time.Second
	if delay > maxRetryAfter {
		delay = maxRetryAfter
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// drainBody consumes a bounded amount of the body so the connection can
// be reused.
func drainBody(body io.Reader) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, maxErrorBodySize))
}

// endpointClass collapses a request path to its first segment for
// metric labels: "movie/603" -> "movie".
func endpointClass(path string) string {
	if i := strings.IndexByte(path, '/'); i > 0 {
		return path[:i]
	}
	return path
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
