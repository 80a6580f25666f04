// Cinegraph - TMDB Catalog Reconciliation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinegraph

// Package metrics provides Prometheus instrumentation for the daily
// reconciliation run: upstream request outcomes, per-kind sync phases,
// bulk-load timings and search projection volume.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Upstream API metrics
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tmdb_requests_total",
			Help: "Total number of upstream TMDB API requests",
		},
		[]string{"endpoint_class", "status_code"},
	)

	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tmdb_request_duration_seconds",
			Help:    "Upstream TMDB request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"endpoint_class"},
	)

	UpstreamRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tmdb_request_retries_total",
			Help: "Total number of retried upstream requests",
		},
		[]string{"reason"}, // "rate_limited", "server_error", "network"
	)

	// Circuit breaker metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Sync driver metrics
	SyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sync_kind_duration_seconds",
			Help:    "Duration of a full per-kind reconciliation in seconds",
			Buckets: []float64{1, 10, 60, 300, 900, 1800, 3600, 7200},
		},
		[]string{"kind", "status"},
	)

	SyncEntitiesFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_entities_fetched_total",
			Help: "Total entity detail payloads fetched per kind",
		},
		[]string{"kind"},
	)

	SyncEntitiesSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_entities_skipped_total",
			Help: "Total entities skipped per kind",
		},
		[]string{"kind", "reason"}, // "fetch_failed", "adult"
	)

	SyncEntitiesPruned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_entities_pruned_total",
			Help: "Total entities deleted because they left the upstream universe",
		},
		[]string{"kind"},
	)

	// Bulk loader metrics
	ChunkCommitDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "loader_chunk_commit_duration_seconds",
			Help:    "Duration of one chunk transaction (COPY + upsert + deletes)",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"kind"},
	)

	ChunkRowsCopied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loader_rows_copied_total",
			Help: "Total rows streamed into staging tables via COPY",
		},
		[]string{"kind", "table"},
	)

	// Search projection metrics
	SearchDocumentsUpserted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_documents_upserted_total",
			Help: "Total documents upserted into the search index",
		},
		[]string{"collection"},
	)

	SearchDocumentsDeleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_documents_deleted_total",
			Help: "Total stale documents deleted from the search index",
		},
		[]string{"collection"},
	)
)

// ObserveUpstreamRequest records one upstream request outcome.
func ObserveUpstreamRequest(endpointClass string, statusCode int, duration time.Duration) {
	UpstreamRequestsTotal.WithLabelValues(endpointClass, strconv.Itoa(statusCode)).Inc()
	UpstreamRequestDuration.WithLabelValues(endpointClass).Observe(duration.Seconds())
}

// ObserveSync records the duration and outcome of one per-kind run.
func ObserveSync(kind string, status string, duration time.Duration) {
	SyncDuration.WithLabelValues(kind, status).Observe(duration.Seconds())
}
