// Cinegraph - TMDB Catalog Reconciliation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinegraph

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveUpstreamRequest(t *testing.T) {
	before := testutil.ToFloat64(UpstreamRequestsTotal.WithLabelValues("detail", "200"))
	ObserveUpstreamRequest("detail", 200, 120*time.Millisecond)
	after := testutil.ToFloat64(UpstreamRequestsTotal.WithLabelValues("detail", "200"))
	assert.Equal(t, before+1, after)
}

func TestSyncCounters(t *testing.T) {
	before := testutil.ToFloat64(SyncEntitiesSkipped.WithLabelValues("movie", "adult"))
	SyncEntitiesSkipped.WithLabelValues("movie", "adult").Inc()
	after := testutil.ToFloat64(SyncEntitiesSkipped.WithLabelValues("movie", "adult"))
	assert.Equal(t, before+1, after)
}

func TestObserveSyncDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		ObserveSync("language", "success", 3*time.Second)
		ObserveSync("movie", "failed", time.Minute)
	})
}
