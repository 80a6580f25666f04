// Cinegraph - TMDB Catalog Reconciliation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinegraph

package tmdb

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrExportUnavailable indicates the daily ID export for a kind and
// date is missing or empty. Fatal for that kind's run.
var ErrExportUnavailable = errors.New("tmdb: daily export unavailable")

// UpstreamError is a non-2xx response that survived the retry budget.
type UpstreamError struct {
	StatusCode int
	URL        string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("tmdb: upstream returned %d for %s", e.StatusCode, e.URL)
}

// Temporary reports whether the status is worth retrying.
func (e *UpstreamError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// IsNotFound reports whether err is an upstream 404. Detail fetches for
// individual IDs treat this as "absent upstream", not as a failure.
func IsNotFound(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue) && ue.StatusCode == http.StatusNotFound
}
