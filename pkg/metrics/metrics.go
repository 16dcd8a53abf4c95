// Package metrics provides the Prometheus registry used by the catalog explorer.
// All metrics are defined in their respective packages (client, cache,
// pagination, resolver, ratelimit, favorites) via promauto to avoid circular
// dependencies.
//
// This package provides documentation, the list of metric names and the
// /metrics handler.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the catalog explorer.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the registry the /metrics handler reads from.
var Gatherer = prometheus.DefaultGatherer

// Names lists every metric the module exports.
var Names = []string{
	// pkg/client
	"catalog_requests_total",
	"catalog_request_duration_seconds",
	"catalog_errors_total",
	"catalog_retries_total",
	"catalog_retry_exhausted_total",
	// pkg/ratelimit
	"catalog_rate_limit_waits_total",
	"catalog_rate_limit_wait_seconds",
	// pkg/cache
	"catalog_cache_hits_total",
	"catalog_cache_misses_total",
	"catalog_cache_entries",
	"catalog_cache_errors_total",
	// pkg/pagination
	"catalog_fanout_dropped_total",
	"catalog_fanout_duration_seconds",
	// pkg/resolver
	"catalog_resolutions_total",
	"catalog_resolution_duration_seconds",
	// pkg/favorites
	"catalog_favorites_toggles_total",
	"catalog_favorites_storage_errors_total",
}

// Handler serves the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - catalog_requests_total{endpoint, status} (Counter): Upstream requests by endpoint and HTTP status
//   - catalog_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - catalog_errors_total{class} (Counter): Errors by class (client, server, network, timeout, malformed)
//
// Retry Metrics (pkg/client):
//   - catalog_retries_total{error_class} (Counter): Retry attempts by error class
//   - catalog_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//
// Rate Limit Metrics (pkg/ratelimit):
//   - catalog_rate_limit_waits_total (Counter): Requests that had to wait for a token
//   - catalog_rate_limit_wait_seconds (Histogram): Time spent waiting for a token
//
// Cache Metrics (pkg/cache):
//   - catalog_cache_hits_total{layer} (Counter): Detail cache hits (memory, redis)
//   - catalog_cache_misses_total (Counter): Detail cache misses
//   - catalog_cache_entries{layer} (Gauge): Entries written by this process
//   - catalog_cache_errors_total{operation} (Counter): Cache operation errors
//
// Fan-out Metrics (pkg/pagination):
//   - catalog_fanout_dropped_total (Counter): Items dropped because their detail fetch failed
//   - catalog_fanout_duration_seconds (Histogram): Fan-out batch duration
//
// Resolver Metrics (pkg/resolver):
//   - catalog_resolutions_total{branch, outcome} (Counter): Resolutions by branch and outcome
//   - catalog_resolution_duration_seconds{branch} (Histogram): Resolution duration
//
// Favorites Metrics (pkg/favorites):
//   - catalog_favorites_toggles_total{action} (Counter): Toggles by action (added, removed)
//   - catalog_favorites_storage_errors_total{operation} (Counter): Load/save failures
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(catalog_cache_hits_total[5m])) /
//   (sum(rate(catalog_cache_hits_total[5m])) + sum(rate(catalog_cache_misses_total[5m])))
//
//   # Share of type-filter candidates lost to failed detail fetches
//   rate(catalog_fanout_dropped_total[5m])
//
//   # Upstream Error Rate
//   rate(catalog_errors_total[5m])
//
//   # P95 Filtered Resolution Latency
//   histogram_quantile(0.95, rate(catalog_resolution_duration_seconds_bucket{branch="filtered"}[5m]))
