// Package metrics provides the centralized Prometheus metrics registry for
// the swapi client. All metrics are defined in their respective packages
// (client, controller, cache) to maintain modularity and avoid circular
// dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the swapi client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - swapi_requests_total{status} (Counter): Upstream requests by HTTP status
//   - swapi_request_duration_seconds (Histogram): Request duration
//   - swapi_errors_total{class} (Counter): Fetch errors by class (client, server, network)
//
// Fetch Sequence Metrics (pkg/controller):
//   - swapi_fetch_sequences_total{outcome} (Counter): Settled sequences by outcome
//     (success, client_error, exhausted)
//   - swapi_retries_total (Counter): Retry attempts
//   - swapi_retry_backoff_seconds (Histogram): Backoff duration before retries
//   - swapi_retry_exhausted_total (Counter): Sequences that exhausted max attempts
//   - swapi_page_navigations_total (Counter): User-initiated page navigations
//
// Cache Metrics (pkg/cache):
//   - swapi_cache_hits_total{layer="redis"} (Counter): Cache hits by layer
//   - swapi_cache_misses_total (Counter): Cache misses
//   - swapi_cache_size_bytes{layer="redis"} (Gauge): Current cache size in bytes
//   - swapi_cache_errors_total{operation} (Counter): Cache operation errors
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(swapi_cache_hits_total[5m])) /
//   (sum(rate(swapi_cache_hits_total[5m])) + sum(rate(swapi_cache_misses_total[5m])))
//
//   # Retry Exhaustion Rate
//   rate(swapi_retry_exhausted_total[5m])
//
//   # Request Error Rate
//   rate(swapi_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(swapi_request_duration_seconds_bucket[5m]))
