// Package metrics provides the central Prometheus registry reference for
// bookrec. Metrics are defined in the packages that own them (cache, api)
// to avoid circular dependencies; this package documents the full set.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registerer used by the service. All
// metrics register themselves via promauto in their own packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Cache Metrics (pkg/cache):
//   - bookrec_cache_hits_total{layer} (Counter): Cache hits by layer (memory, redis)
//   - bookrec_cache_misses_total (Counter): Cache misses
//   - bookrec_cache_errors_total{operation} (Counter): Cache operation errors
//   - bookrec_cache_entry_bytes (Histogram): Entry size distribution
//   - bookrec_cache_unavailable (Gauge): 1 while the Redis backend is unreachable
//
// Request Metrics (pkg/api):
//   - bookrec_requests_total{route, status} (Counter): Requests by route and HTTP status
//   - bookrec_request_duration_seconds{route} (Histogram): Request duration by route
//   - bookrec_rate_limited_total (Counter): Requests rejected by the token bucket
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(bookrec_cache_hits_total[5m])) /
//   (sum(rate(bookrec_cache_hits_total[5m])) + sum(rate(bookrec_cache_misses_total[5m])))
//
//   # Degraded Mode
//   bookrec_cache_unavailable == 1
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(bookrec_request_duration_seconds_bucket[5m]))
