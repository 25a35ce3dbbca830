package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache hits by layer (memory, redis)
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookrec_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"layer"}, // "memory", "redis"
	)

	// CacheMisses tracks cache misses
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookrec_cache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	// CacheErrors tracks cache operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookrec_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete", "clear", "keys", "stats"
	)

	// CacheEntryBytes observes the size of entries read from or written to
	// the cache.
	CacheEntryBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bookrec_cache_entry_bytes",
			Help:    "Size distribution of cache entries in bytes",
			Buckets: prometheus.ExponentialBuckets(64, 4, 8),
		},
	)

	// CacheUnavailable reports whether the Redis backend is currently
	// considered unreachable (1 = unavailable).
	CacheUnavailable = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bookrec_cache_unavailable",
			Help: "Whether the cache backend is currently unavailable",
		},
	)
)
