package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks quote cache hits.
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "goonmetrics_cache_hits_total",
			Help: "Total number of quote cache hits",
		},
	)

	// CacheMisses tracks quote cache misses.
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "goonmetrics_cache_misses_total",
			Help: "Total number of quote cache misses",
		},
	)

	// CacheErrors tracks cache operation errors by operation.
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goonmetrics_cache_errors_total",
			Help: "Total number of quote cache operation errors",
		},
		[]string{"operation"}, // "get", "set"
	)
)
