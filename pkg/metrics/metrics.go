package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "users_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// CacheLookups counts cache reads by key kind (all|one) and outcome (hit|miss|error).
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "users_cache_lookups_total",
			Help: "Total number of user cache lookups",
		},
		[]string{"key", "result"},
	)

	// CacheInvalidations counts broad pattern invalidations triggered by mutations.
	CacheInvalidations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "users_cache_invalidations_total",
			Help: "Total number of users:* cache invalidations",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "users_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
