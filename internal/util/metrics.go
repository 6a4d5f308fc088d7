package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ResourceMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resource_mutations_total",
		Help: "Total number of successful create/update/delete operations",
	}, []string{"resource", "action"})

	ResourceMutationsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resource_mutations_failed_total",
		Help: "Total number of rejected or failed create/update/delete operations",
	}, []string{"resource", "action", "reason"})

	ScoreRecomputeLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "product_score_recompute_latency_seconds",
		Help:    "Latency of product aggregate score recomputation",
		Buckets: prometheus.DefBuckets,
	})

	OrderTotalAmount = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "order_total_amount",
		Help:    "Tax-inclusive totals of created orders",
		Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 5000},
	})

	IdempotentReplaysTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "order_idempotent_replays_total",
		Help: "Total number of order creations answered from an idempotency key",
	})

	CatalogRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_requests_total",
		Help: "Total number of external catalog requests",
	}, []string{"endpoint", "outcome"})

	CatalogRequestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_request_latency_seconds",
		Help:    "Latency of external catalog requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	CatalogCacheHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_cache_lookups_total",
		Help: "Catalog cache lookups by result",
	}, []string{"result"})

	SearchFallbackTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "product_search_fallback_total",
		Help: "Total number of product searches that fell back to the database",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
