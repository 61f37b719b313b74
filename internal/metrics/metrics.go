// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BundleRequests counts bundle generations by mode (match, lottery) and status
	BundleRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bundle_requests_total",
			Help: "Total number of bundle generations by mode and resulting status",
		},
		[]string{"mode", "status"},
	)

	// BundleSelectionDuration tracks time spent inside the selection algorithms
	BundleSelectionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bundle_selection_duration_seconds",
			Help:    "Duration of bundle selection in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
		},
		[]string{"mode"},
	)

	// BundleRepairSwaps counts budget repair swaps across all match requests
	BundleRepairSwaps = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bundle_repair_swaps_total",
			Help: "Total number of budget repair swaps performed",
		},
	)

	// NoteMappingCache counts note mapping lookups by result (hit, miss, error)
	NoteMappingCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "note_mapping_cache_total",
			Help: "Note mapping cache lookups by result",
		},
		[]string{"result"},
	)

	// RateLimited counts requests rejected by the per-IP limiter
	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)
)
