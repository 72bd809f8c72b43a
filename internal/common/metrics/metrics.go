// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SearchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "directory_search_requests_total",
			Help: "Total number of search requests by outcome",
		},
		[]string{"outcome"},
	)

	SearchStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "directory_search_stage_duration_seconds",
			Help:    "Duration of each search pipeline stage in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"stage"},
	)

	SearchMatchedListings = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "directory_search_matched_listings",
			Help:    "Number of listings left after filtering, before pagination",
			Buckets: prometheus.ExponentialBuckets(1, 4, 7),
		},
	)

	CandidateFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "directory_candidate_fetches_total",
			Help: "Total number of candidate fetches by data source and outcome",
		},
		[]string{"source", "outcome"},
	)

	CandidateTruncations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "directory_candidate_truncations_total",
			Help: "Candidate fetches that hit the candidate limit, so totals may be understated",
		},
		[]string{"source"},
	)

	CandidateCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "directory_candidate_cache_lookups_total",
			Help: "Candidate cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "directory_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "directory_http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		},
	)
)
