package controller

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for fetch sequences.
var (
	fetchSequencesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swapi_fetch_sequences_total",
		Help: "Total settled fetch sequences by outcome",
	}, []string{"outcome"}) // "success", "client_error", "exhausted"

	retriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swapi_retries_total",
		Help: "Total number of retry attempts",
	})

	retryBackoffSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "swapi_retry_backoff_seconds",
		Help:    "Backoff duration before retries",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
	})

	retryExhaustedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swapi_retry_exhausted_total",
		Help: "Total number of times retry attempts were exhausted",
	})

	pageNavigationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swapi_page_navigations_total",
		Help: "Total number of user-initiated page navigations",
	})
)
