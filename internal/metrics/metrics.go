// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recommendations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nerdswipe_anti_recommendations_total",
			Help: "Anti-recommendation generations by backend and outcome",
		},
		[]string{"backend", "status"},
	)

	modelRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nerdswipe_model_request_duration_seconds",
			Help:    "Model API request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 0.1s to ~100s
		},
		[]string{"model", "status"},
	)

	rateLimiterWait = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nerdswipe_rate_limiter_wait_duration_seconds",
			Help:    "Time spent waiting on the model rate limiter",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		},
		[]string{"model"},
	)

	httpRequests = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nerdswipe_http_request_duration_seconds",
			Help:    "HTTP request duration by route and status code",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "code"},
	)

	ingested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nerdswipe_ingested_articles_total",
			Help: "Articles processed by ingest runs",
		},
		[]string{"result"},
	)
)

// RecordRecommendation counts one generation. err == nil is a success.
func RecordRecommendation(backend string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	recommendations.WithLabelValues(backend, status).Inc()
}

// RecordModelRequest observes a model API call. status is the HTTP status,
// or 0 when the request never got a response.
func RecordModelRequest(model string, status int, d time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	modelRequestDuration.WithLabelValues(model, label).Observe(d.Seconds())
}

// RecordRateLimiterWait observes time blocked on the model rate limiter.
func RecordRateLimiterWait(model string, d time.Duration) {
	rateLimiterWait.WithLabelValues(model).Observe(d.Seconds())
}

// RecordHTTPRequest observes one served API request.
func RecordHTTPRequest(method, route string, code int, d time.Duration) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Observe(d.Seconds())
}

// RecordIngest adds the counts of one ingest run.
func RecordIngest(inserted, updated, unchanged int) {
	ingested.WithLabelValues("inserted").Add(float64(inserted))
	ingested.WithLabelValues("updated").Add(float64(updated))
	ingested.WithLabelValues("unchanged").Add(float64(unchanged))
}
