// internal/metrics/metrics.go

// Package metrics holds the Prometheus instruments of the recommendation
// service. Everything registers with the default registry at init and is
// served by the /metrics endpoint.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Catalog
	CatalogQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_query_duration_seconds",
			Help:    "Duration of catalog database queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	CatalogQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_query_errors_total",
			Help: "Total number of failed catalog queries",
		},
		[]string{"operation"},
	)

	// Review source
	ReviewFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "review_fetch_duration_seconds",
			Help:    "Duration of review-source calls in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	ReviewFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_fetch_total",
			Help: "Review-source calls by outcome",
		},
		[]string{"outcome"}, // "success", "error", "rejected"
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Recommendations
	RecommendationsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_requests_total",
			Help: "Recommendation requests by outcome",
		},
		[]string{"outcome"},
	)

	RecommendationCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_candidates",
			Help:    "Number of catalog candidates considered per request",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	// HTTP
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

// ObserveCatalogQuery records the latency of a catalog query started at start.
func ObserveCatalogQuery(operation string, start time.Time, err error) {
	CatalogQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		CatalogQueryErrors.WithLabelValues(operation).Inc()
	}
}

// ObserveReviewFetch records a review-source call. outcome is one of
// success, error or rejected (short-circuited by the breaker).
func ObserveReviewFetch(outcome string, duration time.Duration) {
	ReviewFetchTotal.WithLabelValues(outcome).Inc()
	if outcome != "rejected" {
		ReviewFetchDuration.Observe(duration.Seconds())
	}
}

// SetCircuitBreakerState publishes a breaker transition. States follow
// gobreaker's ordering: 0 closed, 1 half-open, 2 open.
func SetCircuitBreakerState(name, from, to string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
}

// RecordRecommendation counts a finished recommendation request.
func RecordRecommendation(outcome string, candidates int) {
	RecommendationsServed.WithLabelValues(outcome).Inc()
	if outcome == "ok" {
		RecommendationCandidates.Observe(float64(candidates))
	}
}

// RecordAPIRequest records an API request.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
