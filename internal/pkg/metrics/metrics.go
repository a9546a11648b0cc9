// Package metrics holds the process-wide Prometheus collectors. Label sets are
// bounded (method, outcome, route template) so cardinality stays fixed.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "backoffice"

var (
	preconditionOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "booking_precondition_outcomes_total",
		Help:      "Conditional request decisions by booking operation and outcome",
	}, []string{"operation", "outcome"})

	casConflicts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "booking_cas_conflicts_total",
		Help:      "Compare-and-swap attempts rejected by the store because the version moved",
	}, []string{"operation"})

	storeRetries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "booking_store_retries_total",
		Help:      "Transparent retries of transient version store failures",
	}, []string{"driver"})

	eventPublishErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "booking_event_publish_errors_total",
		Help:      "Booking change events that could not be published",
	})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route template and status code",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

func init() {
	prometheus.MustRegister(preconditionOutcomes, casConflicts, storeRetries, eventPublishErrors, httpDuration)
}

func ObservePrecondition(operation, outcome string) {
	preconditionOutcomes.WithLabelValues(operation, outcome).Inc()
}

func ObserveCASConflict(operation string) {
	casConflicts.WithLabelValues(operation).Inc()
}

func ObserveStoreRetry(driver string) {
	storeRetries.WithLabelValues(driver).Inc()
}

func ObserveEventPublishError() {
	eventPublishErrors.Inc()
}

func ObserveHTTPRequest(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}
