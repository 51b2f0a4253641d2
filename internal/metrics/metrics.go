// Package metrics registers the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ValidationOutcomes counts key validation attempts by platform and outcome.
var ValidationOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "vault_validation_outcomes_total",
	Help: "Key validation attempts by platform and normalized outcome.",
}, []string{"platform", "outcome"})

// DuplicateChecks counts duplicate scans by result.
var DuplicateChecks = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "vault_duplicate_checks_total",
	Help: "Duplicate scans by result (duplicate or clear).",
}, []string{"result"})

// HTTPRequestDuration observes request latency by method, route and status.
var HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "vault_http_request_duration_seconds",
	Help:    "HTTP request latency by method, route pattern and status code.",
	Buckets: prometheus.DefBuckets,
}, []string{"method", "route", "status"})
