// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "smartinvoice"

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
	SmartFillTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "smart_fill_requests_total",
			Help:      "Smart-fill requests by outcome",
		},
		[]string{"outcome"},
	)
	HistoryCommitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_commits_total",
			Help:      "History upserts by trigger and outcome",
		},
		[]string{"trigger", "outcome"},
	)
	PDFRendersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pdf_renders_total",
			Help:      "PDF renders by outcome",
		},
		[]string{"outcome"},
	)
)

// Outcome label values.
const (
	OutcomeSuccess       = "success"
	OutcomeError         = "error"
	OutcomeNotConfigured = "not_configured"
	OutcomeRateLimited   = "rate_limited"
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
