// Package metrics declares the portal's Prometheus collectors.
//
// They register on the default registry through promauto, and the server
// exposes that registry at /metrics with promhttp.Handler().
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portal_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// LoginsTotal counts finished OAuth callbacks.
	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_logins_total",
			Help: "OAuth callbacks by outcome",
		},
		[]string{"outcome"}, // success, new_user, unverified, denied, provider_error, invalid_state, error
	)
)

// RecordRequest records one finished HTTP request.
// route should be the matched pattern ("/myProjects"), not the raw path,
// so the label set stays bounded.
func RecordRequest(method, route string, status int, d time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func RecordLogin(outcome string) {
	LoginsTotal.WithLabelValues(outcome).Inc()
}
