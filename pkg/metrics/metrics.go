// Package metrics exposes prometheus instrumentation for the estimation
// service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vramio_requests_total",
		Help: "Estimation requests served, by HTTP status code.",
	}, []string{"code"})

	upstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vramio_upstream_requests_total",
		Help: "Outbound requests to the model registry, by kind.",
	}, []string{"kind"})

	estimateDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "vramio_estimate_duration_seconds",
		Help:    "End-to-end duration of estimation requests.",
		Buckets: prometheus.DefBuckets,
	})
)

// ObserveRequest records a served estimation request.
func ObserveRequest(statusCode int, duration time.Duration) {
	requestsTotal.WithLabelValues(strconv.Itoa(statusCode)).Inc()
	estimateDuration.Observe(duration.Seconds())
}

// ObserveUpstream records an outbound registry call. Kind is one of "tree",
// "index" or "header".
func ObserveUpstream(kind string) {
	upstreamRequestsTotal.WithLabelValues(kind).Inc()
}

// Handler returns the prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
