// Package metrics provides Prometheus metrics for host bridge traffic.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	bridgeCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webide_bridge_calls_total",
			Help: "Total number of host bridge calls",
		},
		[]string{"op", "result"},
	)

	bridgeCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "webide_bridge_call_duration_seconds",
			Help:    "Host bridge call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	bridgeSessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "webide_bridge_sessions_active",
			Help: "Number of connected remote bridge sessions",
		},
	)

	projectsListed = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "webide_projects_listed",
			Help: "Number of projects returned by the last project list load",
		},
	)

	projectsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "webide_projects_skipped_total",
			Help: "Projects skipped because their sidecar config could not be read or parsed",
		},
	)
)

// RecordBridgeCall records one host bridge call.
func RecordBridgeCall(op string, ok bool, d time.Duration) {
	result := "ok"
	if !ok {
		result = "error"
	}
	bridgeCallsTotal.WithLabelValues(op, result).Inc()
	bridgeCallDuration.WithLabelValues(op).Observe(d.Seconds())
}

func SessionOpened() { bridgeSessionsActive.Inc() }
func SessionClosed() { bridgeSessionsActive.Dec() }

// SetProjectsListed records the size of the last project listing.
func SetProjectsListed(n int) { projectsListed.Set(float64(n)) }

// ProjectSkipped counts a project left out of a listing.
func ProjectSkipped() { projectsSkipped.Inc() }

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
