// Package metrics registers the Prometheus collectors for overlay builds,
// correction writes and HTTP traffic.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "genrewiki"

// Overlay build scopes.
const (
	ScopeTree = "tree"
	ScopeNode = "node"
)

var (
	// overlayBuilds counts overlay computations.
	// Labels: scope (tree, node)
	overlayBuilds = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "overlay",
		Name:      "builds_total",
		Help:      "Total correction overlay builds",
	}, []string{"scope"})

	// overlayBuildDuration measures overlay computation time.
	// Labels: scope
	overlayBuildDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "overlay",
		Name:      "build_duration_seconds",
		Help:      "Correction overlay build latency in seconds",
		Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
	}, []string{"scope"})

	// overlayWarnings counts dropped references found while building.
	// Labels: kind (INCONSISTENT_REFERENCE, DELETED_REFERENCE)
	overlayWarnings = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "overlay",
		Name:      "warnings_total",
		Help:      "Dangling references dropped while building overlays",
	}, []string{"kind"})

	// correctionsMerged counts corrections applied to the base taxonomy.
	correctionsMerged = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "corrections",
		Name:      "merged_total",
		Help:      "Total corrections merged into the base taxonomy",
	})

	// writesRejected counts correction writes refused at the write boundary.
	// Labels: code (VALIDATION, TYPE_MISMATCH, CYCLE_DETECTED, ...)
	writesRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "corrections",
		Name:      "writes_rejected_total",
		Help:      "Correction writes rejected by code",
	}, []string{"code"})

	// httpRequests counts served requests.
	// Labels: method, route (chi route pattern), status
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests",
	}, []string{"method", "route", "status"})

	// httpDuration measures request latency.
	// Labels: method, route
	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// RecordOverlayBuild records one overlay build and its warnings by kind.
func RecordOverlayBuild(scope string, took time.Duration, warningKinds []string) {
	overlayBuilds.WithLabelValues(scope).Inc()
	overlayBuildDuration.WithLabelValues(scope).Observe(took.Seconds())
	for _, kind := range warningKinds {
		overlayWarnings.WithLabelValues(kind).Inc()
	}
}

// RecordMerge records a merged correction.
func RecordMerge() {
	correctionsMerged.Inc()
}

// RecordRejectedWrite records a refused correction write.
func RecordRejectedWrite(code string) {
	writesRejected.WithLabelValues(code).Inc()
}

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(method, route string, status int, took time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(took.Seconds())
}
