// Package metrics declares the Prometheus collectors hyprink updates.
// They register with the default registry; embedders expose them through
// their own HTTP handler if they want them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LogLines counts rendered log lines by level.
	LogLines = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hyprink_log_lines_total",
		Help: "Log lines rendered, by level",
	}, []string{"level"})

	// SinkErrors counts sink write failures. Logging never reports these to callers.
	SinkErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hyprink_sink_errors_total",
		Help: "Sink write failures swallowed by fire-and-forget logging",
	})

	// Failures counts failing operations by error kind.
	Failures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hyprink_failures_total",
		Help: "Failing operations by error kind",
	}, []string{"kind"})

	// PackTotal counts pack invocations by result ("ok" or an error kind).
	PackTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hyprink_pack_total",
		Help: "Pack invocations by result",
	}, []string{"result"})

	// PackBytes counts payload bytes written into published packages.
	PackBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hyprink_pack_payload_bytes_total",
		Help: "Payload bytes written into published packages",
	})

	// PackDuration tracks end-to-end pack latency.
	PackDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hyprink_pack_duration_seconds",
		Help:    "Pack duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~16s
	})
)
