package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	launchOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "px4ctl",
			Subsystem: "launch",
			Name:      "outcomes_total",
			Help:      "Launch outcomes by service and status.",
		},
		[]string{"service", "outcome"},
	)
	launchWait = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "px4ctl",
			Subsystem: "launch",
			Name:      "wait_duration_seconds",
			Help:      "Time spent polling readiness before an outcome.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"service"},
	)
	bridgeFramesReceived = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "px4ctl",
			Subsystem: "bridge",
			Name:      "frames_received_total",
			Help:      "Telemetry datagrams read from the local endpoint.",
		},
	)
	bridgeFramesPublished = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "px4ctl",
			Subsystem: "bridge",
			Name:      "frames_published_total",
			Help:      "Telemetry frames published to the broker.",
		},
	)
	bridgeFramesDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "px4ctl",
			Subsystem: "bridge",
			Name:      "frames_dropped_total",
			Help:      "Telemetry frames dropped before publishing.",
		},
		[]string{"reason"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			launchOutcomes,
			launchWait,
			bridgeFramesReceived,
			bridgeFramesPublished,
			bridgeFramesDropped,
		)
	})
}

func RecordLaunchOutcome(service string, outcome string, wait time.Duration) {
	RegisterMetrics()
	launchOutcomes.WithLabelValues(service, outcome).Inc()
	launchWait.WithLabelValues(service).Observe(wait.Seconds())
}

func RecordBridgeReceived() {
	RegisterMetrics()
	bridgeFramesReceived.Inc()
}

func RecordBridgePublished() {
	RegisterMetrics()
	bridgeFramesPublished.Inc()
}

func RecordBridgeDropped(reason string) {
	RegisterMetrics()
	bridgeFramesDropped.WithLabelValues(reason).Inc()
}
