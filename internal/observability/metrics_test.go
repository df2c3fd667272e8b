package observability

import (
	"testing"
	"time"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	RegisterMetrics()
	RegisterMetrics()

	RecordLaunchOutcome("sitl", "ready", 4200*time.Millisecond)
	RecordLaunchOutcome("gcs", "timed_out", 30*time.Second)
	RecordBridgeReceived()
	RecordBridgePublished()
	RecordBridgeDropped("queue_full")
	RecordBridgeDropped("rate_limited")
}
