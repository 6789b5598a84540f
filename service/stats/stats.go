// Package stats defines the outbound gauge port the dispatcher emits its
// per-heartbeat observability signals through, together with an
// OpenTelemetry-backed implementation. The core only depends on the Recorder
// interface; hosts that do not care about metrics keep the no-op default.
package stats

// Gauge names emitted on every heartbeat.
const (
	GaugeRunningTasks = "running_tasks"
	GaugeQueuedTasks  = "queued_tasks"
	GaugeOpenSlots    = "open_slots"

	// GaugeOutstandingRunningSeconds reports the dispatcher's running-time
	// approximation; see the heartbeat implementation for its exact, quirky
	// definition.
	GaugeOutstandingRunningSeconds = "outstanding_running_seconds"
)

// Recorder receives named numeric gauges. Implementations must be safe for
// use from the controller loop; values are emitted once per heartbeat.
type Recorder interface {
	Gauge(name string, value float64)
}

// Noop discards all gauges.
type Noop struct{}

func (Noop) Gauge(string, float64) {}

var _ Recorder = Noop{}
