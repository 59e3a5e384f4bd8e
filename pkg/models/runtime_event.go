package models

import "time"

// RuntimeEventKind enumerates internal telemetry events fed to metrics
// and logging. These never cross the wire; they exist for observability.
type RuntimeEventKind string

const (
	EventProviderCallStarted  RuntimeEventKind = "provider_call_started"
	EventProviderCallFinished RuntimeEventKind = "provider_call_finished"
	EventProviderQuarantined  RuntimeEventKind = "provider_quarantined"
	EventToolDispatched       RuntimeEventKind = "tool_dispatched"
	EventToolFinished         RuntimeEventKind = "tool_finished"
	EventBusTimeout           RuntimeEventKind = "bus_dispatch_timeout"
)

// RuntimeEvent is a single internal telemetry observation.
type RuntimeEvent struct {
	Kind      RuntimeEventKind
	At        time.Time
	Provider  string
	Tool      string
	Channel   string
	Err       string
	Duration  time.Duration
}
