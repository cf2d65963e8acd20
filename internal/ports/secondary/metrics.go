package secondary

import "time"

// Metrics defines the secondary port for operational metrics.
type Metrics interface {
	// ClickHandled counts a handled click by kind and outcome.
	ClickHandled(kind, outcome string)

	// StepObserved records the duration of one orchestration step.
	StepObserved(step string, d time.Duration, failed bool)

	// MessagesReaped counts reap decisions by action.
	MessagesReaped(action string, n int)

	// ThrottleDelayed records a replacement delay.
	ThrottleDelayed(d time.Duration)

	// TombstonesPurged counts purged tombstones.
	TombstonesPurged(n int64)
}
