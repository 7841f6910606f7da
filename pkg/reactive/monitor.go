package reactive

import "time"

// Monitor observes the scheduler. Implementations must not call back into
// the runtime; they are invoked while the runtime lock is held.
//
// See package monitor for Prometheus and OpenTelemetry implementations.
type Monitor interface {
	// FlushStarted is called when a flush begins with pending queued nodes.
	FlushStarted(pending int)

	// NodeRan is called after every computation run, inside or outside a flush.
	NodeRan(kind string, d time.Duration)

	// FlushFinished is called when a flush completes or aborts.
	FlushFinished(stats FlushStats)

	// Uncaught is called when an error reaches no handler.
	Uncaught(err error)
}

// FlushStats summarizes one flush.
type FlushStats struct {
	// Runs is the number of computations executed.
	Runs int

	// Duration is the wall time of the flush.
	Duration time.Duration

	// Discarded counts stale nodes dropped because the flush aborted.
	Discarded int

	// Failed is set when a panic escaped the flush.
	Failed bool
}
