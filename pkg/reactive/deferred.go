package reactive

import (
	"time"
)

// CreateDeferred returns an accessor mirroring source that only picks up a
// change once source has been quiet for timeout. Rapid successive changes
// coalesce into a single write carrying the latest value.
//
// The write happens on a timer goroutine, which enters the runtime like any
// other caller and flushes the accessor's subscribers.
//
// Example:
//
//	query := NewSignal("")
//	debounced := CreateDeferred(query.Get, 300*time.Millisecond)
//	Effect(func() { search(debounced()) })
func CreateDeferred[T any](source func() T, timeout time.Duration, opts ...Option) func() T {
	var zero T
	out := NewSignal(zero, opts...)
	o := applyOptions(opts)

	rt.enter()
	defer rt.exit()

	c := rt.newComputation(kindDeferred, o.name)
	var (
		generation uint64
		first      = true
	)
	c.exec = func() bool {
		latest := source()
		if first {
			first = false
			out.value = latest
			return false
		}
		generation++
		gen := generation
		timer := time.AfterFunc(timeout, func() {
			defer func() {
				if v := recover(); v != nil {
					rt.logger.Error("deferred write failed", "node", c.id, "error", toError(v))
				}
			}()
			rt.enter()
			defer rt.exit()
			if gen != generation || c.state == stateDisposed {
				return
			}
			out.set(latest)
		})
		c.Owner.addCleanup(func() {
			timer.Stop()
		})
		return false
	}
	rt.create(c)
	return out.Get
}
