// Package reactive provides a fine-grained, push-based reactive runtime.
//
// Dependencies are tracked automatically at runtime: reading a signal while a
// computation runs subscribes that computation, and writing the signal re-runs
// it. Propagation is synchronous and glitch-free. Within one flush every
// affected computation runs at most once, after everything it depends on.
//
// # Core Types
//
// Signal[T] is a reactive value container:
//
//	count := NewSignal(0)
//	value := count.Get()  // Read (subscribes the running computation)
//	count.Set(5)          // Write (re-runs subscribers)
//	count.Update(func(n int) int { return n + 1 })
//
// Memo[T] is a cached derived value:
//
//	doubled := NewMemo(func() int { return count.Get() * 2 })
//	value := doubled.Get()
//
// Effects run side effects after derived values have settled:
//
//	Effect(func() {
//	    fmt.Println("Count is:", count.Get())
//	    OnCleanup(func() { /* before the next run and on disposal */ })
//	})
//
// # Ownership
//
// Every computation belongs to an Owner. CreateRoot opens a root scope; the
// dispose function it hands out tears down everything created below it,
// children first, running every OnCleanup exactly once. A computation
// disposes what its previous run created before it runs again.
//
// Panics raised by computations are delivered to the nearest owner with
// OnError handlers. With none, the original panic value escapes the call that
// triggered the run.
//
// # Batching
//
// Multiple signal updates can be batched to trigger a single flush:
//
//	Batch(func() {
//	    a.Set(1)
//	    b.Set(2)
//	    c.Set(3)
//	})
//
// # Thread Safety
//
// The whole graph is guarded by one runtime lock that is reentrant for the
// goroutine holding it. Any goroutine may read or write signals; operations
// from different goroutines are serialized, and each top-level write
// completes its flush before the next one starts.
package reactive
