package reactive

import (
	"log/slog"
	goruntime "runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eapache/queue"
)

// DefaultMaxRunsPerFlush bounds the number of computations a single flush may
// execute before it is aborted with ErrRunawayFlush.
const DefaultMaxRunsPerFlush = 100000

// maxHeight bounds topological heights. Exceeding it means the graph contains
// a cycle that slipped past the running-node guard.
const maxHeight = 1 << 16

// runtime holds the whole reactive graph state. Every exported operation
// enters it; the lock is reentrant for the goroutine that holds it, so
// computation bodies may freely call back into the package.
type runtime struct {
	mu     sync.Mutex
	holder atomic.Uint64
	depth  int

	// owner is the scope that newly created computations and cleanups attach to.
	owner *Owner

	// listener is the computation recording reads. nil means reads are untracked.
	listener *Computation

	// batchDepth counts open batches, including the implicit batch around
	// every initial computation run.
	batchDepth int

	// flushing is set while the scheduler drains pending work.
	flushing bool

	// pure holds stale pure computations ordered by height.
	pure heightQueue

	// effects holds stale user effects in the order they were marked.
	effects *queue.Queue

	// runs counts computations executed by the current flush.
	runs int

	// epoch deduplicates visits during an upstream pull.
	epoch uint64

	// ambient adopts computations created outside any root.
	ambient *Owner

	// escaping is the last uncaught panic, kept until the outermost entry
	// point returns.
	escaping *propagated

	logger  *slog.Logger
	monitor Monitor
	maxRuns int
	debug   bool
}

var rt = newRuntime()

func newRuntime() *runtime {
	return &runtime{
		effects: queue.New(),
		logger:  slog.Default().With("component", "reactive"),
		maxRuns: DefaultMaxRunsPerFlush,
	}
}

// getGoroutineID returns the id of the calling goroutine, parsed from the
// header of its stack trace ("goroutine <id> [...]").
func getGoroutineID() uint64 {
	var buf [64]byte
	n := goruntime.Stack(buf[:], false)

	var id uint64
	for i := 10; i < n; i++ { // skip "goroutine "
		if buf[i] == ' ' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}

// enter acquires the runtime for the calling goroutine.
func (r *runtime) enter() {
	gid := getGoroutineID()
	if r.holder.Load() == gid {
		r.depth++
		return
	}
	r.mu.Lock()
	r.holder.Store(gid)
	r.depth = 1
}

// exit releases one level of the runtime. It must be deferred directly: a
// panic leaving any public entry point is re-raised with the propagation
// marker removed, so the caller, or the next guard up, sees the original value
// and routes it through its own owner chain.
func (r *runtime) exit() {
	v := recover()
	r.depth--
	if r.depth == 0 {
		r.escaping = nil
		r.holder.Store(0)
		r.mu.Unlock()
	}
	if v != nil {
		panic(unwrapPanic(v))
	}
}

// withScope runs fn with the ambient owner and listener replaced.
func (r *runtime) withScope(o *Owner, l *Computation, fn func()) {
	prevOwner, prevListener := r.owner, r.listener
	r.owner, r.listener = o, l
	defer func() {
		r.owner, r.listener = prevOwner, prevListener
	}()
	fn()
}

// untracked runs fn with dependency recording suspended.
func (r *runtime) untracked(fn func()) {
	prev := r.listener
	r.listener = nil
	defer func() {
		r.listener = prev
	}()
	fn()
}

// batch runs fn with notifications deferred until the outermost batch ends.
func (r *runtime) batch(fn func()) {
	r.batchDepth++
	defer func() {
		r.batchDepth--
		r.schedule()
	}()
	fn()
}

// schedule flushes pending work unless a batch or flush is already open.
func (r *runtime) schedule() {
	if r.batchDepth > 0 || r.flushing || !r.hasPending() {
		return
	}
	r.flush()
}

func (r *runtime) hasPending() bool {
	return r.pure.size > 0 || r.effects.Length() > 0
}

// enqueue queues a node that has just been marked stale.
func (r *runtime) enqueue(c *Computation) {
	if kinds[c.kind].userEffect {
		r.effects.Add(c)
		return
	}
	r.pure.push(c)
}

// markObservers marks every clean observer of s stale. A node that already
// ran in this flush is queued again so it observes the latest write.
func (r *runtime) markObservers(s *signalCore) {
	for _, o := range s.observers {
		if o.state == stateClean {
			o.state = stateStale
			r.enqueue(o)
		}
	}
}

// write propagates a committed change of s.
func (r *runtime) write(s *signalCore) {
	if len(s.observers) == 0 {
		return
	}
	r.markObservers(s)
	r.schedule()
}

// track records a read of s by the current listener and reports whether the
// edge is new for this run.
func (r *runtime) track(s *signalCore) bool {
	c := r.listener
	if c == nil || c.state == stateDisposed {
		return false
	}
	if s.node != nil && s.node.running {
		// Reading a computation that is still producing its value would
		// create a cycle; the read sees the previous value untracked.
		return false
	}
	for _, src := range c.sources {
		if src == s {
			return false
		}
	}
	c.sources = append(c.sources, s)
	c.sourceSlots = append(c.sourceSlots, len(s.observers))
	s.observers = append(s.observers, c)
	s.observerSlots = append(s.observerSlots, len(c.sources)-1)
	if s.height >= c.height {
		c.raise(s.height + 1)
	}
	return true
}

// refresh brings c and everything it reads up to date before its value is
// observed while work is still pending.
func (r *runtime) refresh(c *Computation) {
	if !r.hasPending() {
		return
	}
	r.epoch++
	r.pull(c)
}

func (r *runtime) pull(c *Computation) {
	if c.state == stateDisposed || c.running || c.pulled == r.epoch {
		return
	}
	c.pulled = r.epoch
	for i := 0; i < len(c.sources); i++ {
		if n := c.sources[i].node; n != nil {
			r.pull(n)
		}
		if c.state == stateDisposed {
			return
		}
	}
	if c.state == stateStale {
		r.runNode(c)
	}
}

// flush drains all pending work. Pure nodes run lowest height first; user
// effects run only once no pure work is left, so each effect observes a
// settled graph.
func (r *runtime) flush() {
	r.flushing = true
	r.runs = 0
	start := time.Now()
	if r.monitor != nil {
		r.monitor.FlushStarted(r.pure.size + r.effects.Length())
	}

	defer func() {
		r.flushing = false
		stats := FlushStats{Runs: r.runs, Duration: time.Since(start)}
		if v := recover(); v != nil {
			stats.Discarded = r.discard()
			stats.Failed = true
			if r.monitor != nil {
				r.monitor.FlushFinished(stats)
			}
			panic(v)
		}
		if r.monitor != nil {
			r.monitor.FlushFinished(stats)
		}
	}()

	for {
		if c := r.pure.pop(); c != nil {
			r.update(c)
			continue
		}
		if r.effects.Length() > 0 {
			r.update(r.effects.Remove().(*Computation))
			continue
		}
		return
	}
}

// discard drops all pending work after a failed flush.
func (r *runtime) discard() int {
	n := 0
	drop := func(c *Computation) {
		if c.state == stateStale {
			c.state = stateClean
			n++
		}
	}
	for c := r.pure.pop(); c != nil; c = r.pure.pop() {
		drop(c)
	}
	for r.effects.Length() > 0 {
		drop(r.effects.Remove().(*Computation))
	}
	return n
}

func (r *runtime) update(c *Computation) {
	if c.state != stateStale {
		return
	}
	r.runNode(c)
}

// create performs the synchronous first run of a new computation. The run is
// an implicit batch: writes made by the body are flushed after it returns.
func (r *runtime) create(c *Computation) {
	r.batch(func() {
		r.runNode(c)
	})
	if c.Owner.parent != nil && c.Owner.parent.disposed {
		c.Owner.dispose()
	}
}

// runNode executes c once: it tears down what the previous run created,
// re-runs the body with c as owner and listener, and propagates a changed
// value to c's observers.
func (r *runtime) runNode(c *Computation) {
	if c.state == stateDisposed {
		return
	}
	r.runs++
	if r.flushing && r.runs > r.maxRuns {
		r.logger.Error("flush aborted", "runs", r.runs, "node", c.id, "kind", kinds[c.kind].name)
		panic(&propagated{value: ErrRunawayFlush})
	}

	c.reset()
	c.state = stateClean
	c.runCount++

	start := time.Now()
	changed := false
	func() {
		prevOwner, prevListener := r.owner, r.listener
		r.owner, r.listener = &c.Owner, c
		c.running = true
		defer func() {
			c.running = false
			r.owner, r.listener = prevOwner, prevListener
			if v := recover(); v != nil {
				r.handleError(&c.Owner, v)
			}
		}()
		changed = c.exec()
	}()

	elapsed := time.Since(start)
	if r.monitor != nil {
		r.monitor.NodeRan(kinds[c.kind].name, elapsed)
	}
	if r.debug {
		r.logger.Debug("node ran", "node", c.id, "kind", kinds[c.kind].name, "name", c.name, "changed", changed, "elapsed", elapsed)
	}

	if changed && c.state != stateDisposed && c.core != nil {
		r.markObservers(c.core)
	}
}

// guard runs fn and routes a panic to the handlers above o.
func (r *runtime) guard(o *Owner, fn func()) {
	defer func() {
		if v := recover(); v != nil {
			r.handleError(o, v)
		}
	}()
	fn()
}

// handleError walks from o towards its root. The first owner with handlers
// receives the error and propagation stops there; a handler that panics
// continues the walk from its owner's parent. With no handler left the value
// is re-raised as an uncaught panic. A value that escaped a nested entry
// point only visits owners its earlier walk did not reach, so it is reported
// once.
func (r *runtime) handleError(o *Owner, v any) {
	if _, ok := v.(*propagated); ok {
		panic(v)
	}
	seen := r.seenBy(v)
	for ; o != nil; o = o.parent {
		if seen[o] {
			break
		}
		seen[o] = true
		if len(o.handlers) == 0 {
			continue
		}
		next, threw := r.callHandlers(o, toError(v))
		if !threw {
			r.escaping = nil
			return
		}
		if _, ok := next.(*propagated); ok {
			panic(next)
		}
		v, seen = next, r.seenBy(next)
		seen[o] = true
	}

	if o == nil {
		err := toError(v)
		r.logger.Debug("uncaught error", "error", err)
		if r.monitor != nil {
			r.monitor.Uncaught(err)
		}
	}
	r.escaping = &propagated{value: v, seen: seen}
	panic(r.escaping)
}

// seenBy returns the owners already walked by the escaping panic if v is its
// value, or an empty set.
func (r *runtime) seenBy(v any) map[*Owner]bool {
	if p := r.escaping; p != nil && samePanic(p.value, v) {
		return p.seen
	}
	return make(map[*Owner]bool)
}

func (r *runtime) callHandlers(o *Owner, err error) (thrown any, threw bool) {
	handlers := append([]ErrorHandler(nil), o.handlers...)
	defer func() {
		if v := recover(); v != nil {
			thrown, threw = v, true
		}
	}()
	r.withScope(o, nil, func() {
		for _, h := range handlers {
			h(err)
		}
	})
	return nil, false
}

// orphanOwner returns the owner adopting a computation created with no
// ambient owner.
func (r *runtime) orphanOwner(kind nodeKind) *Owner {
	if r.ambient == nil {
		r.ambient = newOwner(nil)
		r.ambient.name = "ambient"
	}
	r.logger.Warn("computation created outside a root will never be disposed", "kind", kinds[kind].name)
	return r.ambient
}

// heightQueue is a bucket queue of stale pure computations keyed by height.
// Heights only grow, so a node raised while queued is re-filed when popped.
type heightQueue struct {
	buckets []*queue.Queue
	low     int
	size    int
}

func (q *heightQueue) push(c *Computation) {
	h := c.height
	for len(q.buckets) <= h {
		q.buckets = append(q.buckets, nil)
	}
	if q.buckets[h] == nil {
		q.buckets[h] = queue.New()
	}
	q.buckets[h].Add(c)
	if q.size == 0 || h < q.low {
		q.low = h
	}
	q.size++
}

func (q *heightQueue) pop() *Computation {
	for q.size > 0 {
		b := q.buckets[q.low]
		if b == nil || b.Length() == 0 {
			q.low++
			continue
		}
		c := b.Remove().(*Computation)
		q.size--
		if c.height > q.low {
			q.push(c)
			continue
		}
		return c
	}
	return nil
}
