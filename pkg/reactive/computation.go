package reactive

// nodeKind tags the variants of Computation.
type nodeKind uint8

const (
	kindComputed nodeKind = iota
	kindMemo
	kindRenderEffect
	kindEffect
	kindSelector
	kindDeferred
)

// kindTraits is the behavior table for a nodeKind.
type kindTraits struct {
	name string

	// pure computations have no side effects of their own.
	pure bool

	// userEffect nodes run after all pending pure work of a flush.
	userEffect bool

	// exposesValue nodes can be read, and therefore observed.
	exposesValue bool
}

var kinds = [...]kindTraits{
	kindComputed:     {name: "computed", pure: true},
	kindMemo:         {name: "memo", pure: true, exposesValue: true},
	kindRenderEffect: {name: "render-effect"},
	kindEffect:       {name: "effect", userEffect: true},
	kindSelector:     {name: "selector", pure: true, exposesValue: true},
	kindDeferred:     {name: "deferred", pure: true},
}

// nodeState is the scheduling state of a Computation.
type nodeState uint8

const (
	stateClean nodeState = iota
	stateStale
	stateDisposed
)

func (s nodeState) String() string {
	switch s {
	case stateClean:
		return "clean"
	case stateStale:
		return "stale"
	case stateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// Computation is a unit of derived work: an effect, memo, computed, render
// effect, or the internal node behind a selector or deferred accessor. It
// records the signals it reads while running and re-runs when one of them
// changes. A Computation is also an Owner: whatever its body creates is
// disposed before the next run.
type Computation struct {
	Owner

	kind   nodeKind
	state  nodeState
	height int

	// exec runs the body once and reports whether the exposed value changed.
	exec func() bool

	running  bool
	pulled   uint64
	runCount int

	// sources are the signals read during the last run. sourceSlots[i] is
	// this node's index in sources[i].observers, so either side of an edge
	// can be removed in constant time.
	sources     []*signalCore
	sourceSlots []int

	// core is the observable side of a memo.
	core *signalCore

	// keyed holds the per-key observables of a selector.
	keyed map[any]*signalCore
}

// newComputation allocates a node owned by the current owner.
func (r *runtime) newComputation(kind nodeKind, name string) *Computation {
	parent := r.owner
	if parent == nil {
		parent = r.orphanOwner(kind)
	}
	c := &Computation{kind: kind}
	c.Owner = Owner{
		id:     nextID(),
		name:   name,
		parent: parent,
		node:   c,
	}
	parent.children = append(parent.children, &c.Owner)
	return c
}

// Kind returns the computation kind ("memo", "effect", ...).
func (c *Computation) Kind() string {
	return kinds[c.kind].name
}

// Runs returns how many times the body has executed.
func (c *Computation) Runs() int {
	rt.enter()
	defer rt.exit()
	return c.runCount
}

// reset undoes the previous run before the body executes again.
func (c *Computation) reset() {
	c.Owner.clean()
}

// cleanSources removes every subscription edge of c on both sides.
func (c *Computation) cleanSources() {
	for len(c.sources) > 0 {
		last := len(c.sources) - 1
		src := c.sources[last]
		slot := c.sourceSlots[last]
		c.sources = c.sources[:last]
		c.sourceSlots = c.sourceSlots[:last]

		end := len(src.observers) - 1
		if slot < end {
			moved := src.observers[end]
			movedSlot := src.observerSlots[end]
			src.observers[slot] = moved
			src.observerSlots[slot] = movedSlot
			moved.sourceSlots[movedSlot] = slot
		}
		src.observers[end] = nil
		src.observers = src.observers[:end]
		src.observerSlots = src.observerSlots[:end]
	}
}

// raise lifts c to height h and pushes its observers above it.
func (c *Computation) raise(h int) {
	if c.height >= h {
		return
	}
	if h > maxHeight {
		panic(&propagated{value: ErrCycle})
	}
	c.height = h
	if c.core != nil {
		c.core.height = h
		for _, o := range c.core.observers {
			o.raise(h + 1)
		}
	}
	for _, core := range c.keyed {
		core.height = h
		for _, o := range core.observers {
			o.raise(h + 1)
		}
	}
}

// GetListener returns the computation currently recording reads, or nil.
func GetListener() *Computation {
	rt.enter()
	defer rt.exit()
	return rt.listener
}

// createNode builds and runs a computation that exposes no value.
func createNode[T any](kind nodeKind, fn func(prev T) T, initial T, opts []Option) *Computation {
	o := applyOptions(opts)

	rt.enter()
	defer rt.exit()

	c := rt.newComputation(kind, o.name)
	value := initial
	c.exec = func() bool {
		value = fn(value)
		return false
	}
	rt.create(c)
	return c
}

// CreateEffect creates a side-effecting computation. fn runs immediately and
// again after every change to what it read; it receives its previous return
// value (initial on the first run). Within a flush, effects run after all
// memos and computeds have settled.
//
// Example:
//
//	CreateEffect(func(prev int) int {
//	    fmt.Println("count is", count.Get())
//	    return prev + 1
//	}, 0)
func CreateEffect[T any](fn func(prev T) T, initial T, opts ...Option) *Computation {
	return createNode(kindEffect, fn, initial, opts)
}

// CreateRenderEffect is CreateEffect scheduled with pure work, so it runs
// before user effects of the same flush.
func CreateRenderEffect[T any](fn func(prev T) T, initial T, opts ...Option) *Computation {
	return createNode(kindRenderEffect, fn, initial, opts)
}

// CreateComputed creates a pure computation that re-runs eagerly whenever
// what it read changes. It is typically used to write other signals.
func CreateComputed[T any](fn func(prev T) T, initial T, opts ...Option) *Computation {
	return createNode(kindComputed, fn, initial, opts)
}

// Effect creates an effect whose body produces no value.
//
// Example:
//
//	Effect(func() {
//	    fmt.Println("Count is:", count.Get())
//	    OnCleanup(func() { fmt.Println("cleanup") })
//	})
func Effect(fn func(), opts ...Option) *Computation {
	return CreateEffect(func(struct{}) struct{} {
		fn()
		return struct{}{}
	}, struct{}{}, opts...)
}

// OnMount runs fn once, untracked, as an effect of the current owner. It
// never re-runs.
func OnMount(fn func()) {
	Effect(func() {
		Untracked(fn)
	})
}

// OnUpdate runs callback whenever what deps reads changes, skipping the
// initial run.
//
// Example:
//
//	OnUpdate(
//	    func() { _ = count.Get() },
//	    func() { fmt.Println("Updated!") },
//	)
func OnUpdate(deps func(), callback func()) {
	first := true
	Effect(func() {
		deps()
		if first {
			first = false
			return
		}
		Untracked(callback)
	})
}
