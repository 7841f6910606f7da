package reactive

// Owner is a disposal and error-boundary scope. Owners form a tree: roots are
// created by CreateRoot, and every computation is itself an owner nested in
// the scope that was current when it was created. Disposing an owner disposes
// its children first, newest first, then runs its cleanups in reverse
// registration order, so nothing created below it outlives it.
type Owner struct {
	id   uint64
	name string

	// parent is a back-reference only; the parent owns this scope, not the
	// other way round. nil for roots.
	parent *Owner

	// children are the scopes created while this owner was current, in
	// creation order.
	children []*Owner

	// cleanups registered via OnCleanup, in registration order. They run
	// last-first.
	cleanups []func()

	// handlers registered via OnError, in registration order.
	handlers []ErrorHandler

	// values holds context values provided on this scope.
	values map[any]any

	disposed bool

	// node is set when this owner is the scope of a computation.
	node *Computation
}

func newOwner(parent *Owner) *Owner {
	o := &Owner{
		id:     nextID(),
		parent: parent,
	}
	if parent != nil {
		parent.children = append(parent.children, o)
	}
	return o
}

// ID returns the unique identifier for this Owner.
func (o *Owner) ID() uint64 {
	return o.id
}

// Name returns the debug name, if any.
func (o *Owner) Name() string {
	return o.name
}

// Parent returns the parent Owner, or nil for a root or a disposed owner.
func (o *Owner) Parent() *Owner {
	rt.enter()
	defer rt.exit()
	return o.parent
}

// IsDisposed reports whether this Owner has been disposed.
func (o *Owner) IsDisposed() bool {
	rt.enter()
	defer rt.exit()
	return o.disposed
}

// Computation returns the computation this owner scopes, or nil for a root.
func (o *Owner) Computation() *Computation {
	return o.node
}

// Dispose disposes this Owner and everything below it. Child scopes are
// disposed newest first, then cleanups run in reverse registration order.
// Calling it more than once is a no-op.
func (o *Owner) Dispose() {
	rt.enter()
	defer rt.exit()
	o.dispose()
}

// OnCleanup registers fn to run when this Owner is disposed, or before its
// computation re-runs. Cleanups run in reverse registration order. On an
// already disposed owner fn runs immediately.
func (o *Owner) OnCleanup(fn func()) {
	rt.enter()
	defer rt.exit()
	o.addCleanup(fn)
}

// OnError registers a handler for errors raised in this scope or below it.
func (o *Owner) OnError(h ErrorHandler) {
	rt.enter()
	defer rt.exit()
	o.handlers = append(o.handlers, h)
}

func (o *Owner) addCleanup(fn func()) {
	if o.disposed {
		rt.untracked(fn)
		return
	}
	o.cleanups = append(o.cleanups, fn)
}

func (o *Owner) removeChild(child *Owner) {
	for i, c := range o.children {
		if c == child {
			o.children = append(o.children[:i], o.children[i+1:]...)
			return
		}
	}
}

// dispose tears the scope down depth-first and severs the parent link.
func (o *Owner) dispose() {
	if o.disposed {
		return
	}
	o.disposed = true
	if o.node != nil {
		o.node.state = stateDisposed
	}

	parent := o.parent
	defer func() {
		if parent != nil {
			parent.removeChild(o)
		}
		o.parent = nil
	}()
	o.clean()
}

// clean releases everything a scope accumulated: subscriptions, child
// scopes (last created first) and cleanups (last registered first). Every
// cleanup runs even if an earlier one panics; the first failure is then
// raised relative to the parent scope, since this scope's own handlers are
// being torn down.
func (o *Owner) clean() {
	if o.node != nil {
		o.node.cleanSources()
	}

	var failure any
	failed := false
	record := func(v any, ok bool) {
		if !ok && !failed {
			failure, failed = v, true
		}
	}

	children := o.children
	o.children = nil
	for i := len(children) - 1; i >= 0; i-- {
		record(safeCall(children[i].dispose))
	}

	cleanups := o.cleanups
	o.cleanups = nil
	for i := len(cleanups) - 1; i >= 0; i-- {
		fn := cleanups[i]
		record(safeCall(func() { rt.withScope(o, nil, fn) }))
	}

	o.handlers = nil
	o.values = nil

	if failed {
		rt.handleError(o.parent, failure)
	}
}

// safeCall runs fn and reports a recovered panic value.
func safeCall(fn func()) (v any, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			v, ok = r, false
		}
	}()
	fn()
	return nil, true
}

// lookup resolves a context value by walking towards the root.
func (o *Owner) lookup(key any) (any, bool) {
	for ; o != nil; o = o.parent {
		if v, ok := o.values[key]; ok {
			return v, true
		}
	}
	return nil, false
}

func (o *Owner) setValue(key, value any) {
	if o.values == nil {
		o.values = make(map[any]any)
	}
	o.values[key] = value
}

// CreateRoot runs fn inside a new root scope that is not attached to any
// parent and returns fn's result. The scope lives until the dispose function
// handed to fn is called. A panic inside fn is delivered to handlers
// registered on the root; with none, it re-panics out of CreateRoot.
func CreateRoot[R any](fn func(dispose func()) R) R {
	rt.enter()
	defer rt.exit()

	root := newOwner(nil)
	var result R
	rt.withScope(root, nil, func() {
		rt.guard(root, func() {
			result = fn(root.Dispose)
		})
	})
	return result
}

// Root is CreateRoot for bodies that produce no value.
func Root(fn func(dispose func())) {
	CreateRoot(func(dispose func()) struct{} {
		fn(dispose)
		return struct{}{}
	})
}

// OnCleanup registers fn on the current owner. Inside a computation body it
// runs before the next run and on disposal. Cleanups on one owner run in
// reverse registration order.
func OnCleanup(fn func()) {
	rt.enter()
	defer rt.exit()
	if rt.owner == nil {
		rt.logger.Warn("cleanup registered outside a root will never run")
		return
	}
	rt.owner.addCleanup(fn)
}

// OnError registers h on the current owner. Errors raised by computations in
// this scope or below reach the nearest owner with handlers; all of that
// owner's handlers are called in registration order.
func OnError(h ErrorHandler) {
	rt.enter()
	defer rt.exit()
	if rt.owner == nil {
		rt.logger.Warn("error handler registered outside a root will never be called")
		return
	}
	rt.owner.handlers = append(rt.owner.handlers, h)
}

// GetOwner returns the current owner, or nil outside any scope.
func GetOwner() *Owner {
	rt.enter()
	defer rt.exit()
	return rt.owner
}

// RunWithOwner runs fn with o as the current owner and no listener, for
// creating computations outside their natural call stack (for example after
// an asynchronous callback). Panics inside fn are routed to o's handlers.
func RunWithOwner[R any](o *Owner, fn func() R) R {
	rt.enter()
	defer rt.exit()

	var result R
	rt.withScope(o, nil, func() {
		rt.guard(o, func() {
			result = fn()
		})
	})
	return result
}
