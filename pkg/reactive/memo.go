package reactive

// Memo is a cached derived value. Its body re-runs when something it read
// changes, and its observers are notified only when the comparator judges the
// new value different from the previous one.
//
// Unlike a Signal, a Memo cannot be set directly; its value is always the
// result of its body.
type Memo[T any] struct {
	node   *Computation
	core   signalCore
	value  T
	equals func(a, b T) bool
}

// CreateMemo creates a memo owned by the current owner. fn receives the
// previous value (initial on the first run) and runs immediately.
//
// Example:
//
//	greeting := CreateMemo(func(string) string {
//	    return "Hello " + name.Get()
//	}, "")
func CreateMemo[T any](fn func(prev T) T, initial T, opts ...Option) *Memo[T] {
	o := applyOptions(opts)
	m := &Memo[T]{
		value:  initial,
		equals: equalsFor[T](o),
	}

	rt.enter()
	defer rt.exit()

	c := rt.newComputation(kindMemo, o.name)
	m.node = c
	m.core = signalCore{id: c.id, name: o.name, node: c}
	m.core.peek = func() any { return m.value }
	c.core = &m.core

	first := true
	c.exec = func() bool {
		next := fn(m.value)
		if first {
			first = false
			m.value = next
			return false
		}
		if m.equals(m.value, next) {
			return false
		}
		m.value = next
		return true
	}
	rt.create(c)
	return m
}

// NewMemo creates a memo from a body that ignores its previous value.
//
// Example:
//
//	doubled := NewMemo(func() int { return count.Get() * 2 })
func NewMemo[T any](fn func() T, opts ...Option) *Memo[T] {
	var zero T
	return CreateMemo(func(T) T { return fn() }, zero, opts...)
}

// Get returns the current value and subscribes the running computation. If
// work is pending, for example inside a Batch, the memo is brought up to date
// first.
func (m *Memo[T]) Get() T {
	rt.enter()
	defer rt.exit()
	rt.refresh(m.node)
	rt.track(&m.core)
	return m.value
}

// Peek returns the current value without subscribing.
func (m *Memo[T]) Peek() T {
	rt.enter()
	defer rt.exit()
	rt.refresh(m.node)
	return m.value
}

// Computation returns the node backing this memo.
func (m *Memo[T]) Computation() *Computation {
	return m.node
}

// ID returns the unique identifier for this memo.
func (m *Memo[T]) ID() uint64 {
	return m.core.id
}
