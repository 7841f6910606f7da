package reactive

import (
	"fmt"
	"reflect"
)

// signalCore provides type-erased subscriber management. It is embedded in
// Signal[T] and Memo[T], and backs every per-key entry of a selector.
type signalCore struct {
	id   uint64
	name string

	// node is the computation producing this value, nil for plain signals.
	node *Computation

	// height is 0 for signals and the producing node's height otherwise.
	height int

	// observers are the computations that read this value during their last
	// run. observerSlots[i] is this core's index in observers[i].sources.
	observers     []*Computation
	observerSlots []int

	// peek returns the current value for graph snapshots.
	peek func() any
}

// Signal is a reactive value container.
// Reading a Signal's value while a computation runs subscribes that
// computation; writing a value the comparator judges different re-runs every
// subscriber.
type Signal[T any] struct {
	core signalCore

	// value is the current signal value.
	value T

	// equals decides whether a write changes the value.
	equals func(a, b T) bool
}

// NewSignal creates a new signal with the given initial value.
//
// Example:
//
//	count := NewSignal(0)
//	count.Set(5)
//	count.Update(func(n int) int { return n + 1 })
func NewSignal[T any](initial T, opts ...Option) *Signal[T] {
	o := applyOptions(opts)
	s := &Signal[T]{
		value:  initial,
		equals: equalsFor[T](o),
	}
	s.core = signalCore{id: nextID(), name: o.name}
	s.core.peek = func() any { return s.value }
	return s
}

// CreateSignal creates a signal and returns its accessor and setter.
// The setter returns the value held after the write.
func CreateSignal[T any](initial T, opts ...Option) (func() T, func(T) T) {
	s := NewSignal(initial, opts...)
	return s.Get, s.Set
}

// Get returns the current value and subscribes the running computation.
func (s *Signal[T]) Get() T {
	rt.enter()
	defer rt.exit()
	rt.track(&s.core)
	return s.value
}

// Peek returns the current value without subscribing.
func (s *Signal[T]) Peek() T {
	rt.enter()
	defer rt.exit()
	return s.value
}

// Set writes value. If the comparator judges it equal to the current value
// nothing happens and the current value is returned; otherwise the value is
// stored, subscribers are scheduled, and value is returned. Outside a batch
// or flush, the write flushes before Set returns.
func (s *Signal[T]) Set(value T) T {
	rt.enter()
	defer rt.exit()
	return s.set(value)
}

// Update writes fn applied to the current value.
func (s *Signal[T]) Update(fn func(T) T) T {
	rt.enter()
	defer rt.exit()
	return s.set(fn(s.value))
}

// Reset writes the zero value of T.
func (s *Signal[T]) Reset() T {
	var zero T
	return s.Set(zero)
}

func (s *Signal[T]) set(value T) T {
	if s.equals(s.value, value) {
		return s.value
	}
	s.value = value
	rt.write(&s.core)
	return value
}

// ID returns the unique identifier for this signal.
func (s *Signal[T]) ID() uint64 {
	return s.core.id
}

// Name returns the debug name given with the Name option.
func (s *Signal[T]) Name() string {
	return s.core.name
}

// Option configures a signal, memo or computation.
type Option func(*options)

type options struct {
	name         string
	equals       any
	notifyAlways bool
	deferRun     bool
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Name sets a debug name, reported in graph snapshots and logs.
func Name(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// Equals sets the comparator deciding whether a new value differs from the
// current one. For selectors it compares a key with the selected value.
// The comparator's type must match the value type of the primitive.
//
// Example:
//
//	lower := NewSignal(5, Equals(func(a, b int) bool { return a > b }))
func Equals[T any](fn func(a, b T) bool) Option {
	return func(o *options) {
		o.equals = fn
		o.notifyAlways = false
	}
}

// AlwaysNotify treats every write as a change.
func AlwaysNotify() Option {
	return func(o *options) {
		o.notifyAlways = true
		o.equals = nil
	}
}

// Defer makes a function built by On skip its first run.
func Defer() Option {
	return func(o *options) {
		o.deferRun = true
	}
}

// equalsFor resolves the comparator for a T-valued primitive.
func equalsFor[T any](o options) func(a, b T) bool {
	if o.notifyAlways {
		return func(T, T) bool { return false }
	}
	if o.equals == nil {
		return DefaultEquals[T]
	}
	fn, ok := o.equals.(func(a, b T) bool)
	if !ok {
		var zero T
		panic(fmt.Errorf("%w: comparator %T used for %T", ErrTypeMismatch, o.equals, zero))
	}
	return fn
}

// DefaultEquals reports identity: == for comparable values, the same backing
// array and length for slices, the same map, and never for functions.
func DefaultEquals[T any](a, b T) bool {
	switch av := any(a).(type) {
	case int:
		bv, ok := any(b).(int)
		return ok && av == bv
	case int64:
		bv, ok := any(b).(int64)
		return ok && av == bv
	case float64:
		bv, ok := any(b).(float64)
		return ok && av == bv
	case string:
		bv, ok := any(b).(string)
		return ok && av == bv
	case bool:
		bv, ok := any(b).(bool)
		return ok && av == bv
	}

	va, vb := reflect.ValueOf(any(a)), reflect.ValueOf(any(b))
	if !va.IsValid() || !vb.IsValid() {
		return va.IsValid() == vb.IsValid()
	}
	if va.Type() != vb.Type() {
		return false
	}
	if va.Comparable() {
		return va.Equal(vb)
	}
	switch va.Kind() {
	case reflect.Slice:
		return va.Len() == vb.Len() && va.Pointer() == vb.Pointer()
	case reflect.Map:
		return va.Pointer() == vb.Pointer()
	default:
		return false
	}
}
