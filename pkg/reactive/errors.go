package reactive

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrRunawayFlush is raised when a single flush executes more computations than
// Config.MaxRunsPerFlush allows. It almost always means two computations keep
// writing signals the other one reads.
var ErrRunawayFlush = errors.New("reactive: potential infinite loop in flush")

// ErrCycle is raised when computations read each other in a cycle.
var ErrCycle = errors.New("reactive: dependency cycle detected")

// ErrTypeMismatch is raised when an option carrying a typed function (such as
// Equals) is applied to a primitive of a different value type.
var ErrTypeMismatch = errors.New("reactive: option type mismatch")

// ErrorHandler receives errors raised below the owner it was registered on.
type ErrorHandler func(err error)

// PanicError wraps a panic value that is not itself an error so it can be
// delivered to an ErrorHandler.
type PanicError struct {
	Value any
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("reactive: panic: %v", e.Value)
}

// toError converts a recovered panic value to an error.
func toError(v any) error {
	if err, ok := v.(error); ok {
		return err
	}
	return &PanicError{Value: v}
}

// propagated marks a panic value that has already walked the owner tree
// without finding a handler. Runtime frames inside the same walk re-panic it
// untouched; every public entry point unwraps it on the way out.
type propagated struct {
	value any

	// seen holds the owners the walk visited.
	seen map[*Owner]bool
}

// unwrapPanic returns the value a caller should observe for a recovered panic.
func unwrapPanic(v any) any {
	if p, ok := v.(*propagated); ok {
		return p.value
	}
	return v
}

// samePanic reports whether a and b are the same panic value. Values of
// incomparable types never match.
func samePanic(a, b any) bool {
	if a == nil || b == nil {
		return false
	}
	t := reflect.TypeOf(a)
	if t != reflect.TypeOf(b) || !t.Comparable() {
		return false
	}
	return a == b
}
