package reactive

// On builds a computation body with an explicit dependency. The returned
// function reads dep tracked, then calls fn untracked with dep's value and the
// previous result, so only dep triggers re-runs. With the Defer option the
// first call skips fn and returns prev unchanged.
//
// Example:
//
//	CreateEffect(On(count.Get, func(n int, prev string) string {
//	    log.Println("count changed to", n, "label", label.Get())
//	    return prev
//	}, Defer()), "")
func On[T, R any](dep func() T, fn func(v T, prev R) R, opts ...Option) func(R) R {
	o := applyOptions(opts)
	skip := o.deferRun
	return func(prev R) R {
		v := dep()
		if skip {
			skip = false
			return prev
		}
		return Untrack(func() R {
			return fn(v, prev)
		})
	}
}

// OnMany is On for an ordered list of dependencies. fn receives their values
// in the same order.
func OnMany[R any](deps []func() any, fn func(values []any, prev R) R, opts ...Option) func(R) R {
	return On(func() []any {
		values := make([]any, len(deps))
		for i, d := range deps {
			values[i] = d()
		}
		return values
	}, fn, opts...)
}
