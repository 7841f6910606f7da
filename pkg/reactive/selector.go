package reactive

// CreateSelector returns a predicate reporting whether a key equals the
// current value of source. Each key gets its own subscriber set, so a change
// of the selected value from K1 to K2 re-runs only the computations that
// asked about K1 or K2.
//
// An Equals option of type func(key, selected K) bool replaces ==. With a
// custom comparator every key asked about is re-evaluated on change, and only
// keys whose answer flipped notify their subscribers.
//
// Example:
//
//	isSelected := CreateSelector(selectedID.Get)
//	for _, row := range rows {
//	    CreateMemo(func(string) string {
//	        if isSelected(row.ID) {
//	            return "selected"
//	        }
//	        return ""
//	    }, "")
//	}
func CreateSelector[K comparable](source func() K, opts ...Option) func(K) bool {
	o := applyOptions(opts)
	var custom func(a, b K) bool
	if o.equals != nil {
		custom = equalsFor[K](o)
	}
	matches := func(key, selected K) bool {
		if custom != nil {
			return custom(key, selected)
		}
		return key == selected
	}

	rt.enter()
	defer rt.exit()

	c := rt.newComputation(kindSelector, o.name)
	c.keyed = make(map[any]*signalCore)

	var selected K
	first := true
	c.exec = func() bool {
		next := source()
		if first {
			first = false
			selected = next
			return false
		}
		prev := selected
		selected = next
		if custom == nil {
			if prev == next {
				return false
			}
			if core, ok := c.keyed[prev]; ok {
				rt.markObservers(core)
			}
			if core, ok := c.keyed[next]; ok {
				rt.markObservers(core)
			}
			return false
		}
		for key, core := range c.keyed {
			k := key.(K)
			if matches(k, prev) != matches(k, next) {
				rt.markObservers(core)
			}
		}
		return false
	}
	rt.create(c)

	return func(key K) bool {
		rt.enter()
		defer rt.exit()
		rt.refresh(c)
		if l := rt.listener; l != nil && c.state != stateDisposed {
			core, ok := c.keyed[key]
			if !ok {
				core = &signalCore{id: nextID(), node: c, height: c.height}
				k := key
				core.peek = func() any { return matches(k, selected) }
				c.keyed[key] = core
			}
			if rt.track(core) {
				l.Owner.addCleanup(func() {
					if len(core.observers) == 0 && c.keyed[key] == core {
						delete(c.keyed, key)
					}
				})
			}
		}
		return matches(key, selected)
	}
}

// SelectorEquals sets the comparator a selector uses between a key and the
// selected value.
func SelectorEquals[K any](fn func(key, selected K) bool) Option {
	return Equals(fn)
}
