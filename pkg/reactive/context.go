package reactive

// Context provides dependency injection through the owner tree.
// Create a context with CreateContext, provide a value on an owner with
// Provide, and resolve it below that owner with Use or UseContext.
//
// Example:
//
//	var ThemeContext = reactive.CreateContext("light")
//
//	reactive.Root(func(func()) {
//	    ThemeContext.Provide("dark")
//	    reactive.Effect(func() {
//	        fmt.Println(ThemeContext.Use()) // "dark"
//	    })
//	})
type Context[T any] struct {
	// key uniquely identifies this context in the owner value map
	key any

	// defaultValue is returned when no owner provides a value
	defaultValue T
}

// contextKey wraps Context to create a unique key type
type contextKey[T any] struct {
	ctx *Context[T]
}

// CreateContext creates a new context with the given default value.
//
// Example:
//
//	var UserContext = reactive.CreateContext[*User](nil)
func CreateContext[T any](defaultValue T) *Context[T] {
	ctx := &Context[T]{
		defaultValue: defaultValue,
	}
	ctx.key = contextKey[T]{ctx: ctx}
	return ctx
}

// Provide registers value on the current owner. Lookups from this owner and
// everything below it resolve to value until a nearer owner shadows it.
// Values provided inside a computation body are dropped before its next run.
func (c *Context[T]) Provide(value T) {
	rt.enter()
	defer rt.exit()
	if rt.owner == nil {
		rt.logger.Warn("context provided outside a root is ignored")
		return
	}
	rt.owner.setValue(c.key, value)
}

// Lookup resolves the nearest provided value, walking from the current owner
// towards its root. ok is false when no owner provides one.
func (c *Context[T]) Lookup() (value T, ok bool) {
	rt.enter()
	defer rt.exit()
	v, found := rt.owner.lookup(c.key)
	if !found {
		return c.defaultValue, false
	}
	return v.(T), true
}

// Use returns the nearest provided value, or the default.
func (c *Context[T]) Use() T {
	v, _ := c.Lookup()
	return v
}

// Default returns the value used when no owner provides one.
func (c *Context[T]) Default() T {
	return c.defaultValue
}

// UseContext returns the value of ctx visible from the current owner.
func UseContext[T any](ctx *Context[T]) T {
	return ctx.Use()
}
