package reactive

// Batch groups multiple signal updates into a single flush.
// Computations affected by any of the writes run once, in dependency order,
// when the outermost batch completes. Batches can be nested.
//
// Memos read inside the batch are brought up to date on read, so the batch
// body never observes a stale derived value.
//
// Example:
//
//	Batch(func() {
//	    firstName.Set("John")
//	    lastName.Set("Doe")
//	    age.Set(30)
//	})
//	// Effects depending on all three run once.
func Batch(fn func()) {
	rt.enter()
	defer rt.exit()
	rt.batch(fn)
}

// BatchResult is Batch for bodies that return a value.
func BatchResult[R any](fn func() R) R {
	var result R
	Batch(func() {
		result = fn()
	})
	return result
}

// BatchNamed runs fn as a named batch. The name is logged at debug level when
// debug mode is enabled, which helps tracing which batch triggered a flush.
//
// Example:
//
//	BatchNamed("user-profile-update", func() {
//	    user.Set(newUser)
//	    profile.Set(newProfile)
//	})
func BatchNamed(name string, fn func()) {
	rt.enter()
	defer rt.exit()
	if rt.debug {
		rt.logger.Debug("batch start", "batch", name)
		defer rt.logger.Debug("batch end", "batch", name)
	}
	rt.batch(fn)
}

// Untracked runs a function without tracking signal reads as dependencies.
//
// Example:
//
//	Untracked(func() {
//	    // Reading count here won't subscribe the current computation
//	    fmt.Println("Current value:", count.Get())
//	})
//
// Note: For single signal reads, use signal.Peek() instead which is clearer
// in intent.
func Untracked(fn func()) {
	rt.enter()
	defer rt.exit()
	rt.untracked(fn)
}

// Untrack runs fn without tracking and returns its result.
func Untrack[R any](fn func() R) R {
	var result R
	Untracked(func() {
		result = fn()
	})
	return result
}
