package kernel

// Batch defers the scheduler flush until fn returns, coalescing every
// signal write made inside fn into a single propagation pass.
// Reentrant via a depth counter.
func Batch(fn func()) {
	rt.Batch(fn)
}

// Atomic (alias Transaction) runs fn inside a write-logged transaction.
// If fn returns a non-nil error (or panics), every signal written
// inside fn is rolled back to its pre-transaction value and the error
// (or re-raised panic) propagates; a nil return commits the writes.
func Atomic(fn func() error) error {
	return rt.Atomic(fn)
}

// Transaction is an alias for Atomic.
func Transaction(fn func() error) error {
	return rt.Atomic(fn)
}

// FlushSync runs a pending flush immediately if one is queued; exposed
// for tests and synchronous embedding.
func FlushSync() error {
	return rt.FlushSync()
}

// OnSettled registers a one-shot callback that fires once the next
// flush has fully drained both scheduler queues.
func OnSettled(fn func()) {
	rt.OnSettled(fn)
}

// SetOnPanic installs the ambient hook invoked when a cleanup callback
// panics and is swallowed-and-reported. An effect or computed body
// panic is instead routed to the nearest Owner.OnError catcher, or
// re-raised if none is registered.
func SetOnPanic(fn func(recovered any)) {
	rt.SetOnPanic(fn)
}
