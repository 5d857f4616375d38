package kernel

// LastGoroutineID returns the id of the goroutine that last drove a
// flush through the runtime, or 0 if nothing has run yet. Diagnostic
// only: the graph and scheduler are meant to be driven from one
// logical thread, every signal/computed/effect/batch call from that
// same goroutine. The exception is an AsyncCell producer settling from
// its own goroutine, which takes the runtime's mutex (see async.go)
// before touching the graph.
func LastGoroutineID() int64 {
	return rt.LastGoroutineID()
}
