package internal

import "github.com/petermattis/goid"

// affinity records which goroutine last started a Flush. This exists so
// a misuse (an embedder calling back into the runtime from a goroutine it
// didn't expect, e.g. firing a cleanup on a worker pool instead of posting
// it back through the AsyncCell settlement path) shows up as a readable
// diagnostic rather than a silent race far away from its cause.
type affinity struct {
	gid int64
	set bool
}

func (a *affinity) mark() {
	a.gid = goid.Get()
	a.set = true
}

// LastGoroutineID returns the goroutine id that last started a Flush, or
// 0 if nothing has run yet. Exposed for tests and debugging only.
func (r *Runtime) LastGoroutineID() int64 {
	return r.affinity.gid
}
