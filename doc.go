// Package kernel is a fine-grained reactive runtime: signals, lazily
// memoised computeds, scheduled effects, and an async-state-machine
// overlay (AsyncCell / Resource) layered on top of the same dependency
// graph. All exported types are thin generic wrappers around the
// untyped graph and scheduler in the internal package.
package kernel

import "github.com/reactivekernel/kernel/internal"

// rt is the process-wide runtime backing every package-level
// constructor: one shared graph, scheduler queues, and batch/atomic
// counters for the whole process.
var rt = internal.NewRuntime()

// as recovers a typed value from the untyped storage internal.Node
// uses.
func as[T any](v any) T {
	if v == nil {
		var zero T
		return zero
	}
	return v.(T)
}
