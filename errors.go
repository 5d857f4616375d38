package kernel

import "github.com/reactivekernel/kernel/internal"

// Sentinel errors for the kernel's error taxonomy. Use errors.Is to
// test for a specific kind, e.g. errors.Is(err, kernel.ErrCycleDetected).
var (
	ErrInvalidTopology    = internal.ErrInvalidTopology
	ErrCycleDetected      = internal.ErrCycleDetected
	ErrInfiniteUpdateLoop = internal.ErrInfiniteUpdateLoop
)
