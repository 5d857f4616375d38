package internal

import "errors"

// Sentinel errors for the kernel's error taxonomy. Plain errors, not
// panics: CycleDetected in particular must be returned from Get so the
// node can be left in a retryable state.
var (
	ErrInvalidTopology    = errors.New("kernel: signal cannot observe another node")
	ErrCycleDetected      = errors.New("kernel: computed re-entered its own recompute")
	ErrInfiniteUpdateLoop = errors.New("kernel: scheduler exceeded its update-loop guard")
)

// NodeError wraps a sentinel error with the offending node's kind so
// callers get useful context from error messages while still being able
// to errors.Is against the sentinel.
type NodeError struct {
	Kind Kind
	Err  error
}

func (e *NodeError) Error() string {
	return e.Kind.String() + ": " + e.Err.Error()
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

func newNodeError(kind Kind, err error) error {
	return &NodeError{Kind: kind, Err: err}
}
