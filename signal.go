package kernel

import (
	"math"

	"github.com/reactivekernel/kernel/internal"
)

// Signal is a leaf mutable reactive cell holding a T.
type Signal[T comparable] struct {
	node *internal.Node
}

// defaultEquals is the default comparator: identity equality, except
// two NaNs of the same float kind compare equal and +0/−0 compare
// unequal (Object.is semantics, not ==). Any T that isn't
// float32/float64 falls back to plain Go ==.
func defaultEquals[T comparable](a, b T) bool {
	switch av := any(a).(type) {
	case float64:
		bv := any(b).(float64)
		if math.IsNaN(av) && math.IsNaN(bv) {
			return true
		}
		return math.Float64bits(av) == math.Float64bits(bv)
	case float32:
		bv := any(b).(float32)
		if math.IsNaN(float64(av)) && math.IsNaN(float64(bv)) {
			return true
		}
		return math.Float32bits(av) == math.Float32bits(bv)
	default:
		return a == b
	}
}

func wrapEquals[T comparable](equals func(a, b T) bool) func(a, b any) bool {
	if equals == nil {
		equals = defaultEquals[T]
	}
	return func(a, b any) bool {
		return equals(as[T](a), as[T](b))
	}
}

// NewSignal creates a signal holding initial. An optional custom equals
// overrides the NaN-safe default comparator used to gate propagation.
func NewSignal[T comparable](initial T, equals ...func(a, b T) bool) *Signal[T] {
	var eq func(a, b T) bool
	if len(equals) > 0 {
		eq = equals[0]
	}
	return &Signal[T]{node: internal.NewSignalNode(initial, wrapEquals(eq))}
}

// Get registers a dependency on the active observer, if any, then
// returns the stored value.
func (s *Signal[T]) Get() T {
	return as[T](rt.ReadSignal(s.node))
}

// Peek returns the stored value without tracking a dependency.
func (s *Signal[T]) Peek() T {
	return as[T](rt.PeekSignal(s.node))
}

// Set stores next, propagating to subscribers synchronously unless the
// new value compares equal to the current one.
func (s *Signal[T]) Set(next T) {
	rt.WriteSignal(s.node, next)
}

// Update computes the next value from the current one and stores it,
// the updater-function form of Set.
func (s *Signal[T]) Update(updater func(current T) T) {
	rt.WriteSignal(s.node, updater(s.Peek()))
}

// subscribe creates an explicit dependency edge from an internal
// observer node to this signal and returns a detach function. It is
// unexported, so only code inside this package can call it.
func (s *Signal[T]) subscribe(observer *internal.Node) func() {
	return rt.SubscribeSignal(s.node, observer)
}
