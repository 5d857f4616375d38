package kernel

import "github.com/reactivekernel/kernel/internal"

// Computed is a lazily memoised derivation over other signals/computeds.
type Computed[T comparable] struct {
	node *internal.Node
}

// NewComputed creates a computed deriving its value from fn. fn is not
// run until the first Get/Peek; an optional custom equals overrides the
// default comparator used to decide whether subscribers see a change.
func NewComputed[T comparable](fn func() T, equals ...func(a, b T) bool) *Computed[T] {
	var eq func(a, b T) bool
	if len(equals) > 0 {
		eq = equals[0]
	}
	wrapped := wrapEquals(eq)

	c := &Computed[T]{}
	c.node = rt.CreateComputed(rt.CurrentOwner(), func() any {
		return fn()
	}, wrapped)
	return c
}

// Get registers a dependency on the active observer, recomputing first
// if stale, and returns the current value. A cycle re-entered through
// this computed's own recompute surfaces as ErrCycleDetected.
func (c *Computed[T]) Get() (T, error) {
	v, err := rt.ReadComputed(c.node)
	return as[T](v), err
}

// MustGet is Get, panicking on error; convenient when the caller already
// knows its graph is acyclic.
func (c *Computed[T]) MustGet() T {
	v, err := c.Get()
	if err != nil {
		panic(err)
	}
	return v
}

// Peek reads the current (recomputing-if-stale) value without tracking
// a dependency on the active observer.
func (c *Computed[T]) Peek() (T, error) {
	v, err := rt.PeekComputed(c.node)
	return as[T](v), err
}

// Dispose severs every edge and clears the cached value; a later Get
// re-derives from scratch as if the node were new.
func (c *Computed[T]) Dispose() {
	rt.DisposeComputed(c.node)
}
