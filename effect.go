package kernel

import "github.com/reactivekernel/kernel/internal"

// EffectFunc is the shape an effect body may take: either a plain
// side-effecting function, or one that returns its own cleanup
// closure.
type EffectFunc interface {
	func() | func() func()
}

// Effect is the disposable handle returned by NewEffect.
type Effect struct {
	node  *internal.Node
	owner *internal.Owner
}

// EffectOptions configures NewEffect. Priority controls ordering within
// a scheduler wave: lower numbers run first, default 0.
type EffectOptions struct {
	Priority int
}

func wrapEffectFunc[F EffectFunc](fn F) func() func() {
	switch f := any(fn).(type) {
	case func():
		return func() func() {
			f()
			return nil
		}
	case func() func():
		return f
	default:
		panic("kernel: unreachable EffectFunc variant")
	}
}

// NewEffect allocates an effect, registers it, and runs it once
// synchronously. The body may optionally return a cleanup closure, run
// before each re-run and on Dispose.
func NewEffect[F EffectFunc](fn F, opts ...EffectOptions) *Effect {
	priority := 0
	if len(opts) > 0 {
		priority = opts[0].Priority
	}

	node, owner := rt.CreateEffect(rt.CurrentOwner(), wrapEffectFunc(fn), priority)
	return &Effect{node: node, owner: owner}
}

// Dispose marks the effect disposed, runs its pending cleanups, and
// detaches it from the graph.
func (e *Effect) Dispose() {
	rt.DisposeEffect(e.node)
}

// OnCleanup registers fn to run before the currently-running
// effect/computed's next run, or on its Dispose. Inside Owner.Run it
// registers on that owner, to run when the owner is disposed; a no-op
// when no owner is current.
func OnCleanup(fn func()) {
	rt.OnCleanup(fn)
}

// Untrack runs fn with dependency tracking suspended, returning fn's
// result untouched.
func Untrack[T any](fn func() T) T {
	var result T
	rt.Untrack(func() { result = fn() })
	return result
}
