package kernel

import "github.com/reactivekernel/kernel/internal"

// Owner groups the lifecycle of nodes created while it runs. Disposing
// an owner disposes every child owner, then runs its own cleanups. It
// is the embedder-facing handle onto the runtime's internal lifecycle
// tree.
type Owner struct {
	owner *internal.Owner
}

// NewOwner creates an owner. If called while another owner is current
// (i.e. nested inside a Run/Computed/Effect), the new owner is adopted
// as its child so disposing the ancestor cascades here too; otherwise
// it is a detached root.
func NewOwner() *Owner {
	o := rt.NewOwner()
	if parent := rt.CurrentOwner(); parent != nil {
		parent.Adopt(o)
	}
	return &Owner{owner: o}
}

// Run executes fn with this owner installed as current, so any
// signal/computed/effect created inside fn is adopted as a descendant
// and disposed along with this owner.
func (o *Owner) Run(fn func()) {
	rt.WithOwner(o.owner, fn)
}

// Dispose tears down this owner's children, runs its cleanups, and
// detaches it from its parent (if any).
func (o *Owner) Dispose() {
	o.owner.Dispose()
}

// OnCleanup registers fn to run once when this owner is disposed.
func (o *Owner) OnCleanup(fn func()) {
	o.owner.OnCleanup(fn)
}

// OnError registers a panic handler for code run under this owner. If
// no handler is registered anywhere up the owner chain, a panic from an
// effect or computed body propagates as usual.
func (o *Owner) OnError(fn func(any)) {
	o.owner.OnError(fn)
}

// CurrentOwner returns the owner currently running, or nil outside any
// tracked Computed/Effect/Owner.Run call.
func CurrentOwner() *Owner {
	o := rt.CurrentOwner()
	if o == nil {
		return nil
	}
	return &Owner{owner: o}
}
