package internal

// CreateComputed allocates a computed node with its own owner (so nested
// nodes created while it recomputes are disposed and re-created on every
// recompute, the same structured-disposal behavior effects get).
func (r *Runtime) CreateComputed(parent *Owner, fn func() any, equals func(a, b any) bool) *Node {
	node := NewComputedNode(fn, equals)

	owner := r.NewOwner()
	owner.node = node
	if parent != nil {
		parent.Adopt(owner)
	}
	node.Owner = owner

	return node
}

// ReadComputed records a dependency on the active observer, then
// recomputes if stale or never computed, else returns the cached value.
func (r *Runtime) ReadComputed(n *Node) (any, error) {
	if err := r.Track(n); err != nil {
		return nil, err
	}

	if n.Stale || !n.HasValue {
		if err := r.recomputeComputed(n); err != nil {
			return nil, err
		}
	}

	return n.Value(), nil
}

// PeekComputed is ReadComputed without registering a dependency.
func (r *Runtime) PeekComputed(n *Node) (any, error) {
	if n.Stale || !n.HasValue {
		if err := r.recomputeComputed(n); err != nil {
			return nil, err
		}
	}
	return n.Value(), nil
}

// recomputeComputed clears old dependencies, re-runs the derivation
// under a fresh observer/owner, and stores the new value if it differs.
// A computed that re-enters its own recompute (directly or
// transitively) is left with computing=false, stale=true so a later
// call can retry, and ErrCycleDetected is returned rather than panicked.
func (r *Runtime) recomputeComputed(n *Node) error {
	if n.Computing {
		return newNodeError(KindComputed, ErrCycleDetected)
	}
	n.Computing = true

	n.ClearDeps()
	if n.Owner != nil {
		n.Owner.RunCleanupsLIFO()
		n.Owner.DisposeChildren()
	}

	var next any
	var panicked any
	func() {
		defer func() {
			if p := recover(); p != nil {
				panicked = p
			}
		}()
		r.WithObserver(n, func() {
			r.WithOwner(n.Owner, func() {
				next = n.Fn()
			})
		})
	}()

	if panicked != nil {
		n.Computing = false
		n.Stale = true // leave retryable, same stance as CycleDetected

		// A kernel error (InvalidTopology/CycleDetected) surfacing through
		// a nested Get().MustGet()-style panic is a normal error return,
		// not a user-facing failure: only an unrecognised panic value goes
		// to the owner's OnError catchers.
		if nodeErr, ok := panicked.(*NodeError); ok {
			return nodeErr
		}

		if n.Owner != nil {
			n.Owner.reportPanic(panicked)
			return nil
		}
		panic(panicked)
	}

	if !n.HasValue || (n.Equals == nil || !n.Equals(n.Value(), next)) {
		n.SetValue(next)
		n.HasValue = true
	}

	n.Stale = false
	n.Computing = false
	return nil
}

// ensureComputedFresh recomputes n if it is stale or has never produced a
// value, and is a no-op otherwise. Used by Flush's Phase A, which only
// wants the side effect (and any reported panic going through the owner's
// catchers) and not the value itself.
func (r *Runtime) ensureComputedFresh(n *Node) {
	if n.Stale || !n.HasValue {
		r.recomputeComputed(n)
	}
}

// markComputedStale is idempotent (a node already stale returns
// immediately, so each node in a cascade is marked exactly once),
// recursing into computed subscribers and scheduling effect
// subscribers.
func (r *Runtime) markComputedStale(n *Node) {
	if n.Stale {
		return
	}
	n.Stale = true

	n.Subs(func(sub *Node) bool {
		switch sub.Kind {
		case KindComputed:
			r.markComputedStale(sub)
		case KindEffect:
			r.ScheduleJob(sub)
		}
		return true
	})
}

// DisposeComputed severs every incident edge and clears the cached value;
// a later Get() recomputes from scratch as if the node were new.
func (r *Runtime) DisposeComputed(n *Node) {
	if n.Disposed {
		return
	}
	n.Disposed = true
	n.ClearDeps()
	for link := n.subsHead; link != nil; {
		next := link.nextSub
		link.sub.removeDepLink(link)
		link = next
	}
	n.subsHead = nil
	n.HasValue = false
	n.Stale = true
	if n.Owner != nil {
		n.Owner.Dispose()
	}
}
