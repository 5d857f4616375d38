package internal

// CreateEffect allocates an effect node under parent (or a fresh root
// owner if parent is nil), registers it, and runs it once synchronously:
// created eagerly, first run happens at creation rather than waiting
// for the next flush.
func (r *Runtime) CreateEffect(parent *Owner, fn func() func(), priority int) (*Node, *Owner) {
	node := NewEffectNode(fn)
	node.Priority = priority

	owner := r.NewOwner()
	owner.node = node
	if parent != nil {
		parent.Adopt(owner)
	}
	node.Owner = owner

	r.registry.Register(node, owner, func() { r.runEffect(node) })
	r.runEffect(node)

	return node, owner
}

// runEffect runs the cleanup-detach-invoke cycle for one effect node.
func (r *Runtime) runEffect(n *Node) {
	if n.Disposed {
		return
	}

	// Step 2: run pending cleanups LIFO, swallowed-and-reported.
	if n.Owner != nil {
		n.Owner.RunCleanupsLIFO()
	}

	// Step 3: detach every current dependency.
	n.ClearDeps()
	if n.Owner != nil {
		n.Owner.DisposeChildren()
	}

	// Steps 4-6: run tracked, collecting any new cleanup.
	var cleanup func()
	var panicked any
	func() {
		defer func() {
			if p := recover(); p != nil {
				panicked = p
			}
		}()
		r.WithObserver(n, func() {
			r.WithOwner(n.Owner, func() {
				cleanup = n.EffectFn()
			})
		})
	}()

	if panicked != nil {
		if n.Owner != nil {
			n.Owner.reportPanic(panicked)
			return
		}
		panic(panicked)
	}

	if cleanup != nil && n.Owner != nil {
		n.Owner.OnCleanup(cleanup)
	}
}

// DisposeEffect marks the effect disposed, runs its cleanups, detaches
// its dependencies, and removes it from the registry.
func (r *Runtime) DisposeEffect(n *Node) {
	if n.Disposed {
		return
	}
	if n.Owner != nil {
		n.Owner.RunCleanupsLIFO()
	}
	n.Disposed = true
	n.ClearDeps()
	if n.Owner != nil {
		n.Owner.Dispose()
	}
	r.registry.Unregister(n)
}
