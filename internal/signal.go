package internal

// ReadSignal records a dependency on the active observer (if any) and
// returns the signal's stored value.
func (r *Runtime) ReadSignal(n *Node) any {
	r.Track(n)
	return n.Value()
}

// PeekSignal returns the value without tracking a dependency.
func (r *Runtime) PeekSignal(n *Node) any {
	return n.Value()
}

// WriteSignal stores next as given (an updater form is resolved by the
// caller, see kernel.Signal.Update), gated by equality: if
// equals(prev, next) holds, nothing propagates. Otherwise the pre-write
// value is logged (if inside an atomic section and not already logged
// this transaction), the new value is stored, and every subscriber is
// notified synchronously: computeds are marked stale (cascading), effects
// are scheduled.
//
// The whole subscriber walk runs under the same batchDepth guard Batch
// uses, so a diamond-shaped dependency (one signal feeding two computeds
// that converge into a third) gets both branches marked stale before
// anything downstream is recomputed. Without this, the first branch
// visited could reach and flush an effect while the second branch is
// still holding its pre-write value, producing a glitched intermediate
// read.
func (r *Runtime) WriteSignal(n *Node, next any) {
	prev := n.Value()

	if n.Equals != nil && n.Equals(prev, next) {
		return
	}

	if r.atomicDepth > 0 {
		r.RecordAtomicWrite(n, prev)
	}

	n.SetValue(next)

	r.batchDepth++
	n.Subs(func(sub *Node) bool {
		switch sub.Kind {
		case KindComputed:
			r.markComputedStale(sub)
		case KindEffect:
			r.ScheduleJob(sub)
		}
		return true
	})
	r.batchDepth--

	if r.batchDepth == 0 {
		r.Flush()
	}
}

// SubscribeSignal creates an explicit dependency edge from observer to n,
// for external integrations that want to be notified without running
// inside a tracked Computed/Effect body, and returns a detach function.
func (r *Runtime) SubscribeSignal(n *Node, observer *Node) func() {
	observer.Link(n)
	return func() {
		observer.Unlink(n)
	}
}
