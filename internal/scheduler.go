package internal

import "sync"

// Runtime is the single shared reactive-kernel instance: the observer
// stack, the two scheduler queues, and the batch/atomic counters all
// live here. Its one mutex is exposed through Lock/Unlock and taken only
// by callers that ask for it (AsyncCell, around its own signal writes
// and reads); every other operation runs without it.
type Runtime struct {
	mu sync.Mutex

	affinity affinity

	currentObserver *Node
	currentOwner    *Owner
	tracking        bool
	running         bool

	computeQ   []*Node
	inComputeQ map[*Node]bool
	effectQ    []*Node
	inEffectQ  map[*Node]bool

	batchDepth  uint32
	atomicDepth uint32
	atomicLogs  []map[*Node]any

	muted uint32

	registry *EffectRegistry

	onSettled []func()
	onPanic   func(recovered any)
}

func NewRuntime() *Runtime {
	return &Runtime{
		tracking:   true,
		inComputeQ: make(map[*Node]bool),
		inEffectQ:  make(map[*Node]bool),
		registry:   NewEffectRegistry(),
	}
}

// SetOnPanic installs a hook invoked whenever a cleanup callback panics
// and is swallowed (see Owner.runGuardedCleanup). An effect or computed
// body panic never reaches this hook: it goes to Owner.reportPanic. This
// is the one ambient-logging surface this library exposes; nothing is
// written to stderr by default.
func (r *Runtime) SetOnPanic(fn func(recovered any)) {
	r.onPanic = fn
}

func (r *Runtime) reportCleanupFailure(recovered any) {
	if r.onPanic != nil {
		r.onPanic(recovered)
	}
}

// --- observer stack -------------------------------------------------------

// WithObserver installs obs as the current observer for the duration of
// fn, restoring the previous observer afterward even if fn panics.
func (r *Runtime) WithObserver(obs *Node, fn func()) {
	prev := r.currentObserver
	r.currentObserver = obs
	defer func() { r.currentObserver = prev }()
	fn()
}

// WithOwner installs owner as the current owner for the duration of fn.
func (r *Runtime) WithOwner(owner *Owner, fn func()) {
	prev := r.currentOwner
	r.currentOwner = owner
	defer func() { r.currentOwner = prev }()
	fn()
}

// Track links the current observer to dep, if there is one and tracking
// is currently enabled. A signal attempting to become an observer (i.e.
// Track called while currentObserver is itself a signal node) is rejected
// with ErrInvalidTopology.
func (r *Runtime) Track(dep *Node) error {
	if r.currentObserver == nil || !r.tracking {
		return nil
	}
	if r.currentObserver.Kind == KindSignal {
		return newNodeError(KindSignal, ErrInvalidTopology)
	}
	r.currentObserver.Link(dep)
	return nil
}

// Untrack runs fn with dependency tracking suspended.
func (r *Runtime) Untrack(fn func()) {
	prev := r.tracking
	r.tracking = false
	defer func() { r.tracking = prev }()
	fn()
}

// CurrentOwner returns the owner currently running, or nil outside any
// Computed/Effect execution.
func (r *Runtime) CurrentOwner() *Owner {
	return r.currentOwner
}

// OnCleanup appends fn to the current owner (a running effect/computed,
// or an Owner installed by WithOwner), a no-op when no owner is current.
func (r *Runtime) OnCleanup(fn func()) {
	if r.currentOwner != nil {
		r.currentOwner.OnCleanup(fn)
	}
}

// --- scheduling ------------------------------------------------------------

// ScheduleJob enqueues a computed or effect node for the next flush. A
// disposed node, or scheduling while muted (rollback in progress), is
// dropped silently.
func (r *Runtime) ScheduleJob(n *Node) {
	if n.Disposed || r.muted > 0 {
		return
	}

	switch n.Kind {
	case KindComputed:
		if !r.inComputeQ[n] {
			r.inComputeQ[n] = true
			r.computeQ = append(r.computeQ, n)
		}
	default: // effect
		if !r.inEffectQ[n] {
			r.inEffectQ[n] = true
			r.effectQ = append(r.effectQ, n)
		}
	}

	if r.batchDepth == 0 && !r.running {
		r.Flush()
	}
}

// OnSettled registers a one-shot callback fired after a flush has fully
// drained both queues.
func (r *Runtime) OnSettled(fn func()) {
	r.onSettled = append(r.onSettled, fn)
}

const maxFlushIterations = 10000

// Flush runs the two-phase drain: Phase A settles computeds to a fixed
// point, Phase B runs one priority-ordered wave of effects, and the two
// phases repeat until both queues are empty. A nested call (an effect
// writing a signal mid-flush) returns immediately without touching the
// queues; the jobs it enqueued are picked up by the running Flush's own
// loop on its next iteration.
func (r *Runtime) Flush() error {
	if r.running {
		return nil
	}
	r.running = true
	r.affinity.mark()

	defer func() { r.running = false }()

	iterations := 0
	for len(r.computeQ) > 0 || len(r.effectQ) > 0 {
		iterations++
		if iterations > maxFlushIterations {
			return newNodeError(KindComputed, ErrInfiniteUpdateLoop)
		}

		// Phase A: drain computeds to a fixed point, in insertion order.
		// Nodes scheduled into computeQ while draining are absorbed by
		// this same loop, so Phase A only exits once nothing more got
		// queued.
		for len(r.computeQ) > 0 {
			node := r.computeQ[0]
			r.computeQ = r.computeQ[1:]
			delete(r.inComputeQ, node)

			if node.Disposed {
				continue
			}
			r.ensureComputedFresh(node)
		}

		// Phase B: one wave of effects, stable sort by ascending priority.
		wave := r.effectQ
		r.effectQ = nil
		r.inEffectQ = make(map[*Node]bool)

		stableSortByPriority(wave)

		for _, node := range wave {
			if node.Disposed || !r.registry.Live(node) {
				continue
			}
			r.registry.Run(node)
		}
	}

	callbacks := r.onSettled
	r.onSettled = nil
	for _, cb := range callbacks {
		cb()
	}

	return nil
}

func stableSortByPriority(nodes []*Node) {
	// Insertion sort: wave sizes are small in practice and this keeps the
	// stable tie-break (ties preserve insertion order) trivially correct
	// without importing sort for a one-line stable-sort call.
	for i := 1; i < len(nodes); i++ {
		j := i
		for j > 0 && nodes[j-1].Priority > nodes[j].Priority {
			nodes[j-1], nodes[j] = nodes[j], nodes[j-1]
			j--
		}
	}
}

// FlushSync flushes immediately if anything is pending; exposed for tests
// and synchronous embedding.
func (r *Runtime) FlushSync() error {
	if len(r.computeQ) > 0 || len(r.effectQ) > 0 {
		return r.Flush()
	}
	return nil
}

// --- batch / atomic ---------------------------------------------------------

// Batch defers scheduled jobs until fn returns, then flushes once. Batch
// is reentrant: nested calls only flush when the outermost batch exits.
func (r *Runtime) Batch(fn func()) {
	r.batchDepth++
	defer func() {
		r.batchDepth--
		if r.batchDepth == 0 {
			r.Flush()
		}
	}()
	fn()
}

// RecordAtomicWrite appends (node, prevValue) to the innermost atomic log
// the first time node is written within that transaction. Called from
// WriteSignal before a signal's value is overwritten.
func (r *Runtime) RecordAtomicWrite(node *Node, prevValue any) {
	if r.atomicDepth == 0 {
		return
	}
	log := r.atomicLogs[len(r.atomicLogs)-1]
	if _, ok := log[node]; !ok {
		log[node] = prevValue
	}
}

func (r *Runtime) InAtomic() bool {
	return r.atomicDepth > 0
}

// Atomic runs fn inside a new write-logged transaction. On a nil error
// return, the transaction commits (its log merges into the parent, or is
// discarded if outermost); on a non-nil error or a panic, it rolls back
// every signal it touched to its pre-transaction value and re-raises the
// panic (after rollback) or returns the error.
func (r *Runtime) Atomic(fn func() error) (err error) {
	r.batchDepth++
	r.atomicDepth++
	r.atomicLogs = append(r.atomicLogs, make(map[*Node]any))

	defer func() {
		if p := recover(); p != nil {
			r.rollback()
			panic(p)
		}
	}()

	err = fn()
	if err != nil {
		r.rollback()
	} else {
		r.commit()
	}
	return err
}

func (r *Runtime) commit() {
	log := r.atomicLogs[len(r.atomicLogs)-1]
	r.atomicLogs = r.atomicLogs[:len(r.atomicLogs)-1]
	r.atomicDepth--

	if len(r.atomicLogs) > 0 {
		parent := r.atomicLogs[len(r.atomicLogs)-1]
		for node, prev := range log {
			if _, ok := parent[node]; !ok { // outer (earlier) write wins
				parent[node] = prev
			}
		}
	}

	r.batchDepth--
	if r.batchDepth == 0 {
		r.Flush()
	}
}

func (r *Runtime) rollback() {
	log := r.atomicLogs[len(r.atomicLogs)-1]
	r.atomicLogs = r.atomicLogs[:len(r.atomicLogs)-1]
	r.atomicDepth--

	r.muted++
	for node, prev := range log {
		node.SetValue(prev)
		node.Subs(func(sub *Node) bool {
			if sub.Kind == KindComputed {
				r.markComputedStale(sub)
			}
			return true
		})
	}
	r.computeQ = nil
	r.inComputeQ = make(map[*Node]bool)
	r.effectQ = nil
	r.inEffectQ = make(map[*Node]bool)
	r.muted--

	r.batchDepth--
	// no flush: rollback never flushes.
}

// Lock/Unlock expose the runtime's mutex to callers that need to perform a
// multi-step operation atomically with respect to other goroutines (the
// AsyncCell settlement pump in particular).
func (r *Runtime) Lock()   { r.mu.Lock() }
func (r *Runtime) Unlock() { r.mu.Unlock() }
