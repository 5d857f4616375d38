// Package internal implements the reactive graph and scheduler that back
// the public kernel API. It has no generics: values are stored as any
// and the outer package recovers their type.
package internal

// Kind tags a Node with the role it plays in the graph. A tagged variant is
// used instead of separate embedded types so the graph and scheduler can
// dispatch on Kind without virtual dispatch across node types.
type Kind uint8

const (
	KindSignal Kind = iota
	KindComputed
	KindEffect
)

func (k Kind) String() string {
	switch k {
	case KindSignal:
		return "signal"
	case KindComputed:
		return "computed"
	case KindEffect:
		return "effect"
	default:
		return "unknown"
	}
}

// Node is the universal vertex of the reactive graph: a signal, a computed,
// or an effect, depending on Kind. Fields irrelevant to a given Kind are
// simply unused (e.g. a signal never sets Fn).
type Node struct {
	Kind Kind

	// Owner links this node into the lifecycle tree (every computed and
	// effect is also an owner of nodes created while it runs).
	Owner *Owner

	// value slot, shared by Signal and Computed.
	value  any
	Equals func(a, b any) bool

	// Computed-only state.
	Stale     bool
	HasValue  bool
	Computing bool
	Fn        func() any // recompute function, reads other nodes via the observer stack

	// Effect-only state. EffectFn returns an optional cleanup closure
	// (nil if none); if it returns one, it is appended to the cleanup
	// list the same way a mid-run OnCleanup registration is.
	EffectFn func() func()
	Priority int

	Disposed bool

	depsHead *DependencyLink
	subsHead *DependencyLink
}

// NewSignalNode creates a leaf node holding a value.
func NewSignalNode(initial any, equals func(a, b any) bool) *Node {
	return &Node{
		Kind:     KindSignal,
		value:    initial,
		Equals:   equals,
		HasValue: true,
	}
}

// NewComputedNode creates a lazily-memoised derivation node. It starts
// stale with no value: recomputation happens on first Get.
func NewComputedNode(fn func() any, equals func(a, b any) bool) *Node {
	return &Node{
		Kind:   KindComputed,
		Fn:     fn,
		Equals: equals,
		Stale:  true,
	}
}

// NewEffectNode creates a side-effect node. The caller is responsible for
// running it once synchronously after registering it (see CreateEffect).
func NewEffectNode(fn func() func()) *Node {
	return &Node{
		Kind:     KindEffect,
		EffectFn: fn,
	}
}

func (n *Node) Value() any {
	return n.value
}

func (n *Node) SetValue(v any) {
	n.value = v
}

// DependencyLink is one edge A→B (A observes B): A is the sub(scriber), B
// is the dep(endency). Links form two doubly-linked circular lists: one
// threaded through a subscriber's dependencies, one threaded through a
// dependency's subscribers.
type DependencyLink struct {
	dep *Node
	sub *Node

	prevDep *DependencyLink
	nextDep *DependencyLink

	prevSub *DependencyLink
	nextSub *DependencyLink
}

func (n *DependencyLink) Dep() *Node { return n.dep }
func (n *DependencyLink) Sub() *Node { return n.sub }

func (sub *Node) addDepLink(link *DependencyLink) {
	if sub.depsHead == nil {
		sub.depsHead = link
		link.prevDep = link // loop to self marks the single-node case
		link.nextDep = nil
	} else {
		tail := sub.depsHead.prevDep
		tail.nextDep = link
		link.prevDep = tail
		link.nextDep = nil
		sub.depsHead.prevDep = link
	}
}

func (dep *Node) addSubLink(link *DependencyLink) {
	if dep.subsHead == nil {
		dep.subsHead = link
		link.prevSub = link
		link.nextSub = nil
	} else {
		tail := dep.subsHead.prevSub
		tail.nextSub = link
		link.prevSub = tail
		link.nextSub = nil
		dep.subsHead.prevSub = link
	}
}

func (dep *Node) removeSubLink(link *DependencyLink) {
	if link.prevSub == link {
		dep.subsHead = nil
		link.prevSub = nil
		link.nextSub = nil
		return
	}

	if link == dep.subsHead {
		dep.subsHead = link.nextSub
	} else {
		link.prevSub.nextSub = link.nextSub
	}

	if link.nextSub != nil {
		link.nextSub.prevSub = link.prevSub
	} else {
		dep.subsHead.prevSub = link.prevSub
	}

	link.prevSub = nil
	link.nextSub = nil
}

// Link creates the bidirectional edge sub→dep, unless sub's most recently
// added dependency already is dep (cheap re-run dedup: a node that reads
// the same dependency twice in a row within one run doesn't duplicate
// the edge).
func (sub *Node) Link(dep *Node) {
	if sub.depsHead != nil {
		tail := sub.depsHead.prevDep
		if tail.dep == dep {
			return
		}
	}

	link := &DependencyLink{dep: dep, sub: sub}
	sub.addDepLink(link)
	dep.addSubLink(link)
}

func (sub *Node) removeDepLink(link *DependencyLink) {
	if link.prevDep == link {
		sub.depsHead = nil
		link.prevDep = nil
		link.nextDep = nil
		return
	}

	if link == sub.depsHead {
		sub.depsHead = link.nextDep
	} else {
		link.prevDep.nextDep = link.nextDep
	}

	if link.nextDep != nil {
		link.nextDep.prevDep = link.prevDep
	} else {
		sub.depsHead.prevDep = link.prevDep
	}

	link.prevDep = nil
	link.nextDep = nil
}

// Unlink removes the edge sub→dep if present.
func (sub *Node) Unlink(dep *Node) {
	for link := sub.depsHead; link != nil; link = link.nextDep {
		if link.dep == dep {
			sub.removeDepLink(link)
			dep.removeSubLink(link)
			return
		}
	}
}

// ClearDeps detaches every dependency this node observes, used before
// each recompute so stale edges from a previous run don't linger.
func (sub *Node) ClearDeps() {
	for link := sub.depsHead; link != nil; {
		next := link.nextDep
		link.dep.removeSubLink(link)
		link = next
	}
	sub.depsHead = nil
}

// Deps iterates this node's dependencies.
func (sub *Node) Deps(yield func(*Node) bool) {
	link := sub.depsHead
	for link != nil {
		if !yield(link.dep) {
			return
		}
		link = link.nextDep
	}
}

// Subs iterates this node's subscribers.
func (dep *Node) Subs(yield func(*Node) bool) {
	link := dep.subsHead
	for link != nil {
		if !yield(link.sub) {
			return
		}
		link = link.nextSub
	}
}

// HasSubs reports whether any node observes this one.
func (dep *Node) HasSubs() bool {
	return dep.subsHead != nil
}
