package internal

// EffectRegistry associates a graph node of KindEffect with the closure
// that runs it and the owner that accumulates its cleanups. The scheduler
// consults it (alongside the node's own Disposed flag) to skip a queued
// job whose effect was disposed between scheduleJob and flush.
type EffectRegistry struct {
	entries map[*Node]*effectEntry
}

type effectEntry struct {
	node  *Node
	owner *Owner
	run   func()
}

func NewEffectRegistry() *EffectRegistry {
	return &EffectRegistry{entries: make(map[*Node]*effectEntry)}
}

func (r *EffectRegistry) Register(node *Node, owner *Owner, run func()) {
	r.entries[node] = &effectEntry{node: node, owner: owner, run: run}
}

func (r *EffectRegistry) Unregister(node *Node) {
	delete(r.entries, node)
}

// Live reports whether node is both registered and not disposed. Used by
// the scheduler to filter a queued job whose effect was torn down before
// its turn to run.
func (r *EffectRegistry) Live(node *Node) bool {
	entry, ok := r.entries[node]
	return ok && !entry.node.Disposed
}

func (r *EffectRegistry) Owner(node *Node) *Owner {
	if entry, ok := r.entries[node]; ok {
		return entry.owner
	}
	return nil
}

func (r *EffectRegistry) Run(node *Node) {
	if entry, ok := r.entries[node]; ok && !entry.node.Disposed {
		entry.run()
	}
}

func (r *EffectRegistry) Len() int {
	return len(r.entries)
}
