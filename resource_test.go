package kernel

import (
	"context"
	"sync"
	"testing"
	"time"
)

// pendingFetches lets a test control exactly when a given source id's
// fetch resolves, so switch-latest ordering is deterministic rather
// than timing-dependent. The fetcher below deliberately ignores
// ctx.Done(), the same as a producer that doesn't observe cancellation,
// so a settlement arriving after supersession must be caught by token
// gating alone rather than by context cancellation.
type pendingFetches struct {
	mu      sync.Mutex
	release map[int]chan struct{}
}

func newPendingFetches() *pendingFetches {
	return &pendingFetches{release: make(map[int]chan struct{})}
}

func (p *pendingFetches) gate(id int) chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch, ok := p.release[id]
	if !ok {
		ch = make(chan struct{})
		p.release[id] = ch
	}
	return ch
}

func (p *pendingFetches) open(id int) {
	close(p.gate(id))
}

func TestResourceSwitchLatest(t *testing.T) {
	id := NewSignal(1)
	fetches := newPendingFetches()

	value, meta := CreateResource[int, string](
		func() int { return id.Get() },
		func(source int, ctx context.Context, token uint64) (string, error) {
			<-fetches.gate(source) // ignores ctx: a non-cooperative producer
			if source == 1 {
				return "U1", nil
			}
			return "U2", nil
		},
	)

	waitStatus(t, meta, AsyncPending)

	id.Set(2)
	waitStatus(t, meta, AsyncPending)
	if got := Untrack(value); got != "" {
		t.Fatalf("nothing has resolved yet, expected zero value, got %q", got)
	}

	fetches.open(2)
	waitStatus(t, meta, AsyncSuccess)
	if got := Untrack(value); got != "U2" {
		t.Fatalf("expected U2 after #2 resolves, got %q", got)
	}

	// #1 was cancelled when the source changed but its producer ignores
	// ctx; resolving it now must be dropped by token gating alone.
	fetches.open(1)
	time.Sleep(20 * time.Millisecond)
	if got := Untrack(value); got != "U2" {
		t.Fatalf("late resolution of the superseded #1 fetch must not overwrite U2, got %q", got)
	}
	if got := Untrack(meta.Status); got != AsyncSuccess {
		t.Fatalf("late resolution of #1 must not move status off Success, got %v", got)
	}
}

func waitStatus(t *testing.T, meta *AsyncMeta[string], want AsyncStatus) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if Untrack(meta.Status) == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("status never reached %v", want)
}
