package kernel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/reactivekernel/kernel/internal"
)

// AsyncStatus is the lifecycle state of an AsyncCell.
type AsyncStatus int

const (
	AsyncIdle AsyncStatus = iota
	AsyncPending
	AsyncSuccess
	AsyncError
	AsyncCancelled
)

func (s AsyncStatus) String() string {
	switch s {
	case AsyncIdle:
		return "idle"
	case AsyncPending:
		return "pending"
	case AsyncSuccess:
		return "success"
	case AsyncError:
		return "error"
	case AsyncCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// AsyncEventKind tags an AsyncEvent as a start, success, error, or
// cancel record.
type AsyncEventKind int

const (
	AsyncEventStart AsyncEventKind = iota
	AsyncEventSuccess
	AsyncEventError
	AsyncEventCancel
)

// AsyncEvent is delivered to AsyncOptions.OnEvent; every event carries
// at least a token and a timestamp.
type AsyncEvent struct {
	Kind   AsyncEventKind
	Token  uint64
	Time   time.Time
	Err    error
	Reason string
}

// Producer is the unit of async work an AsyncCell runs on each
// (re)load. Go has no promise to suspend on, so the producer is an
// ordinary blocking call that must observe ctx for cancellation; token
// identifies this particular run for the cell's own bookkeeping.
type Producer[T any] func(ctx context.Context, token uint64) (T, error)

// AsyncOptions configures an AsyncCell. Two fields are phrased as
// negatives so the Go zero value gives the commonly-wanted default:
// eager-by-default and keep-previous-value-by-default.
type AsyncOptions[T any] struct {
	// Lazy, if true, leaves status at Idle and starts no work until the
	// first explicit Reload. Default is eager (Lazy=false): work starts
	// at creation.
	Lazy bool

	// DiscardValueOnPending, if true, clears the value on every
	// (re)start rather than retaining the last success. Default is to
	// keep the previous value visible while a new run is pending.
	DiscardValueOnPending bool

	OnSuccess func(value T)
	OnError   func(err error)
	OnCancel  func(reason string)
	OnEvent   func(AsyncEvent)
}

// errAborted is the cause context.CancelCauseFunc is invoked with when
// this package itself cancels a run, either via explicit Cancel or
// because a newer run superseded it. A producer that returns
// context.Cause(ctx) rejects with one of these; one that returns
// ctx.Err() rejects with context.Canceled. isAbortError recognises both.
var errAborted = errors.New("kernel: aborted")
var errSuperseded = fmt.Errorf("%w: superseded by a newer run", errAborted)

func isAbortError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, errAborted)
}

// controller is the abort handle for one in-flight run, shared between
// Run's caller and the goroutine invoking the producer.
type controller struct {
	cancel context.CancelCauseFunc
	ctx    context.Context

	mu      sync.Mutex
	aborted bool
}

func (c *controller) abort(cause error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.aborted {
		return false
	}
	c.aborted = true
	c.cancel(cause)
	return true
}

func (c *controller) isAborted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aborted
}

// AsyncCell is a cancellable producer-bound cell backed by three
// signals (value, status, error): a token- and abort-gated async state
// machine.
//
// Every direct write to those three nodes, and every read of them
// through Value/Status/Error, holds rt.Lock for just that write or
// read. The graph and scheduler are otherwise single-threaded
// cooperative; the one place that assumption doesn't hold in Go is a
// producer's goroutine settling concurrently with a reader on another
// goroutine, so this cell is the one path that takes the runtime's
// mutex rather than assuming a single logical thread. The lock is
// never held across rt.Batch's own flush: each settling write releases
// it before the batch's deferred Flush runs, so an effect triggered by
// a settlement is free to call back into Value/Status/Error (on the
// same or another cell) without self-deadlocking.
type AsyncCell[T any] struct {
	valueNode  *internal.Node
	statusNode *internal.Node
	errNode    *internal.Node

	producer Producer[T]
	opts     AsyncOptions[T]

	mu    sync.Mutex
	token uint64
	ctl   *controller
}

// NewAsyncCell creates a cell around producer. Unless opts.Lazy is set,
// it starts running immediately.
func NewAsyncCell[T any](producer Producer[T], opts ...AsyncOptions[T]) *AsyncCell[T] {
	var o AsyncOptions[T]
	if len(opts) > 0 {
		o = opts[0]
	}

	var zero T
	c := &AsyncCell[T]{
		valueNode:  internal.NewSignalNode(any(zero), func(a, b any) bool { return false }),
		statusNode: internal.NewSignalNode(any(AsyncIdle), func(a, b any) bool { return a.(AsyncStatus) == b.(AsyncStatus) }),
		errNode:    internal.NewSignalNode(any(error(nil)), func(a, b any) bool { return false }),
		producer:   producer,
		opts:       o,
	}
	if !o.Lazy {
		c.Run()
	}
	return c
}

// Value returns the last successfully produced value, tracking a
// dependency on the active observer. Before the first success this is
// T's zero value. Locked the same as a settling producer's writes, so a
// read never observes a half-applied settlement from another goroutine.
func (c *AsyncCell[T]) Value() T {
	rt.Lock()
	defer rt.Unlock()
	return as[T](rt.ReadSignal(c.valueNode))
}

// Status returns the cell's current lifecycle state, tracking a
// dependency.
func (c *AsyncCell[T]) Status() AsyncStatus {
	rt.Lock()
	defer rt.Unlock()
	return as[AsyncStatus](rt.ReadSignal(c.statusNode))
}

// Error returns the last producer failure, or nil. Tracking a
// dependency; never set for an aborted/cancelled run.
func (c *AsyncCell[T]) Error() error {
	rt.Lock()
	defer rt.Unlock()
	v := rt.ReadSignal(c.errNode)
	if v == nil {
		return nil
	}
	return v.(error)
}

// Run starts a new producer invocation, aborting whatever run is
// currently in flight.
func (c *AsyncCell[T]) Run() {
	c.mu.Lock()
	c.token++
	myToken := c.token
	if c.ctl != nil {
		c.ctl.abort(errSuperseded)
	}
	ctx, cancel := context.WithCancelCause(context.Background())
	ctl := &controller{cancel: cancel, ctx: ctx}
	c.ctl = ctl
	producer := c.producer
	c.mu.Unlock()

	rt.Batch(func() {
		rt.Lock()
		rt.WriteSignal(c.statusNode, AsyncPending)
		rt.WriteSignal(c.errNode, error(nil))
		if c.opts.DiscardValueOnPending {
			var zero T
			rt.WriteSignal(c.valueNode, any(zero))
		}
		rt.Unlock()
	})

	c.emit(AsyncEvent{Kind: AsyncEventStart, Token: myToken, Time: time.Now()})

	go c.invoke(ctl, myToken, producer)
}

// Reload re-runs the producer; an alias for Run.
func (c *AsyncCell[T]) Reload() { c.Run() }

func (c *AsyncCell[T]) invoke(ctl *controller, token uint64, producer Producer[T]) {
	var (
		value T
		err   error
	)
	func() {
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("kernel: producer panicked: %v", p)
			}
		}()
		value, err = producer(ctl.ctx, token)
	}()

	c.settle(ctl, token, value, err)
}

// setProducer swaps the function Run invokes on the next (not any
// in-flight) run. Resource uses this to bind a fresh closure over its
// latest source snapshot before each Reload, so a superseded run keeps
// running with the source value captured when it started rather than
// racing a later source change.
func (c *AsyncCell[T]) setProducer(p Producer[T]) {
	c.mu.Lock()
	c.producer = p
	c.mu.Unlock()
}

// settle gates on token and abort state, then transitions to Success
// or Error.
func (c *AsyncCell[T]) settle(ctl *controller, token uint64, value T, err error) {
	c.mu.Lock()
	current := c.token
	c.mu.Unlock()
	if token != current {
		return // superseded
	}
	if ctl.isAborted() {
		return // cancel() or a later Run() already handled this run
	}

	if err != nil {
		if isAbortError(err) {
			return
		}
		rt.Batch(func() {
			rt.Lock()
			rt.WriteSignal(c.errNode, err)
			rt.WriteSignal(c.statusNode, AsyncError)
			rt.Unlock()
		})
		c.emit(AsyncEvent{Kind: AsyncEventError, Token: token, Time: time.Now(), Err: err})
		if c.opts.OnError != nil {
			c.opts.OnError(err)
		}
		return
	}

	rt.Batch(func() {
		rt.Lock()
		rt.WriteSignal(c.valueNode, any(value))
		rt.WriteSignal(c.statusNode, AsyncSuccess)
		rt.Unlock()
	})
	c.emit(AsyncEvent{Kind: AsyncEventSuccess, Token: token, Time: time.Now()})
	if c.opts.OnSuccess != nil {
		c.opts.OnSuccess(value)
	}
}

// Cancel aborts the in-flight run, if any and not already aborted, and
// transitions to Cancelled leaving value/error untouched.
func (c *AsyncCell[T]) Cancel(reason ...string) {
	r := ""
	if len(reason) > 0 {
		r = reason[0]
	}

	c.mu.Lock()
	ctl := c.ctl
	token := c.token
	c.mu.Unlock()
	if ctl == nil {
		return
	}
	if !ctl.abort(fmt.Errorf("%w: %s", errAborted, r)) {
		return
	}

	rt.Batch(func() {
		rt.Lock()
		rt.WriteSignal(c.statusNode, AsyncCancelled)
		rt.Unlock()
	})

	c.emit(AsyncEvent{Kind: AsyncEventCancel, Token: token, Time: time.Now(), Reason: r})
	if c.opts.OnCancel != nil {
		c.opts.OnCancel(r)
	}
}

func (c *AsyncCell[T]) emit(ev AsyncEvent) {
	if c.opts.OnEvent != nil {
		c.opts.OnEvent(ev)
	}
}

// AsyncMeta is the status/error/reload/cancel half of AsyncSignal's
// return pair.
type AsyncMeta[T any] struct {
	cell *AsyncCell[T]
}

func (m *AsyncMeta[T]) Status() AsyncStatus     { return m.cell.Status() }
func (m *AsyncMeta[T]) Error() error            { return m.cell.Error() }
func (m *AsyncMeta[T]) Reload()                 { m.cell.Reload() }
func (m *AsyncMeta[T]) Cancel(reason ...string) { m.cell.Cancel(reason...) }

// FromPromise wraps producer in a fresh AsyncCell.
func FromPromise[T any](producer Producer[T], opts ...AsyncOptions[T]) *AsyncCell[T] {
	return NewAsyncCell(producer, opts...)
}

// AsyncSignal returns a value getter paired with the cell's
// status/error/reload/cancel surface.
func AsyncSignal[T any](producer Producer[T], opts ...AsyncOptions[T]) (func() T, *AsyncMeta[T]) {
	cell := NewAsyncCell(producer, opts...)
	return cell.Value, &AsyncMeta[T]{cell: cell}
}
