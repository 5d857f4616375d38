package internal

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func makeSignal(r *Runtime, initial any) *Node {
	return NewSignalNode(initial, func(a, b any) bool { return a == b })
}

// makeEffect wires a Node+Owner pair the way CreateEffect does, without
// going through the generic root package.
func makeEffect(r *Runtime, fn func() func()) *Node {
	node, _ := r.CreateEffect(nil, fn, 0)
	return node
}

func TestDiamondStabilisation(t *testing.T) {
	r := NewRuntime()

	a := makeSignal(r, 1)

	b := r.CreateComputed(nil, func() any {
		return r.ReadSignal(a).(int) + 1
	}, func(x, y any) bool { return x == y })

	c := r.CreateComputed(nil, func() any {
		return r.ReadSignal(a).(int) * 10
	}, func(x, y any) bool { return x == y })

	d := r.CreateComputed(nil, func() any {
		bv, _ := r.ReadComputed(b)
		cv, _ := r.ReadComputed(c)
		return bv.(int) + cv.(int)
	}, func(x, y any) bool { return x == y })

	log := []string{}
	makeEffect(r, func() func() {
		dv, _ := r.ReadComputed(d)
		log = append(log, fmt.Sprintf("%d", dv))
		return nil
	})

	assert.Equal(t, []string{"12"}, log)

	r.WriteSignal(a, 2)

	assert.Equal(t, []string{"12", "23"}, log)
}

func TestBatchCoalescing(t *testing.T) {
	r := NewRuntime()

	x := makeSignal(r, 0)
	y := makeSignal(r, 0)

	log := []string{}
	makeEffect(r, func() func() {
		log = append(log, fmt.Sprintf("%d", r.ReadSignal(x).(int)+r.ReadSignal(y).(int)))
		return nil
	})
	assert.Equal(t, []string{"0"}, log)

	r.Batch(func() {
		r.WriteSignal(x, 1)
		r.WriteSignal(y, 2)
		assert.Equal(t, []string{"0"}, log, "no flush mid-batch")
	})

	assert.Equal(t, []string{"0", "3"}, log)
}

func TestAtomicRollback(t *testing.T) {
	r := NewRuntime()
	n := makeSignal(r, 10)

	boom := errors.New("boom")
	err := r.Atomic(func() error {
		r.WriteSignal(n, 99)
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 10, r.PeekSignal(n))
}

func TestAtomicCommit(t *testing.T) {
	r := NewRuntime()
	n := makeSignal(r, 10)

	err := r.Atomic(func() error {
		r.WriteSignal(n, 99)
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 99, r.PeekSignal(n))
}

func TestCycleDetected(t *testing.T) {
	r := NewRuntime()

	var c *Node
	c = r.CreateComputed(nil, func() any {
		v, err := r.ReadComputed(c)
		if err != nil {
			panic(err)
		}
		return v.(int) + 1
	}, func(x, y any) bool { return x == y })

	_, err := r.ReadComputed(c)
	assert.ErrorIs(t, err, ErrCycleDetected)
}

func TestEqualWriteDoesNotSchedule(t *testing.T) {
	r := NewRuntime()
	x := makeSignal(r, 0)

	runs := 0
	makeEffect(r, func() func() {
		r.ReadSignal(x)
		runs++
		return nil
	})
	assert.Equal(t, 1, runs)

	r.WriteSignal(x, 0)
	assert.Equal(t, 1, runs, "equal write must not schedule subscribers")
}

func TestPriorityOrdering(t *testing.T) {
	r := NewRuntime()
	x := makeSignal(r, 0)

	log := []string{}
	r.Batch(func() {
		node2, _ := r.CreateEffect(nil, func() func() {
			r.ReadSignal(x)
			log = append(log, "b")
			return nil
		}, 5)
		_ = node2
		r.CreateEffect(nil, func() func() {
			r.ReadSignal(x)
			log = append(log, "a")
			return nil
		}, 1)
	})

	log = nil
	r.WriteSignal(x, 1)
	assert.Equal(t, []string{"a", "b"}, log)
}

func TestOnSettledFiresAfterFlush(t *testing.T) {
	r := NewRuntime()
	x := makeSignal(r, 0)

	log := []string{}
	makeEffect(r, func() func() {
		log = append(log, fmt.Sprintf("changed %d", r.ReadSignal(x).(int)))
		return nil
	})

	r.OnSettled(func() {
		log = append(log, "settled")
	})

	r.WriteSignal(x, 10)

	assert.Equal(t, []string{"changed 0", "changed 10", "settled"}, log)
}
