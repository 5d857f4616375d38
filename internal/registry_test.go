package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffectRegistryLifecycle(t *testing.T) {
	r := NewRuntime()

	ran := 0
	node, owner := r.CreateEffect(nil, func() func() {
		ran++
		return nil
	}, 0)

	assert.Equal(t, 1, ran, "created effects run once synchronously")
	assert.True(t, r.registry.Live(node))
	assert.Equal(t, owner, r.registry.Owner(node))

	r.registry.Run(node)
	assert.Equal(t, 2, ran)

	r.DisposeEffect(node)
	assert.False(t, r.registry.Live(node))

	r.registry.Run(node)
	assert.Equal(t, 2, ran, "disposed effects do not run")
}

func TestDisposedEffectDroppedAtFlush(t *testing.T) {
	r := NewRuntime()
	x := NewSignalNode(0, func(a, b any) bool { return a == b })

	ran := 0
	node, _ := r.CreateEffect(nil, func() func() {
		r.ReadSignal(x)
		ran++
		return nil
	}, 0)

	r.Batch(func() {
		r.ScheduleJob(node)
		r.DisposeEffect(node)
	})

	assert.Equal(t, 1, ran, "a job scheduled then disposed before flush must be skipped")
}
