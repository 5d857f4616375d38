package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOwnerCleanupsRunLIFO(t *testing.T) {
	r := NewRuntime()
	o := r.NewOwner()

	log := []string{}
	o.OnCleanup(func() { log = append(log, "first") })
	o.OnCleanup(func() { log = append(log, "second") })

	o.RunCleanupsLIFO()

	assert.Equal(t, []string{"second", "first"}, log)
}

func TestOwnerCleanupFailureIsSwallowedAndReported(t *testing.T) {
	r := NewRuntime()
	o := r.NewOwner()

	var reported any
	r.SetOnPanic(func(recovered any) { reported = recovered })

	ran := false
	o.OnCleanup(func() { ran = true })
	o.OnCleanup(func() { panic("boom") })

	o.RunCleanupsLIFO()

	assert.Equal(t, "boom", reported)
	assert.True(t, ran, "remaining cleanups still run after one panics")
}

func TestOwnerDisposeCascadesToChildren(t *testing.T) {
	r := NewRuntime()
	parent := r.NewOwner()
	child := r.NewOwner()
	parent.Adopt(child)

	childDisposed := false
	child.OnCleanup(func() { childDisposed = true })

	parent.Dispose()

	assert.True(t, childDisposed)
	assert.Nil(t, parent.childrenHead)
}

func TestOwnerContextInheritance(t *testing.T) {
	r := NewRuntime()
	parent := r.NewOwner()
	child := r.NewOwner()
	parent.Adopt(child)

	key := "theme"
	parent.SetContext(key, "dark")

	v, ok := child.Context(key)
	assert.True(t, ok)
	assert.Equal(t, "dark", v)

	child.SetContext(key, "light")
	v, ok = child.Context(key)
	assert.True(t, ok)
	assert.Equal(t, "light", v)

	v, ok = parent.Context(key)
	assert.True(t, ok)
	assert.Equal(t, "dark", v, "child override must not leak to parent")
}

func TestOwnerReportPanicUsesNearestCatcher(t *testing.T) {
	r := NewRuntime()
	parent := r.NewOwner()
	child := r.NewOwner()
	parent.Adopt(child)

	var caught any
	parent.OnError(func(v any) { caught = v })

	child.reportPanic("oops")

	assert.Equal(t, "oops", caught)
}

func TestOwnerReportPanicRepanicsWithoutCatcher(t *testing.T) {
	r := NewRuntime()
	o := r.NewOwner()

	assert.Panics(t, func() {
		o.reportPanic("uncaught")
	})
}
