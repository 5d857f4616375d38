package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOwnerRunAdoptsChildren(t *testing.T) {
	o := NewOwner()

	disposed := false
	o.Run(func() {
		e := NewEffect(func() {
			OnCleanup(func() { disposed = true })
		})
		_ = e
	})

	o.Dispose()
	assert.True(t, disposed)
}

func TestOwnerOnError(t *testing.T) {
	o := NewOwner()

	var caught any
	o.OnError(func(v any) { caught = v })

	o.Run(func() {
		NewEffect(func() {
			panic("boom")
		})
	})

	assert.Equal(t, "boom", caught)
}

func TestCurrentOwnerNilOutsideRun(t *testing.T) {
	assert.Nil(t, CurrentOwner())
}
