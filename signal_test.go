package kernel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignalGetSet(t *testing.T) {
	s := NewSignal(1)
	assert.Equal(t, 1, s.Get())

	s.Set(2)
	assert.Equal(t, 2, s.Peek())
}

func TestSignalUpdate(t *testing.T) {
	s := NewSignal(10)
	s.Update(func(current int) int { return current + 5 })
	assert.Equal(t, 15, s.Get())
}

func TestSignalEqualWriteDoesNotScheduleEffect(t *testing.T) {
	s := NewSignal(0)
	runs := 0
	NewEffect(func() {
		s.Get()
		runs++
	})
	assert.Equal(t, 1, runs)

	s.Set(0)
	assert.Equal(t, 1, runs)
}

func TestSignalDefaultEqualsNaNSafe(t *testing.T) {
	s := NewSignal(math.NaN())
	runs := 0
	NewEffect(func() {
		s.Get()
		runs++
	})
	assert.Equal(t, 1, runs)

	s.Set(math.NaN())
	assert.Equal(t, 1, runs, "two NaNs must compare equal, suppressing propagation")
}

func TestSignalDefaultEqualsDistinguishesSignedZero(t *testing.T) {
	s := NewSignal(0.0)
	runs := 0
	NewEffect(func() {
		s.Get()
		runs++
	})
	assert.Equal(t, 1, runs)

	s.Set(math.Copysign(0, -1))
	assert.Equal(t, 2, runs, "+0 and -0 must compare unequal, per Object.is semantics")
}

func TestSignalCustomEquals(t *testing.T) {
	type point struct{ x, y int }
	s := NewSignal(point{1, 1}, func(a, b point) bool { return a.x == b.x })

	runs := 0
	NewEffect(func() {
		s.Get()
		runs++
	})
	assert.Equal(t, 1, runs)

	s.Set(point{1, 99})
	assert.Equal(t, 1, runs, "custom equals comparing only x suppresses this write")

	s.Set(point{2, 99})
	assert.Equal(t, 2, runs)
}
