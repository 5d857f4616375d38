package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextInheritanceAndOverride(t *testing.T) {
	theme := NewContext("light")

	parent := NewOwner()
	var childValue, grandchildValue string

	parent.Run(func() {
		theme.Set("dark")

		child := NewOwner()
		child.Run(func() {
			childValue = theme.Value()

			grandchild := NewOwner()
			grandchild.Run(func() {
				theme.Set("blue")
				grandchildValue = theme.Value()
			})
		})
	})

	assert.Equal(t, "dark", childValue)
	assert.Equal(t, "blue", grandchildValue)
}

func TestContextDefaultOutsideAnyOwner(t *testing.T) {
	greeting := NewContext("hello")
	assert.Equal(t, "hello", greeting.Value())
}
