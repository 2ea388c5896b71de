package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoypad(t *testing.T) {
	t.Run("defaults to nothing pressed", func(t *testing.T) {
		j := NewJoypad()
		j.Write(0x10) // select d-pad
		assert.Equal(t, uint8(0x0F), j.Read())
	})

	t.Run("press clears the bit, release sets it back", func(t *testing.T) {
		j := NewJoypad()
		j.Write(0x20) // select buttons
		j.Press(ButtonA)
		assert.Equal(t, uint8(0x0E), j.Read())

		j.Release(ButtonA)
		assert.Equal(t, uint8(0x0F), j.Read())
	})

	t.Run("selection line gates which nibble is visible", func(t *testing.T) {
		j := NewJoypad()
		j.Press(ButtonDown)
		j.Press(ButtonStart)

		j.Write(0x10) // d-pad selected
		assert.Equal(t, uint8(0x07), j.Read())

		j.Write(0x20) // buttons selected
		assert.Equal(t, uint8(0x07), j.Read())
	})
}
