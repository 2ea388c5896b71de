package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nellousan/dmg-go/dmg/addr"
)

func TestTimerDIV(t *testing.T) {
	t.Run("DIV increments from the system counter", func(t *testing.T) {
		timer := NewTimer()
		timer.Tick(256)
		assert.Equal(t, uint8(1), timer.Read8(0xFF04))
	})

	t.Run("write to DIV resets it to zero", func(t *testing.T) {
		timer := NewTimer()
		timer.Tick(512)
		assert.NotEqual(t, uint8(0), timer.Read8(0xFF04))

		timer.Write8(0xFF04, 0x99)
		assert.Equal(t, uint8(0), timer.Read8(0xFF04))
	})
}

func TestTimerTIMA(t *testing.T) {
	t.Run("TIMA does not advance while disabled", func(t *testing.T) {
		timer := NewTimer()
		timer.Write8(0xFF07, 0x00) // TAC disabled
		timer.Tick(10000)
		assert.Equal(t, uint8(0), timer.Read8(0xFF05))
	})

	t.Run("TIMA increments at the selected frequency", func(t *testing.T) {
		timer := NewTimer()
		timer.Write8(0xFF07, 0x05) // enabled, clock select 01 -> bit 3

		timer.Tick(16) // one full period of the bit-3 edge
		assert.Equal(t, uint8(1), timer.Read8(0xFF05))
	})

	t.Run("TIMA overflow reloads from TMA and requests an interrupt", func(t *testing.T) {
		timer := NewTimer()
		fired := false
		timer.RequestInterrupt = func(i addr.Interrupt) { fired = true }
		timer.Write8(0xFF06, 0x42) // TMA
		timer.Write8(0xFF05, 0xFF) // TIMA on the edge of overflow
		timer.Write8(0xFF07, 0x05)

		timer.Tick(16) // triggers the falling edge -> overflow
		timer.Tick(8)  // overflowDelay counts out -> TIMA reloads from TMA
		assert.Equal(t, uint8(0x42), timer.Read8(0xFF05))
		assert.False(t, fired)

		timer.Tick(1) // interrupt fires one Tick after the reload
		assert.True(t, fired)
	})
}
