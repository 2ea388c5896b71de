package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nellousan/dmg-go/dmg/addr"
)

func TestMMUWorkRAMRoundTrip(t *testing.T) {
	m := New()
	m.Write8(0xC000, 0x42)
	assert.Equal(t, uint8(0x42), m.Read8(0xC000))
}

func TestMMUEchoMirrorsWorkRAM(t *testing.T) {
	m := New()
	m.Write8(0xC010, 0x7E)
	assert.Equal(t, uint8(0x7E), m.Read8(0xE010))

	m.Write8(0xE020, 0x11)
	assert.Equal(t, uint8(0x11), m.Read8(0xC020))
}

func TestMMURequestInterruptSetsIFBit(t *testing.T) {
	m := New()
	m.RequestInterrupt(addr.TimerInterrupt)
	assert.Equal(t, uint8(0xE0|0x04), m.Read8(addr.IF))
}

func TestMMUIFHighBitsAlwaysRead(t *testing.T) {
	m := New()
	m.Write8(addr.IF, 0x00)
	assert.Equal(t, uint8(0xE0), m.Read8(addr.IF))
}

func TestMMUOAMDMA(t *testing.T) {
	m := New()
	for i := uint16(0); i < 160; i++ {
		m.Write8(0xC100+i, uint8(i))
	}

	m.Write8(addr.DMA, 0xC1)

	for i := uint16(0); i < 160; i++ {
		assert.Equal(t, uint8(i), m.Read8(0xFE00+i))
	}
}

func TestMMUBootROMOverlayDisengages(t *testing.T) {
	m := New()
	boot := make([]byte, 256)
	boot[0] = 0xAA
	require.NoError(t, m.LoadBootROM(boot))

	assert.Equal(t, uint8(0xAA), m.Read8(0x0000))

	m.Write8(addr.BOOT, 0x01)
	assert.NotEqual(t, uint8(0xAA), m.Read8(0x0000))
}

func TestMMUJoypadInterruptOnPress(t *testing.T) {
	m := New()
	m.Write8(addr.P1, 0x20) // select buttons
	m.PressButton(ButtonA)

	assert.Equal(t, uint8(0xE0|0x10), m.Read8(addr.IF))
}
