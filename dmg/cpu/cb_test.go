package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCBRotateLeftCircularSetsCarryFromBit7(t *testing.T) {
	c, mmu := newTestCPU()
	mmu.Write8(0x0100, 0xCB)
	mmu.Write8(0x0101, 0x07) // RLC A
	c.a = 0x85

	cycles := c.Step()

	assert.Equal(t, uint8(0x0B), c.a)
	assert.True(t, c.flag(flagC))
	assert.False(t, c.flag(flagZ))
	assert.Equal(t, 8, cycles)
}

func TestCBSwapNibbles(t *testing.T) {
	c, mmu := newTestCPU()
	mmu.Write8(0x0100, 0xCB)
	mmu.Write8(0x0101, 0x37) // SWAP A
	c.a = 0x12

	c.Step()

	assert.Equal(t, uint8(0x21), c.a)
	assert.False(t, c.flag(flagC))
}

func TestCBBitTestSetsZeroWithoutTouchingCarry(t *testing.T) {
	c, mmu := newTestCPU()
	mmu.Write8(0x0100, 0xCB)
	mmu.Write8(0x0101, 0x7F) // BIT 7,A
	c.a = 0x00
	c.setFlag(flagC, true)

	cycles := c.Step()

	assert.True(t, c.flag(flagZ))
	assert.True(t, c.flag(flagH))
	assert.False(t, c.flag(flagN))
	assert.True(t, c.flag(flagC), "BIT must not touch the carry flag")
	assert.Equal(t, 8, cycles)
}

func TestCBResAndSetOnIndirectHLCostSixteenCycles(t *testing.T) {
	c, mmu := newTestCPU()
	mmu.Write8(0x0100, 0xCB)
	mmu.Write8(0x0101, 0x86) // RES 0,(HL)
	c.setHL(0xC000)
	mmu.Write8(0xC000, 0xFF)

	cycles := c.Step()

	assert.Equal(t, uint8(0xFE), mmu.Read8(0xC000))
	assert.Equal(t, 16, cycles)

	mmu.Write8(0x0102, 0xCB)
	mmu.Write8(0x0103, 0xC6) // SET 0,(HL)
	cycles = c.Step()

	assert.Equal(t, uint8(0xFF), mmu.Read8(0xC000))
	assert.Equal(t, 16, cycles)
}

func TestStopConsumesMandatorySecondByte(t *testing.T) {
	c, mmu := newTestCPU()
	mmu.Write8(0x0100, 0x10) // STOP
	mmu.Write8(0x0101, 0x00) // mandatory second byte
	mmu.Write8(0x0102, 0x00) // NOP, to confirm PC landed here

	c.Step()

	assert.True(t, c.stopped)
	assert.Equal(t, uint16(0x0102), c.pc)
}
