package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nellousan/dmg-go/dmg/addr"
	"github.com/nellousan/dmg-go/dmg/memory"
)

// testMMU is a real MMU with a blank no-MBC cartridge whose ROM bytes stay
// writable from the test, so programs can be placed at 0x0100.
type testMMU struct {
	*memory.MMU
	rom []byte
}

func (m *testMMU) Write8(address uint16, value uint8) {
	if int(address) < len(m.rom) {
		m.rom[address] = value
		return
	}
	m.MMU.Write8(address, value)
}

func newTestCPU() (*CPU, *testMMU) {
	rom := make([]byte, 0x8000)
	cart, _ := memory.NewCartridge(rom)
	mmu := &testMMU{MMU: memory.New(), rom: rom}
	mmu.LoadCartridge(cart)
	c := New(mmu.MMU)
	c.pc = 0x0100
	return c, mmu
}

func mustROM(t *testing.T) *memory.Cartridge {
	t.Helper()
	rom := make([]byte, 0x8000)
	cart, err := memory.NewCartridge(rom)
	if err != nil {
		t.Fatalf("failed to build test cartridge: %v", err)
	}
	return cart
}

func TestIncOverflowSetsHalfCarryAndZero(t *testing.T) {
	c, mmu := newTestCPU()
	mmu.Write8(0x0100, 0x3C) // INC A
	c.a = 0xFF

	c.Step()

	assert.Equal(t, uint8(0x00), c.a)
	assert.True(t, c.flag(flagZ))
	assert.True(t, c.flag(flagH))
	assert.False(t, c.flag(flagN))
}

func TestAddWithCarryInHalfCarry(t *testing.T) {
	c, mmu := newTestCPU()
	mmu.Write8(0x0100, 0x88) // ADC A,B
	c.a = 0x0F
	c.b = 0x00
	c.setFlag(flagC, true)

	c.Step()

	assert.Equal(t, uint8(0x10), c.a)
	assert.True(t, c.flag(flagH))
}

func TestDAAAfterDoublingOverflow(t *testing.T) {
	c, mmu := newTestCPU()
	mmu.Write8(0x0100, 0x87) // ADD A,A
	mmu.Write8(0x0101, 0x27) // DAA
	c.a = 0x50

	c.Step()
	c.Step()

	assert.Equal(t, uint8(0x00), c.a)
	assert.True(t, c.flag(flagC))
	assert.True(t, c.flag(flagZ))
}

func TestJRNegativeOffsetLoopsInPlace(t *testing.T) {
	c, mmu := newTestCPU()
	mmu.Write8(0x0100, 0x18) // JR -2
	mmu.Write8(0x0101, 0xFE)

	c.Step()
	assert.Equal(t, uint16(0x0100), c.pc)

	c.Step()
	assert.Equal(t, uint16(0x0100), c.pc)
}

func TestPushPopRoundTrip(t *testing.T) {
	c, mmu := newTestCPU()
	c.setBC(0x1234)
	startSP := c.sp

	mmu.Write8(0x0100, 0xC5) // PUSH BC
	mmu.Write8(0x0101, 0xC1) // POP BC
	c.Step()
	c.Step()

	assert.Equal(t, uint16(0x1234), c.bc())
	assert.Equal(t, startSP, c.sp)
}

func TestCallThenRetRestoresPCAndSP(t *testing.T) {
	c, mmu := newTestCPU()
	startSP := c.sp

	mmu.Write8(0x0100, 0xCD) // CALL 0x0200
	mmu.Write8(0x0101, 0x00)
	mmu.Write8(0x0102, 0x02)
	mmu.Write8(0x0200, 0xC9) // RET

	c.Step() // CALL
	assert.Equal(t, uint16(0x0200), c.pc)

	c.Step() // RET
	assert.Equal(t, uint16(0x0103), c.pc)
	assert.Equal(t, startSP, c.sp)
}

func TestInterruptDispatchOrdering(t *testing.T) {
	c, mmu := newTestCPU()
	c.ime = true
	mmu.Write8(addr.IE, 0x1F)
	mmu.Write8(addr.IF, 0x1F)

	cycles := c.Step()

	assert.Equal(t, uint16(0x40), c.pc)
	assert.Equal(t, 20, cycles)
	assert.Equal(t, uint8(0xE0|0x1E), mmu.Read8(addr.IF))
}

func TestHaltWakesWithoutServicingWhenIMEOff(t *testing.T) {
	c, mmu := newTestCPU()
	c.ime = false
	c.halted = true
	mmu.Write8(addr.IE, 0x01)
	mmu.Write8(addr.IF, 0x01)
	mmu.LoadCartridge(mustROM(t))

	c.Step()

	assert.False(t, c.halted)
	assert.NotEqual(t, uint16(0x40), c.pc)
}

func TestEIDelaysEnableByOneInstruction(t *testing.T) {
	c, mmu := newTestCPU()
	mmu.Write8(0x0100, 0xFB) // EI
	mmu.Write8(0x0101, 0x00) // NOP

	c.Step()
	assert.False(t, c.ime)
	assert.True(t, c.eiPending)

	c.Step()
	assert.True(t, c.ime)
}
