package disasm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeMemory struct {
	bytes [0x10000]byte
}

func (f *fakeMemory) Read8(address uint16) uint8 { return f.bytes[address] }

func TestAtDecodesRegisterToRegisterLoad(t *testing.T) {
	mem := &fakeMemory{}
	mem.bytes[0x0100] = 0x47 // LD B,A

	line := At(0x0100, mem)

	assert.Equal(t, "LD B,A", line.Instruction)
	assert.Equal(t, 1, line.Length)
}

func TestAtDecodesImmediateOperand(t *testing.T) {
	mem := &fakeMemory{}
	mem.bytes[0x0100] = 0x3E // LD A,d8
	mem.bytes[0x0101] = 0x42

	line := At(0x0100, mem)

	assert.Equal(t, "LD A,0x42", line.Instruction)
	assert.Equal(t, 2, line.Length)
}

func TestAtDecodesSixteenBitImmediateLittleEndian(t *testing.T) {
	mem := &fakeMemory{}
	mem.bytes[0x0100] = 0xC3 // JP a16
	mem.bytes[0x0101] = 0x34
	mem.bytes[0x0102] = 0x12

	line := At(0x0100, mem)

	assert.Equal(t, "JP 0x1234", line.Instruction)
	assert.Equal(t, 3, line.Length)
}

func TestAtDecodesCBPrefixedBit(t *testing.T) {
	mem := &fakeMemory{}
	mem.bytes[0x0100] = 0xCB
	mem.bytes[0x0101] = 0x7F // BIT 7,A

	line := At(0x0100, mem)

	assert.Equal(t, "BIT 7,A", line.Instruction)
	assert.Equal(t, 2, line.Length)
}

func TestRangeAdvancesByEachInstructionsLength(t *testing.T) {
	mem := &fakeMemory{}
	mem.bytes[0x0100] = 0x00       // NOP
	mem.bytes[0x0101] = 0x3E       // LD A,d8
	mem.bytes[0x0102] = 0x10       //   d8
	mem.bytes[0x0103] = 0xC3       // JP a16
	mem.bytes[0x0104] = 0x00       //   lo
	mem.bytes[0x0105] = 0x01       //   hi

	lines := Range(0x0100, 3, mem)

	assert.Len(t, lines, 3)
	assert.Equal(t, uint16(0x0100), lines[0].Address)
	assert.Equal(t, uint16(0x0101), lines[1].Address)
	assert.Equal(t, uint16(0x0103), lines[2].Address)
}
