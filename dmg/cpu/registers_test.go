package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisterPairComposition(t *testing.T) {
	var r registers
	r.setBC(0xBEEF)
	assert.Equal(t, uint8(0xBE), r.b)
	assert.Equal(t, uint8(0xEF), r.c)
	assert.Equal(t, uint16(0xBEEF), r.bc())
}

func TestSetAFMasksLowNibbleOfF(t *testing.T) {
	var r registers
	r.setAF(0x1234)
	assert.Equal(t, uint8(0x30), r.f) // low nibble of F is never addressable
}

func TestResetMatchesPostBootState(t *testing.T) {
	var r registers
	r.reset()
	assert.Equal(t, uint16(0x01B0), r.af())
	assert.Equal(t, uint16(0xFFFE), r.sp)
	assert.Equal(t, uint16(0x0100), r.pc)
}
