package memory

import "github.com/nellousan/dmg-go/dmg/addr"

// apuStub backs the FF10-FF3F sound register window. Sound synthesis is an
// explicit non-goal of this core, but real software still probes these
// registers (e.g. to detect DMG vs CGB, or to silence channels on boot), so
// the range must at least round-trip byte values rather than panic or
// silently discard them.
type apuStub struct {
	registers [addr.AudioEnd - addr.AudioStart + 1]uint8
}

func newAPUStub() *apuStub {
	return &apuStub{}
}

func (a *apuStub) Read8(address uint16) uint8 {
	return a.registers[address-addr.AudioStart]
}

func (a *apuStub) Write8(address uint16, value uint8) {
	a.registers[address-addr.AudioStart] = value
}
