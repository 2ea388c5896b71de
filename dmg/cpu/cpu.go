// Package cpu implements the Sharp LR35902 instruction set: register file,
// primary and CB-prefixed opcode dispatch, and interrupt/HALT/STOP handling.
package cpu

import (
	"fmt"
	"log/slog"

	"github.com/nellousan/dmg-go/dmg/addr"
	"github.com/nellousan/dmg-go/dmg/memory"
)

// bus is the subset of *memory.MMU the CPU needs; kept as an interface so
// tests can substitute a bare-metal fake without constructing a full MMU.
type bus interface {
	Read8(address uint16) uint8
	Write8(address uint16, value uint8)
	Read16(address uint16) uint16
	Write16(address, value uint16)
}

var _ bus = (*memory.MMU)(nil)

// illegalOpcodes lists the eleven opcodes the LR35902 never defined; Step
// logs and panics with a message string when it decodes one of them.
// Real hardware locks up; this core treats it as a fatal, logged condition.
var illegalOpcodes = map[uint8]bool{
	0xD3: true, 0xDB: true, 0xDD: true, 0xE3: true, 0xE4: true,
	0xEB: true, 0xEC: true, 0xED: true, 0xF4: true, 0xFC: true, 0xFD: true,
}

// CPU is the LR35902 core: register file, interrupt state, and a reference
// to the shared MMU it fetches from and operates on.
type CPU struct {
	registers

	mmu bus

	ime       bool
	eiPending bool
	halted    bool
	stopped   bool
}

// New constructs a CPU wired to mmu, with registers at their documented
// post-boot-ROM values. Callers running a boot ROM should call Reset(false)
// first to start from PC=0 instead.
func New(mmu bus) *CPU {
	c := &CPU{mmu: mmu}
	c.registers.reset()
	return c
}

// Reset reinitializes the register file. When skipBoot is true the CPU is
// placed at the documented post-boot-ROM state (PC=0x0100); otherwise it
// starts at PC=0x0000 as real hardware does with the boot ROM mapped in.
func (c *CPU) Reset(skipBoot bool) {
	c.registers.reset()
	if !skipBoot {
		c.pc = 0x0000
	}
	c.ime = false
	c.eiPending = false
	c.halted = false
	c.stopped = false
}

// PC returns the current program counter, for the debugger/disassembler.
func (c *CPU) PC() uint16 { return c.pc }

// SP returns the current stack pointer, for the debugger.
func (c *CPU) SP() uint16 { return c.sp }

// Snapshot is a read-only copy of the register file, for host/debugger
// "Registers" messages.
type Snapshot struct {
	A, F       uint8
	B, C       uint8
	D, E       uint8
	H, L       uint8
	SP, PC     uint16
	IME        bool
	Halted     bool
}

// Snapshot returns the current register file by value.
func (c *CPU) Snapshot() Snapshot {
	return Snapshot{
		A: c.a, F: c.f,
		B: c.b, C: c.c,
		D: c.d, E: c.e,
		H: c.h, L: c.l,
		SP: c.sp, PC: c.pc,
		IME:    c.ime,
		Halted: c.halted,
	}
}

func (c *CPU) fetch8() uint8 {
	v := c.mmu.Read8(c.pc)
	c.pc++
	return v
}

func (c *CPU) fetch16() uint16 {
	v := c.mmu.Read16(c.pc)
	c.pc += 2
	return v
}

func (c *CPU) push(v uint16) {
	c.sp -= 2
	c.mmu.Write16(c.sp, v)
}

func (c *CPU) pop() uint16 {
	v := c.mmu.Read16(c.sp)
	c.sp += 2
	return v
}

// Step runs one instruction (servicing a pending interrupt first, if any)
// and returns the number of T-cycles it took.
func (c *CPU) Step() int {
	if cycles, serviced := c.serviceInterrupt(); serviced {
		return cycles
	}

	if c.halted {
		return 4 // the core idles in lockstep with the rest of the machine
	}

	if c.eiPending {
		c.eiPending = false
		c.ime = true
	}

	opcode := c.fetch8()
	if illegalOpcodes[opcode] {
		slog.Error("illegal opcode encountered", "opcode", fmt.Sprintf("0x%02X", opcode), "pc", fmt.Sprintf("0x%04X", c.pc-1))
		panic(fmt.Sprintf("cpu: illegal opcode 0x%02X at 0x%04X", opcode, c.pc-1))
	}

	return primaryTable[opcode](c)
}

// serviceInterrupt dispatches the lowest-numbered pending+enabled interrupt
// if IME is set, or wakes the CPU from HALT without servicing if it isn't.
// Returns the cycles charged and whether an interrupt was actually serviced.
func (c *CPU) serviceInterrupt() (int, bool) {
	ie := c.mmu.Read8(addr.IE)
	iflag := c.mmu.Read8(addr.IF)
	pending := ie & iflag & 0x1F

	if pending == 0 {
		return 0, false
	}

	if c.halted && !c.ime {
		c.halted = false
		return 0, false
	}

	if !c.ime {
		return 0, false
	}

	for bitPos := uint8(0); bitPos < 5; bitPos++ {
		if pending&(1<<bitPos) == 0 {
			continue
		}

		interrupt := addr.Interrupt(bitPos)
		c.ime = false
		c.halted = false
		c.mmu.Write8(addr.IF, iflag&^(1<<bitPos))
		c.push(c.pc)
		c.pc = interrupt.Vector()
		return 20, true
	}

	return 0, false
}
