package cpu

// primaryTable is the 256-entry jump table for unprefixed opcodes. Each
// entry performs its instruction's effect and returns its T-cycle cost;
// conditional control-flow entries return the taken cost only when the
// branch is actually taken, per the canonical DMG table.
var primaryTable [256]func(*CPU) int

// rp16 identifies one of the four 16-bit register-pair encodings used by
// the 0x00-0x3F block (BC, DE, HL, SP) and by PUSH/POP (BC, DE, HL, AF).
type rp16 uint8

const (
	rpBC rp16 = iota
	rpDE
	rpHL
	rpSP
)

func (c *CPU) getRP(rp rp16) uint16 {
	switch rp {
	case rpBC:
		return c.bc()
	case rpDE:
		return c.de()
	case rpHL:
		return c.hl()
	default:
		return c.sp
	}
}

func (c *CPU) setRP(rp rp16, v uint16) {
	switch rp {
	case rpBC:
		c.setBC(v)
	case rpDE:
		c.setDE(v)
	case rpHL:
		c.setHL(v)
	default:
		c.sp = v
	}
}

func init() {
	for i := range primaryTable {
		primaryTable[i] = opcodeUndefined
	}

	registerBlockLoads()
	registerBlockALU()
	registerMiscellaneous()
}

func opcodeUndefined(c *CPU) int {
	// Reachable only for the eleven opcodes cpu.Step already rejects before
	// indexing into this table; present so the table always has 256 valid
	// function values.
	return 4
}

// registerBlockLoads fills 0x40-0x7F: LD r,r' for every (dest, src) pair,
// with 0x76 overridden to HALT by registerMiscellaneous.
func registerBlockLoads() {
	for dest := uint8(0); dest < 8; dest++ {
		for src := uint8(0); src < 8; src++ {
			opcode := 0x40 | dest<<3 | src
			d, s := dest, src
			primaryTable[opcode] = func(c *CPU) int {
				c.setRegIndex(d, c.regIndex(s))
				cost := 4
				if d == 6 || s == 6 {
					cost = 8
				}
				return cost
			}
		}
	}
}

// registerBlockALU fills 0x80-0xBF: the eight ALU operations against every
// register/immediate-indirect operand.
func registerBlockALU() {
	ops := []func(*CPU, uint8){
		(*CPU).add8,
		(*CPU).adc8,
		(*CPU).sub8,
		(*CPU).sbc8,
		(*CPU).and8,
		(*CPU).xor8,
		(*CPU).or8,
		(*CPU).cp8,
	}

	for row := uint8(0); row < 8; row++ {
		for src := uint8(0); src < 8; src++ {
			opcode := 0x80 | row<<3 | src
			op, s := ops[row], src
			primaryTable[opcode] = func(c *CPU) int {
				op(c, c.regIndex(s))
				return 4 + regIndexCycles(s)
			}
		}
	}
}

func jrRel(c *CPU, offset int8) {
	c.pc = uint16(int32(c.pc) + int32(offset))
}

func registerMiscellaneous() {
	primaryTable[0x00] = func(c *CPU) int { return 4 }
	primaryTable[0x76] = opcodeHALT

	// --- 16-bit loads/incs/decs and the INC/DEC r8 + LD r,d8 block, one
	// quartet per register pair (BC/DE/HL/SP). ---
	rps := [4]rp16{rpBC, rpDE, rpHL, rpSP}
	for i, rp := range rps {
		base := uint8(i) << 4
		pair := rp
		primaryTable[base|0x01] = func(c *CPU) int { c.setRP(pair, c.fetch16()); return 12 }
		primaryTable[base|0x03] = func(c *CPU) int { c.setRP(pair, c.getRP(pair)+1); return 8 }
		primaryTable[base|0x09] = func(c *CPU) int { c.addHL(c.getRP(pair)); return 8 }
		primaryTable[base|0x0B] = func(c *CPU) int { c.setRP(pair, c.getRP(pair)-1); return 8 }
	}

	for idx := uint8(0); idx < 8; idx++ { // B C D E H L (HL) A
		opcodeInc := 0x04 | idx<<3
		opcodeDec := 0x05 | idx<<3
		opcodeLD := 0x06 | idx<<3
		r := idx
		primaryTable[opcodeInc] = func(c *CPU) int {
			c.setRegIndex(r, c.inc8(c.regIndex(r)))
			if r == 6 {
				return 12
			}
			return 4
		}
		primaryTable[opcodeDec] = func(c *CPU) int {
			c.setRegIndex(r, c.dec8(c.regIndex(r)))
			if r == 6 {
				return 12
			}
			return 4
		}
		primaryTable[opcodeLD] = func(c *CPU) int {
			v := c.fetch8()
			c.setRegIndex(r, v)
			if r == 6 {
				return 12
			}
			return 8
		}
	}

	primaryTable[0x02] = func(c *CPU) int { c.mmu.Write8(c.bc(), c.a); return 8 }
	primaryTable[0x12] = func(c *CPU) int { c.mmu.Write8(c.de(), c.a); return 8 }
	primaryTable[0x22] = func(c *CPU) int { c.mmu.Write8(c.hl(), c.a); c.setHL(c.hl() + 1); return 8 }
	primaryTable[0x32] = func(c *CPU) int { c.mmu.Write8(c.hl(), c.a); c.setHL(c.hl() - 1); return 8 }

	primaryTable[0x0A] = func(c *CPU) int { c.a = c.mmu.Read8(c.bc()); return 8 }
	primaryTable[0x1A] = func(c *CPU) int { c.a = c.mmu.Read8(c.de()); return 8 }
	primaryTable[0x2A] = func(c *CPU) int { c.a = c.mmu.Read8(c.hl()); c.setHL(c.hl() + 1); return 8 }
	primaryTable[0x3A] = func(c *CPU) int { c.a = c.mmu.Read8(c.hl()); c.setHL(c.hl() - 1); return 8 }

	primaryTable[0x07] = func(c *CPU) int { c.a = c.rlc(c.a); c.setFlag(flagZ, false); return 4 }
	primaryTable[0x0F] = func(c *CPU) int { c.a = c.rrc(c.a); c.setFlag(flagZ, false); return 4 }
	primaryTable[0x17] = func(c *CPU) int { c.a = c.rl(c.a); c.setFlag(flagZ, false); return 4 }
	primaryTable[0x1F] = func(c *CPU) int { c.a = c.rr(c.a); c.setFlag(flagZ, false); return 4 }

	primaryTable[0x08] = func(c *CPU) int { c.mmu.Write16(c.fetch16(), c.sp); return 20 }

	primaryTable[0x10] = func(c *CPU) int { c.fetch8(); c.stopped = true; return 4 }

	primaryTable[0x18] = func(c *CPU) int { offset := int8(c.fetch8()); jrRel(c, offset); return 12 }
	primaryTable[0x20] = jumpRelIf(func(c *CPU) bool { return !c.flag(flagZ) })
	primaryTable[0x28] = jumpRelIf(func(c *CPU) bool { return c.flag(flagZ) })
	primaryTable[0x30] = jumpRelIf(func(c *CPU) bool { return !c.flag(flagC) })
	primaryTable[0x38] = jumpRelIf(func(c *CPU) bool { return c.flag(flagC) })

	primaryTable[0x27] = func(c *CPU) int { c.daa(); return 4 }
	primaryTable[0x2F] = func(c *CPU) int {
		c.a = ^c.a
		c.setFlag(flagN, true)
		c.setFlag(flagH, true)
		return 4
	}
	primaryTable[0x37] = func(c *CPU) int {
		c.setFlag(flagN, false)
		c.setFlag(flagH, false)
		c.setFlag(flagC, true)
		return 4
	}
	primaryTable[0x3F] = func(c *CPU) int {
		c.setFlag(flagN, false)
		c.setFlag(flagH, false)
		c.setFlag(flagC, !c.flag(flagC))
		return 4
	}

	registerStackAndControlFlow()
}

func jumpRelIf(cond func(*CPU) bool) func(*CPU) int {
	return func(c *CPU) int {
		offset := int8(c.fetch8())
		if cond(c) {
			jrRel(c, offset)
			return 12
		}
		return 8
	}
}

func jumpIf(cond func(*CPU) bool) func(*CPU) int {
	return func(c *CPU) int {
		target := c.fetch16()
		if cond(c) {
			c.pc = target
			return 16
		}
		return 12
	}
}

func callIf(cond func(*CPU) bool) func(*CPU) int {
	return func(c *CPU) int {
		target := c.fetch16()
		if cond(c) {
			c.push(c.pc)
			c.pc = target
			return 24
		}
		return 12
	}
}

func retIf(cond func(*CPU) bool) func(*CPU) int {
	return func(c *CPU) int {
		if cond(c) {
			c.pc = c.pop()
			return 20
		}
		return 8
	}
}

func rst(target uint16) func(*CPU) int {
	return func(c *CPU) int {
		c.push(c.pc)
		c.pc = target
		return 16
	}
}

func registerStackAndControlFlow() {
	pushPop := [4]rp16{rpBC, rpDE, rpHL, rpSP} // PUSH/POP use SP-slot for AF
	for i, rp := range pushPop {
		pair := rp
		pushOp := uint8(0xC5 | i<<4)
		popOp := uint8(0xC1 | i<<4)
		if pair == rpSP {
			primaryTable[pushOp] = func(c *CPU) int { c.push(c.af()); return 16 }
			primaryTable[popOp] = func(c *CPU) int { c.setAF(c.pop()); return 12 }
			continue
		}
		primaryTable[pushOp] = func(c *CPU) int { c.push(c.getRP(pair)); return 16 }
		primaryTable[popOp] = func(c *CPU) int { c.setRP(pair, c.pop()); return 12 }
	}

	primaryTable[0xC0] = retIf(func(c *CPU) bool { return !c.flag(flagZ) })
	primaryTable[0xC8] = retIf(func(c *CPU) bool { return c.flag(flagZ) })
	primaryTable[0xD0] = retIf(func(c *CPU) bool { return !c.flag(flagC) })
	primaryTable[0xD8] = retIf(func(c *CPU) bool { return c.flag(flagC) })
	primaryTable[0xC9] = func(c *CPU) int { c.pc = c.pop(); return 16 }
	primaryTable[0xD9] = func(c *CPU) int { c.pc = c.pop(); c.ime = true; return 16 }

	primaryTable[0xC2] = jumpIf(func(c *CPU) bool { return !c.flag(flagZ) })
	primaryTable[0xCA] = jumpIf(func(c *CPU) bool { return c.flag(flagZ) })
	primaryTable[0xD2] = jumpIf(func(c *CPU) bool { return !c.flag(flagC) })
	primaryTable[0xDA] = jumpIf(func(c *CPU) bool { return c.flag(flagC) })
	primaryTable[0xC3] = func(c *CPU) int { c.pc = c.fetch16(); return 16 }
	primaryTable[0xE9] = func(c *CPU) int { c.pc = c.hl(); return 4 }

	primaryTable[0xC4] = callIf(func(c *CPU) bool { return !c.flag(flagZ) })
	primaryTable[0xCC] = callIf(func(c *CPU) bool { return c.flag(flagZ) })
	primaryTable[0xD4] = callIf(func(c *CPU) bool { return !c.flag(flagC) })
	primaryTable[0xDC] = callIf(func(c *CPU) bool { return c.flag(flagC) })
	primaryTable[0xCD] = func(c *CPU) int { target := c.fetch16(); c.push(c.pc); c.pc = target; return 24 }

	for i, target := range [8]uint16{0x00, 0x08, 0x10, 0x18, 0x20, 0x28, 0x30, 0x38} {
		primaryTable[0xC7|uint8(i)<<3] = rst(target)
	}

	primaryTable[0xC6] = func(c *CPU) int { c.add8(c.fetch8()); return 8 }
	primaryTable[0xCE] = func(c *CPU) int { c.adc8(c.fetch8()); return 8 }
	primaryTable[0xD6] = func(c *CPU) int { c.sub8(c.fetch8()); return 8 }
	primaryTable[0xDE] = func(c *CPU) int { c.sbc8(c.fetch8()); return 8 }
	primaryTable[0xE6] = func(c *CPU) int { c.and8(c.fetch8()); return 8 }
	primaryTable[0xEE] = func(c *CPU) int { c.xor8(c.fetch8()); return 8 }
	primaryTable[0xF6] = func(c *CPU) int { c.or8(c.fetch8()); return 8 }
	primaryTable[0xFE] = func(c *CPU) int { c.cp8(c.fetch8()); return 8 }

	primaryTable[0xCB] = opcodeCBPrefix

	primaryTable[0xE0] = func(c *CPU) int { c.mmu.Write8(0xFF00+uint16(c.fetch8()), c.a); return 12 }
	primaryTable[0xF0] = func(c *CPU) int { c.a = c.mmu.Read8(0xFF00 + uint16(c.fetch8())); return 12 }
	primaryTable[0xE2] = func(c *CPU) int { c.mmu.Write8(0xFF00+uint16(c.c), c.a); return 8 }
	primaryTable[0xF2] = func(c *CPU) int { c.a = c.mmu.Read8(0xFF00 + uint16(c.c)); return 8 }
	primaryTable[0xEA] = func(c *CPU) int { c.mmu.Write8(c.fetch16(), c.a); return 16 }
	primaryTable[0xFA] = func(c *CPU) int { c.a = c.mmu.Read8(c.fetch16()); return 16 }

	primaryTable[0xE8] = func(c *CPU) int { c.sp = c.addSPSigned(int8(c.fetch8())); return 16 }
	primaryTable[0xF8] = func(c *CPU) int { c.setHL(c.addSPSigned(int8(c.fetch8()))); return 12 }
	primaryTable[0xF9] = func(c *CPU) int { c.sp = c.hl(); return 8 }

	primaryTable[0xF3] = func(c *CPU) int { c.ime = false; c.eiPending = false; return 4 }
	primaryTable[0xFB] = func(c *CPU) int { c.eiPending = true; return 4 }
}

func opcodeHALT(c *CPU) int {
	c.halted = true
	return 4
}
