package cpu

// cbTable is the 256-entry jump table for CB-prefixed opcodes: rotate/shift,
// SWAP, and the BIT/SET/RES family, each available against any of the eight
// regIndex operands (B C D E H L (HL) A).
var cbTable [256]func(*CPU) int

func init() {
	rotateOps := []func(*CPU, uint8) uint8{
		(*CPU).rlc,
		(*CPU).rrc,
		(*CPU).rl,
		(*CPU).rr,
		(*CPU).sla,
		(*CPU).sra,
		(*CPU).swap,
		(*CPU).srl,
	}

	for row := uint8(0); row < 8; row++ {
		for operand := uint8(0); operand < 8; operand++ {
			opcode := row<<3 | operand
			op, r := rotateOps[row], operand
			cbTable[opcode] = func(c *CPU) int {
				c.setRegIndex(r, op(c, c.regIndex(r)))
				if r == 6 {
					return 16
				}
				return 8
			}
		}
	}

	for bitIndex := uint8(0); bitIndex < 8; bitIndex++ {
		for operand := uint8(0); operand < 8; operand++ {
			bi, r := bitIndex, operand

			bitOp := uint16(0x40) | uint16(bi)<<3 | uint16(r)
			cbTable[bitOp] = func(c *CPU) int {
				c.bit(bi, c.regIndex(r))
				if r == 6 {
					return 12
				}
				return 8
			}

			resOp := uint16(0x80) | uint16(bi)<<3 | uint16(r)
			cbTable[resOp] = func(c *CPU) int {
				c.setRegIndex(r, c.regIndex(r)&^(1<<bi))
				if r == 6 {
					return 16
				}
				return 8
			}

			setOp := uint16(0xC0) | uint16(bi)<<3 | uint16(r)
			cbTable[setOp] = func(c *CPU) int {
				c.setRegIndex(r, c.regIndex(r)|(1<<bi))
				if r == 6 {
					return 16
				}
				return 8
			}
		}
	}
}

// opcodeCBPrefix fetches the CB-prefixed sub-opcode and dispatches it; the
// costs in cbTable already account for both the prefix byte and the
// sub-opcode byte, so nothing further is added here.
func opcodeCBPrefix(c *CPU) int {
	opcode := c.fetch8()
	return cbTable[opcode](c)
}
