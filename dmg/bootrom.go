package dmg

// DefaultBootROM synthesizes a minimal 256-byte boot image: it initializes
// the stack pointer, unmaps itself from 0000-00FF by writing to the boot
// disable register, and jumps straight to the cartridge entry point at
// 0x0100. Nintendo's real boot ROM additionally scrolls the logo and
// verifies its checksum against the cartridge header; that sequence is
// copyrighted and not reproduced here; it has no effect on CPU, PPU, or MMU
// behavior once execution reaches 0x0100, which is the only contract
// NewMachine relies on.
func DefaultBootROM() []byte {
	image := make([]byte, 0x100)

	program := []byte{
		0x31, 0xFE, 0xFF, // LD SP,0xFFFE
		0x3E, 0x01, //       LD A,0x01
		0xE0, 0x50, //       LDH (0xFF50),A  ; unmap boot ROM
		0xC3, 0x00, 0x01, // JP 0x0100
	}
	copy(image, program)

	return image
}
