// Package memory implements the DMG's 64 KiB address space: the region
// router (MMU), cartridge/MBC banking, the timer and the joypad.
package memory

import (
	"fmt"
	"log/slog"

	"github.com/nellousan/dmg-go/dmg/addr"
	"github.com/nellousan/dmg-go/dmg/bit"
)

type region uint8

const (
	regionROM region = iota
	regionVRAM
	regionExtRAM
	regionWRAM
	regionEcho
	regionOAM
	regionUnused
	regionIO
	regionHRAM
)

// bootROMSize is the length of the DMG boot sequence overlaid at 0000-00FF
// until the game writes a nonzero value to FF50.
const bootROMSize = 0x100

// MMU routes every CPU/PPU memory access to the region that owns it:
// cartridge ROM/RAM, VRAM, WRAM, OAM, or one of the memory-mapped I/O
// registers (LCD, timer, joypad, sound-stub, interrupt flags).
type MMU struct {
	cart *Cartridge

	vram [0x2000]uint8
	wram [0x2000]uint8
	oam  [0xA0]uint8
	io   [0x80]uint8
	hram [0x7F]uint8
	ie   uint8

	regionMap [256]region

	timer   *Timer
	joypad  *Joypad
	apu     *apuStub

	bootROM     [bootROMSize]byte
	bootMapped  bool
	hasBootROM  bool
}

// New constructs an MMU with no cartridge inserted; reads from ROM/external
// RAM regions return 0xFF until LoadCartridge is called.
func New() *MMU {
	m := &MMU{
		timer:  NewTimer(),
		joypad: NewJoypad(),
		apu:    newAPUStub(),
	}
	m.timer.RequestInterrupt = m.RequestInterrupt
	initRegionMap(&m.regionMap)
	m.io[addr.P1-0xFF00] = 0xCF
	return m
}

func initRegionMap(regionMap *[256]region) {
	for i := 0x00; i <= 0x7F; i++ {
		regionMap[i] = regionROM
	}
	for i := 0x80; i <= 0x9F; i++ {
		regionMap[i] = regionVRAM
	}
	for i := 0xA0; i <= 0xBF; i++ {
		regionMap[i] = regionExtRAM
	}
	for i := 0xC0; i <= 0xDF; i++ {
		regionMap[i] = regionWRAM
	}
	for i := 0xE0; i <= 0xFD; i++ {
		regionMap[i] = regionEcho
	}
	regionMap[0xFE] = regionOAM
	regionMap[0xFF] = regionIO
}

// LoadCartridge inserts a parsed Cartridge, replacing any previous one.
func (m *MMU) LoadCartridge(cart *Cartridge) {
	m.cart = cart
}

// LoadBootROM installs a boot sequence to be overlaid at 0000-00FF until the
// game disables it by writing to FF50. image must be exactly 256 bytes.
func (m *MMU) LoadBootROM(image []byte) error {
	if len(image) != bootROMSize {
		return fmt.Errorf("memory: boot ROM must be %d bytes, got %d", bootROMSize, len(image))
	}
	copy(m.bootROM[:], image)
	m.hasBootROM = true
	m.bootMapped = true
	return nil
}

// Tick advances the timer (and, in future, any other per-cycle I/O).
func (m *MMU) Tick(cycles int) {
	m.timer.Tick(cycles)
}

// RequestInterrupt sets the given interrupt's bit in IF (FF0F).
func (m *MMU) RequestInterrupt(interrupt addr.Interrupt) {
	flags := m.Read8(addr.IF)
	m.Write8(addr.IF, bit.Set(interrupt.Bit(), flags))
}

// Joypad exposes the Joypad controller for host input delivery.
func (m *MMU) Joypad() *Joypad {
	return m.joypad
}

// PressButton marks key pressed and, if that's a 1->0 transition, requests
// the joypad interrupt (real hardware fires it on falling edges only).
func (m *MMU) PressButton(key Button) {
	before := m.joypad.Read()
	m.joypad.Press(key)
	after := m.joypad.Read()
	if before&^after != 0 {
		m.RequestInterrupt(addr.JoypadInterrupt)
	}
}

// ReleaseButton marks key released.
func (m *MMU) ReleaseButton(key Button) {
	m.joypad.Release(key)
}

// ReadBit reports whether the given bit of the byte at address is set.
func (m *MMU) ReadBit(index uint8, address uint16) bool {
	return bit.IsSet(index, m.Read8(address))
}

// SetBit sets or clears the given bit of the byte at address.
func (m *MMU) SetBit(index uint8, address uint16, set bool) {
	m.Write8(address, bit.SetTo(index, m.Read8(address), set))
}

// Read8 reads a byte from anywhere in the 64 KiB address space.
func (m *MMU) Read8(address uint16) uint8 {
	if m.bootMapped && address < bootROMSize {
		return m.bootROM[address]
	}

	switch m.regionMap[address>>8] {
	case regionROM, regionExtRAM:
		if m.cart == nil {
			slog.Warn("read from cartridge region with no cartridge loaded", "addr", fmt.Sprintf("0x%04X", address))
			return 0xFF
		}
		return m.cart.Read8(address)
	case regionVRAM:
		return m.vram[address-0x8000]
	case regionWRAM:
		return m.wram[address-0xC000]
	case regionEcho:
		return m.wram[address-0xE000]
	case regionOAM:
		if address <= addr.OAMEnd {
			return m.oam[address-addr.OAMStart]
		}
		return 0xFF
	case regionIO:
		return m.readIO(address)
	default:
		panic(fmt.Sprintf("memory: read from unmapped address 0x%04X", address))
	}
}

// Read16 reads a little-endian 16-bit value.
func (m *MMU) Read16(address uint16) uint16 {
	return bit.Combine(m.Read8(address+1), m.Read8(address))
}

// Write8 writes a byte anywhere in the 64 KiB address space.
func (m *MMU) Write8(address uint16, value uint8) {
	switch m.regionMap[address>>8] {
	case regionROM:
		if m.cart == nil {
			slog.Warn("write to ROM region with no cartridge loaded", "addr", fmt.Sprintf("0x%04X", address))
			return
		}
		m.cart.Write8(address, value)
	case regionExtRAM:
		if m.cart == nil {
			return
		}
		m.cart.Write8(address, value)
	case regionVRAM:
		m.vram[address-0x8000] = value
	case regionWRAM:
		m.wram[address-0xC000] = value
	case regionEcho:
		m.wram[address-0xE000] = value
	case regionOAM:
		if address <= addr.OAMEnd {
			m.oam[address-addr.OAMStart] = value
		}
	case regionIO:
		m.writeIO(address, value)
	default:
		panic(fmt.Sprintf("memory: write to unmapped address 0x%04X", address))
	}
}

// Write16 writes a little-endian 16-bit value.
func (m *MMU) Write16(address, value uint16) {
	m.Write8(address, bit.Low(value))
	m.Write8(address+1, bit.High(value))
}

func (m *MMU) readIO(address uint16) uint8 {
	switch {
	case address == addr.IE:
		return m.ie
	case address == addr.P1:
		return 0xC0 | m.joypad.Read() | (m.io[address-0xFF00] & 0x30)
	case address == addr.DIV, address == addr.TIMA, address == addr.TMA, address == addr.TAC:
		return m.timer.Read8(address)
	case address == addr.IF:
		return m.io[address-0xFF00] | 0xE0
	case address >= addr.AudioStart && address <= addr.AudioEnd:
		return m.apu.Read8(address)
	case address >= 0xFF80 && address <= 0xFFFE:
		return m.hram[address-0xFF80]
	default:
		return m.io[address-0xFF00]
	}
}

func (m *MMU) writeIO(address uint16, value uint8) {
	switch {
	case address == addr.IE:
		m.ie = value
	case address == addr.P1:
		m.joypad.Write(value)
		m.io[address-0xFF00] = value & 0x30
	case address == addr.DIV, address == addr.TIMA, address == addr.TMA, address == addr.TAC:
		m.timer.Write8(address, value)
	case address == addr.IF:
		m.io[address-0xFF00] = value | 0xE0
	case address == addr.DMA:
		m.runOAMDMA(value)
		m.io[address-0xFF00] = value
	case address == addr.BOOT:
		if value != 0 {
			m.bootMapped = false
		}
	case address >= addr.AudioStart && address <= addr.AudioEnd:
		m.apu.Write8(address, value)
	case address >= 0xFF80 && address <= 0xFFFE:
		m.hram[address-0xFF80] = value
	default:
		m.io[address-0xFF00] = value
	}
}

// DumpMemory snapshots the full 64 KiB address space for host-side inspection
// (debugger memory views). Reads go through Read8 so banking and I/O side
// effects of a live system are reflected faithfully.
func (m *MMU) DumpMemory() [0x10000]byte {
	var dump [0x10000]byte
	for address := 0; address < 0x10000; address++ {
		dump[address] = m.Read8(uint16(address))
	}
	return dump
}

// runOAMDMA performs the instantaneous 160-byte copy from source<<8 into OAM.
// Real hardware takes 160 M-cycles and locks out non-HRAM bus access while
// it runs; this core applies the copy immediately (documented inaccuracy).
func (m *MMU) runOAMDMA(value uint8) {
	source := uint16(value) << 8
	for i := uint16(0); i < 160; i++ {
		m.oam[i] = m.Read8(source + i)
	}
}
