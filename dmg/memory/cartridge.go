package memory

import (
	"errors"
	"fmt"
	"strings"
)

// Header byte offsets, see Pan Docs "The Cartridge Header".
const (
	titleAddress         = 0x0134
	titleLength          = 16
	cartTypeAddress      = 0x0147
	romSizeAddress       = 0x0148
	ramSizeAddress       = 0x0149
	minRomLength         = 0x8000
)

// Cartridge type bytes this core understands. Everything else is
// ErrUnimplementedMBC.
const (
	cartTypeROMOnly  = 0x00
	cartTypeMBC1     = 0x01
	cartTypeMBC1RAM  = 0x02
	cartTypeMBC1RAMB = 0x03
)

var (
	// ErrInvalidRomSize is returned when the ROM image is shorter than the
	// minimum 32 KiB (0x8000) a DMG cartridge must have.
	ErrInvalidRomSize = errors.New("memory: ROM image shorter than 0x8000 bytes")
	// ErrInvalidHeader is returned when the RAM-size header byte isn't one of
	// the recognized values.
	ErrInvalidHeader = errors.New("memory: unrecognized RAM size byte in header")
	// ErrUnimplementedMBC is returned for any cartridge-type byte outside
	// {0x00, 0x01, 0x02, 0x03} (no-MBC, MBC1, MBC1+RAM, MBC1+RAM+Battery).
	ErrUnimplementedMBC = errors.New("memory: unsupported MBC type byte")
)

// ramBankCounts maps the RAM-size header byte to a bank count (each bank is
// 8 KiB). 0x01 is a legacy "2 KiB" code some docs list but no licensed DMG
// cartridge uses it with MBC1; it is rejected like any other unknown byte.
var ramBankCounts = map[byte]int{
	0x00: 0,
	0x02: 1,
	0x03: 4,
	0x04: 16,
	0x05: 8,
}

// Cartridge owns the ROM image and any external RAM, and exclusively
// services reads/writes in [0000,7FFF] and [A000,BFFF].
type Cartridge struct {
	rom  []byte
	mbc  mbc
	Info Header
}

// Header holds the cartridge metadata the debugger UI likes to display.
// It is informational only; the core never branches on the title.
type Header struct {
	Title        string
	CartType     byte
	RomSizeCode  byte
	RamSizeCode  byte
	RomBankCount int
	RamBankCount int
	HasBattery   bool
}

// NewCartridge parses rom and constructs the Cartridge together with the
// appropriate bank-switching controller.
func NewCartridge(rom []byte) (*Cartridge, error) {
	if len(rom) < minRomLength {
		return nil, ErrInvalidRomSize
	}

	cartType := rom[cartTypeAddress]
	romSizeCode := rom[romSizeAddress]
	ramSizeCode := rom[ramSizeAddress]

	ramBanks, ok := ramBankCounts[ramSizeCode]
	if !ok {
		return nil, ErrInvalidHeader
	}

	romBankCount := 1 << (uint(romSizeCode) + 1)

	title := cleanTitle(rom[titleAddress : titleAddress+titleLength])

	header := Header{
		Title:        title,
		CartType:     cartType,
		RomSizeCode:  romSizeCode,
		RamSizeCode:  ramSizeCode,
		RomBankCount: romBankCount,
		RamBankCount: ramBanks,
		HasBattery:   cartType == cartTypeMBC1RAMB,
	}

	var controller mbc
	switch cartType {
	case cartTypeROMOnly:
		controller = newNoMBC(rom)
	case cartTypeMBC1, cartTypeMBC1RAM, cartTypeMBC1RAMB:
		controller = newMBC1(rom, romBankCount, ramBanks)
	default:
		return nil, fmt.Errorf("%w: 0x%02X", ErrUnimplementedMBC, cartType)
	}

	return &Cartridge{rom: rom, mbc: controller, Info: header}, nil
}

// Read8 reads a byte from ROM (0000-7FFF) or external RAM (A000-BFFF).
func (c *Cartridge) Read8(address uint16) uint8 {
	return c.mbc.Read(address)
}

// Write8 writes a byte to the bank-control region or external RAM.
func (c *Cartridge) Write8(address uint16, value uint8) {
	c.mbc.Write(address, value)
}

// DumpROM returns a read-only view of the raw ROM image, for the host
// debugger/disassembler.
func (c *Cartridge) DumpROM() []byte {
	return c.rom
}

func cleanTitle(raw []byte) string {
	b := make([]byte, 0, len(raw))
	for _, c := range raw {
		if c == 0 {
			break
		}
		b = append(b, c)
	}
	return strings.TrimSpace(string(b))
}

// mbc is the bank-switching contract every cartridge controller satisfies.
type mbc interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}
