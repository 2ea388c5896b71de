package memory

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func makeROM(size int, cartType, romSizeCode, ramSizeCode byte) []byte {
	rom := make([]byte, size)
	rom[cartTypeAddress] = cartType
	rom[romSizeAddress] = romSizeCode
	rom[ramSizeAddress] = ramSizeCode
	copy(rom[titleAddress:], []byte("TESTROM"))
	return rom
}

func TestNewCartridgeRejectsShortROM(t *testing.T) {
	_, err := NewCartridge(make([]byte, 0x1000))
	require.ErrorIs(t, err, ErrInvalidRomSize)
}

func TestNewCartridgeRejectsUnknownMBC(t *testing.T) {
	rom := makeROM(0x8000, 0x0F, 0x00, 0x00)
	_, err := NewCartridge(rom)
	require.ErrorIs(t, err, ErrUnimplementedMBC)
}

func TestNewCartridgeRejectsBadRAMHeader(t *testing.T) {
	rom := makeROM(0x8000, cartTypeROMOnly, 0x00, 0x07)
	_, err := NewCartridge(rom)
	require.ErrorIs(t, err, ErrInvalidHeader)
}

func TestNewCartridgeNoMBC(t *testing.T) {
	rom := makeROM(0x8000, cartTypeROMOnly, 0x00, 0x00)
	cart, err := NewCartridge(rom)
	require.NoError(t, err)
	require.Equal(t, "TESTROM", cart.Info.Title)
	require.Equal(t, byte(0x00), cart.Read8(0x0000))
}

func TestNewCartridgeMBC1BankSwitch(t *testing.T) {
	rom := makeROM(0x10000, cartTypeMBC1, 0x01, 0x00) // 4 banks, no RAM
	for bank := 0; bank < 4; bank++ {
		for i := 0; i < 0x4000; i++ {
			rom[bank*0x4000+i] = byte(bank)
		}
	}
	copy(rom[titleAddress:], []byte("TESTROM"))

	cart, err := NewCartridge(rom)
	require.NoError(t, err)

	require.Equal(t, byte(1), cart.Read8(0x4000))

	cart.Write8(0x2000, 0x03)
	require.Equal(t, byte(3), cart.Read8(0x4000))
}
