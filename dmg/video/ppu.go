package video

import (
	"log/slog"

	"github.com/nellousan/dmg-go/dmg/addr"
	"github.com/nellousan/dmg-go/dmg/bit"
	"github.com/nellousan/dmg-go/dmg/memory"
)

// Mode is the PPU's current scanline stage; it matches STAT bits 1-0.
type Mode uint8

const (
	ModeHBlank Mode = 0
	ModeVBlank Mode = 1
	ModeOAM    Mode = 2
	ModeVRAM   Mode = 3
)

const (
	oamCycles      = 80
	vramCycles     = 172
	hblankCycles   = 204
	scanlineCycles = oamCycles + vramCycles + hblankCycles
	frameCycles    = scanlineCycles * 154
)

const (
	statLYCInterrupt  uint8 = 6
	statOAMInterrupt  uint8 = 5
	statVBlankIRQ     uint8 = 4
	statHBlankIRQ     uint8 = 3
	statLYCEqualsLY   uint8 = 2
)

const (
	lcdcEnable         uint8 = 7
	lcdcWindowMap      uint8 = 6
	lcdcWindowEnable   uint8 = 5
	lcdcTileDataSelect uint8 = 4
	lcdcBGMap          uint8 = 3
	lcdcSpriteSize     uint8 = 2
	lcdcSpriteEnable   uint8 = 1
	lcdcBGEnable       uint8 = 0
)

// PPU drives the scanline state machine and renders background, window and
// sprite layers into a FrameBuffer, a scanline at a time.
type PPU struct {
	mmu *memory.MMU
	fb  *FrameBuffer

	mode       Mode
	line       int
	cycles     int
	vblankRun  int
	windowLine int

	scanlineDrawn bool
	bgColorIndex  [pixelCount]uint8

	frameReady bool
	lcdWasOn   bool
}

// New constructs a PPU bound to mmu, starting in VBlank as real hardware
// does immediately after boot (LY=144 style reset posture).
func New(mmu *memory.MMU) *PPU {
	p := &PPU{
		mmu:  mmu,
		fb:   NewFrameBuffer(),
		mode: ModeVBlank,
		line: 144,
	}
	p.lcdWasOn = p.lcdcBit(lcdcEnable)
	slog.Debug("ppu initialized", "lcdc", mmu.Read8(addr.LCDC))
	return p
}

// FrameBuffer returns the PPU's render target.
func (p *PPU) FrameBuffer() *FrameBuffer {
	return p.fb
}

// ConsumeFrameReady reports whether a frame completed (VBlank was just
// entered) since the last call, clearing the flag.
func (p *PPU) ConsumeFrameReady() bool {
	ready := p.frameReady
	p.frameReady = false
	return ready
}

// Tick advances the PPU state machine by cycles T-cycles, rendering
// scanlines and firing VBlank/STAT interrupts as thresholds are crossed.
// Disabling the LCD (LCDC bit 7) halts the PPU clock entirely: no mode
// transitions, no STAT/VBlank interrupts, LY pinned at 0, screen blanked.
func (p *PPU) Tick(cycles int) {
	lcdOn := p.lcdcBit(lcdcEnable)
	if !lcdOn {
		if p.lcdWasOn {
			p.setMode(ModeHBlank)
			p.setLY(0)
			p.cycles = 0
			p.fb.Clear()
		}
		p.lcdWasOn = false
		return
	}
	if !p.lcdWasOn {
		p.lcdWasOn = true
		p.cycles = 0
		p.setMode(ModeOAM)
		p.windowLine = 0
	}

	p.cycles += cycles

	switch p.mode {
	case ModeHBlank:
		p.tickHBlank()
	case ModeVBlank:
		p.tickVBlank(cycles)
	case ModeOAM:
		p.tickOAM()
	case ModeVRAM:
		p.tickVRAM()
	}
}

func (p *PPU) tickHBlank() {
	if p.cycles < hblankCycles {
		return
	}
	p.cycles -= hblankCycles
	p.setLY(p.line + 1)

	if p.line == 144 {
		p.setMode(ModeVBlank)
		p.vblankRun = p.cycles
		p.windowLine = 0
		p.frameReady = true
		p.mmu.RequestInterrupt(addr.VBlankInterrupt)
		if p.mmu.ReadBit(statVBlankIRQ, addr.STAT) {
			p.mmu.RequestInterrupt(addr.LCDSTATInterrupt)
		}
		return
	}

	p.setMode(ModeOAM)
	if p.mmu.ReadBit(statOAMInterrupt, addr.STAT) {
		p.mmu.RequestInterrupt(addr.LCDSTATInterrupt)
	}
}

func (p *PPU) tickVBlank(cycles int) {
	p.vblankRun += cycles
	if p.vblankRun >= scanlineCycles {
		p.vblankRun -= scanlineCycles
		if p.line < 153 {
			p.setLY(p.line + 1)
		} else if p.cycles >= scanlineCycles {
			p.setLY(0)
		}
	}

	if p.cycles >= 10*scanlineCycles {
		p.cycles -= 10 * scanlineCycles
		p.setMode(ModeOAM)
		if p.mmu.ReadBit(statOAMInterrupt, addr.STAT) {
			p.mmu.RequestInterrupt(addr.LCDSTATInterrupt)
		}
	}
}

func (p *PPU) tickOAM() {
	if p.cycles < oamCycles {
		return
	}
	p.cycles -= oamCycles
	p.setMode(ModeVRAM)
	p.scanlineDrawn = false
}

func (p *PPU) tickVRAM() {
	if !p.scanlineDrawn {
		if p.lcdcBit(lcdcEnable) {
			p.drawScanline()
		}
		p.scanlineDrawn = true
	}

	if p.cycles < vramCycles {
		return
	}
	p.cycles -= vramCycles
	p.setMode(ModeHBlank)
	if p.mmu.ReadBit(statHBlankIRQ, addr.STAT) {
		p.mmu.RequestInterrupt(addr.LCDSTATInterrupt)
	}
}

func (p *PPU) lcdcBit(bitIndex uint8) bool {
	return p.mmu.ReadBit(bitIndex, addr.LCDC)
}

func (p *PPU) setMode(mode Mode) {
	p.mode = mode
	stat := p.mmu.Read8(addr.STAT)
	stat = stat&0xFC | uint8(mode)
	p.mmu.Write8(addr.STAT, stat)
}

func (p *PPU) setLY(line int) {
	p.line = line
	p.mmu.Write8(addr.LY, uint8(line))
	p.compareLYC()
}

func (p *PPU) compareLYC() {
	ly := p.mmu.Read8(addr.LY)
	lyc := p.mmu.Read8(addr.LYC)
	stat := p.mmu.Read8(addr.STAT)

	if ly == lyc {
		stat = bit.Set(statLYCEqualsLY, stat)
		if bit.IsSet(statLYCInterrupt, stat) {
			p.mmu.RequestInterrupt(addr.LCDSTATInterrupt)
		}
	} else {
		stat = bit.Reset(statLYCEqualsLY, stat)
	}
	p.mmu.Write8(addr.STAT, stat)
}

func (p *PPU) drawScanline() {
	if !p.lcdcBit(lcdcEnable) {
		rowStart := p.line * Width
		for i := 0; i < Width; i++ {
			p.fb.pixels[rowStart+i] = uint32(ShadeWhite)
		}
		return
	}

	p.drawBackground()
	p.drawWindow()
	p.drawSprites()
}
