package video

import (
	"sort"

	"github.com/nellousan/dmg-go/dmg/addr"
	"github.com/nellousan/dmg-go/dmg/bit"
)

func (p *PPU) tileDataBase() (base uint16, signed bool) {
	if p.lcdcBit(lcdcTileDataSelect) {
		return addr.TileData0, false
	}
	return addr.TileData2, true
}

func (p *PPU) tileAddress(base uint16, signed bool, tileIndex uint8, rowOffset int) uint16 {
	if signed {
		return uint16(int(base) + int(int8(tileIndex))*16 + rowOffset)
	}
	return base + uint16(tileIndex)*16 + uint16(rowOffset)
}

func colorIndex(low, high uint8, pixel uint8) uint8 {
	idx := uint8(0)
	if bit.IsSet(pixel, low) {
		idx |= 1
	}
	if bit.IsSet(pixel, high) {
		idx |= 2
	}
	return idx
}

func (p *PPU) paletteShade(paletteAddr uint16, colorIdx uint8) Shade {
	palette := p.mmu.Read8(paletteAddr)
	return shadeFromIndex((palette >> (colorIdx * 2)) & 0x03)
}

func (p *PPU) drawBackground() {
	rowStart := p.line * Width

	if !p.lcdcBit(lcdcBGEnable) {
		shade := p.paletteShade(addr.BGP, 0)
		for x := 0; x < Width; x++ {
			p.fb.pixels[rowStart+x] = uint32(shade)
			p.bgColorIndex[rowStart+x] = 0
		}
		return
	}

	tileDataAddr, signed := p.tileDataBase()
	tileMapAddr := addr.TileMap1
	if !p.lcdcBit(lcdcBGMap) {
		tileMapAddr = addr.TileMap0
	}

	scx := p.mmu.Read8(addr.SCX)
	scy := p.mmu.Read8(addr.SCY)
	scrolledY := (p.line + int(scy)) & 0xFF
	tileRow := (scrolledY / 8) * 32
	rowOffset := (scrolledY % 8) * 2

	for x := 0; x < Width; x++ {
		mapX := (x + int(scx)) & 0xFF
		tileCol := mapX / 8
		pixelCol := mapX % 8

		tileIndex := p.mmu.Read8(tileMapAddr + uint16(tileRow+tileCol))
		tileAddr := p.tileAddress(tileDataAddr, signed, tileIndex, rowOffset)

		low := p.mmu.Read8(tileAddr)
		high := p.mmu.Read8(tileAddr + 1)
		colorIdx := colorIndex(low, high, uint8(7-pixelCol))

		pos := rowStart + x
		p.fb.pixels[pos] = uint32(p.paletteShade(addr.BGP, colorIdx))
		p.bgColorIndex[pos] = colorIdx
	}
}

func (p *PPU) drawWindow() {
	if p.windowLine > 143 || !p.lcdcBit(lcdcWindowEnable) {
		return
	}

	wx := int(p.mmu.Read8(addr.WX)) - 7
	wy := p.mmu.Read8(addr.WY)

	if wx >= Width || int(wy) > p.line {
		return
	}

	tileDataAddr, signed := p.tileDataBase()
	tileMapAddr := addr.TileMap1
	if !p.lcdcBit(lcdcWindowMap) {
		tileMapAddr = addr.TileMap0
	}

	tileRow := (p.windowLine / 8) * 32
	rowOffset := (p.windowLine % 8) * 2
	rowStart := p.line * Width

	for col := 0; col <= Width/8; col++ {
		tileIndex := p.mmu.Read8(tileMapAddr + uint16(tileRow+col))
		tileAddr := p.tileAddress(tileDataAddr, signed, tileIndex, rowOffset)
		low := p.mmu.Read8(tileAddr)
		high := p.mmu.Read8(tileAddr + 1)

		for px := 0; px < 8; px++ {
			screenX := wx + col*8 + px
			if screenX < wx || screenX >= Width {
				continue
			}
			colorIdx := colorIndex(low, high, uint8(7-px))
			pos := rowStart + screenX
			p.fb.pixels[pos] = uint32(p.paletteShade(addr.BGP, colorIdx))
			p.bgColorIndex[pos] = colorIdx
		}
	}

	p.windowLine++
}

const spritesPerScanline = 10

func (p *PPU) drawSprites() {
	if !p.lcdcBit(lcdcSpriteEnable) {
		return
	}

	height := 8
	if p.lcdcBit(lcdcSpriteSize) {
		height = 16
	}

	var visible []int
	for i := 0; i < 40; i++ {
		oamAddr := addr.OAMStart + uint16(i*4)
		y := int(p.mmu.Read8(oamAddr)) - 16
		if y > p.line || y+height <= p.line {
			continue
		}
		visible = append(visible, i)
		if len(visible) >= spritesPerScanline {
			break
		}
	}

	// DMG sprite-to-sprite priority: lowest X wins, ties broken by lower OAM
	// index. Draw lowest priority first and highest priority last, so an
	// opaque pixel from a higher-priority sprite overwrites a lower-priority
	// sprite underneath it, while a transparent pixel (colorIdx == 0) leaves
	// that lower-priority sprite's pixel showing through instead of erasing
	// it.
	sort.Slice(visible, func(a, b int) bool {
		i, j := visible[a], visible[b]
		xi := int(p.mmu.Read8(addr.OAMStart + uint16(i*4+1)))
		xj := int(p.mmu.Read8(addr.OAMStart + uint16(j*4+1)))
		if xi != xj {
			return xi > xj
		}
		return i > j
	})

	rowStart := p.line * Width
	for _, i := range visible {
		oamAddr := addr.OAMStart + uint16(i*4)
		y := int(p.mmu.Read8(oamAddr)) - 16
		x := int(p.mmu.Read8(oamAddr+1)) - 8
		tile := p.mmu.Read8(oamAddr + 2)
		flags := p.mmu.Read8(oamAddr + 3)

		flipX := bit.IsSet(5, flags)
		flipY := bit.IsSet(6, flags)
		aboveBG := !bit.IsSet(7, flags)
		paletteAddr := addr.OBP0
		if bit.IsSet(4, flags) {
			paletteAddr = addr.OBP1
		}

		row := p.line - y
		if flipY {
			row = height - 1 - row
		}

		tileNumber := tile
		if height == 16 {
			tileNumber &= 0xFE
		}
		rowOffset := row * 2
		extra := uint16(0)
		if height == 16 && row >= 8 {
			rowOffset = (row - 8) * 2
			extra = 16
		}

		tileAddr := addr.TileData0 + uint16(tileNumber)*16 + extra + uint16(rowOffset)
		low := p.mmu.Read8(tileAddr)
		high := p.mmu.Read8(tileAddr + 1)

		for px := 0; px < 8; px++ {
			screenX := x + px
			if screenX < 0 || screenX >= Width {
				continue
			}

			bitPos := uint8(7 - px)
			if flipX {
				bitPos = uint8(px)
			}
			colorIdx := colorIndex(low, high, bitPos)
			if colorIdx == 0 {
				continue
			}

			pos := rowStart + screenX
			if !aboveBG && p.bgColorIndex[pos] != 0 {
				continue
			}
			p.fb.pixels[pos] = uint32(p.paletteShade(paletteAddr, colorIdx))
		}
	}
}
