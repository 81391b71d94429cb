package ppu

// renderScanline synthesizes one row of the framebuffer at the current LY,
// compositing background, window and sprite layers. Raw 2-bit color indices
// are computed first so sprite transparency and BG-priority can consult
// them before the BGP/OBPx palettes are applied (spec.md §4.5).
func (p *PPU) renderScanline() {
	if p.ly >= ScreenH {
		return
	}

	var bgIndex [ScreenW]byte
	windowDrawn := false

	if p.lcdc&0x01 != 0 {
		p.renderBackground(&bgIndex)
	}
	if p.lcdc&0x20 != 0 && p.wy <= p.ly {
		windowDrawn = p.renderWindow(&bgIndex)
	}

	shade := [ScreenW]byte{}
	for x := 0; x < ScreenW; x++ {
		shade[x] = applyPalette(p.bgp, bgIndex[x])
	}

	if p.lcdc&0x02 != 0 {
		p.renderSprites(&shade, &bgIndex)
	}

	row := int(p.ly) * ScreenW
	copy(p.fb[row:row+ScreenW], shade[:])

	if windowDrawn {
		p.windowLine++
	}
}

// applyPalette maps a raw 2-bit color index through a palette register to
// produce a final 0-3 shade.
func applyPalette(palette byte, colorIndex byte) byte {
	return (palette >> (colorIndex * 2)) & 0x03
}

func (p *PPU) bgTileDataBase() uint16 {
	if p.lcdc&0x10 != 0 {
		return 0x8000
	}
	return 0x8800 // tile indices here are signed, based at 0x9000
}

func (p *PPU) tileAddr(base uint16, tileIndex byte, row int) uint16 {
	if base == 0x8000 {
		return base + uint16(tileIndex)*16 + uint16(row)*2
	}
	signed := int8(tileIndex)
	return 0x9000 + uint16(int(signed)*16+row*2)
}

func (p *PPU) renderBackground(out *[ScreenW]byte) {
	tileMapBase := uint16(0x9800)
	if p.lcdc&0x08 != 0 {
		tileMapBase = 0x9C00
	}
	dataBase := p.bgTileDataBase()

	y := int(p.scy) + int(p.ly)
	tileRow := (y / 8) % 32
	rowInTile := y % 8

	for x := 0; x < ScreenW; x++ {
		sx := (int(p.scx) + x) & 0xFF
		tileCol := (sx / 8) % 32
		colInTile := sx % 8

		tileIndex := p.vram[tileMapBase+uint16(tileRow*32+tileCol)-0x8000]
		addr := p.tileAddr(dataBase, tileIndex, rowInTile)
		lo := p.vram[addr-0x8000]
		hi := p.vram[addr+1-0x8000]

		bit := uint(7 - colInTile)
		out[x] = (((hi >> bit) & 1) << 1) | ((lo >> bit) & 1)
	}
}

// renderWindow overlays the window layer for the current line, if visible,
// returning whether any pixel was actually drawn (gating the internal
// window-line counter).
func (p *PPU) renderWindow(out *[ScreenW]byte) bool {
	startX := int(p.wx) - 7
	if startX >= ScreenW {
		return false
	}

	tileMapBase := uint16(0x9800)
	if p.lcdc&0x40 != 0 {
		tileMapBase = 0x9C00
	}
	dataBase := p.bgTileDataBase()

	wy := p.windowLine
	tileRow := (wy / 8) % 32
	rowInTile := wy % 8

	drawn := false
	for x := 0; x < ScreenW; x++ {
		wx := x - startX
		if wx < 0 {
			continue
		}
		tileCol := (wx / 8) % 32
		colInTile := wx % 8

		tileIndex := p.vram[tileMapBase+uint16(tileRow*32+tileCol)-0x8000]
		addr := p.tileAddr(dataBase, tileIndex, rowInTile)
		lo := p.vram[addr-0x8000]
		hi := p.vram[addr+1-0x8000]

		bit := uint(7 - colInTile)
		out[x] = (((hi >> bit) & 1) << 1) | ((lo >> bit) & 1)
		drawn = true
	}
	return drawn
}

type spriteEntry struct {
	y, x, tile, attr byte
	oamIndex         int
}

// renderSprites scans OAM for up to 10 sprites intersecting the current
// line and composites them over shade, consulting bgIndex for transparency
// and BG-priority decisions (spec.md §4.5, §4.8).
func (p *PPU) renderSprites(shade *[ScreenW]byte, bgIndex *[ScreenW]byte) {
	tall := p.lcdc&0x04 != 0
	height := 8
	if tall {
		height = 16
	}

	var selected []spriteEntry
	for i := 0; i < 40 && len(selected) < 10; i++ {
		base := i * 4
		sy := int(p.oam[base]) - 16
		if int(p.ly) < sy || int(p.ly) >= sy+height {
			continue
		}
		selected = append(selected, spriteEntry{
			y:        p.oam[base],
			x:        p.oam[base+1],
			tile:     p.oam[base+2],
			attr:     p.oam[base+3],
			oamIndex: i,
		})
	}

	// spec.md: ties broken by lower X first, then lower OAM index. Since
	// selected is already in ascending OAM-index order, a stable sort on X
	// preserves index order among equal X values.
	for i := 1; i < len(selected); i++ {
		for j := i; j > 0 && selected[j].x < selected[j-1].x; j-- {
			selected[j], selected[j-1] = selected[j-1], selected[j]
		}
	}

	// Draw back-to-front so the highest-priority sprite (lowest X, then
	// lowest OAM index) is painted last and wins any overlapping pixel.
	for i := len(selected) - 1; i >= 0; i-- {
		s := selected[i]
		sy := int(s.y) - 16
		sx := int(s.x) - 8
		row := int(p.ly) - sy
		if s.attr&0x40 != 0 { // Y flip
			row = height - 1 - row
		}

		tile := s.tile
		if tall {
			tile &^= 0x01
			if row >= 8 {
				tile |= 0x01
				row -= 8
			}
		}

		addr := 0x8000 + uint16(tile)*16 + uint16(row)*2
		lo := p.vram[addr-0x8000]
		hi := p.vram[addr+1-0x8000]

		palette := p.obp0
		if s.attr&0x10 != 0 {
			palette = p.obp1
		}
		bgPriority := s.attr&0x80 != 0
		xFlip := s.attr&0x20 != 0

		for col := 0; col < 8; col++ {
			screenX := sx + col
			if screenX < 0 || screenX >= ScreenW {
				continue
			}
			bit := uint(7 - col)
			if xFlip {
				bit = uint(col)
			}
			colorIndex := (((hi >> bit) & 1) << 1) | ((lo >> bit) & 1)
			if colorIndex == 0 {
				continue
			}
			if bgPriority && bgIndex[screenX] != 0 {
				continue
			}
			shade[screenX] = applyPalette(palette, colorIndex)
		}
	}
}
