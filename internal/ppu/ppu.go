// Package ppu implements the DMG pixel-processing unit: the 4-mode
// scanline state machine, VRAM/OAM storage, and the background, window and
// sprite compositors that synthesize one 160x144 framebuffer per frame.
package ppu

import "github.com/kellanburket/dmgemu/internal/interrupt"

// Mode is the PPU's current STAT mode (bits 1..0 of $FF41).
type Mode byte

const (
	HBlank Mode = 0
	VBlank Mode = 1
	OAMScan Mode = 2
	Drawing Mode = 3
)

const (
	ScreenW = 160
	ScreenH = 144

	dotsOAMScan = 80
	dotsDrawing = 172
	dotsPerLine = 456
	linesPerFrame = 154
)

// PPU owns VRAM, OAM, the LCD control/status registers, and the
// color-indexed framebuffer.
type PPU struct {
	vram [0x2000]byte // $8000-$9FFF
	oam  [0xA0]byte   // $FE00-$FE9F

	lcdc byte // $FF40
	stat byte // $FF41 (bits 6..3 enables, bit2 coincidence, bits1..0 mode)
	scy  byte // $FF42
	scx  byte // $FF43
	ly   byte // $FF44
	lyc  byte // $FF45
	bgp  byte // $FF47
	obp0 byte // $FF48
	obp1 byte // $FF49
	wy   byte // $FF4A
	wx   byte // $FF4B

	dot        int
	windowLine int // internal line counter for the window layer

	fb [ScreenW * ScreenH]byte // post-palette shade indices 0..3

	irq *interrupt.Controller
}

func New(ic *interrupt.Controller) *PPU {
	return &PPU{irq: ic}
}

func (p *PPU) Mode() Mode { return Mode(p.stat & 0x03) }
func (p *PPU) LY() byte   { return p.ly }
func (p *PPU) enabled() bool { return p.lcdc&0x80 != 0 }

// Framebuffer returns the current 160x144 shade-index buffer, row-major,
// top-left first. The slice aliases PPU-owned storage; callers that need a
// stable snapshot should copy it.
func (p *PPU) Framebuffer() *[ScreenW * ScreenH]byte { return &p.fb }

// --- CPU-facing VRAM/OAM access, mode-gated per spec.md §9 ---

func (p *PPU) ReadVRAM(addr uint16) byte {
	if p.Mode() == Drawing {
		return 0xFF
	}
	return p.vram[addr-0x8000]
}

func (p *PPU) WriteVRAM(addr uint16, v byte) {
	if p.Mode() == Drawing {
		return
	}
	p.vram[addr-0x8000] = v
}

func (p *PPU) ReadOAM(addr uint16) byte {
	m := p.Mode()
	if m == OAMScan || m == Drawing {
		return 0xFF
	}
	return p.oam[addr-0xFE00]
}

func (p *PPU) WriteOAM(addr uint16, v byte) {
	m := p.Mode()
	if m == OAMScan || m == Drawing {
		return
	}
	p.oam[addr-0xFE00] = v
}

// WriteOAMRaw bypasses mode gating; used for OAM DMA, which the real
// hardware lets proceed regardless of PPU mode.
func (p *PPU) WriteOAMRaw(addr uint16, v byte) { p.oam[addr-0xFE00] = v }

// --- I/O register access ---

func (p *PPU) ReadLCDC() byte { return p.lcdc }

func (p *PPU) WriteLCDC(v byte) {
	prev := p.lcdc
	p.lcdc = v
	if prev&0x80 != 0 && v&0x80 == 0 {
		p.ly = 0
		p.dot = 0
		p.windowLine = 0
		p.setMode(HBlank)
		p.updateCoincidence()
	} else if prev&0x80 == 0 && v&0x80 != 0 {
		p.ly = 0
		p.dot = 0
		p.windowLine = 0
		p.setMode(OAMScan)
		p.updateCoincidence()
	}
}

// ReadSTAT returns $FF41 with bit 7 forced to 1, matching real hardware.
func (p *PPU) ReadSTAT() byte { return 0x80 | p.stat }

// WriteSTAT only ever changes the interrupt-source enable bits (6..3); bits
// 2..0 are PPU-owned (spec.md §9 — the "overwrite all bits" bug is not
// reproduced).
func (p *PPU) WriteSTAT(v byte) {
	p.stat = (p.stat & 0x07) | (v & 0x78)
}

func (p *PPU) ReadSCY() byte   { return p.scy }
func (p *PPU) WriteSCY(v byte) { p.scy = v }
func (p *PPU) ReadSCX() byte   { return p.scx }
func (p *PPU) WriteSCX(v byte) { p.scx = v }

// ReadLY returns 0 while the LCD is disabled.
func (p *PPU) ReadLY() byte {
	if !p.enabled() {
		return 0
	}
	return p.ly
}

// WriteLY resets the scanline counter: CPU writes to LY always reset it to
// 0 (spec.md §3 invariant), they never set it to an arbitrary value.
func (p *PPU) WriteLY(byte) {
	p.ly = 0
	p.updateCoincidence()
}

func (p *PPU) ReadLYC() byte { return p.lyc }
func (p *PPU) WriteLYC(v byte) {
	p.lyc = v
	p.updateCoincidence()
}

func (p *PPU) ReadBGP() byte   { return p.bgp }
func (p *PPU) WriteBGP(v byte) { p.bgp = v }
func (p *PPU) ReadOBP0() byte  { return p.obp0 }
func (p *PPU) WriteOBP0(v byte) { p.obp0 = v }
func (p *PPU) ReadOBP1() byte  { return p.obp1 }
func (p *PPU) WriteOBP1(v byte) { p.obp1 = v }
func (p *PPU) ReadWY() byte    { return p.wy }
func (p *PPU) WriteWY(v byte)  { p.wy = v }
func (p *PPU) ReadWX() byte    { return p.wx }
func (p *PPU) WriteWX(v byte)  { p.wx = v }

// --- Timing ---

// Tick advances the PPU by the given number of T-cycles, exactly as many as
// the CPU/bus has just charged (spec.md §4.5, §5).
func (p *PPU) Tick(cycles int) {
	if !p.enabled() {
		return
	}
	for i := 0; i < cycles; i++ {
		p.tickOne()
	}
}

func (p *PPU) tickOne() {
	p.dot++

	switch {
	case p.ly >= 144:
		p.setMode(VBlank)
	case p.dot < dotsOAMScan:
		p.setMode(OAMScan)
	case p.dot < dotsOAMScan+dotsDrawing:
		if p.Mode() != Drawing {
			p.setMode(Drawing)
		}
	default:
		if p.dot == dotsOAMScan+dotsDrawing {
			p.renderScanline()
		}
		p.setMode(HBlank)
	}

	if p.dot >= dotsPerLine {
		p.dot = 0
		p.ly++
		if p.ly == 144 {
			p.irq.Request(interrupt.VBlank)
			if p.stat&(1<<4) != 0 {
				p.irq.Request(interrupt.LCDStat)
			}
			p.setMode(VBlank)
		} else if p.ly >= linesPerFrame {
			p.ly = 0
			p.windowLine = 0
			p.setMode(OAMScan)
		} else if p.ly < 144 {
			p.setMode(OAMScan)
		}
		p.updateCoincidence()
	}
}

func (p *PPU) setMode(m Mode) {
	prev := Mode(p.stat & 0x03)
	p.stat = (p.stat &^ 0x03) | byte(m)
	if prev == m {
		return
	}
	switch m {
	case HBlank:
		if p.stat&(1<<3) != 0 {
			p.irq.Request(interrupt.LCDStat)
		}
	case OAMScan:
		if p.stat&(1<<5) != 0 {
			p.irq.Request(interrupt.LCDStat)
		}
	}
}

func (p *PPU) updateCoincidence() {
	if p.ly == p.lyc {
		p.stat |= 1 << 2
		if p.stat&(1<<6) != 0 {
			p.irq.Request(interrupt.LCDStat)
		}
	} else {
		p.stat &^= 1 << 2
	}
}
