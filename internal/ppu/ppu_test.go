package ppu

import (
	"testing"

	"github.com/kellanburket/dmgemu/internal/interrupt"
)

func newEnabled(ic *interrupt.Controller) *PPU {
	p := New(ic)
	p.WriteLCDC(0x80)
	return p
}

func TestPPU_ModeSequencePerLine(t *testing.T) {
	p := newEnabled(&interrupt.Controller{})

	if p.Mode() != OAMScan {
		t.Fatalf("initial mode = %d, want OAMScan", p.Mode())
	}
	p.Tick(80)
	if p.Mode() != Drawing {
		t.Fatalf("mode after 80 dots = %d, want Drawing", p.Mode())
	}
	p.Tick(172)
	if p.Mode() != HBlank {
		t.Fatalf("mode after 252 dots = %d, want HBlank", p.Mode())
	}
	p.Tick(204)
	if p.LY() != 1 {
		t.Fatalf("LY after one full line = %d, want 1", p.LY())
	}
}

func TestPPU_VBlankInterruptAtLine144(t *testing.T) {
	ic := &interrupt.Controller{}
	p := newEnabled(ic)

	p.Tick(456 * 144)
	if p.Mode() != VBlank {
		t.Fatalf("mode at line 144 = %d, want VBlank", p.Mode())
	}
	if ic.IF&(1<<interrupt.VBlank) == 0 {
		t.Fatal("VBlank interrupt not requested")
	}
}

func TestPPU_VRAMReadsFFDuringDrawing(t *testing.T) {
	p := newEnabled(&interrupt.Controller{})
	p.WriteVRAM(0x8000, 0x42)
	p.Tick(81) // into Drawing
	if got := p.ReadVRAM(0x8000); got != 0xFF {
		t.Fatalf("VRAM read during Drawing = %02X, want FF", got)
	}
}

func TestPPU_STATWriteOnlyTouchesEnableBits(t *testing.T) {
	p := newEnabled(&interrupt.Controller{})
	p.stat = 0x02 // OAMScan mode, coincidence clear
	p.WriteSTAT(0xFF)
	if p.stat&0x03 != 0x02 {
		t.Fatalf("STAT mode bits clobbered by CPU write: %02X", p.stat)
	}
	if p.stat&0x78 != 0x78 {
		t.Fatalf("STAT enable bits not set: %02X", p.stat)
	}
}

func TestPPU_LYCCoincidenceSetsFlagAndInterrupt(t *testing.T) {
	ic := &interrupt.Controller{}
	p := newEnabled(ic)
	p.WriteLYC(2)
	p.WriteSTAT(0x40) // enable LYC=LY interrupt source
	p.Tick(456 * 2)
	if p.stat&(1<<2) == 0 {
		t.Fatal("coincidence flag not set at LY==LYC")
	}
	if ic.IF&(1<<interrupt.LCDStat) == 0 {
		t.Fatal("LCDStat interrupt not requested on LYC match")
	}
}

func TestPPU_BackgroundTileRendersExpectedShade(t *testing.T) {
	p := newEnabled(&interrupt.Controller{})
	p.WriteLCDC(0x91) // LCD on, BG tile data at $8000, BG on
	p.WriteBGP(0xE4)  // 11 10 01 00: identity mapping

	// Tile 0 at $8000: row 0 bit pattern 11111111 (low), 00000000 (high) -> color 1 everywhere.
	p.WriteVRAM(0x8000, 0xFF)
	p.WriteVRAM(0x8001, 0x00)

	p.Tick(456 * 144) // run through an entire visible frame
	if p.fb[0] != 1 {
		t.Fatalf("pixel (0,0) shade = %d, want 1", p.fb[0])
	}
}
