package bus

import (
	"testing"

	"github.com/kellanburket/dmgemu/internal/joypad"
)

func TestBus_ROMAndRAM(t *testing.T) {
	rom := make([]byte, 0x8000)
	rom[0x0100] = 0x42
	b := New(rom)

	if got := b.Read(0x0100); got != 0x42 {
		t.Fatalf("ROM read got %02x, want 42", got)
	}

	b.Write(0xC000, 0x99)
	if got := b.Read(0xC000); got != 0x99 {
		t.Fatalf("RAM read got %02x, want 99", got)
	}

	b.Write(0xE000, 0x55)
	if got := b.Read(0xC000); got != 0x55 {
		t.Fatalf("Echo write did not mirror to WRAM: got %02x", got)
	}

	b.Write(0xFF80, 0xAB)
	if got := b.Read(0xFF80); got != 0xAB {
		t.Fatalf("HRAM read got %02x, want AB", got)
	}

	if got := b.Read(0xA123); got != 0xFF {
		t.Fatalf("Ext RAM (ROM-only) got %02x, want FF", got)
	}
}

func TestBus_InterruptRegs(t *testing.T) {
	b := New(make([]byte, 0x8000))

	b.Write(0xFF0F, 0x3F)
	if got := b.Read(0xFF0F); got != 0xE0|0x1F {
		t.Fatalf("IF read got %02x, want E0|1F", got)
	}

	b.Write(0xFFFF, 0x1B)
	if got := b.Read(0xFFFF); got != 0x1B {
		t.Fatalf("IE read got %02x, want 1B", got)
	}
}

func TestBus_JOYP(t *testing.T) {
	b := New(make([]byte, 0x8000))

	if got := b.Read(0xFF00); got&0x0F != 0x0F {
		t.Fatalf("JOYP default lower bits got %02x want 0x0F", got)
	}

	b.Write(0xFF00, 0x20) // select D-Pad
	b.SetJoypadState(joypad.Buttons{Right: true, Up: true})
	if got := b.Read(0xFF00) & 0x0F; got != 0x0A {
		t.Fatalf("JOYP D-Pad got %02x want 0x0A", got)
	}

	b.Write(0xFF00, 0x10) // select buttons
	b.SetJoypadState(joypad.Buttons{A: true, Start: true})
	if got := b.Read(0xFF00) & 0x0F; got != 0x06 {
		t.Fatalf("JOYP Buttons got %02x want 0x06", got)
	}
}

func TestBus_TimersRoundTrip(t *testing.T) {
	b := New(make([]byte, 0x8000))

	b.Write(0xFF04, 0x12)
	if got := b.Read(0xFF04); got != 0x00 {
		t.Fatalf("DIV got %02x want 00", got)
	}
	b.Write(0xFF05, 0x77)
	if got := b.Read(0xFF05); got != 0x77 {
		t.Fatalf("TIMA got %02x want 77", got)
	}
	b.Write(0xFF06, 0x88)
	if got := b.Read(0xFF06); got != 0x88 {
		t.Fatalf("TMA got %02x want 88", got)
	}
	b.Write(0xFF07, 0xFD)
	if got := b.Read(0xFF07); got != (0xF8 | (0xFD & 0x07)) {
		t.Fatalf("TAC got %02x want %02x", got, 0xF8|(0xFD&0x07))
	}
}

func TestBus_SerialImmediate(t *testing.T) {
	b := New(make([]byte, 0x8000))
	var out []byte
	b.SetSerialWriter(writerFunc(func(p []byte) (int, error) {
		out = append(out, p...)
		return len(p), nil
	}))

	b.Write(0xFF01, 0x41)
	b.Write(0xFF02, 0x81)
	if len(out) != 1 || out[0] != 0x41 {
		t.Fatalf("serial out got %v want [0x41]", out)
	}
	if got := b.Read(0xFF02); got&0x80 != 0 {
		t.Fatalf("serial control bit7 not cleared: %02x", got)
	}
	if b.Read(0xFF0F)&(1<<3) == 0 {
		t.Fatal("serial IF bit not set after transfer")
	}
}

func TestBus_OAMDMACopiesWRAMIntoOAM(t *testing.T) {
	b := New(make([]byte, 0x8000))
	for i := 0; i < 0xA0; i++ {
		b.Write(0xC000+uint16(i), byte(i))
	}
	b.Write(0xFF46, 0xC0) // DMA from C000
	b.Tick(0xA0)

	if got := b.Read(0xFE05); got != 0x05 {
		t.Fatalf("OAM[5] after DMA = %02x, want 05", got)
	}
}

func TestBus_SaveLoadStateRoundTrip(t *testing.T) {
	b := New(make([]byte, 0x8000))
	b.Write(0xC000, 0x42)
	b.Write(0xFF80, 0x99)
	snap := b.SaveState()

	b2 := New(make([]byte, 0x8000))
	b2.LoadState(snap)
	if got := b2.Read(0xC000); got != 0x42 {
		t.Fatalf("WRAM not restored: got %02x", got)
	}
	if got := b2.Read(0xFF80); got != 0x99 {
		t.Fatalf("HRAM not restored: got %02x", got)
	}
}

func TestBus_FaultsCountProhibitedRangeAccess(t *testing.T) {
	b := New(make([]byte, 0x8000))
	if b.BusFaults() != 0 {
		t.Fatalf("BusFaults = %d before any access, want 0", b.BusFaults())
	}

	if got := b.Read(0xFEA0); got != 0xFF {
		t.Fatalf("unusable region read got %02x want FF", got)
	}
	b.Write(0xFEA0, 0x12)
	if got := b.Read(0xFF08); got != 0xFF { // undocumented I/O
		t.Fatalf("undocumented I/O read got %02x want FF", got)
	}

	if got := b.BusFaults(); got != 3 {
		t.Fatalf("BusFaults = %d, want 3", got)
	}
}

type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }
