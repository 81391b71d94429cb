package timer

import (
	"testing"

	"github.com/kellanburket/dmgemu/internal/interrupt"
)

// TestTimer_OverflowReloadsFromTMA: TIMA=$FB, TMA=$AA, TAC=$05 (enabled,
// 262144 Hz -> divider bit 3, one TIMA increment every 16 T-cycles). Five
// increments take TIMA FB->FC->FD->FE->FF->00 at T-cycle 80; the reload
// from TMA and the Timer interrupt land one M-cycle later, at T-cycle 84.
// TIMA keeps counting up from TMA after that.
func TestTimer_OverflowReloadsFromTMA(t *testing.T) {
	ic := &interrupt.Controller{}
	tm := New(ic)

	tm.WriteTIMA(0xFB)
	tm.WriteTMA(0xAA)
	tm.WriteTAC(0x05)

	tm.Tick(84)

	if got := tm.ReadTIMA(); got != 0xAA {
		t.Fatalf("TIMA after overflow = %02X, want AA", got)
	}
	if ic.IF&(1<<interrupt.Timer) == 0 {
		t.Fatal("Timer interrupt not requested after overflow")
	}
}

func TestTimer_DIVWriteResetsDivider(t *testing.T) {
	tm := New(&interrupt.Controller{})
	tm.Tick(1000)
	if tm.ReadDIV() == 0 {
		t.Fatal("DIV did not advance")
	}
	tm.WriteDIV(0xFF) // any written value clears DIV
	if tm.ReadDIV() != 0 {
		t.Fatalf("DIV after write = %02X, want 00", tm.ReadDIV())
	}
}

func TestTimer_DisabledDoesNotIncrementTIMA(t *testing.T) {
	tm := New(&interrupt.Controller{})
	tm.WriteTAC(0x00) // disabled
	tm.WriteTIMA(0x00)
	tm.Tick(100000)
	if tm.ReadTIMA() != 0 {
		t.Fatalf("TIMA incremented while disabled: %02X", tm.ReadTIMA())
	}
}
