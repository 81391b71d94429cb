package joypad

import (
	"testing"

	"github.com/kellanburket/dmgemu/internal/interrupt"
)

func TestJoypad_BothRowsDisabledReadsAllOnes(t *testing.T) {
	j := New(&interrupt.Controller{})
	j.WriteSelect(0x30) // both P14 and P15 high: no row selected
	if got := j.Read(); got&0x0F != 0x0F {
		t.Fatalf("low nibble = %X, want F with no row selected", got&0x0F)
	}
}

func TestJoypad_PressedReadsZero(t *testing.T) {
	ic := &interrupt.Controller{}
	j := New(ic)
	j.WriteSelect(0x10) // select buttons (P15 low)
	j.SetButtons(Buttons{A: true})
	if got := j.Read() & 0x01; got != 0 {
		t.Fatalf("A bit = %d, want 0 (pressed)", got)
	}
}

func TestJoypad_TransitionRaisesInterrupt(t *testing.T) {
	ic := &interrupt.Controller{}
	j := New(ic)
	j.WriteSelect(0x10) // buttons selected
	j.SetButtons(Buttons{})
	ic.IF = 0
	j.SetButtons(Buttons{Start: true})
	if ic.IF&(1<<interrupt.Joypad) == 0 {
		t.Fatal("expected Joypad interrupt to be requested on press")
	}
}
