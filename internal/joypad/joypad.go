// Package joypad models the $FF00 input latch: eight buttons split across
// two selectable rows (d-pad and face buttons).
package joypad

import "github.com/kellanburket/dmgemu/internal/interrupt"

// Buttons is the external driver's view of which buttons are held down.
type Buttons struct {
	A, B, Select, Start  bool
	Up, Down, Left, Right bool
}

// Joypad tracks the CPU-selected row(s) and the last-pressed state, raising
// the Joypad interrupt on any 1->0 transition in the selected row's nibble
// (spec.md §4.6).
type Joypad struct {
	selectRows byte // bits 5..4 as last written to $FF00
	buttons    Buttons
	lastNibble byte // previous computed low nibble, for edge detection

	irq *interrupt.Controller
}

func New(ic *interrupt.Controller) *Joypad {
	return &Joypad{selectRows: 0x30, lastNibble: 0x0F, irq: ic}
}

// nibble computes the active-low low nibble for the currently selected
// row(s): pressed bits read 0, released bits read 1.
func (j *Joypad) nibble() byte {
	n := byte(0x0F)
	if j.selectRows&0x10 == 0 { // P14 low selects d-pad
		if j.buttons.Right {
			n &^= 0x01
		}
		if j.buttons.Left {
			n &^= 0x02
		}
		if j.buttons.Up {
			n &^= 0x04
		}
		if j.buttons.Down {
			n &^= 0x08
		}
	}
	if j.selectRows&0x20 == 0 { // P15 low selects buttons
		if j.buttons.A {
			n &^= 0x01
		}
		if j.buttons.B {
			n &^= 0x02
		}
		if j.buttons.Select {
			n &^= 0x04
		}
		if j.buttons.Start {
			n &^= 0x08
		}
	}
	return n
}

// Read returns $FF00: bits 7-6 always 1, bits 5-4 the last-written row
// select, bits 3-0 computed live from the selected row(s).
func (j *Joypad) Read() byte {
	return 0xC0 | (j.selectRows & 0x30) | j.nibble()
}

// WriteSelect handles a CPU write to $FF00 (only bits 5-4 are writable).
func (j *Joypad) WriteSelect(v byte) {
	j.selectRows = v & 0x30
	j.checkEdge()
}

// SetButtons updates which buttons are held and raises the Joypad
// interrupt if any bit of the currently selected row transitioned 1->0.
func (j *Joypad) SetButtons(b Buttons) {
	j.buttons = b
	j.checkEdge()
}

func (j *Joypad) checkEdge() {
	n := j.nibble()
	falling := j.lastNibble &^ n
	if falling != 0 {
		j.irq.Request(interrupt.Joypad)
	}
	j.lastNibble = n
}
