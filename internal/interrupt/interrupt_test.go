package interrupt

import "testing"

func TestController_PendingPriority(t *testing.T) {
	c := &Controller{}
	c.WriteIE(0x1F)
	c.Request(Timer)
	c.Request(VBlank)

	src, ok := c.Highest()
	if !ok || src != VBlank {
		t.Fatalf("Highest() = %v, %v; want VBlank, true", src, ok)
	}

	c.Acknowledge(VBlank)
	src, ok = c.Highest()
	if !ok || src != Timer {
		t.Fatalf("Highest() after ack = %v, %v; want Timer, true", src, ok)
	}
}

func TestController_IFUpperBitsReadAsOne(t *testing.T) {
	c := &Controller{}
	c.WriteIF(0x01)
	if got := c.ReadIF(); got != 0xE1 {
		t.Fatalf("ReadIF() = %02X, want E1", got)
	}
}

func TestSource_Vector(t *testing.T) {
	want := []uint16{0x0040, 0x0048, 0x0050, 0x0058, 0x0060}
	srcs := []Source{VBlank, LCDStat, Timer, Serial, Joypad}
	for i, s := range srcs {
		if got := s.Vector(); got != want[i] {
			t.Fatalf("%v.Vector() = %#04x, want %#04x", s, got, want[i])
		}
	}
}
