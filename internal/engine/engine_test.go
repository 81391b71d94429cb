package engine

import "testing"

func makeTestROM(code []byte) []byte {
	rom := make([]byte, 0x8000)
	copy(rom[0x0100:], code)
	// Minimal header: cart type $00 (ROM ONLY), ROM size code $00 (32KiB/2 banks).
	rom[0x0147] = 0x00
	rom[0x0148] = 0x00
	rom[0x0149] = 0x00
	return rom
}

func TestLoadROM_PostBootRegisterState(t *testing.T) {
	e, err := LoadROM(makeTestROM([]byte{0x00}))
	if err != nil {
		t.Fatalf("LoadROM: %v", err)
	}
	if e.cpu.PC != 0x0100 {
		t.Fatalf("PC = %#04x, want 0x0100", e.cpu.PC)
	}
	if e.cpu.SP != 0xFFFE {
		t.Fatalf("SP = %#04x, want 0xFFFE", e.cpu.SP)
	}
}

func TestLoadROM_UnsupportedCartTypeFails(t *testing.T) {
	rom := makeTestROM([]byte{0x00})
	rom[0x0147] = 0xFD // not a recognized mapper byte
	if _, err := LoadROM(rom); err == nil {
		t.Fatal("expected LoadError for unsupported cartridge type")
	}
}

func TestEngine_RunFrameAdvancesLY(t *testing.T) {
	e, err := LoadROM(makeTestROM([]byte{0x18, 0xFE})) // JR -2: spin in place
	if err != nil {
		t.Fatalf("LoadROM: %v", err)
	}
	e.bus.Write(0xFF40, 0x80) // enable LCD
	e.RunFrame()
	// JR -2 costs 12 T-cycles, which divides the 70224-cycle frame evenly,
	// so RunFrame stops exactly on the frame boundary: LY has run through
	// every line, raised VBlank at line 144, and wrapped back to 0.
	if e.bus.Read(0xFF0F)&0x01 == 0 {
		t.Fatal("LY did not reach line 144 (no VBlank request) during a full frame")
	}
	if got := e.bus.Read(0xFF44); got != 0 {
		t.Fatalf("LY after exactly one frame = %d, want 0 (wrapped)", got)
	}
}

func TestEngine_SerialDrainReturnsBytesInOrder(t *testing.T) {
	prog := []byte{
		0x3E, 0x41, // LD A,'A'
		0xE0, 0x01, // LDH ($FF01),A
		0x3E, 0x81, // LD A,$81
		0xE0, 0x02, // LDH ($FF02),A  (start transfer)
	}
	e, err := LoadROM(makeTestROM(prog))
	if err != nil {
		t.Fatalf("LoadROM: %v", err)
	}
	for i := 0; i < 4; i++ {
		e.Step()
	}
	b, ok := e.DrainSerial()
	if !ok || b != 0x41 {
		t.Fatalf("DrainSerial = (%02X, %v), want (41, true)", b, ok)
	}
	if _, ok := e.DrainSerial(); ok {
		t.Fatal("DrainSerial returned a second byte, want empty queue")
	}
}

func TestEngine_DiagnosticsCountsUnusableRegionAccess(t *testing.T) {
	prog := []byte{
		0xFA, 0xA0, 0xFE, // LD A,($FEA0) — unusable OAM shadow region
	}
	e, err := LoadROM(makeTestROM(prog))
	if err != nil {
		t.Fatalf("LoadROM: %v", err)
	}
	if e.Diagnostics.BusFaults != 0 {
		t.Fatalf("BusFaults = %d before any access, want 0", e.Diagnostics.BusFaults)
	}
	e.Step()
	if e.Diagnostics.BusFaults != 1 {
		t.Fatalf("BusFaults = %d after one unusable-region read, want 1", e.Diagnostics.BusFaults)
	}
}

func TestEngine_BatteryRAMRoundTrip(t *testing.T) {
	rom := makeTestROM([]byte{0x00})
	rom[0x0147] = 0x03 // MBC1+RAM+BATTERY
	rom[0x0149] = 0x02 // 8 KiB RAM

	e, err := LoadROM(rom)
	if err != nil {
		t.Fatalf("LoadROM: %v", err)
	}
	e.bus.Write(0x0000, 0x0A) // enable RAM
	e.bus.Write(0xA000, 0x7E)

	dump := e.SaveBatteryRAM()
	if dump == nil {
		t.Fatal("SaveBatteryRAM returned nil for a battery-backed cartridge")
	}

	e2, _ := LoadROM(rom)
	e2.LoadBatteryRAM(dump)
	e2.bus.Write(0x0000, 0x0A)
	if got := e2.bus.Read(0xA000); got != 0x7E {
		t.Fatalf("restored RAM = %02X, want 7E", got)
	}
}
