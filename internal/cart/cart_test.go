package cart

import "testing"

func makeROM(banks int, cartType byte, romSizeCode byte, ramSizeCode byte) []byte {
	rom := make([]byte, banks*0x4000)
	rom[0x0147] = cartType
	rom[0x0148] = romSizeCode
	rom[0x0149] = ramSizeCode
	// tag each bank's first byte with its bank number for read-back checks
	for b := 0; b < banks; b++ {
		rom[b*0x4000] = byte(b)
	}
	return rom
}

func TestLoad_SelectsMapperByCartType(t *testing.T) {
	cases := []struct {
		cartType byte
		want     string
	}{
		{0x00, "*cart.NoMBC"},
		{0x01, "*cart.MBC1"},
		{0x05, "*cart.MBC2"},
		{0x0F, "*cart.MBC3"},
		{0x19, "*cart.MBC5"},
	}
	for _, tc := range cases {
		rom := makeROM(4, tc.cartType, 0x01, 0x00)
		c, _, err := Load(rom)
		if err != nil {
			t.Fatalf("cartType %02X: %v", tc.cartType, err)
		}
		got := objTypeName(c)
		if got != tc.want {
			t.Fatalf("cartType %02X: got %s want %s", tc.cartType, got, tc.want)
		}
	}
}

func objTypeName(c Cartridge) string {
	switch c.(type) {
	case *NoMBC:
		return "*cart.NoMBC"
	case *MBC1:
		return "*cart.MBC1"
	case *MBC2:
		return "*cart.MBC2"
	case *MBC3:
		return "*cart.MBC3"
	case *MBC5:
		return "*cart.MBC5"
	default:
		return "unknown"
	}
}

func TestLoad_UnsupportedCartType(t *testing.T) {
	rom := makeROM(2, 0x20, 0x00, 0x00)
	if _, _, err := Load(rom); err == nil {
		t.Fatal("expected error for unsupported cartridge type")
	}
}

func TestMBC1_BankSwitchAndForbiddenZero(t *testing.T) {
	rom := makeROM(64, 0x01, 0x05, 0x00) // 1 MiB, 64 banks
	m := NewMBC1(rom, 0, false)

	m.Write(0x2000, 0x00) // rewritten to 1
	if got := m.Read(0x4000); got != 1 {
		t.Fatalf("bank after writing 0: got %d want 1", got)
	}

	m.Write(0x2000, 0x20) // low5 bits of 0x20 are zero -> rewritten to 1; upper2=0 -> bank 1... not 0x21
	if got := m.Read(0x4000); got != 1 {
		t.Fatalf("writing 0x20: got %d want 1 (low5=0 rewritten to 1)", got)
	}
}

func TestMBC1_RAMBankingModeUpperBits(t *testing.T) {
	rom := makeROM(128, 0x03, 0x06, 0x03) // 2 MiB ROM, 32 KiB RAM
	m := NewMBC1(rom, 32*1024, true)

	m.Write(0x0000, 0x0A) // enable RAM
	m.Write(0x2000, 0x01) // low5 = 1
	m.Write(0x4000, 0x01) // upper2 = 1
	m.Write(0x6000, 0x01) // mode 1 (advanced)

	wantBank := (1 << 5) | 1 // = 0x21
	if got := m.Read(0x4000); int(got) != wantBank&(len(rom)/0x4000-1) {
		t.Fatalf("effective high bank: got %d want %d", got, wantBank)
	}

	m.Write(0xA000, 0x55)
	if got := m.Read(0xA000); got != 0x55 {
		t.Fatalf("RAM round-trip: got %02X want 55", got)
	}
}

func TestMBC2_RAMNibbleAndBankSelect(t *testing.T) {
	rom := makeROM(16, 0x05, 0x03, 0x00)
	m := NewMBC2(rom, false)

	m.Write(0x0000, 0x0A) // bit8=0 -> RAM enable
	m.Write(0xA000, 0xFF)
	if got := m.Read(0xA000); got != 0xFF {
		t.Fatalf("RAM nibble read: got %02X want FF (upper nibble forced 1s)", got)
	}

	m.Write(0x0100, 0x05) // bit8=1 -> ROM bank select
	if got := m.Read(0x4000); got != 5 {
		t.Fatalf("ROM bank select: got %d want 5", got)
	}
}

func TestMBC3_RTCRegistersAddressableButFrozen(t *testing.T) {
	rom := makeROM(4, 0x10, 0x01, 0x02)
	m := NewMBC3(rom, 8*1024, true)

	m.Write(0x0000, 0x0A) // enable RAM+RTC
	m.Write(0x4000, 0x08) // select seconds register
	m.Write(0xA000, 0x2A)
	if got := m.Read(0xA000); got != 0x2A {
		t.Fatalf("RTC seconds register: got %02X want 2A", got)
	}
	m.Write(0x6000, 0x01) // latch: accepted, no effect
	if got := m.Read(0xA000); got != 0x2A {
		t.Fatalf("RTC register changed after latch write: got %02X", got)
	}
}

func TestMBC5_BankZeroSelectable(t *testing.T) {
	rom := makeROM(16, 0x19, 0x02, 0x00)
	m := NewMBC5(rom, 0, false)

	m.Write(0x2000, 0x00) // low8 = 0 -> bank 0 (NOT rewritten, unlike MBC1)
	if got := m.Read(0x4000); got != 0 {
		t.Fatalf("bank 0 selected: got %d want 0", got)
	}
}
