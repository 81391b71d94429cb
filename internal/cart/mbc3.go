package cart

// MBC3 supports up to 2 MiB ROM, up to 32 KiB RAM, and exposes (but never
// advances) the five RTC registers S/M/H/DL/DH at RAM-bank-select values
// $08-$0C. RTC real-time ticking is an explicit non-goal (spec.md §1); the
// registers are addressable storage only, and the $6000-$7FFF latch write
// is accepted and otherwise ignored.
type MBC3 struct {
	rom []byte
	ram []byte
	rtc [5]byte // S, M, H, DL, DH - static, never ticks

	ramAndTimerEnabled bool
	romBank            byte // 7 bits, zero rewritten to 1
	ramOrRTCSelect     byte // 0-3: RAM bank; 8-C: RTC register

	battery bool
}

func NewMBC3(rom []byte, ramSize int, battery bool) *MBC3 {
	m := &MBC3{rom: rom, romBank: 1, battery: battery}
	if ramSize > 0 {
		m.ram = make([]byte, ramSize)
	}
	return m
}

func (m *MBC3) bank() int {
	bank := m.romBank & 0x7F
	if bank == 0 {
		bank = 1
	}
	return int(bank)
}

func (m *MBC3) Read(addr uint16) byte {
	switch {
	case addr < 0x4000:
		if int(addr) < len(m.rom) {
			return m.rom[addr]
		}
		return 0xFF
	case addr < 0x8000:
		off := m.bank()*0x4000 + int(addr-0x4000)
		if off < len(m.rom) {
			return m.rom[off]
		}
		return 0xFF
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramAndTimerEnabled {
			return 0xFF
		}
		if m.ramOrRTCSelect >= 0x08 && m.ramOrRTCSelect <= 0x0C {
			return m.rtc[m.ramOrRTCSelect-0x08]
		}
		if len(m.ram) == 0 {
			return 0xFF
		}
		off := int(m.ramOrRTCSelect&0x03)*0x2000 + int(addr-0xA000)
		if off < len(m.ram) {
			return m.ram[off]
		}
		return 0xFF
	default:
		return 0xFF
	}
}

func (m *MBC3) Write(addr uint16, value byte) {
	switch {
	case addr < 0x2000:
		m.ramAndTimerEnabled = (value & 0x0F) == 0x0A
	case addr < 0x4000:
		bank := value & 0x7F
		if bank == 0 {
			bank = 1
		}
		m.romBank = bank
	case addr < 0x6000:
		m.ramOrRTCSelect = value
	case addr < 0x8000:
		// Latch clock data: accepted, never advances (spec.md §1, §3).
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramAndTimerEnabled {
			return
		}
		if m.ramOrRTCSelect >= 0x08 && m.ramOrRTCSelect <= 0x0C {
			m.rtc[m.ramOrRTCSelect-0x08] = value
			return
		}
		if len(m.ram) == 0 {
			return
		}
		off := int(m.ramOrRTCSelect&0x03)*0x2000 + int(addr-0xA000)
		if off < len(m.ram) {
			m.ram[off] = value
		}
	}
}

func (m *MBC3) SaveRAM() []byte {
	if !m.battery || len(m.ram) == 0 {
		return nil
	}
	out := make([]byte, len(m.ram))
	copy(out, m.ram)
	return out
}

func (m *MBC3) LoadRAM(data []byte) {
	copy(m.ram, data)
}
