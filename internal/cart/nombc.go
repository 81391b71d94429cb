package cart

// NoMBC is a cartridge with no bank controller: ROM is mapped directly at
// $0000-$7FFF (both halves fixed) and there is no external RAM unless the
// header's RAM-size byte says otherwise.
type NoMBC struct {
	rom     []byte
	ram     []byte
	battery bool
}

// NewNoMBC constructs a ROM-only cartridge. ramSize is normally 0; it is
// accepted here so the rare ROM-only+RAM header ($08/$09) still works.
// battery gates whether SaveRAM persists it (cart type $09 only).
func NewNoMBC(rom []byte, ramSize int, battery bool) *NoMBC {
	c := &NoMBC{rom: rom, battery: battery}
	if ramSize > 0 {
		c.ram = make([]byte, ramSize)
	}
	return c
}

func (c *NoMBC) Read(addr uint16) byte {
	switch {
	case addr < 0x8000:
		if int(addr) < len(c.rom) {
			return c.rom[addr]
		}
		return 0xFF
	case addr >= 0xA000 && addr <= 0xBFFF:
		if len(c.ram) == 0 {
			return 0xFF
		}
		off := int(addr - 0xA000)
		if off < len(c.ram) {
			return c.ram[off]
		}
		return 0xFF
	default:
		return 0xFF
	}
}

func (c *NoMBC) Write(addr uint16, value byte) {
	if addr >= 0xA000 && addr <= 0xBFFF && len(c.ram) > 0 {
		if off := int(addr - 0xA000); off < len(c.ram) {
			c.ram[off] = value
		}
	}
	// ROM space is immutable; NoMBC has no banking registers to write.
}

func (c *NoMBC) SaveRAM() []byte {
	if !c.battery || len(c.ram) == 0 {
		return nil
	}
	out := make([]byte, len(c.ram))
	copy(out, c.ram)
	return out
}

func (c *NoMBC) LoadRAM(data []byte) {
	copy(c.ram, data)
}
