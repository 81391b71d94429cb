// Package cart implements the cartridge/mapper layer: ROM and external-RAM
// banking for the five DMG mapper families (NoMBC, MBC1, MBC2, MBC3, MBC5).
package cart

import "fmt"

// Cartridge is the minimal interface the bus needs for ROM/RAM banking.
// Addresses are CPU addresses; Read/Write cover $0000-$7FFF (ROM, with bank
// control side effects on write) and $A000-$BFFF (external RAM).
type Cartridge interface {
	Read(addr uint16) byte
	Write(addr uint16, value byte)
}

// BatteryBacked is implemented by cartridges whose external RAM should be
// persisted across runs.
type BatteryBacked interface {
	SaveRAM() []byte
	LoadRAM(data []byte)
}

// Load picks a mapper implementation from the ROM header's cartridge-type
// byte ($0147) and constructs it over the given ROM image. It returns an
// error for cartridge-type bytes this engine does not support, per
// spec.md §6 ("Any other value: unsupported; the engine must surface a
// load error").
func Load(rom []byte) (Cartridge, *Header, error) {
	h, err := ParseHeader(rom)
	if err != nil {
		return nil, nil, err
	}

	ramSize := h.RAMSizeBytes
	if ramForcedOff(h.CartType) {
		ramSize = 0
	}
	battery := hasBattery(h.CartType)

	switch h.CartType {
	case 0x00, 0x08, 0x09:
		return NewNoMBC(rom, ramSize, battery), h, nil
	case 0x01, 0x02, 0x03:
		return NewMBC1(rom, ramSize, battery), h, nil
	case 0x05, 0x06:
		return NewMBC2(rom, battery), h, nil
	case 0x0F, 0x10, 0x11, 0x12, 0x13:
		return NewMBC3(rom, ramSize, battery), h, nil
	case 0x19, 0x1A, 0x1B, 0x1C, 0x1D, 0x1E:
		return NewMBC5(rom, ramSize, battery), h, nil
	default:
		return nil, h, fmt.Errorf("cart: unsupported cartridge type $%02X", h.CartType)
	}
}
