package cart

import (
	"encoding/binary"
	"fmt"
	"strings"
)

const headerEnd = 0x014F

// Header is the decoded contents of a ROM's $0100-$014F cartridge header.
type Header struct {
	Title          string
	CGBFlag        byte
	NewLicensee    string
	SGBFlag        byte
	CartType       byte
	ROMSizeCode    byte
	RAMSizeCode    byte
	Destination    byte
	OldLicensee    byte
	ROMVersion     byte
	HeaderChecksum byte
	GlobalChecksum uint16

	ROMSizeBytes int
	ROMBanks     int
	RAMSizeBytes int
	CartTypeStr  string
}

// ParseHeader reads the cartridge header out of a raw ROM image.
func ParseHeader(rom []byte) (*Header, error) {
	if len(rom) <= headerEnd {
		return nil, fmt.Errorf("cart: ROM too small (%d bytes) to contain a header", len(rom))
	}

	rawTitle := rom[0x0134:0x0144]
	title := strings.TrimRight(string(rawTitle), "\x00")

	h := &Header{
		Title:          title,
		CGBFlag:        rom[0x0143],
		NewLicensee:    string(rom[0x0144:0x0146]),
		SGBFlag:        rom[0x0146],
		CartType:       rom[0x0147],
		ROMSizeCode:    rom[0x0148],
		RAMSizeCode:    rom[0x0149],
		Destination:    rom[0x014A],
		OldLicensee:    rom[0x014B],
		ROMVersion:     rom[0x014C],
		HeaderChecksum: rom[0x014D],
		GlobalChecksum: binary.BigEndian.Uint16(rom[0x014E:0x0150]),
	}

	h.ROMSizeBytes, h.ROMBanks = decodeROMSize(h.ROMSizeCode)
	h.RAMSizeBytes = decodeRAMSize(h.RAMSizeCode)
	h.CartTypeStr = cartTypeString(h.CartType)

	return h, nil
}

// HeaderChecksumOK re-derives the $014D header checksum. Playback does not
// require it, but it's handy for diagnosing a bad ROM dump.
func HeaderChecksumOK(rom []byte) bool {
	if len(rom) <= 0x014D {
		return false
	}
	var sum byte
	for addr := 0x0134; addr <= 0x014C; addr++ {
		sum = sum - rom[addr] - 1
	}
	return sum == rom[0x014D]
}

// decodeROMSize returns (size in bytes, bank count) for the $0148 code.
// Every defined code is 32KiB * 2^n, i.e. 2 banks * 2^n.
func decodeROMSize(code byte) (size, banks int) {
	if code > 8 {
		return 0, 0
	}
	banks = 2 << code
	size = banks * 0x4000
	return size, banks
}

// decodeRAMSize returns the external RAM size in bytes for the $0149 code.
func decodeRAMSize(code byte) int {
	switch code {
	case 0x00:
		return 0
	case 0x02:
		return 8 * 1024
	case 0x03:
		return 32 * 1024
	case 0x04:
		return 128 * 1024
	case 0x05:
		return 64 * 1024
	default:
		return 0
	}
}

func cartTypeString(code byte) string {
	switch code {
	case 0x00, 0x08, 0x09:
		return "ROM ONLY"
	case 0x01, 0x02, 0x03:
		return "MBC1"
	case 0x05, 0x06:
		return "MBC2"
	case 0x0F, 0x10, 0x11, 0x12, 0x13:
		return "MBC3"
	case 0x19, 0x1A, 0x1B, 0x1C, 0x1D, 0x1E:
		return "MBC5"
	default:
		return "unsupported"
	}
}

// ramForcedOff reports the handful of cartridge-type bytes whose mapper
// family normally carries RAM but this particular code does not (spec.md §6).
func ramForcedOff(cartType byte) bool {
	switch cartType {
	case 0x00, 0x01, 0x0F, 0x11, 0x19, 0x1C:
		return true
	default:
		return false
	}
}

// hasBattery reports whether the cartridge-type byte wires up battery
// backup for external RAM (spec.md §6).
func hasBattery(cartType byte) bool {
	switch cartType {
	case 0x03, 0x06, 0x09, 0x0D, 0x10, 0x13, 0x1B, 0x1E, 0xFF:
		return true
	default:
		return false
	}
}
