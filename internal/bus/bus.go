// Package bus wires the CPU-visible 64 KiB address space to the
// cartridge, PPU, APU, timer, joypad and interrupt controller.
package bus

import (
	"bytes"
	"encoding/gob"
	"io"

	"github.com/kellanburket/dmgemu/internal/apu"
	"github.com/kellanburket/dmgemu/internal/cart"
	"github.com/kellanburket/dmgemu/internal/interrupt"
	"github.com/kellanburket/dmgemu/internal/joypad"
	"github.com/kellanburket/dmgemu/internal/ppu"
	"github.com/kellanburket/dmgemu/internal/timer"
)

// Bus owns every addressable component and routes CPU reads/writes to them.
type Bus struct {
	cart cart.Cartridge

	wram [0x2000]byte // 0xC000-0xDFFF; echo 0xE000-0xFDFF mirrors 0xC000-0xDDFF
	hram [0x7F]byte   // 0xFF80-0xFFFE

	ppu *ppu.PPU
	apu *apu.APU

	timer *timer.Timer
	joyp  *joypad.Joypad
	irq   *interrupt.Controller

	sb byte      // FF01 serial data
	sc byte      // FF02 serial control
	sw io.Writer // optional sink for bytes sent over serial

	dma       byte // FF46
	dmaActive bool
	dmaSrc    uint16
	dmaIndex  int

	bootROM     []byte
	bootEnabled bool

	faults int // count of accesses to prohibited/unmapped ranges
}

// New constructs a Bus over a raw ROM image, parsing its header to select a
// mapper. It falls back to a plain ROM-only cartridge if the header can't
// be parsed (e.g. a test ROM with no real header), which keeps small
// synthetic ROMs usable in package-level tests.
func New(rom []byte) *Bus {
	c, _, err := cart.Load(rom)
	if err != nil {
		c = cart.NewNoMBC(rom, 0, false)
	}
	return NewWithCartridge(c)
}

// NewWithCartridge wires a pre-constructed cartridge.
func NewWithCartridge(c cart.Cartridge) *Bus {
	b := &Bus{cart: c}
	b.irq = &interrupt.Controller{}
	b.ppu = ppu.New(b.irq)
	b.apu = apu.New()
	b.timer = timer.New(b.irq)
	b.joyp = joypad.New(b.irq)
	return b
}

// PPU exposes the PPU for the driver's framebuffer access.
func (b *Bus) PPU() *ppu.PPU { return b.ppu }

// Cart exposes the cartridge for battery-RAM persistence.
func (b *Bus) Cart() cart.Cartridge { return b.cart }

// Interrupts exposes the interrupt controller for the CPU's service loop.
func (b *Bus) Interrupts() *interrupt.Controller { return b.irq }

// SetJoypadState updates which buttons are held.
func (b *Bus) SetJoypadState(buttons joypad.Buttons) { b.joyp.SetButtons(buttons) }

// SetSerialWriter sets a sink that receives bytes written over the serial
// port when a transfer with the internal clock completes immediately.
func (b *Bus) SetSerialWriter(w io.Writer) { b.sw = w }

// BusFaults returns the running count of accesses to the unusable OAM
// shadow region and other prohibited/unmapped addresses (spec.md §7).
func (b *Bus) BusFaults() int { return b.faults }

// SetBootROM loads a boot ROM image to overlay $0000-$00FF until disabled.
func (b *Bus) SetBootROM(data []byte) {
	b.bootROM = nil
	b.bootEnabled = false
	if len(data) >= 0x100 {
		b.bootROM = make([]byte, 0x100)
		copy(b.bootROM, data[:0x100])
		b.bootEnabled = true
	}
}

func (b *Bus) Read(addr uint16) byte {
	switch {
	case addr < 0x8000:
		if b.bootEnabled && addr < 0x0100 {
			return b.bootROM[addr]
		}
		return b.cart.Read(addr)
	case addr >= 0x8000 && addr <= 0x9FFF:
		return b.ppu.ReadVRAM(addr)
	case addr >= 0xA000 && addr <= 0xBFFF:
		return b.cart.Read(addr)
	case addr >= 0xC000 && addr <= 0xDFFF:
		return b.wram[addr-0xC000]
	case addr >= 0xE000 && addr <= 0xFDFF:
		return b.wram[addr-0x2000-0xC000]
	case addr >= 0xFE00 && addr <= 0xFE9F:
		if b.dmaActive {
			return 0xFF
		}
		return b.ppu.ReadOAM(addr)
	case addr >= 0xFEA0 && addr <= 0xFEFF:
		b.faults++
		return 0xFF // unusable region
	case addr == 0xFF00:
		return b.joyp.Read()
	case addr == 0xFF01:
		return b.sb
	case addr == 0xFF02:
		return 0x7E | (b.sc & 0x81)
	case addr == 0xFF04:
		return b.timer.ReadDIV()
	case addr == 0xFF05:
		return b.timer.ReadTIMA()
	case addr == 0xFF06:
		return b.timer.ReadTMA()
	case addr == 0xFF07:
		return b.timer.ReadTAC()
	case addr == 0xFF0F:
		return b.irq.ReadIF()
	case addr >= 0xFF10 && addr <= 0xFF26:
		return b.apu.Read(addr)
	case addr >= 0xFF30 && addr <= 0xFF3F:
		return b.apu.ReadWave(addr)
	case addr == 0xFF40:
		return b.ppu.ReadLCDC()
	case addr == 0xFF41:
		return b.ppu.ReadSTAT()
	case addr == 0xFF42:
		return b.ppu.ReadSCY()
	case addr == 0xFF43:
		return b.ppu.ReadSCX()
	case addr == 0xFF44:
		return b.ppu.ReadLY()
	case addr == 0xFF45:
		return b.ppu.ReadLYC()
	case addr == 0xFF46:
		return b.dma
	case addr == 0xFF47:
		return b.ppu.ReadBGP()
	case addr == 0xFF48:
		return b.ppu.ReadOBP0()
	case addr == 0xFF49:
		return b.ppu.ReadOBP1()
	case addr == 0xFF4A:
		return b.ppu.ReadWY()
	case addr == 0xFF4B:
		return b.ppu.ReadWX()
	case addr == 0xFF50:
		return 0xFF
	case addr >= 0xFF80 && addr <= 0xFFFE:
		return b.hram[addr-0xFF80]
	case addr == 0xFFFF:
		return b.irq.ReadIE()
	default:
		b.faults++
	}
	return 0xFF
}

func (b *Bus) Write(addr uint16, value byte) {
	switch {
	case addr < 0x8000:
		b.cart.Write(addr, value)
	case addr >= 0x8000 && addr <= 0x9FFF:
		b.ppu.WriteVRAM(addr, value)
	case addr >= 0xA000 && addr <= 0xBFFF:
		b.cart.Write(addr, value)
	case addr >= 0xC000 && addr <= 0xDFFF:
		b.wram[addr-0xC000] = value
	case addr >= 0xE000 && addr <= 0xFDFF:
		b.wram[addr-0x2000-0xC000] = value
	case addr >= 0xFE00 && addr <= 0xFE9F:
		if b.dmaActive {
			return
		}
		b.ppu.WriteOAM(addr, value)
	case addr >= 0xFEA0 && addr <= 0xFEFF:
		b.faults++ // unusable; writes dropped
	case addr == 0xFF00:
		b.joyp.WriteSelect(value)
	case addr == 0xFF01:
		b.sb = value
	case addr == 0xFF02:
		b.sc = value & 0x81
		if b.sc&0x80 != 0 {
			if b.sw != nil {
				_, _ = b.sw.Write([]byte{b.sb})
			}
			b.irq.Request(interrupt.Serial)
			b.sc &^= 0x80
		}
	case addr == 0xFF04:
		b.timer.WriteDIV(value)
	case addr == 0xFF05:
		b.timer.WriteTIMA(value)
	case addr == 0xFF06:
		b.timer.WriteTMA(value)
	case addr == 0xFF07:
		b.timer.WriteTAC(value)
	case addr == 0xFF0F:
		b.irq.WriteIF(value)
	case addr >= 0xFF10 && addr <= 0xFF26:
		b.apu.Write(addr, value)
	case addr >= 0xFF30 && addr <= 0xFF3F:
		b.apu.WriteWave(addr, value)
	case addr == 0xFF40:
		b.ppu.WriteLCDC(value)
	case addr == 0xFF41:
		b.ppu.WriteSTAT(value)
	case addr == 0xFF42:
		b.ppu.WriteSCY(value)
	case addr == 0xFF43:
		b.ppu.WriteSCX(value)
	case addr == 0xFF44:
		b.ppu.WriteLY(value)
	case addr == 0xFF45:
		b.ppu.WriteLYC(value)
	case addr == 0xFF46:
		b.dma = value
		b.dmaActive = true
		b.dmaSrc = uint16(value) << 8
		b.dmaIndex = 0
	case addr == 0xFF47:
		b.ppu.WriteBGP(value)
	case addr == 0xFF48:
		b.ppu.WriteOBP0(value)
	case addr == 0xFF49:
		b.ppu.WriteOBP1(value)
	case addr == 0xFF4A:
		b.ppu.WriteWY(value)
	case addr == 0xFF4B:
		b.ppu.WriteWX(value)
	case addr == 0xFF50:
		if value != 0x00 {
			b.bootEnabled = false
		}
	case addr >= 0xFF80 && addr <= 0xFFFE:
		b.hram[addr-0xFF80] = value
	case addr == 0xFFFF:
		b.irq.WriteIE(value)
	default:
		b.faults++
	}
}

// Tick advances every cycle-driven component by the given number of
// T-cycles, stepping OAM DMA one byte per cycle alongside it.
func (b *Bus) Tick(cycles int) {
	if cycles <= 0 {
		return
	}
	b.timer.Tick(cycles)
	b.ppu.Tick(cycles)
	for i := 0; i < cycles && b.dmaActive; i++ {
		v := b.dmaSourceRead(b.dmaSrc + uint16(b.dmaIndex))
		b.ppu.WriteOAMRaw(0xFE00+uint16(b.dmaIndex), v)
		b.dmaIndex++
		if b.dmaIndex >= 0xA0 {
			b.dmaActive = false
		}
	}
}

// dmaSourceRead reads the DMA source byte directly, bypassing the
// DMA-in-progress OAM read block that Read() would otherwise apply.
func (b *Bus) dmaSourceRead(addr uint16) byte {
	switch {
	case addr < 0x8000:
		return b.cart.Read(addr)
	case addr >= 0x8000 && addr <= 0x9FFF:
		return b.ppu.ReadVRAM(addr)
	case addr >= 0xA000 && addr <= 0xBFFF:
		return b.cart.Read(addr)
	case addr >= 0xC000 && addr <= 0xDFFF:
		return b.wram[addr-0xC000]
	case addr >= 0xE000 && addr <= 0xFDFF:
		return b.wram[addr-0x2000-0xC000]
	default:
		return 0xFF
	}
}

// --- Save/Load state ---

type busState struct {
	WRAM      [0x2000]byte
	HRAM      [0x7F]byte
	SB, SC    byte
	DMA       byte
	DMAActive bool
	DMASrc    uint16
	DMAIdx    int
	BootEn    bool
}

// SaveState serializes WRAM/HRAM/serial/DMA state via gob, matching the
// teacher's save-state convention. The PPU and cartridge are responsible
// for their own state and are not part of this blob.
func (b *Bus) SaveState() []byte {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	s := busState{
		WRAM: b.wram, HRAM: b.hram,
		SB: b.sb, SC: b.sc,
		DMA: b.dma, DMAActive: b.dmaActive, DMASrc: b.dmaSrc, DMAIdx: b.dmaIndex,
		BootEn: b.bootEnabled,
	}
	_ = enc.Encode(s)
	return buf.Bytes()
}

func (b *Bus) LoadState(data []byte) {
	dec := gob.NewDecoder(bytes.NewReader(data))
	var s busState
	if err := dec.Decode(&s); err != nil {
		return
	}
	b.wram = s.WRAM
	b.hram = s.HRAM
	b.sb, b.sc = s.SB, s.SC
	b.dma, b.dmaActive, b.dmaSrc, b.dmaIndex = s.DMA, s.DMAActive, s.DMASrc, s.DMAIdx
	b.bootEnabled = s.BootEn
}
