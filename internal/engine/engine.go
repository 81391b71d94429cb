// Package engine composes the CPU, bus, cartridge, PPU, timer, interrupt
// controller and joypad into the single-ROM emulation session a driver
// talks to.
package engine

import (
	"github.com/kellanburket/dmgemu/internal/bus"
	"github.com/kellanburket/dmgemu/internal/cart"
	"github.com/kellanburket/dmgemu/internal/cpu"
	"github.com/kellanburket/dmgemu/internal/joypad"
	"github.com/kellanburket/dmgemu/internal/ppu"
)

const cyclesPerFrame = 70224 // 154 lines * 456 dots, DMG's fixed per-frame T-cycle budget

// Engine runs one loaded ROM: CPU, bus and every bus-owned peripheral.
type Engine struct {
	cpu    *cpu.CPU
	bus    *bus.Bus
	cart   cart.Cartridge
	header *cart.Header

	serial *serialQueue

	Diagnostics Diagnostics
}

// Option configures an Engine at load time.
type Option func(*Engine)

// WithBootROM overlays the given boot ROM image at $0000-$00FF until the
// guest disables it via a write to $FF50, and starts the CPU at $0000 so
// the boot sequence runs instead of jumping straight to the cartridge
// entry point.
func WithBootROM(data []byte) Option {
	return func(e *Engine) {
		e.bus.SetBootROM(data)
		e.cpu.SetPC(0x0000)
	}
}

// LoadROM parses the ROM header, selects a mapper, and wires a fresh
// Engine around it. It returns a *LoadError for any cartridge-type byte
// this engine does not support (spec.md §6).
func LoadROM(data []byte, opts ...Option) (*Engine, error) {
	c, h, err := cart.Load(data)
	if err != nil {
		return nil, &LoadError{Reason: "unsupported or malformed cartridge header", Err: err}
	}

	b := bus.NewWithCartridge(c)
	cp := cpu.New(b)
	cp.ResetNoBoot()

	e := &Engine{cpu: cp, bus: b, cart: c, header: h}
	e.serial = newSerialQueue()
	b.SetSerialWriter(e.serial)

	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Step executes a single CPU instruction, or services a pending interrupt
// in its place when one is due, and returns the T-cycles charged.
func (e *Engine) Step() int {
	cycles := e.cpu.Step()
	e.Diagnostics.BusFaults = e.bus.BusFaults()
	return cycles
}

// RunFrame steps the CPU until at least one full frame's worth of T-cycles
// has been charged, matching the DMG's fixed 70224-cycle frame budget.
func (e *Engine) RunFrame() {
	budget := cyclesPerFrame
	for budget > 0 {
		budget -= e.Step()
	}
}

// Framebuffer returns the PPU's current 160x144 shade buffer.
func (e *Engine) Framebuffer() *[ppu.ScreenW * ppu.ScreenH]byte { return e.bus.PPU().Framebuffer() }

// SetJoypad updates which buttons are held for the next Step/RunFrame.
func (e *Engine) SetJoypad(b joypad.Buttons) { e.bus.SetJoypadState(b) }

// DrainSerial pops the oldest byte written to the serial port since the
// last drain, if any.
func (e *Engine) DrainSerial() (byte, bool) { return e.serial.pop() }

// SaveBatteryRAM returns a raw dump of the cartridge's external RAM, or
// nil if the cartridge has no battery-backed RAM.
func (e *Engine) SaveBatteryRAM() []byte {
	bb, ok := e.cart.(cart.BatteryBacked)
	if !ok {
		return nil
	}
	return bb.SaveRAM()
}

// LoadBatteryRAM restores a dump previously returned by SaveBatteryRAM.
// It is a no-op if the cartridge has no battery-backed RAM.
func (e *Engine) LoadBatteryRAM(data []byte) {
	if bb, ok := e.cart.(cart.BatteryBacked); ok {
		bb.LoadRAM(data)
	}
}

// Header exposes the parsed cartridge header (title, type, ROM/RAM sizes)
// for a driver that wants to display it.
func (e *Engine) Header() *cart.Header { return e.header }

// serialQueue buffers bytes written to the serial port between drains,
// implementing io.Writer so it can be installed as the bus's serial sink.
type serialQueue struct {
	buf []byte
}

func newSerialQueue() *serialQueue { return &serialQueue{} }

func (q *serialQueue) Write(p []byte) (int, error) {
	q.buf = append(q.buf, p...)
	return len(p), nil
}

func (q *serialQueue) pop() (byte, bool) {
	if len(q.buf) == 0 {
		return 0, false
	}
	b := q.buf[0]
	q.buf = q.buf[1:]
	return b, true
}
