// Package ui implements the ebiten-backed window that drives an
// engine.Engine: keyboard input in, framebuffer out.
package ui

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/kellanburket/dmgemu/internal/engine"
	"github.com/kellanburket/dmgemu/internal/joypad"
	"github.com/kellanburket/dmgemu/internal/ppu"
)

// shadePalette maps the PPU's 2-bit shade indices to the classic DMG
// four-tone green-grey ramp.
var shadePalette = [4]color.RGBA{
	{0xE0, 0xF8, 0xD0, 0xFF},
	{0x88, 0xC0, 0x70, 0xFF},
	{0x34, 0x68, 0x56, 0xFF},
	{0x08, 0x18, 0x20, 0xFF},
}

// App is a thin ebiten.Game around an Engine: it owns the window, polls
// keyboard state into joypad.Buttons once per Update, runs one frame of
// emulation, and blits the palette-mapped framebuffer in Draw.
type App struct {
	cfg Config
	eng *engine.Engine
	tex *ebiten.Image
	rgb []byte
}

// NewApp wires an App around an already-loaded Engine.
func NewApp(eng *engine.Engine, cfg Config) *App {
	cfg.Defaults()
	return &App{
		cfg: cfg,
		eng: eng,
		tex: ebiten.NewImage(ppu.ScreenW, ppu.ScreenH),
		rgb: make([]byte, ppu.ScreenW*ppu.ScreenH*4),
	}
}

// Run opens the window and blocks until it is closed.
func (a *App) Run() error {
	ebiten.SetWindowSize(ppu.ScreenW*a.cfg.Scale, ppu.ScreenH*a.cfg.Scale)
	ebiten.SetWindowTitle(a.cfg.Title)
	if err := ebiten.RunGame(a); err != nil {
		return fmt.Errorf("ui: run: %w", err)
	}
	return nil
}

func (a *App) Update() error {
	a.eng.SetJoypad(pollButtons())
	a.eng.RunFrame()
	return nil
}

func pollButtons() joypad.Buttons {
	return joypad.Buttons{
		Up:     ebiten.IsKeyPressed(ebiten.KeyArrowUp),
		Down:   ebiten.IsKeyPressed(ebiten.KeyArrowDown),
		Left:   ebiten.IsKeyPressed(ebiten.KeyArrowLeft),
		Right:  ebiten.IsKeyPressed(ebiten.KeyArrowRight),
		A:      ebiten.IsKeyPressed(ebiten.KeyZ),
		B:      ebiten.IsKeyPressed(ebiten.KeyX),
		Start:  ebiten.IsKeyPressed(ebiten.KeyEnter),
		Select: ebiten.IsKeyPressed(ebiten.KeyShiftRight),
	}
}

func (a *App) Draw(screen *ebiten.Image) {
	fb := a.eng.Framebuffer()
	for i, shade := range fb {
		c := shadePalette[shade&0x03]
		o := i * 4
		a.rgb[o+0] = c.R
		a.rgb[o+1] = c.G
		a.rgb[o+2] = c.B
		a.rgb[o+3] = c.A
	}
	a.tex.WritePixels(a.rgb)

	op := &ebiten.DrawImageOptions{}
	scale := float64(a.cfg.Scale)
	op.GeoM.Scale(scale, scale)
	screen.DrawImage(a.tex, op)
}

func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ppu.ScreenW * a.cfg.Scale, ppu.ScreenH * a.cfg.Scale
}
