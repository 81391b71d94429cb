// Command gbemu loads a Game Boy ROM and runs it, either in an ebiten
// window or headlessly for scripted ROM-test harnesses.
package main

import (
	"flag"
	"fmt"
	"hash/crc32"
	"image"
	"image/png"
	"log"
	"os"
	"strings"

	"github.com/kellanburket/dmgemu/internal/engine"
	"github.com/kellanburket/dmgemu/internal/ppu"
	"github.com/kellanburket/dmgemu/internal/ui"
)

func main() {
	romPath := flag.String("rom", "", "path to a .gb ROM image")
	bootROMPath := flag.String("bootrom", "", "optional DMG boot ROM to run before the cartridge entry point")
	scale := flag.Int("scale", 3, "integer window upscale factor")
	title := flag.String("title", "gbemu", "window title")
	headless := flag.Bool("headless", false, "run without opening a window and print a framebuffer checksum")
	frames := flag.Int("frames", 60, "frames to run in -headless mode")
	outPNG := flag.String("outpng", "", "write the final framebuffer to this PNG path (-headless only)")
	expect := flag.String("expect", "", "fail with a non-zero exit status if the final CRC32 does not match this hex value")
	flag.Parse()

	if *romPath == "" {
		log.Fatalf("gbemu: -rom is required")
	}

	rom, err := os.ReadFile(*romPath)
	if err != nil {
		log.Fatalf("gbemu: reading ROM: %v", err)
	}

	var opts []engine.Option
	if *bootROMPath != "" {
		boot, err := os.ReadFile(*bootROMPath)
		if err != nil {
			log.Fatalf("gbemu: reading boot ROM: %v", err)
		}
		opts = append(opts, engine.WithBootROM(boot))
	}

	e, err := engine.LoadROM(rom, opts...)
	if err != nil {
		log.Fatalf("gbemu: loading ROM: %v", err)
	}

	savePath := strings.TrimSuffix(*romPath, ".gb") + ".sav"
	if saved, err := os.ReadFile(savePath); err == nil {
		e.LoadBatteryRAM(saved)
	}

	if *headless {
		runHeadless(e, *frames, *outPNG, *expect)
		writeSaveFile(e, savePath)
		return
	}

	app := ui.NewApp(e, ui.Config{Title: *title, Scale: *scale})
	if err := app.Run(); err != nil {
		writeSaveFile(e, savePath)
		log.Fatalf("gbemu: %v", err)
	}
	writeSaveFile(e, savePath)
}

func runHeadless(e *engine.Engine, frames int, outPNG, expect string) {
	for i := 0; i < frames; i++ {
		e.RunFrame()
	}

	fb := e.Framebuffer()
	sum := crc32.ChecksumIEEE(fb[:])
	fmt.Printf("%08x\n", sum)

	if outPNG != "" {
		if err := writeFramebufferPNG(fb[:], outPNG); err != nil {
			log.Fatalf("gbemu: writing PNG: %v", err)
		}
	}

	if expect != "" && !strings.EqualFold(fmt.Sprintf("%08x", sum), expect) {
		log.Fatalf("gbemu: framebuffer checksum %08x does not match -expect %s", sum, expect)
	}
}

func writeFramebufferPNG(fb []byte, path string) error {
	img := image.NewGray(image.Rect(0, 0, ppu.ScreenW, ppu.ScreenH))
	for i, shade := range fb {
		img.Pix[i] = 255 - shade*85
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func writeSaveFile(e *engine.Engine, path string) {
	dump := e.SaveBatteryRAM()
	if dump == nil {
		return
	}
	if err := os.WriteFile(path, dump, 0o644); err != nil {
		log.Printf("gbemu: saving battery RAM: %v", err)
	}
}
