// Command ewdemo renders the demo scene on a simulated board and saves
// what the panel shows as PNG files.
package main

import (
	"flag"
	"image/png"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gogpu/ewgfx"
	"github.com/gogpu/ewgfx/config"
	"github.com/gogpu/ewgfx/internal/demo"
	"github.com/gogpu/ewgfx/pixfmt"
)

func main() {
	var (
		scenario = flag.String("scenario", "all", "preset to run: direct, double, offscreen or all")
		topology = flag.String("topology", "", "override the preset topology")
		native   = flag.String("native", "", "override the preset native format")
		frames   = flag.Int("frames", 30, "frames to draw before the snapshot")
		useDMA2D = flag.Bool("dma2d", false, "drive a simulated DMA2D instead of drawing in software")
		dir      = flag.String("dir", ".", "output directory")
		verbose  = flag.Bool("v", false, "log debug output to stderr")
	)
	flag.Parse()

	if *verbose {
		ewgfx.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	presets := demo.Presets()
	if *scenario != "all" {
		p, ok := demo.Lookup(*scenario)
		if !ok {
			log.Fatalf("unknown scenario %q", *scenario)
		}
		presets = []demo.Preset{p}
	}

	for _, p := range presets {
		if *topology != "" {
			t, err := config.ParseTopology(*topology)
			if err != nil {
				log.Fatal(err)
			}
			p.Config.Topology = t
		}
		if *native != "" {
			f, err := pixfmt.ParseFormat(*native)
			if err != nil {
				log.Fatal(err)
			}
			p.Config.NativeFormat = f
			if !p.Config.Topology.HasOffScreen() {
				p.Physical = f
			}
		}
		if err := run(p, *frames, *useDMA2D, *dir); err != nil {
			log.Fatalf("%s: %v", p.Name, err)
		}
	}
}

func run(p demo.Preset, frames int, useDMA2D bool, dir string) error {
	board, err := demo.NewBoard(p, useDMA2D, nil)
	if err != nil {
		return err
	}
	defer func() { _ = board.Engine.Close() }()

	for i := 0; i < frames; i++ {
		if err := board.Frame(); err != nil {
			return err
		}
	}
	img, err := board.Snapshot()
	if err != nil {
		return err
	}

	name := filepath.Join(dir, p.Name+".png")
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	s := board.Engine.Stats()
	log.Printf("%s: %d frames saved to %s (%dx%d, %v, hw %d sw %d)\n",
		p.Name, board.Frames(), name, p.Width, p.Height, p.Config.Topology,
		s.Accel.Hardware, s.Accel.Software)
	return nil
}
