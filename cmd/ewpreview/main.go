//go:build preview

// Command ewpreview shows the demo scene in a desktop window.
//
// Build with -tags preview.
package main

import (
	"flag"
	"image"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/gogpu/ewgfx/internal/demo"
)

func main() {
	var (
		scenario = flag.String("scenario", "double", "preset to show: direct, double or offscreen")
		useDMA2D = flag.Bool("dma2d", true, "drive a simulated DMA2D")
		scale    = flag.Int("scale", 2, "window scale")
	)
	flag.Parse()

	p, ok := demo.Lookup(*scenario)
	if !ok {
		log.Fatalf("unknown scenario %q", *scenario)
	}
	board, err := demo.NewBoard(p, *useDMA2D, nil)
	if err != nil {
		log.Fatal(err)
	}

	ebiten.SetWindowTitle("ewpreview (" + p.Name + ")")
	ebiten.SetWindowSize(p.Width*(*scale), p.Height*(*scale))
	ebiten.SetTPS(60)
	if err := ebiten.RunGame(&game{board: board}); err != nil {
		log.Fatal(err)
	}
}

type game struct {
	board *demo.Board
	img   *image.RGBA
	fbImg *ebiten.Image
}

func (g *game) Update() error {
	return g.board.Frame()
}

func (g *game) Draw(screen *ebiten.Image) {
	img, err := g.board.Snapshot()
	if err != nil {
		return
	}
	if g.fbImg == nil {
		b := img.Bounds()
		g.fbImg = ebiten.NewImage(b.Dx(), b.Dy())
	}
	g.img = img
	g.fbImg.WritePixels(g.img.Pix)
	screen.DrawImage(g.fbImg, nil)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := g.board.LCD.Size()
	return w, h
}
