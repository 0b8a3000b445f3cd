// Package demo builds a simulated board and draws the scene shared by the
// ewdemo and ewpreview commands.
package demo

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/gogpu/ewgfx"
	"github.com/gogpu/ewgfx/accel"
	"github.com/gogpu/ewgfx/accel/dma2d"
	"github.com/gogpu/ewgfx/config"
	"github.com/gogpu/ewgfx/ltdc"
	"github.com/gogpu/ewgfx/pixfmt"
	"github.com/gogpu/ewgfx/sdram"
	"github.com/gogpu/ewgfx/viewport"
)

// RAMBase is the bus address of the simulated SDRAM bank.
const RAMBase = 0xC000_0000

// Preset is a display setup.
type Preset struct {
	Name          string
	Config        config.Engine
	Physical      pixfmt.Format
	Width, Height int
}

// Presets returns the built-in setups: a direct ARGB8888 display, a
// double-buffered RGB565 display and an off-screen Index8 engine in front
// of an RGB565 display.
func Presets() []Preset {
	return []Preset{
		{
			Name:     "direct",
			Config:   config.New(config.WithTopology(config.Direct)),
			Physical: pixfmt.FormatARGB8888,
			Width:    480, Height: 272,
		},
		{
			Name: "double",
			Config: config.New(
				config.WithTopology(config.DoubleBuffered),
				config.WithNativeFormat(pixfmt.FormatRGB565),
				config.WithPreserveFramebufferContent(true),
				config.WithVSyncLine(480),
			),
			Physical: pixfmt.FormatRGB565,
			Width:    800, Height: 480,
		},
		{
			Name: "offscreen",
			Config: config.New(
				config.WithTopology(config.OffScreen),
				config.WithNativeFormat(pixfmt.FormatIndex8),
			),
			Physical: pixfmt.FormatRGB565,
			Width:    480, Height: 272,
		},
	}
}

// Lookup returns the preset with the given name.
func Lookup(name string) (Preset, bool) {
	for _, p := range Presets() {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}

// Board is a simulated display board: SDRAM, an LTDC and optionally a
// DMA2D, with an engine on top.
type Board struct {
	Engine *ewgfx.Engine
	LCD    *ltdc.Controller
	RAM    *sdram.Bank
	DMA2D  *dma2d.Sim

	frame int
	box   image.Rectangle
}

// NewBoard builds a board for p. With useDMA2D the engine drives a
// simulated DMA2D, otherwise it draws in software.
func NewBoard(p Preset, useDMA2D bool, log *slog.Logger) (*Board, error) {
	size := p.Physical.ImageBytes(p.Width, p.Height)
	ram := sdram.NewBank(RAMBase, 2*size)
	lcd := ltdc.New(p.Width, p.Height, ram, ltdc.WithLogger(log))

	out := viewport.Output{
		Width: p.Width, Height: p.Height, Format: p.Physical,
		Front: RAMBase, Display: lcd, Memory: ram,
	}
	if p.Config.Topology.HasDoubleBuffer() {
		out.Back = RAMBase + uintptr(size)
	}

	b := &Board{LCD: lcd, RAM: ram}
	opts := []ewgfx.Option{ewgfx.WithLogger(log)}
	if useDMA2D {
		b.DMA2D = dma2d.NewSim()
		opts = append(opts, ewgfx.WithDMA2D(b.DMA2D))
	}
	eng, err := ewgfx.NewEngine(p.Config, out, opts...)
	if err != nil {
		return nil, fmt.Errorf("preset %s: %w", p.Name, err)
	}
	b.Engine = eng
	return b, nil
}

var (
	background = pixfmt.Opaque(16, 24, 40)
	banner     = accel.Corners{
		pixfmt.Opaque(200, 40, 40),
		pixfmt.Opaque(40, 40, 200),
		pixfmt.Opaque(40, 200, 200),
		pixfmt.Opaque(200, 200, 40),
	}
	boxColor = pixfmt.RGBA(255, 160, 0, 200)
	white    = pixfmt.Opaque(255, 255, 255)
)

// Frame draws the next frame, brings it to the display and runs one
// display frame.
func (b *Board) Frame() error {
	dst, err := b.Engine.BeginUpdate()
	if err != nil {
		return err
	}
	bounds := dst.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	var dirty image.Rectangle
	if b.frame == 0 {
		if err := b.drawStatic(dst); err != nil {
			_ = b.Engine.EndUpdate(image.Rectangle{})
			return err
		}
		dirty = bounds
	}

	const size = 40
	span := w - size
	x := (b.frame * 6) % (2 * span)
	if x > span {
		x = 2*span - x
	}
	box := image.Rect(x, h/2, x+size, h/2+size)
	steps := []func() error{
		func() error { return b.Engine.FillRectangle(dst, b.box, accel.Solid(background), false) },
		func() error { return b.Engine.FillRectangle(dst, box, accel.Solid(boxColor), true) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			_ = b.Engine.EndUpdate(image.Rectangle{})
			return err
		}
	}
	dirty = dirty.Union(b.box).Union(box)
	b.box = box

	if err := b.Engine.EndUpdate(dirty); err != nil {
		return err
	}
	b.LCD.Tick()
	b.frame++
	return nil
}

func (b *Board) drawStatic(dst *ewgfx.Bitmap) error {
	bounds := dst.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	eng := b.Engine
	if err := eng.FillRectangle(dst, bounds, accel.Solid(background), false); err != nil {
		return err
	}
	if err := eng.FillRectangle(dst, image.Rect(8, 8, w-8, 48), banner, false); err != nil {
		return err
	}
	if err := eng.DrawText(dst, image.Pt(16, 36), "ewgfx · "+eng.Config().Topology.String(), accel.Solid(white)); err != nil {
		return err
	}
	for i := 0; i < 8; i++ {
		y := h - 16 - i*4
		c0 := pixfmt.Opaque(uint8(i*32), 255, 0)
		c1 := pixfmt.Opaque(0, uint8(i*32), 255)
		if err := eng.DrawLine(dst, image.Pt(8, y), image.Pt(w-8, y-24), c0, c1, bounds, false); err != nil {
			return err
		}
	}
	return nil
}

// Frames returns the number of frames drawn.
func (b *Board) Frames() int { return b.frame }

// Snapshot returns what the panel shows.
func (b *Board) Snapshot() (*image.RGBA, error) {
	return b.LCD.Snapshot()
}
