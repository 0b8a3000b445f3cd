// Package panel drives displays that have their own frame memory, such as
// SPI TFT modules handled by tinygo drivers, as a viewport display.
//
// Such panels do not scan the framebuffer by themselves. A Display keeps
// an ltdc.Controller for the layer state and pushes the composed frame to
// the device once per Tick.
package panel

import (
	"fmt"
	"log/slog"

	"tinygo.org/x/drivers"

	"github.com/gogpu/ewgfx/internal/diag"
	"github.com/gogpu/ewgfx/ltdc"
	"github.com/gogpu/ewgfx/viewport"
)

// Display adapts a drivers.Displayer. It implements viewport.Display.
type Display struct {
	*ltdc.Controller

	dev    drivers.Displayer
	log    *slog.Logger
	pushed uint64
}

// Option configures a Display.
type Option func(*Display)

// WithLogger sets the logger. By default the shared ewgfx logger is used.
func WithLogger(l *slog.Logger) Option {
	return func(d *Display) {
		d.log = l
	}
}

// New wraps dev. Framebuffers are read through mem.
func New(dev drivers.Displayer, mem viewport.Memory, opts ...Option) *Display {
	d := &Display{dev: dev}
	for _, opt := range opts {
		opt(d)
	}
	w, h := dev.Size()
	d.Controller = ltdc.New(int(w), int(h), mem, ltdc.WithLogger(d.log))
	return d
}

// Tick runs one frame of the controller and sends the shown frame to the
// device.
func (d *Display) Tick() error {
	d.Controller.Tick()
	return d.Push()
}

// Push sends the shown frame to the device.
func (d *Display) Push() error {
	img, err := d.Snapshot()
	if err != nil {
		return err
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			d.dev.SetPixel(int16(x), int16(y), img.RGBAAt(x, y))
		}
	}
	if err := d.dev.Display(); err != nil {
		diag.Or(d.log).Error("panel: display failed", "err", err)
		return fmt.Errorf("panel: display: %w", err)
	}
	d.pushed++
	return nil
}

// Pushed returns the number of frames sent to the device.
func (d *Display) Pushed() uint64 { return d.pushed }
