// Package ltdc models the LCD-TFT display controller of the STM32F7: a
// single layer scanning out a framebuffer from memory, a 256-entry color
// table and a programmable line interrupt.
//
// Layer registers are double buffered like on the chip. Writes go to the
// shadow set and take effect at the next vertical blanking, so a new
// framebuffer address never shows up in the middle of a frame. Tick
// advances the model by one frame.
package ltdc

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/ewgfx/internal/diag"
	"github.com/gogpu/ewgfx/pixfmt"
	"github.com/gogpu/ewgfx/viewport"
)

var (
	// ErrNotConfigured is returned before the layer has been configured.
	ErrNotConfigured = errors.New("ltdc: layer not configured")

	// ErrLayer is returned for a layer setup the controller cannot scan.
	ErrLayer = errors.New("ltdc: invalid layer configuration")
)

type layer struct {
	addr    uintptr
	format  pixfmt.Format
	geom    viewport.Geometry
	enabled bool
}

// Controller is a display controller driving a width x height panel.
// It is safe for use from the main loop and the interrupt at once.
type Controller struct {
	width, height int
	mem           viewport.Memory
	background    pixfmt.Color
	log           *slog.Logger

	mu      sync.Mutex
	active  layer
	shadow  layer
	reload  bool
	clut    [256]uint32
	line    int
	handler func()
	frames  uint64
	reloads uint64
}

// Option configures a Controller.
type Option func(*Controller)

// WithBackground sets the color shown where the layer is transparent.
// The default is opaque black.
func WithBackground(c pixfmt.Color) Option {
	return func(c2 *Controller) {
		c2.background = c
	}
}

// WithLogger sets the logger. By default the shared ewgfx logger is used.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		c.log = l
	}
}

// New creates a controller for a panel of the given size, fetching
// framebuffers through mem.
func New(width, height int, mem viewport.Memory, opts ...Option) *Controller {
	c := &Controller{
		width:      width,
		height:     height,
		mem:        mem,
		background: pixfmt.Opaque(0, 0, 0),
		line:       -1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) logger() *slog.Logger {
	return diag.Or(c.log)
}

// Size returns the panel size.
func (c *Controller) Size() (width, height int) {
	return c.width, c.height
}

// ConfigureLayer programs and enables the layer. The registers are
// reloaded immediately, as during display initialization.
func (c *Controller) ConfigureLayer(addr uintptr, f pixfmt.Format, geom viewport.Geometry) error {
	if !f.IsDisplayCapable() {
		return fmt.Errorf("%w: format %v", ErrLayer, f)
	}
	if geom.X < 0 || geom.Y < 0 || geom.Width <= 0 || geom.Height <= 0 ||
		geom.X+geom.Width > c.width || geom.Y+geom.Height > c.height {
		return fmt.Errorf("%w: window %+v outside the %dx%d panel", ErrLayer, geom, c.width, c.height)
	}
	if geom.Pitch < f.RowBytes(geom.Width) {
		return fmt.Errorf("%w: pitch %d below one row of %v", ErrLayer, geom.Pitch, f)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.shadow = layer{addr: addr, format: f, geom: geom, enabled: true}
	c.active = c.shadow
	c.reload = false
	c.reloads++
	c.logger().Debug("ltdc: layer configured",
		"addr", fmt.Sprintf("%#x", addr), "format", f, "geometry", geom)
	return nil
}

// SetLayerAddress writes the framebuffer address to the shadow
// registers. The display switches at the next vertical blanking.
func (c *Controller) SetLayerAddress(addr uintptr) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.shadow.enabled {
		return ErrNotConfigured
	}
	c.shadow.addr = addr
	c.reload = true
	return nil
}

// SetClut loads the color table.
func (c *Controller) SetClut(clut *[256]uint32) error {
	c.mu.Lock()
	c.clut = *clut
	c.mu.Unlock()
	return nil
}

// ConfigureLineEvent arms handler for the given scan line. A line outside
// the panel disarms the event.
func (c *Controller) ConfigureLineEvent(line int, handler func()) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if line < 0 || line > c.height {
		c.line, c.handler = -1, nil
		return fmt.Errorf("ltdc: line %d outside 0..%d", line, c.height)
	}
	c.line, c.handler = line, handler
	return nil
}

// Tick runs one frame: the scan passes the armed line, which runs the
// line handler, then vertical blanking reloads the shadow registers.
func (c *Controller) Tick() {
	c.mu.Lock()
	h := c.handler
	c.mu.Unlock()

	// The handler calls back into the controller.
	if h != nil {
		h()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.reload {
		c.active = c.shadow
		c.reload = false
		c.reloads++
	}
	c.frames++
}

// Shown returns the framebuffer address the panel scans out.
func (c *Controller) Shown() uintptr {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active.addr
}

// Frames returns the number of frames scanned since New.
func (c *Controller) Frames() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frames
}

// Reloads returns how often the shadow registers were applied.
func (c *Controller) Reloads() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reloads
}
