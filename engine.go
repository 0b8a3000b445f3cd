package ewgfx

import (
	"context"
	"errors"
	"image"
	"log/slog"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"

	"github.com/gogpu/ewgfx/accel"
	"github.com/gogpu/ewgfx/accel/dma2d"
	"github.com/gogpu/ewgfx/config"
	"github.com/gogpu/ewgfx/internal/cache"
	"github.com/gogpu/ewgfx/internal/diag"
	"github.com/gogpu/ewgfx/surface"
	"github.com/gogpu/ewgfx/viewport"
)

// Bitmap is a drawable surface: a framebuffer, the off-screen buffer or a
// bitmap created by the engine.
type Bitmap = surface.Surface

// Option configures an Engine during creation.
//
// Example:
//
//	// Software rendering only
//	eng, err := ewgfx.NewEngine(cfg, out)
//
//	// DMA2D acceleration through a driver
//	eng, err := ewgfx.NewEngine(cfg, out, ewgfx.WithDMA2D(drv))
type Option func(*engineOptions)

type engineOptions struct {
	hw     accel.Accelerator
	drv    dma2d.Driver
	alloc  *surface.Allocator
	log    *slog.Logger
	face   font.Face
	scaler xdraw.Interpolator
}

// WithAccelerator sets the blitter used for fills and copies.
// Without one every operation runs in software.
func WithAccelerator(hw accel.Accelerator) Option {
	return func(o *engineOptions) {
		o.hw = hw
	}
}

// WithDMA2D drives the DMA2D through drv, with transfers bounded by the
// configured accelerator timeout. It overrides WithAccelerator.
func WithDMA2D(drv dma2d.Driver) Option {
	return func(o *engineOptions) {
		o.drv = drv
	}
}

// WithAllocator sets the surface allocator. By default the engine creates
// one bounded by the configured surface memory.
func WithAllocator(a *surface.Allocator) Option {
	return func(o *engineOptions) {
		o.alloc = a
	}
}

// WithLogger sets the logger for the engine and the components it
// creates. By default the shared logger from SetLogger is used.
func WithLogger(l *slog.Logger) Option {
	return func(o *engineOptions) {
		o.log = l
	}
}

// WithFace sets the font face DrawText renders with. The default is Go
// Regular at 16 points.
func WithFace(f font.Face) Option {
	return func(o *engineOptions) {
		o.face = f
	}
}

// WithScaler sets the interpolator WarpBitmap scales with. The default is
// bilinear.
func WithScaler(s xdraw.Interpolator) Option {
	return func(o *engineOptions) {
		o.scaler = s
	}
}

// Engine draws into a viewport. Except for OnVSyncLine its methods are
// called from one goroutine.
type Engine struct {
	cfg    config.Engine
	alloc  *surface.Allocator
	disp   *accel.Dispatcher
	vp     *viewport.Viewport
	log    *slog.Logger
	face   font.Face
	scaler xdraw.Interpolator

	// bitmaps caches decoded bitmaps in the native format by name.
	bitmaps *cache.Cache[string, cachedBitmap]
}

// NewEngine creates an engine for the display output described by out.
// Configuration errors wrap viewport.ErrConfig.
func NewEngine(cfg config.Engine, out viewport.Output, opts ...Option) (*Engine, error) {
	o := engineOptions{scaler: xdraw.ApproxBiLinear}
	for _, opt := range opts {
		opt(&o)
	}

	e := &Engine{
		cfg:    cfg,
		alloc:  o.alloc,
		log:    o.log,
		face:   o.face,
		scaler: o.scaler,
	}
	if e.alloc == nil {
		e.alloc = surface.NewAllocator(
			surface.WithLimit(cfg.MaxSurfaceMemory),
			surface.WithLogger(o.log),
		)
	}
	hw := o.hw
	if o.drv != nil {
		hw = dma2d.New(o.drv, dma2d.WithTimeout(cfg.AccelTimeout), dma2d.WithLogger(o.log))
	}
	e.disp = accel.New(hw, accel.WithLogger(o.log))

	vp, err := viewport.New(cfg, out, e.alloc, e.disp, viewport.WithLogger(o.log))
	if err != nil {
		return nil, err
	}
	e.vp = vp

	if cfg.MaxSurfaceCacheSize > 0 {
		e.bitmaps = cache.New(cfg.MaxSurfaceCacheSize, e.evicted)
	}

	accelName := "software"
	if hw != nil {
		accelName = hw.Name()
	}
	e.logger().Info("ewgfx: engine ready",
		"topology", cfg.Topology, "native", cfg.NativeFormat, "accelerator", accelName)
	return e, nil
}

func (e *Engine) logger() *slog.Logger {
	return diag.Or(e.log)
}

// Config returns the engine configuration.
func (e *Engine) Config() config.Engine { return e.cfg }

// Viewport returns the viewport the engine draws into.
func (e *Engine) Viewport() *viewport.Viewport { return e.vp }

// Allocator returns the surface allocator.
func (e *Engine) Allocator() *surface.Allocator { return e.alloc }

// Dispatcher returns the fill and copy dispatcher.
func (e *Engine) Dispatcher() *accel.Dispatcher { return e.disp }

// BeginUpdate starts a screen update and returns the bitmap to draw into.
func (e *Engine) BeginUpdate() (*Bitmap, error) {
	return e.vp.BeginUpdate()
}

// EndUpdate finishes the update; dirty is the area that was drawn.
func (e *Engine) EndUpdate(dirty image.Rectangle) error {
	return e.vp.EndUpdate(dirty)
}

// EndUpdateContext is EndUpdate with a context bounding the vertical sync
// wait.
func (e *Engine) EndUpdateContext(ctx context.Context, dirty image.Rectangle) error {
	return e.vp.EndUpdateContext(ctx, dirty)
}

// OnVSyncLine applies a pending framebuffer swap. Call it from the
// display's line interrupt if the viewport did not arm it itself.
func (e *Engine) OnVSyncLine() {
	e.vp.OnVSyncLine()
}

// Stats is a snapshot of engine diagnostics.
type Stats struct {
	Accel accel.Stats
	Cache cache.Stats

	// Surfaces and SurfaceBytes count live surfaces and the pixel memory
	// they own.
	Surfaces     int64
	SurfaceBytes int64
}

// Stats returns the current diagnostics.
func (e *Engine) Stats() Stats {
	s := Stats{
		Accel:        e.disp.Stats(),
		Surfaces:     e.alloc.Count(),
		SurfaceBytes: e.alloc.UsedBytes(),
	}
	if e.bitmaps != nil {
		s.Cache = e.bitmaps.Stats()
	}
	return s
}

// Close drops the bitmap cache and releases the viewport. Bitmaps the
// caller created must be freed before.
func (e *Engine) Close() error {
	if e.bitmaps != nil {
		e.bitmaps.Clear()
	}
	err := e.vp.Close()
	if n := e.alloc.Count(); err == nil && n > 0 {
		e.logger().Warn("ewgfx: bitmaps still allocated at close", "count", n, "bytes", e.alloc.UsedBytes())
	}
	if err != nil && !errors.Is(err, viewport.ErrClosed) {
		e.logger().Error("ewgfx: close failed", "err", err)
	}
	return err
}
