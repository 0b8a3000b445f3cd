package viewport

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/gogpu/ewgfx/accel"
	"github.com/gogpu/ewgfx/config"
	"github.com/gogpu/ewgfx/internal/diag"
	"github.com/gogpu/ewgfx/pixfmt"
	"github.com/gogpu/ewgfx/surface"
)

var (
	// ErrConfig is returned by New for an output that cannot be driven
	// with the configuration.
	ErrConfig = errors.New("viewport: invalid configuration")

	// ErrUpdateInProgress is returned by BeginUpdate while an update is
	// open.
	ErrUpdateInProgress = errors.New("viewport: update in progress")

	// ErrNoUpdate is returned by EndUpdate without a matching BeginUpdate.
	ErrNoUpdate = errors.New("viewport: no update in progress")

	// ErrVSyncTimeout is returned by EndUpdate when waiting for the swap
	// took longer than the configured timeout.
	ErrVSyncTimeout = errors.New("viewport: vertical sync timeout")

	// ErrNoPalette is returned by SetClut when no buffer is indexed.
	ErrNoPalette = errors.New("viewport: no indexed buffer")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("viewport: closed")
)

// State is the position of a viewport in its update cycle.
type State uint8

const (
	StateUninitialized State = iota
	StateIdle
	StateDrawing
	StateReconciling
	StateAwaitingVSync
)

var stateNames = [...]string{
	StateUninitialized: "uninitialized",
	StateIdle:          "idle",
	StateDrawing:       "drawing",
	StateReconciling:   "reconciling",
	StateAwaitingVSync: "awaiting-vsync",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// Viewport is the update target of one display. Its methods other than
// OnVSyncLine are called from a single goroutine, the main loop.
type Viewport struct {
	cfg   config.Engine
	out   Output
	alloc *surface.Allocator
	disp  *accel.Dispatcher
	log   *slog.Logger

	// bufs[front] is scanned out, bufs[1-front] is the back buffer.
	bufs  [2]*surface.Surface
	front int

	offscreen *surface.Surface
	conv      *pixfmt.Conversion

	// clut is the published palette of indexed framebuffers.
	clut *pixfmt.Clut

	slot  FrameSlot
	vsync chan struct{}

	state     State
	lastDirty image.Rectangle

	// unsynced is drawn area a failed update could not bring to the
	// framebuffers. The next update reconciles it along with its own.
	unsynced image.Rectangle

	// preserve is the area of the front buffer to copy into the back
	// buffer before the next frame is drawn there.
	preserve image.Rectangle
}

// Option configures a Viewport.
type Option func(*Viewport)

// WithLogger sets the logger. By default the shared ewgfx logger is used.
func WithLogger(l *slog.Logger) Option {
	return func(v *Viewport) {
		v.log = l
	}
}

// New checks out against cfg, wraps the framebuffers, allocates the
// off-screen buffer if the topology has one and programs the display.
//
// alloc and disp may be nil, in which case a private allocator and a
// software-only dispatcher are used. Configuration errors wrap ErrConfig
// and are logged once; nothing is left allocated on failure.
func New(cfg config.Engine, out Output, alloc *surface.Allocator, disp *accel.Dispatcher, opts ...Option) (*Viewport, error) {
	v := &Viewport{
		cfg:   cfg,
		out:   out,
		alloc: alloc,
		disp:  disp,
		vsync: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.alloc == nil {
		v.alloc = surface.NewAllocator(surface.WithLogger(v.log))
	}
	if v.disp == nil {
		v.disp = accel.New(nil, accel.WithLogger(v.log))
	}

	if err := v.check(); err != nil {
		v.logger().Error("viewport: rejected configuration",
			"topology", cfg.Topology, "native", cfg.NativeFormat,
			"physical", out.Format, "size", image.Pt(out.Width, out.Height), "err", err)
		return nil, err
	}
	if err := v.setup(); err != nil {
		v.logger().Error("viewport: setup failed", "topology", cfg.Topology, "err", err)
		v.release()
		return nil, err
	}

	v.state = StateIdle
	v.logger().Info("viewport: ready",
		"topology", cfg.Topology, "native", cfg.NativeFormat, "physical", out.Format,
		"width", out.Width, "height", out.Height,
		"front", fmt.Sprintf("%#x", out.Front), "back", fmt.Sprintf("%#x", out.Back))
	return v, nil
}

func (v *Viewport) logger() *slog.Logger {
	return diag.Or(v.log)
}

func (v *Viewport) check() error {
	cfg, out := v.cfg, v.out
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}
	if out.Display == nil || out.Memory == nil {
		return fmt.Errorf("%w: output needs a display and a memory map", ErrConfig)
	}
	if out.Width <= 0 || out.Height <= 0 {
		return fmt.Errorf("%w: invalid size %dx%d", ErrConfig, out.Width, out.Height)
	}
	if out.Front == 0 {
		return fmt.Errorf("%w: no front buffer", ErrConfig)
	}
	if w, h := out.Display.Size(); w != out.Width || h != out.Height {
		return fmt.Errorf("%w: size %dx%d does not match the %dx%d display",
			ErrConfig, out.Width, out.Height, w, h)
	}
	if cfg.Topology.HasOffScreen() {
		if !out.Format.IsDisplayCapable() {
			return fmt.Errorf("%w: %v cannot be displayed", ErrConfig, out.Format)
		}
	} else if out.Format != cfg.NativeFormat {
		return fmt.Errorf("%w: %v topology draws into the framebuffer, which must be %v, not %v",
			ErrConfig, cfg.Topology, cfg.NativeFormat, out.Format)
	}
	if cfg.Topology.HasDoubleBuffer() {
		if out.Back == 0 {
			return fmt.Errorf("%w: %v topology needs a back buffer", ErrConfig, cfg.Topology)
		}
		if out.Back == out.Front {
			return fmt.Errorf("%w: front and back buffer share address %#x", ErrConfig, out.Front)
		}
	}
	return nil
}

func (v *Viewport) setup() error {
	out := v.out
	v.clut = pixfmt.ClutFor(out.Format)

	var err error
	if v.bufs[0], err = v.wrap(out.Front); err != nil {
		return err
	}
	if v.cfg.Topology.HasDoubleBuffer() {
		if v.bufs[1], err = v.wrap(out.Back); err != nil {
			return err
		}
	} else if out.Back != 0 {
		v.logger().Debug("viewport: back buffer ignored", "topology", v.cfg.Topology)
	}

	if v.cfg.Topology.HasOffScreen() {
		v.offscreen, err = v.alloc.Create(v.cfg.NativeFormat, out.Width, out.Height)
		if err != nil {
			return fmt.Errorf("viewport: off-screen buffer: %w", err)
		}
		v.rebuildConversion()
	}

	if v.clut != nil {
		if err := out.Display.SetClut(v.clut.Words()); err != nil {
			return fmt.Errorf("viewport: load clut: %w", err)
		}
	}
	geom := Geometry{Width: out.Width, Height: out.Height, Pitch: out.Format.RowBytes(out.Width)}
	if err := out.Display.ConfigureLayer(out.Front, out.Format, geom); err != nil {
		return fmt.Errorf("viewport: configure layer: %w", err)
	}
	v.slot.Reset(out.Front)

	if v.cfg.Topology.HasDoubleBuffer() {
		if err := out.Display.ConfigureLineEvent(v.cfg.VSyncLine, v.OnVSyncLine); err != nil {
			return fmt.Errorf("viewport: arm line event: %w", err)
		}
	}
	return nil
}

// wrap maps a framebuffer and wraps it into a surface sharing the
// published palette.
func (v *Viewport) wrap(addr uintptr) (*surface.Surface, error) {
	f := v.out.Format
	pitch := f.RowBytes(v.out.Width)
	pix, err := v.out.Memory.Map(addr, f.ImageBytes(v.out.Width, v.out.Height))
	if err != nil {
		return nil, fmt.Errorf("%w: framebuffer %#x: %w", ErrConfig, addr, err)
	}
	mem := surface.Describe(f, pix, v.out.Width, v.out.Height, pitch)
	mem.Addr = addr
	mem.Clut = v.clut
	return v.alloc.Wrap(f, v.out.Width, v.out.Height, mem)
}

// rebuildConversion expands the off-screen palette into the physical
// format. Needed only when an indexed off-screen buffer feeds a
// framebuffer of another format.
func (v *Viewport) rebuildConversion() {
	v.conv = nil
	src := v.offscreen
	if src == nil || !src.Format().IsIndexed() || src.Format() == v.out.Format {
		return
	}
	if v.out.Format.IsIndexed() {
		return
	}
	v.conv = pixfmt.BuildConversion(v.out.Format, src.Clut())
}

func (v *Viewport) release() error {
	var errs []error
	for _, s := range []*surface.Surface{v.offscreen, v.bufs[0], v.bufs[1]} {
		if s != nil {
			errs = append(errs, v.alloc.Destroy(s))
		}
	}
	v.offscreen, v.bufs = nil, [2]*surface.Surface{}
	return errors.Join(errs...)
}

// Close releases the surfaces of the viewport. The framebuffer memory
// itself is left alone. Close fails while an update is open.
func (v *Viewport) Close() error {
	switch v.state {
	case StateUninitialized:
		return ErrClosed
	case StateDrawing, StateReconciling:
		return ErrUpdateInProgress
	}
	err := v.release()
	v.unsynced, v.preserve = image.Rectangle{}, image.Rectangle{}
	v.state = StateUninitialized
	v.logger().Info("viewport: closed")
	return err
}

// SetClut replaces the palette of the indexed buffers of the viewport:
// the off-screen buffer when its native format is Index8, and the
// framebuffers when the physical format is Index8. A published palette is
// reloaded into the display.
func (v *Viewport) SetClut(c *pixfmt.Clut) error {
	switch v.state {
	case StateUninitialized:
		return ErrClosed
	case StateDrawing, StateReconciling:
		return ErrUpdateInProgress
	}
	changed := false
	if v.offscreen != nil && v.offscreen.Format() == pixfmt.FormatIndex8 {
		*v.offscreen.Clut() = *c
		v.rebuildConversion()
		changed = true
	}
	if v.out.Format == pixfmt.FormatIndex8 {
		*v.clut = *c
		if err := v.out.Display.SetClut(v.clut.Words()); err != nil {
			return fmt.Errorf("viewport: load clut: %w", err)
		}
		changed = true
	}
	if !changed {
		return ErrNoPalette
	}
	return nil
}

// Topology returns the buffer arrangement.
func (v *Viewport) Topology() config.Topology { return v.cfg.Topology }

// Config returns the engine configuration the viewport was built with.
func (v *Viewport) Config() config.Engine { return v.cfg }

// Bounds returns the logical display rectangle.
func (v *Viewport) Bounds() image.Rectangle {
	return image.Rect(0, 0, v.out.Width, v.out.Height)
}

// PhysicalFormat returns the framebuffer format.
func (v *Viewport) PhysicalFormat() pixfmt.Format { return v.out.Format }

// Dispatcher returns the dispatcher reconciling the buffers.
func (v *Viewport) Dispatcher() *accel.Dispatcher { return v.disp }

// Front returns the framebuffer most recently published.
func (v *Viewport) Front() *surface.Surface { return v.bufs[v.front] }

// Back returns the back buffer, nil for single-buffered topologies.
func (v *Viewport) Back() *surface.Surface { return v.bufs[1-v.front] }

// OffScreen returns the off-screen buffer, nil when the topology has none.
func (v *Viewport) OffScreen() *surface.Surface { return v.offscreen }

// LastDirty returns the area reconciled by the last completed update: its
// dirty rectangle plus any area left behind by failed updates before it.
func (v *Viewport) LastDirty() image.Rectangle { return v.lastDirty }

// Displayed returns the address the display scans out.
func (v *Viewport) Displayed() uintptr { return v.slot.Current() }

// State returns the position in the update cycle. An idle viewport whose
// swap has not been applied yet reports StateAwaitingVSync.
func (v *Viewport) State() State {
	if v.state == StateIdle && v.slot.Busy() {
		return StateAwaitingVSync
	}
	return v.state
}
