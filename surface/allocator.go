package surface

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/ewgfx/internal/diag"
	"github.com/gogpu/ewgfx/pixfmt"
)

// Allocator creates and destroys surfaces and keeps an advisory count of
// the pixel memory they own.
//
// The counters are diagnostics only. The one place they matter is the
// optional budget set with WithLimit, which makes Create fail the way a
// heap allocation on the target fails when memory runs out.
type Allocator struct {
	used    atomic.Int64
	count   atomic.Int64
	limit   int64
	backend Backend
	log     *slog.Logger
}

// Option configures an Allocator.
type Option func(*Allocator)

// WithLimit caps the bytes owned surfaces may hold. Zero means unlimited.
func WithLimit(bytes int64) Option {
	return func(a *Allocator) {
		a.limit = bytes
	}
}

// WithBackend installs hooks around every lock window.
func WithBackend(b Backend) Option {
	return func(a *Allocator) {
		a.backend = b
	}
}

// WithLogger sets the logger. By default the shared ewgfx logger is used.
func WithLogger(l *slog.Logger) Option {
	return func(a *Allocator) {
		a.log = l
	}
}

// NewAllocator creates an allocator.
func NewAllocator(opts ...Option) *Allocator {
	a := &Allocator{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Allocator) logger() *slog.Logger {
	return diag.Or(a.log)
}

// UsedBytes returns the pixel memory currently owned by live surfaces.
func (a *Allocator) UsedBytes() int64 { return a.used.Load() }

// Count returns the number of live surfaces, owned or not.
func (a *Allocator) Count() int64 { return a.count.Load() }

// Limit returns the configured budget, 0 when unlimited.
func (a *Allocator) Limit() int64 { return a.limit }

func validate(f pixfmt.Format, width, height int) error {
	if width <= 0 || height <= 0 {
		return ErrInvalidDimensions
	}
	if !f.IsValid() {
		return ErrInvalidFormat
	}
	return nil
}

// Create allocates a surface owning exactly width*height*bpp bytes.
//
// When the budget is exhausted Create fails with ErrOutOfMemory and leaves
// the counters untouched; the caller should abandon the operation that
// needed the surface.
func (a *Allocator) Create(f pixfmt.Format, width, height int) (*Surface, error) {
	if err := validate(f, width, height); err != nil {
		return nil, err
	}

	size := int64(f.ImageBytes(width, height))
	for {
		used := a.used.Load()
		if a.limit > 0 && used+size > a.limit {
			a.logger().Warn("surface: allocation failed",
				"format", f, "width", width, "height", height,
				"bytes", size, "used", used, "limit", a.limit)
			return nil, fmt.Errorf("create %v %dx%d: %w", f, width, height, ErrOutOfMemory)
		}
		if a.used.CompareAndSwap(used, used+size) {
			break
		}
	}
	a.count.Add(1)

	s := &Surface{
		format: f,
		width:  width,
		height: height,
		stride: f.RowBytes(width),
		pix:    make([]byte, size),
		clut:   pixfmt.ClutFor(f),
		owned:  true,
		alloc:  a,
	}
	a.logger().Debug("surface: created", "format", f, "width", width, "height", height, "bytes", size)
	return s, nil
}

// CreateConst wraps read-only memory, such as a bitmap resource in flash,
// without copying it. The descriptor must describe the format exactly:
// Pitch1X equal to the pixel size and Pitch1Y at least one row of pixels.
func (a *Allocator) CreateConst(f pixfmt.Format, width, height int, mem Memory) (*Surface, error) {
	s, err := a.wrap(f, width, height, mem)
	if err != nil {
		return nil, err
	}
	s.readOnly = true
	return s, nil
}

// Wrap wraps writable memory the caller keeps ownership of, such as a
// framebuffer. Destroy never releases the wrapped memory.
func (a *Allocator) Wrap(f pixfmt.Format, width, height int, mem Memory) (*Surface, error) {
	return a.wrap(f, width, height, mem)
}

func (a *Allocator) wrap(f pixfmt.Format, width, height int, mem Memory) (*Surface, error) {
	if err := validate(f, width, height); err != nil {
		return nil, err
	}
	bpp := f.BytesPerPixel()
	if mem.Pitch1X != bpp || mem.Pitch1Y < width*bpp {
		return nil, fmt.Errorf("wrap %v %dx%d (pitch %d/%d): %w",
			f, width, height, mem.Pitch1X, mem.Pitch1Y, ErrInvalidStride)
	}
	need := (height-1)*mem.Pitch1Y + width*bpp
	if len(mem.Pix) < need {
		return nil, fmt.Errorf("wrap %v %dx%d: have %d bytes, need %d: %w",
			f, width, height, len(mem.Pix), need, ErrDataTooSmall)
	}

	clut := mem.Clut
	if clut == nil {
		clut = pixfmt.ClutFor(f)
	}
	a.count.Add(1)
	return &Surface{
		format: f,
		width:  width,
		height: height,
		stride: mem.Pitch1Y,
		pix:    mem.Pix[:need:need],
		clut:   clut,
		addr:   mem.Addr,
		alloc:  a,
	}, nil
}

// Destroy releases the surface. Owned pixel memory is returned to the
// budget; wrapped memory is left alone. The surface must not be used after.
func (a *Allocator) Destroy(s *Surface) error {
	if s == nil {
		return nil
	}
	if s.destroyed {
		return ErrDestroyed
	}
	if s.locks > 0 {
		return fmt.Errorf("destroy %v: %w", s, ErrLocked)
	}
	if s.owned {
		a.used.Add(-int64(len(s.pix)))
	}
	a.count.Add(-1)
	s.destroyed = true
	s.pix = nil
	s.clut = nil
	return nil
}
