package ewgfx

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/png" // register PNG for LoadBitmap
	"io"

	_ "golang.org/x/image/bmp" // register BMP for LoadBitmap

	"github.com/gogpu/ewgfx/pixfmt"
	"github.com/gogpu/ewgfx/surface"
)

// ErrDecode is returned by LoadBitmap for data that is not a supported
// image.
var ErrDecode = errors.New("ewgfx: cannot decode bitmap")

// cachedBitmap is a decoded bitmap in the native format. The cache keeps
// its own copy of the pixels; every LoadBitmap hands out a fresh surface.
type cachedBitmap struct {
	width, height int
	format        pixfmt.Format
	pix           []byte
}

func (e *Engine) evicted(name string, b cachedBitmap) {
	e.logger().Debug("ewgfx: bitmap evicted", "name", name, "bytes", len(b.pix))
}

// CreateBitmap allocates a bitmap of the given format. The content is
// zero: transparent black, or index 0 for indexed formats.
func (e *Engine) CreateBitmap(f pixfmt.Format, width, height int) (*Bitmap, error) {
	return e.alloc.Create(f, width, height)
}

// CreateNativeBitmap allocates a bitmap in the native format.
func (e *Engine) CreateNativeBitmap(width, height int) (*Bitmap, error) {
	return e.alloc.Create(e.cfg.NativeFormat, width, height)
}

// LoadBitmap decodes a PNG or BMP image into a new bitmap in the native
// format. Decoded bitmaps are cached under name within the configured
// cache budget, so loading the same name again skips r entirely.
func (e *Engine) LoadBitmap(name string, r io.Reader) (*Bitmap, error) {
	if e.bitmaps != nil {
		if cb, ok := e.bitmaps.Get(name); ok && cb.format == e.cfg.NativeFormat {
			return e.fromCache(cb)
		}
	}

	img, kind, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrDecode, name, err)
	}
	b := img.Bounds()
	dst, err := e.CreateNativeBitmap(b.Dx(), b.Dy())
	if err != nil {
		return nil, fmt.Errorf("ewgfx: load %q: %w", name, err)
	}
	if err := e.decodeInto(name, dst, img); err != nil {
		_ = e.alloc.Destroy(dst)
		return nil, fmt.Errorf("ewgfx: load %q: %w", name, err)
	}
	e.logger().Debug("ewgfx: bitmap decoded", "name", name, "kind", kind, "size", b.Size(), "format", dst.Format())
	return dst, nil
}

// decodeInto draws img into dst and records the result in the cache.
func (e *Engine) decodeInto(name string, dst *Bitmap, img image.Image) error {
	v, err := dst.OpenView(surface.LockWrite)
	if err != nil {
		return err
	}
	draw.Draw(v, v.Bounds(), img, img.Bounds().Min, draw.Src)
	if err := v.Close(); err != nil {
		return err
	}
	if e.bitmaps == nil {
		return nil
	}
	pix, err := snapshot(dst)
	if err != nil {
		return err
	}
	e.bitmaps.Set(name, cachedBitmap{
		width: dst.Width(), height: dst.Height(), format: dst.Format(), pix: pix,
	}, int64(len(pix)))
	return nil
}

func (e *Engine) fromCache(cb cachedBitmap) (*Bitmap, error) {
	dst, err := e.CreateBitmap(cb.format, cb.width, cb.height)
	if err != nil {
		return nil, err
	}
	mem, err := dst.Lock(dst.Bounds(), surface.LockWrite)
	if err != nil {
		_ = e.alloc.Destroy(dst)
		return nil, err
	}
	n := cb.format.RowBytes(cb.width)
	for y := 0; y < cb.height; y++ {
		copy(mem.Row(y), cb.pix[y*n:(y+1)*n])
	}
	if err := dst.Unlock(mem); err != nil {
		_ = e.alloc.Destroy(dst)
		return nil, err
	}
	return dst, nil
}

// snapshot copies the pixels of s into a packed buffer.
func snapshot(s *surface.Surface) ([]byte, error) {
	mem, err := s.Lock(s.Bounds(), surface.LockRead)
	if err != nil {
		return nil, err
	}
	n := s.Format().RowBytes(s.Width())
	pix := make([]byte, 0, n*s.Height())
	for y := 0; y < s.Height(); y++ {
		pix = append(pix, mem.Row(y)...)
	}
	return pix, s.Unlock(mem)
}

// FreeBitmap releases a bitmap. Framebuffers and the off-screen buffer
// belong to the viewport and cannot be freed.
func (e *Engine) FreeBitmap(b *Bitmap) error {
	if e.isViewportSurface(b) {
		return fmt.Errorf("ewgfx: free %v: owned by the viewport: %w", b, surface.ErrReadOnly)
	}
	return e.alloc.Destroy(b)
}

func (e *Engine) isViewportSurface(b *Bitmap) bool {
	return b != nil && (b == e.vp.Front() || b == e.vp.Back() || b == e.vp.OffScreen())
}

// LockBitmap gives direct access to area of b.
func (e *Engine) LockBitmap(b *Bitmap, area image.Rectangle, mode surface.LockMode) (surface.Memory, error) {
	return b.Lock(area, mode)
}

// UnlockBitmap ends a LockBitmap.
func (e *Engine) UnlockBitmap(b *Bitmap, mem surface.Memory) error {
	return b.Unlock(mem)
}
