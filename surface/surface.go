package surface

import (
	"fmt"
	"image"

	"github.com/gogpu/ewgfx/pixfmt"
)

// Surface is a rectangular pixel buffer with a fixed format and size.
//
// Surfaces are created and destroyed through an Allocator. Ownership is
// single and explicit: whoever created a surface destroys it, and nothing
// else keeps a reference to it after that.
type Surface struct {
	format pixfmt.Format
	width  int
	height int
	stride int
	pix    []byte
	clut   *pixfmt.Clut
	addr   uintptr

	// owned surfaces return their bytes to the allocator on Destroy.
	owned    bool
	readOnly bool

	locks     int
	destroyed bool
	alloc     *Allocator
}

// Width returns the surface width in pixels.
func (s *Surface) Width() int { return s.width }

// Height returns the surface height in pixels.
func (s *Surface) Height() int { return s.height }

// Format returns the pixel format.
func (s *Surface) Format() pixfmt.Format { return s.format }

// BytesPerPixel returns the size of one pixel.
func (s *Surface) BytesPerPixel() int { return s.format.BytesPerPixel() }

// Stride returns the number of bytes between rows.
func (s *Surface) Stride() int { return s.stride }

// Bounds returns the surface rectangle, anchored at the origin.
func (s *Surface) Bounds() image.Rectangle {
	return image.Rect(0, 0, s.width, s.height)
}

// Addr returns the bus address of pixel (0, 0), or 0 for heap surfaces.
func (s *Surface) Addr() uintptr { return s.addr }

// Owned reports whether the surface owns its pixel memory.
func (s *Surface) Owned() bool { return s.owned }

// ReadOnly reports whether the surface was created with CreateConst.
func (s *Surface) ReadOnly() bool { return s.readOnly }

// Locked reports whether a lock window is open.
func (s *Surface) Locked() bool { return s.locks > 0 }

// String implements fmt.Stringer.
func (s *Surface) String() string {
	return fmt.Sprintf("surface(%dx%d %v @%#x)", s.width, s.height, s.format, s.addr)
}

// Lock opens an access window on area and returns direct pointers into the
// pixel memory.
//
// Write access (LockWrite or LockClutWrite) on a const surface fails with
// ErrReadOnly; an empty area or one reaching outside the surface fails with
// ErrOutOfBounds. Every successful Lock must be paired with Unlock.
func (s *Surface) Lock(area image.Rectangle, mode LockMode) (Memory, error) {
	if s.destroyed {
		return Memory{}, ErrDestroyed
	}
	if s.readOnly && mode.Writes() {
		return Memory{}, fmt.Errorf("lock %v: %w", s, ErrReadOnly)
	}
	if area.Empty() || !area.In(s.Bounds()) {
		return Memory{}, fmt.Errorf("lock %v at %v: %w", s, area, ErrOutOfBounds)
	}

	bpp := s.format.BytesPerPixel()
	start := area.Min.Y*s.stride + area.Min.X*bpp
	end := (area.Max.Y-1)*s.stride + area.Max.X*bpp

	mem := Memory{
		Pix:     s.pix[start:end:end],
		Pitch1X: bpp,
		Pitch1Y: s.stride,
		Width:   area.Dx(),
		Height:  area.Dy(),
		Format:  s.format,
		area:    area,
		mode:    mode,
	}
	if mode&(LockClutRead|LockClutWrite) != 0 || s.format.IsIndexed() {
		mem.Clut = s.clut
	}
	if s.addr != 0 {
		mem.Addr = s.addr + uintptr(start)
	}

	s.locks++
	if b := s.alloc.backend; b != nil {
		b.OnLock(s, area, mode)
	}
	return mem, nil
}

// Unlock closes the access window opened by Lock.
func (s *Surface) Unlock(mem Memory) error {
	if s.destroyed {
		return ErrDestroyed
	}
	if s.locks == 0 {
		return ErrNotLocked
	}
	s.locks--
	if b := s.alloc.backend; b != nil {
		b.OnUnlock(s, mem.area, mem.mode)
	}
	return nil
}

// Clut returns the color table of an indexed surface, or nil.
// The table must only be modified under a LockClutWrite window.
func (s *Surface) Clut() *pixfmt.Clut { return s.clut }

// Fill sets every pixel to c. It is a convenience for tests and start-up
// code; drawing goes through the accel package.
func (s *Surface) Fill(c pixfmt.Color) error {
	mem, err := s.Lock(s.Bounds(), LockWrite)
	if err != nil {
		return err
	}
	v := Encode(s.format, s.clut, c)
	for y := 0; y < mem.Height; y++ {
		pixfmt.FillRow(s.format, mem.Row(y), mem.Width, v)
	}
	return s.Unlock(mem)
}

// At returns the color of pixel (x, y). It locks the single pixel for
// reading; use Lock directly for anything but spot checks.
func (s *Surface) At(x, y int) (pixfmt.Color, error) {
	mem, err := s.Lock(image.Rect(x, y, x+1, y+1), LockRead)
	if err != nil {
		return pixfmt.Color{}, err
	}
	v := pixfmt.Load(s.format, mem.Pix)
	c := Decode(s.format, mem.Clut, v)
	return c, s.Unlock(mem)
}

// Decode converts a packed pixel to a Color, resolving indexed formats
// through clut when one is given.
func Decode(f pixfmt.Format, clut *pixfmt.Clut, v uint32) pixfmt.Color {
	if f == pixfmt.FormatIndex8 && clut != nil {
		return clut[uint8(v)]
	}
	return pixfmt.UnpackColor(f, v)
}

// Encode converts c to a packed pixel, searching clut for Index8 surfaces.
func Encode(f pixfmt.Format, clut *pixfmt.Clut, c pixfmt.Color) uint32 {
	if f == pixfmt.FormatIndex8 && clut != nil {
		return uint32(clut.Nearest(c))
	}
	return pixfmt.PackColor(f, c)
}
