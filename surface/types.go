package surface

import (
	"errors"
	"image"

	"github.com/gogpu/ewgfx/pixfmt"
)

// Common errors for surface operations.
var (
	// ErrInvalidDimensions is returned when width or height is non-positive.
	ErrInvalidDimensions = errors.New("surface: invalid dimensions")

	// ErrInvalidFormat is returned when the format is not recognized.
	ErrInvalidFormat = errors.New("surface: invalid format")

	// ErrInvalidStride is returned when a memory descriptor's pitches do not
	// match the format.
	ErrInvalidStride = errors.New("surface: stride does not match format")

	// ErrDataTooSmall is returned when provided memory is smaller than required.
	ErrDataTooSmall = errors.New("surface: data buffer too small")

	// ErrOutOfMemory is returned when the allocator's budget is exhausted.
	ErrOutOfMemory = errors.New("surface: out of memory")

	// ErrReadOnly is returned when write access is requested on a const surface.
	ErrReadOnly = errors.New("surface: surface is read-only")

	// ErrOutOfBounds is returned when a lock area is empty or outside the surface.
	ErrOutOfBounds = errors.New("surface: lock area out of bounds")

	// ErrLocked is returned when destroying a surface that is still locked.
	ErrLocked = errors.New("surface: surface is locked")

	// ErrNotLocked is returned by Unlock without a matching Lock.
	ErrNotLocked = errors.New("surface: surface is not locked")

	// ErrDestroyed is returned when using a destroyed surface.
	ErrDestroyed = errors.New("surface: surface destroyed")
)

// LockMode selects the access requested by Lock.
type LockMode uint8

const (
	// LockRead requests read access to the pixels.
	LockRead LockMode = 1 << iota

	// LockWrite requests write access to the pixels.
	LockWrite

	// LockClutRead requests read access to the color table.
	LockClutRead

	// LockClutWrite requests write access to the color table.
	LockClutWrite
)

// Writes reports whether m asks for any kind of write access.
func (m LockMode) Writes() bool {
	return m&(LockWrite|LockClutWrite) != 0
}

// Memory describes a locked area of a surface.
//
// Pix starts at the first pixel of the area; pixel (x, y) of the area lives
// at Pix[y*Pitch1Y+x*Pitch1X]. Pix ends right after the last pixel of the
// last row, so rows other than the last may be followed by padding.
type Memory struct {
	Pix     []byte
	Pitch1X int
	Pitch1Y int

	// Width and Height are the size of the area in pixels.
	Width, Height int

	Format pixfmt.Format

	// Clut is the color table of indexed surfaces, nil otherwise.
	Clut *pixfmt.Clut

	// Addr is the bus address of Pix[0] for surfaces living in mapped
	// memory (framebuffers), 0 otherwise.
	Addr uintptr

	area image.Rectangle
	mode LockMode
}

// Row returns the pixels of row y of the area.
func (m Memory) Row(y int) []byte {
	start := y * m.Pitch1Y
	return m.Pix[start : start+m.Width*m.Pitch1X]
}

// Offset returns the byte offset of pixel (x, y) of the area.
func (m Memory) Offset(x, y int) int {
	return y*m.Pitch1Y + x*m.Pitch1X
}

// Area returns the locked rectangle in surface coordinates.
func (m Memory) Area() image.Rectangle {
	return m.area
}

// Mode returns the access the area was locked with.
func (m Memory) Mode() LockMode {
	return m.mode
}

// Describe builds a Memory over pix for a buffer of the given format and
// size, with rows pitch bytes apart. It is the descriptor CreateConst and
// Wrap expect.
func Describe(f pixfmt.Format, pix []byte, width, height, pitch int) Memory {
	return Memory{
		Pix:     pix,
		Pitch1X: f.BytesPerPixel(),
		Pitch1Y: pitch,
		Width:   width,
		Height:  height,
		Format:  f,
	}
}

// Backend hooks the lock window of surfaces, e.g. to clean the data cache
// before a DMA engine reads memory the CPU wrote.
type Backend interface {
	OnLock(s *Surface, area image.Rectangle, mode LockMode)
	OnUnlock(s *Surface, area image.Rectangle, mode LockMode)
}
