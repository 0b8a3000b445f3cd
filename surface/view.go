package surface

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/gogpu/ewgfx/pixfmt"
)

// View is a draw.Image over a locked surface. It lets image/draw and
// golang.org/x/image scale or rasterize straight into a surface.
//
// A View holds the lock until Close; Set on a View opened without
// LockWrite is ignored.
type View struct {
	s   *Surface
	mem Memory
}

// Ensure View implements draw.Image.
var _ draw.Image = (*View)(nil)

// OpenView locks the whole surface with mode and returns a View over it.
func (s *Surface) OpenView(mode LockMode) (*View, error) {
	mem, err := s.Lock(s.Bounds(), mode)
	if err != nil {
		return nil, err
	}
	return &View{s: s, mem: mem}, nil
}

// Close releases the lock held by the view.
func (v *View) Close() error {
	return v.s.Unlock(v.mem)
}

// ColorModel implements image.Image.
func (v *View) ColorModel() color.Model {
	return pixfmt.Model(v.s.format)
}

// Bounds implements image.Image.
func (v *View) Bounds() image.Rectangle {
	return v.s.Bounds()
}

// At implements image.Image.
func (v *View) At(x, y int) color.Color {
	return v.ColorAt(x, y)
}

// ColorAt returns the pixel at (x, y) as a Color; outside the surface it
// returns transparent black.
func (v *View) ColorAt(x, y int) pixfmt.Color {
	if !(image.Point{X: x, Y: y}.In(v.mem.area)) {
		return pixfmt.Transparent
	}
	off := v.mem.Offset(x, y)
	return Decode(v.s.format, v.mem.Clut, pixfmt.Load(v.s.format, v.mem.Pix[off:]))
}

// Set implements draw.Image.
func (v *View) Set(x, y int, c color.Color) {
	if v.mem.mode&LockWrite == 0 || !(image.Point{X: x, Y: y}.In(v.mem.area)) {
		return
	}
	off := v.mem.Offset(x, y)
	pixfmt.Store(v.s.format, v.mem.Pix[off:], Encode(v.s.format, v.mem.Clut, pixfmt.FromColor(c)))
}
