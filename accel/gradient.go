package accel

import (
	"image"

	"golang.org/x/image/math/fixed"

	"github.com/gogpu/ewgfx/pixfmt"
)

// gradient interpolates four corner colors bilinearly over a w×h
// rectangle in 52.12 fixed point. The corner pixels get the corner colors
// exactly.
type gradient struct {
	c    Corners
	w, h int
}

func channel(c pixfmt.Color, i int) uint8 {
	switch i {
	case 0:
		return c.R
	case 1:
		return c.G
	case 2:
		return c.B
	default:
		return c.A
	}
}

// lerpFixed returns a + (b-a)*num/den.
func lerpFixed(a, b fixed.Int52_12, num, den int) fixed.Int52_12 {
	if den <= 0 || a == b {
		return a
	}
	return a + (b-a)*fixed.Int52_12(num)/fixed.Int52_12(den)
}

func toFixed(v uint8) fixed.Int52_12 {
	return fixed.Int52_12(int64(v) << 12)
}

func fromFixed(v fixed.Int52_12) uint8 {
	r := v.Round()
	switch {
	case r < 0:
		return 0
	case r > 255:
		return 255
	}
	return uint8(r)
}

// row writes the colors of gradient row y, columns x0 .. x0+len(out)-1.
func (g *gradient) row(y, x0 int, out []pixfmt.Color) {
	var left, right [4]fixed.Int52_12
	for i := 0; i < 4; i++ {
		left[i] = lerpFixed(toFixed(channel(g.c[TopLeft], i)), toFixed(channel(g.c[BottomLeft], i)), y, g.h-1)
		right[i] = lerpFixed(toFixed(channel(g.c[TopRight], i)), toFixed(channel(g.c[BottomRight], i)), y, g.h-1)
	}
	for j := range out {
		x := x0 + j
		out[j] = pixfmt.Color{
			R: fromFixed(lerpFixed(left[0], right[0], x, g.w-1)),
			G: fromFixed(lerpFixed(left[1], right[1], x, g.w-1)),
			B: fromFixed(lerpFixed(left[2], right[2], x, g.w-1)),
			A: fromFixed(lerpFixed(left[3], right[3], x, g.w-1)),
		}
	}
}

// shader yields the color of every pixel of a locked area: one constant
// for solid operations, or the gradient spanned over the full (unclipped)
// operation rectangle.
type shader struct {
	solid bool
	color pixfmt.Color
	grad  gradient
	off   image.Point
}

func newShader(colors Corners, rect, area image.Rectangle) *shader {
	if colors.Uniform() {
		return &shader{solid: true, color: colors[0]}
	}
	return &shader{
		grad: gradient{c: colors, w: rect.Dx(), h: rect.Dy()},
		off:  area.Min.Sub(rect.Min),
	}
}

func (s *shader) row(y int, out []pixfmt.Color) {
	if s.solid {
		for i := range out {
			out[i] = s.color
		}
		return
	}
	s.grad.row(s.off.Y+y, s.off.X, out)
}
