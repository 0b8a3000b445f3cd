package accel

import (
	"github.com/gogpu/ewgfx/internal/blend"
	"github.com/gogpu/ewgfx/pixfmt"
	"github.com/gogpu/ewgfx/surface"
)

// The software row drivers. They are written against a generic
// load/convert/store pipeline with two shortcuts: a plain row copy when
// both sides share the layout, and a CLUT conversion table when an indexed
// source is copied into a direct-color destination.
//
// Pixel math goes through pixfmt packing and internal/blend, the same
// helpers the DMA2D model uses.

// put stores c into the pixel at b, blending over it when blend is set.
func put(f pixfmt.Format, clut *pixfmt.Clut, b []byte, c pixfmt.Color, blendOver bool) {
	if !blendOver {
		pixfmt.Store(f, b, surface.Encode(f, clut, c))
		return
	}
	if c.A == 0 {
		return
	}
	if f == pixfmt.FormatPARGB8888 {
		v := pixfmt.Load(f, b)
		sr, sg, sb, sa := blend.Premultiply(c.R, c.G, c.B, c.A)
		r, g, bl, a := blend.SourceOver(sr, sg, sb, sa, uint8(v>>16), uint8(v>>8), uint8(v), uint8(v>>24))
		pixfmt.Store(f, b, uint32(a)<<24|uint32(r)<<16|uint32(g)<<8|uint32(bl))
		return
	}
	d := surface.Decode(f, clut, pixfmt.Load(f, b))
	r, g, bl, a := blend.Over(c.R, c.G, c.B, c.A, d.R, d.G, d.B, d.A)
	pixfmt.Store(f, b, surface.Encode(f, clut, pixfmt.Color{R: r, G: g, B: bl, A: a}))
}

// modulate applies a modulation color to a source pixel. Alpha8 sources
// take their color from m; other sources only get their opacity scaled.
func modulate(src pixfmt.Format, s, m pixfmt.Color) pixfmt.Color {
	if src == pixfmt.FormatAlpha8 {
		return pixfmt.Color{R: m.R, G: m.G, B: m.B, A: blend.MulDiv255(s.A, m.A)}
	}
	s.A = blend.MulDiv255(s.A, m.A)
	return s
}

func isDirect(f pixfmt.Format) bool {
	return !f.IsIndexed() && f != pixfmt.FormatAlpha8
}

// sameLayout reports whether src rows can be copied byte for byte.
func sameLayout(dst, src surface.Memory) bool {
	if dst.Format != src.Format {
		return false
	}
	if dst.Format != pixfmt.FormatIndex8 || dst.Clut == src.Clut {
		return true
	}
	return dst.Clut != nil && src.Clut != nil && *dst.Clut == *src.Clut
}

// rowOrder returns the first row, the end row and the step for walking an
// area of h rows. Copies within one surface where the destination lies
// below the source walk bottom up.
func rowOrder(h int, backward bool) (first, end, step int) {
	if backward {
		return h - 1, -1, -1
	}
	return 0, h, 1
}

func fillSoftware(dst surface.Memory, sh *shader, blendOver bool) {
	if sh.solid && (!blendOver || sh.color.A == 255) {
		v := surface.Encode(dst.Format, dst.Clut, sh.color)
		for y := 0; y < dst.Height; y++ {
			pixfmt.FillRow(dst.Format, dst.Row(y), dst.Width, v)
		}
		return
	}
	line := make([]pixfmt.Color, dst.Width)
	for y := 0; y < dst.Height; y++ {
		sh.row(y, line)
		row := dst.Row(y)
		for x, c := range line {
			put(dst.Format, dst.Clut, row[x*dst.Pitch1X:], c, blendOver)
		}
	}
}

// copySoftware copies src into dst (areas of equal size). sh is nil for
// the plain variant. conv, when not nil, is a prebuilt conversion of the
// source CLUT into the destination format.
func copySoftware(dst, src surface.Memory, sh *shader, blendOver, backward bool, conv *pixfmt.Conversion) {
	first, end, step := rowOrder(dst.Height, backward)

	if sh == nil && (!blendOver || !src.Format.HasAlpha()) {
		switch {
		case sameLayout(dst, src):
			n := dst.Width * dst.Pitch1X
			for y := first; y != end; y += step {
				copy(dst.Row(y)[:n], src.Row(y)[:n])
			}
			return
		case src.Format.IsIndexed() && isDirect(dst.Format):
			if conv == nil {
				conv = pixfmt.BuildConversion(dst.Format, src.Clut)
			}
			for y := first; y != end; y += step {
				d, s := dst.Row(y), src.Row(y)
				for x := 0; x < dst.Width; x++ {
					pixfmt.Store(dst.Format, d[x*dst.Pitch1X:], conv[s[x]])
				}
			}
			return
		}
		blendOver = false
	}

	// The whole source row is read before the destination row is written,
	// so overlapping areas on the same row need no special order.
	line := make([]pixfmt.Color, dst.Width)
	var mod []pixfmt.Color
	if sh != nil {
		mod = make([]pixfmt.Color, dst.Width)
	}
	for y := first; y != end; y += step {
		s := src.Row(y)
		for x := range line {
			line[x] = surface.Decode(src.Format, src.Clut, pixfmt.Load(src.Format, s[x*src.Pitch1X:]))
		}
		if sh != nil {
			sh.row(y, mod)
			for x := range line {
				line[x] = modulate(src.Format, line[x], mod[x])
			}
		}
		d := dst.Row(y)
		for x, c := range line {
			put(dst.Format, dst.Clut, d[x*dst.Pitch1X:], c, blendOver)
		}
	}
}
