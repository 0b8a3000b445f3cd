package pixfmt

import (
	"image/color"

	"github.com/gogpu/ewgfx/internal/blend"
)

// Color is a straight (non-premultiplied) 8-bit RGBA color.
// It is the engine's abstract color; surfaces store it via PackColor.
type Color struct {
	R, G, B, A uint8
}

// RGBA returns a Color with the given channels.
func RGBA(r, g, b, a uint8) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// Opaque returns an opaque Color.
func Opaque(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 255}
}

// Transparent is transparent black.
var Transparent = Color{}

// RGBA implements color.Color (alpha-premultiplied 16-bit channels).
func (c Color) RGBA() (r, g, b, a uint32) {
	pr, pg, pb, pa := blend.Premultiply(c.R, c.G, c.B, c.A)
	r = uint32(pr) * 0x101
	g = uint32(pg) * 0x101
	b = uint32(pb) * 0x101
	a = uint32(pa) * 0x101
	return
}

// FromColor converts any color.Color to a straight 8-bit Color.
func FromColor(c color.Color) Color {
	if v, ok := c.(Color); ok {
		return v
	}
	if v, ok := c.(color.NRGBA); ok {
		return Color{R: v.R, G: v.G, B: v.B, A: v.A}
	}
	r, g, b, a := c.RGBA()
	//nolint:gosec // G115: r>>8 is always in [0, 255]
	return unpremulColor(uint8(r>>8), uint8(g>>8), uint8(b>>8), uint8(a>>8))
}

func unpremulColor(r, g, b, a uint8) Color {
	r, g, b, a = blend.Unpremultiply(r, g, b, a)
	return Color{R: r, G: g, B: b, A: a}
}

// Luminance returns the BT.601 luma of c using integer weights.
func (c Color) Luminance() uint8 {
	return uint8((uint32(c.R)*299 + uint32(c.G)*587 + uint32(c.B)*114) / 1000)
}

// PackColor converts c into the bit layout of f.
//
// Channels are truncated with shifts, not rounded; the lost precision is the
// price of a conversion that needs no multiply per channel. Premultiplied
// formats get their color channels scaled by alpha first.
//
// f must be a valid format; formats are validated when the viewport is
// created, not here.
func PackColor(f Format, c Color) uint32 {
	switch f {
	case FormatARGB8888:
		return uint32(c.A)<<24 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
	case FormatPARGB8888:
		r, g, b, a := blend.Premultiply(c.R, c.G, c.B, c.A)
		return uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
	case FormatRGB888:
		return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
	case FormatRGB565:
		return uint32(c.R>>3)<<11 | uint32(c.G>>2)<<5 | uint32(c.B>>3)
	case FormatARGB4444:
		return uint32(c.A>>4)<<12 | uint32(c.R>>4)<<8 | uint32(c.G>>4)<<4 | uint32(c.B>>4)
	case FormatLumA44:
		return uint32(c.A>>4)<<4 | uint32(c.Luminance()>>4)
	case FormatIndex8:
		return uint32(cubeIndex(c))
	case FormatAlpha8:
		return uint32(c.A)
	default:
		return 0
	}
}

// UnpackColor converts a packed value of format f back to a Color.
//
// Narrow channels are widened by bit replication (the DMA2D pixel format
// converter does the same), so full-scale values stay full scale. Index8
// values resolve through the default palette; use Clut.At for others.
func UnpackColor(f Format, v uint32) Color {
	switch f {
	case FormatARGB8888:
		return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: uint8(v >> 24)}
	case FormatPARGB8888:
		return unpremulColor(uint8(v>>16), uint8(v>>8), uint8(v), uint8(v>>24))
	case FormatRGB888:
		return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
	case FormatRGB565:
		return Color{R: expand5(v >> 11), G: expand6(v >> 5), B: expand5(v), A: 255}
	case FormatARGB4444:
		return Color{R: expand4(v >> 8), G: expand4(v >> 4), B: expand4(v), A: expand4(v >> 12)}
	case FormatLumA44:
		l := expand4(v)
		return Color{R: l, G: l, B: l, A: expand4(v >> 4)}
	case FormatIndex8:
		return defaultIndex8[uint8(v)]
	case FormatAlpha8:
		return Color{A: uint8(v)}
	default:
		return Color{}
	}
}

// PackClutEntry converts c into a CLUT table word for a display in format f.
//
// Direct-color targets get the same value PackColor produces, which is what a
// software index-to-direct conversion table needs. Indexed and luminance
// targets get an ARGB8888 word, the layout of the LTDC/DMA2D CLUT registers.
func PackClutEntry(f Format, c Color) uint32 {
	switch f {
	case FormatLumA44, FormatIndex8, FormatAlpha8:
		return PackColor(FormatARGB8888, c)
	default:
		return PackColor(f, c)
	}
}

func expand4(v uint32) uint8 {
	v &= 0x0f
	return uint8(v<<4 | v)
}

func expand5(v uint32) uint8 {
	v &= 0x1f
	return uint8(v<<3 | v>>2)
}

func expand6(v uint32) uint8 {
	v &= 0x3f
	return uint8(v<<2 | v>>4)
}

// Model returns a color.Model quantizing colors to what f can store.
func Model(f Format) color.Model {
	return color.ModelFunc(func(c color.Color) color.Color {
		return UnpackColor(f, PackColor(f, FromColor(c)))
	})
}
