// Package blend implements the per-pixel arithmetic shared by the software row
// drivers and the DMA2D model.
//
// Both paths must produce byte-identical output, so every division by 255
// goes through the exact helpers in this file and never through float math.
//
// References:
//   - Alpha blending without division: https://arxiv.org/abs/2202.02864
//   - Alvy Ray Smith's technical memos: http://alvyray.com/Memos/
//   - RM0410 (STM32F7) §9.3.6 DMA2D blender
package blend

// div255 divides x by 255 exactly without using division.
//
// Formula: ((x + 1) + ((x + 1) >> 8)) >> 8
//
// This is Alvy Ray Smith's formula, exact for every product of two bytes.
func div255(x uint32) uint32 {
	t := x + 1
	return (t + (t >> 8)) >> 8
}

// MulDiv255 multiplies two bytes and divides by 255.
func MulDiv255(a, b byte) byte {
	return byte(div255(uint32(a) * uint32(b)))
}

// Lerp interpolates from a to b by t/255.
func Lerp(a, b, t byte) byte {
	if a == b {
		return a
	}
	return byte(div255(uint32(a)*uint32(255-t) + uint32(b)*uint32(t)))
}

// Premultiply scales the color channels by alpha.
func Premultiply(r, g, b, a byte) (byte, byte, byte, byte) {
	switch a {
	case 255:
		return r, g, b, a
	case 0:
		return 0, 0, 0, 0
	}
	return MulDiv255(r, a), MulDiv255(g, a), MulDiv255(b, a), a
}

// Unpremultiply divides the color channels by alpha.
// Channels larger than alpha (invalid premultiplied input) saturate at 255.
func Unpremultiply(r, g, b, a byte) (byte, byte, byte, byte) {
	switch a {
	case 255:
		return r, g, b, a
	case 0:
		return 0, 0, 0, 0
	}
	return unpremul(r, a), unpremul(g, a), unpremul(b, a), a
}

func unpremul(c, a byte) byte {
	v := (uint32(c)*255 + uint32(a)/2) / uint32(a)
	if v > 255 {
		return 255
	}
	return byte(v)
}
