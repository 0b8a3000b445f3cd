// Package pixfmt describes the pixel formats understood by the surface layer
// and converts between the abstract Color and each on-surface bit layout.
//
// All multi-byte formats are stored little-endian, which is the layout the
// LTDC and DMA2D peripherals read from memory.
package pixfmt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"
)

// ErrUnknownFormat is returned by ParseFormat.
var ErrUnknownFormat = errors.New("pixfmt: unknown format")

// Format represents a pixel storage format.
type Format uint8

const (
	// FormatInvalid is the zero value and never a valid surface format.
	FormatInvalid Format = iota

	// FormatARGB8888 is 32-bit A8R8G8B8 with straight alpha (4 bytes per pixel).
	FormatARGB8888

	// FormatPARGB8888 is 32-bit A8R8G8B8 with premultiplied alpha.
	FormatPARGB8888

	// FormatRGB888 is 24-bit R8G8B8 without alpha (3 bytes per pixel).
	FormatRGB888

	// FormatRGB565 is 16-bit R5G6B5 without alpha.
	FormatRGB565

	// FormatARGB4444 is 16-bit A4R4G4B4 with straight alpha.
	FormatARGB4444

	// FormatLumA44 is 8-bit luminance-alpha: alpha in the high nibble,
	// luminance in the low nibble. Displayed through a 256-entry CLUT.
	FormatLumA44

	// FormatIndex8 is an 8-bit palette index.
	FormatIndex8

	// FormatAlpha8 is an 8-bit alpha-only mask.
	FormatAlpha8

	// formatCount is the number of formats (for internal use).
	formatCount
)

// FormatInfo contains metadata about a pixel format.
type FormatInfo struct {
	// Name is the human readable format name.
	Name string

	// BytesPerPixel is the number of bytes per pixel.
	BytesPerPixel int

	// Bits is the bit depth of the R, G, B and A channels.
	// Zero means the channel is not stored.
	Bits [4]uint8

	// HasAlpha indicates if the format stores alpha.
	HasAlpha bool

	// Premultiplied indicates color channels are stored multiplied by alpha.
	Premultiplied bool

	// Indexed indicates pixels are looked up through a CLUT before display.
	Indexed bool

	// Texture is the GPU texture format with the same memory layout, or
	// TextureFormatUndefined when there is none.
	Texture gputypes.TextureFormat
}

// formatInfoTable contains metadata for each format.
var formatInfoTable = [formatCount]FormatInfo{
	FormatInvalid: {Name: "Invalid"},
	FormatARGB8888: {
		Name:          "ARGB8888",
		BytesPerPixel: 4,
		Bits:          [4]uint8{8, 8, 8, 8},
		HasAlpha:      true,
		Texture:       gputypes.TextureFormatBGRA8Unorm,
	},
	FormatPARGB8888: {
		Name:          "PARGB8888",
		BytesPerPixel: 4,
		Bits:          [4]uint8{8, 8, 8, 8},
		HasAlpha:      true,
		Premultiplied: true,
		Texture:       gputypes.TextureFormatBGRA8Unorm,
	},
	FormatRGB888: {
		Name:          "RGB888",
		BytesPerPixel: 3,
		Bits:          [4]uint8{8, 8, 8, 0},
		Texture:       gputypes.TextureFormatUndefined,
	},
	FormatRGB565: {
		Name:          "RGB565",
		BytesPerPixel: 2,
		Bits:          [4]uint8{5, 6, 5, 0},
		Texture:       gputypes.TextureFormatUndefined,
	},
	FormatARGB4444: {
		Name:          "ARGB4444",
		BytesPerPixel: 2,
		Bits:          [4]uint8{4, 4, 4, 4},
		HasAlpha:      true,
		Texture:       gputypes.TextureFormatUndefined,
	},
	FormatLumA44: {
		Name:          "LumA44",
		BytesPerPixel: 1,
		Bits:          [4]uint8{4, 4, 4, 4},
		HasAlpha:      true,
		Indexed:       true,
		Texture:       gputypes.TextureFormatR8Unorm,
	},
	FormatIndex8: {
		Name:          "Index8",
		BytesPerPixel: 1,
		Bits:          [4]uint8{8, 8, 8, 8},
		HasAlpha:      true,
		Indexed:       true,
		Texture:       gputypes.TextureFormatR8Unorm,
	},
	FormatAlpha8: {
		Name:          "Alpha8",
		BytesPerPixel: 1,
		Bits:          [4]uint8{0, 0, 0, 8},
		HasAlpha:      true,
		Texture:       gputypes.TextureFormatR8Unorm,
	},
}

// Info returns the FormatInfo for this format.
func (f Format) Info() FormatInfo {
	if f >= formatCount {
		return FormatInfo{Name: "Unknown"}
	}
	return formatInfoTable[f]
}

// BytesPerPixel returns the number of bytes per pixel for this format.
func (f Format) BytesPerPixel() int {
	return f.Info().BytesPerPixel
}

// HasAlpha returns true if this format has an alpha channel.
func (f Format) HasAlpha() bool {
	return f.Info().HasAlpha
}

// IsPremultiplied returns true if color channels are premultiplied.
func (f Format) IsPremultiplied() bool {
	return f.Info().Premultiplied
}

// IsIndexed returns true if pixels are resolved through a CLUT.
func (f Format) IsIndexed() bool {
	return f.Info().Indexed
}

// TextureFormat returns the GPU texture format sharing this memory layout.
func (f Format) TextureFormat() gputypes.TextureFormat {
	return f.Info().Texture
}

// String returns a string representation of the format.
func (f Format) String() string {
	return f.Info().Name
}

// ParseFormat returns the format with the given name, ignoring case.
func ParseFormat(name string) (Format, error) {
	for f := FormatInvalid + 1; f < formatCount; f++ {
		if strings.EqualFold(formatInfoTable[f].Name, name) {
			return f, nil
		}
	}
	return FormatInvalid, fmt.Errorf("%w %q", ErrUnknownFormat, name)
}

// IsValid returns true if the format is a valid surface format.
func (f Format) IsValid() bool {
	return f > FormatInvalid && f < formatCount
}

// IsNativeCapable reports whether the engine can use f as its internal
// drawing format.
func (f Format) IsNativeCapable() bool {
	switch f {
	case FormatARGB8888, FormatRGB565, FormatIndex8, FormatLumA44:
		return true
	default:
		return false
	}
}

// IsDisplayCapable reports whether a display layer can scan out f.
func (f Format) IsDisplayCapable() bool {
	switch f {
	case FormatARGB8888, FormatRGB888, FormatRGB565, FormatARGB4444, FormatLumA44, FormatIndex8:
		return true
	default:
		return false
	}
}

// RowBytes calculates the number of bytes needed for a row of the given width.
func (f Format) RowBytes(width int) int {
	return width * f.BytesPerPixel()
}

// ImageBytes calculates the total number of bytes needed for an image.
func (f Format) ImageBytes(width, height int) int {
	return f.RowBytes(width) * height
}
