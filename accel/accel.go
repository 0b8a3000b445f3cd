package accel

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/ewgfx/pixfmt"
	"github.com/gogpu/ewgfx/surface"
)

var (
	// ErrFallback is returned by an Accelerator that declines an operation
	// at run time. The dispatcher then runs the software path.
	ErrFallback = errors.New("accel: falling back to software")

	// ErrHardwareFault marks an operation abandoned because the blitter
	// failed, e.g. a transfer that never completed.
	ErrHardwareFault = errors.New("accel: hardware fault")

	// ErrSizeMismatch is returned when source and destination areas of a
	// request differ in size.
	ErrSizeMismatch = errors.New("accel: source and destination sizes differ")
)

// Op is a primitive operation, used as a bit mask for capability checks.
type Op uint32

const (
	// OpFill stores one color into every pixel.
	OpFill Op = 1 << iota

	// OpFillBlend blends one color over every pixel.
	OpFillBlend

	// OpCopy copies pixels, converting the format if needed.
	OpCopy

	// OpCopySolid copies pixels modulated by one color: the opacity for
	// full-color sources, color and opacity for Alpha8 sources.
	OpCopySolid

	// OpBlend blends source pixels over the destination.
	OpBlend

	// OpBlendSolid blends source pixels modulated by one color.
	OpBlendSolid

	// OpGradient is any of the above with four different corner colors.
	OpGradient
)

var opNames = map[Op]string{
	OpFill:       "fill",
	OpFillBlend:  "fill-blend",
	OpCopy:       "copy",
	OpCopySolid:  "copy-solid",
	OpBlend:      "blend",
	OpBlendSolid: "blend-solid",
	OpGradient:   "gradient",
}

// String returns the operation name.
func (op Op) String() string {
	if s, ok := opNames[op]; ok {
		return s
	}
	return fmt.Sprintf("op(%#x)", uint32(op))
}

// Request is one operation handed to an Accelerator. Dst and Src are
// locked areas of equal size; Src is zero for fills.
type Request struct {
	Op    Op
	Dst   surface.Memory
	Src   surface.Memory
	Color pixfmt.Color
}

// Accelerator is a hardware 2D blitter.
type Accelerator interface {
	// Name returns the accelerator name (e.g. "dma2d").
	Name() string

	// CanAccelerate reports whether op is supported for the given formats.
	// src is FormatInvalid for fills. This is a fast check; Do may still
	// decline with ErrFallback.
	CanAccelerate(op Op, dst, src pixfmt.Format) bool

	// Do runs the request and waits for completion.
	Do(req Request) error
}

// Aligner is implemented by accelerators that move 8-bit surfaces faster
// when the area is widened, e.g. to whole 32-bit words. Reconcile uses it;
// widened areas copy extra pixels of the same rows.
type Aligner interface {
	AlignRect(r image.Rectangle, f pixfmt.Format, bounds image.Rectangle) image.Rectangle
}

// Corners are the colors at the top-left, top-right, bottom-right and
// bottom-left corner of an operation. Equal corners mean a solid color.
type Corners [4]pixfmt.Color

// Corner indexes.
const (
	TopLeft = iota
	TopRight
	BottomRight
	BottomLeft
)

// Solid returns corners all set to c.
func Solid(c pixfmt.Color) Corners {
	return Corners{c, c, c, c}
}

// Uniform reports whether all four corners are equal.
func (c Corners) Uniform() bool {
	return c[0] == c[1] && c[0] == c[2] && c[0] == c[3]
}

// Opaque reports whether all four corners have full alpha.
func (c Corners) Opaque() bool {
	return c[0].A == 255 && c[1].A == 255 && c[2].A == 255 && c[3].A == 255
}

// Invisible reports whether all four corners have zero alpha.
func (c Corners) Invisible() bool {
	return c[0].A == 0 && c[1].A == 0 && c[2].A == 0 && c[3].A == 0
}

// Variant is the modulation a copy needs.
type Variant uint8

const (
	// VariantPlain copies without modulation.
	VariantPlain Variant = iota

	// VariantSolid modulates with one color.
	VariantSolid

	// VariantGradient interpolates the modulation between the corners.
	VariantGradient
)

// String returns the variant name.
func (v Variant) String() string {
	switch v {
	case VariantPlain:
		return "plain"
	case VariantSolid:
		return "solid"
	case VariantGradient:
		return "gradient"
	default:
		return "unknown"
	}
}

// Classify picks the copy variant for a source format and corner colors.
//
// An Alpha8 source carries no color, so it is always modulated: solid for
// equal corners, gradient otherwise. A full-color source with equal opaque
// corners is copied unmodulated, with equal translucent corners it gets a
// solid opacity, and unequal corners need the gradient.
func Classify(src pixfmt.Format, colors Corners) Variant {
	switch {
	case !colors.Uniform():
		return VariantGradient
	case src == pixfmt.FormatAlpha8:
		return VariantSolid
	case colors[0].A == 255:
		return VariantPlain
	default:
		return VariantSolid
	}
}

// copyOp maps a variant to the primitive an accelerator is asked for.
func copyOp(v Variant, blend bool) Op {
	switch {
	case v == VariantGradient:
		return OpGradient
	case v == VariantPlain && blend:
		return OpBlend
	case v == VariantPlain:
		return OpCopy
	case blend:
		return OpBlendSolid
	default:
		return OpCopySolid
	}
}
