package accel

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/ewgfx/internal/diag"
	"github.com/gogpu/ewgfx/pixfmt"
	"github.com/gogpu/ewgfx/surface"
)

// Stats counts how operations were executed.
type Stats struct {
	// Hardware is the number of operations the accelerator completed.
	Hardware uint64

	// Software is the number of operations run by the row drivers.
	Software uint64

	// Declined counts operations the accelerator refused with ErrFallback.
	Declined uint64

	// Faults counts operations abandoned after a hardware error.
	Faults uint64
}

// Dispatcher routes fill and copy operations to an Accelerator or to the
// software row drivers. A Dispatcher is used from one goroutine.
type Dispatcher struct {
	hw  Accelerator
	log *slog.Logger

	hardware atomic.Uint64
	software atomic.Uint64
	declined atomic.Uint64
	faults   atomic.Uint64
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger. By default the shared ewgfx logger is used.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.log = l
	}
}

// New creates a dispatcher. hw may be nil for a software-only build.
func New(hw Accelerator, opts ...Option) *Dispatcher {
	d := &Dispatcher{hw: hw}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Accelerator returns the hardware accelerator, or nil.
func (d *Dispatcher) Accelerator() Accelerator { return d.hw }

func (d *Dispatcher) logger() *slog.Logger {
	return diag.Or(d.log)
}

// Stats returns a snapshot of the operation counters.
func (d *Dispatcher) Stats() Stats {
	return Stats{
		Hardware: d.hardware.Load(),
		Software: d.software.Load(),
		Declined: d.declined.Load(),
		Faults:   d.faults.Load(),
	}
}

// tryHardware offers req to the accelerator. It reports whether the request
// was handled; a non-nil error is a fault.
func (d *Dispatcher) tryHardware(req Request) (bool, error) {
	if d.hw == nil || !d.hw.CanAccelerate(req.Op, req.Dst.Format, req.Src.Format) {
		return false, nil
	}
	err := d.hw.Do(req)
	switch {
	case err == nil:
		d.hardware.Add(1)
		return true, nil
	case errors.Is(err, ErrFallback):
		d.declined.Add(1)
		d.logger().Debug("accel: hardware declined, using software",
			"accelerator", d.hw.Name(), "op", req.Op,
			"dst", req.Dst.Format, "src", req.Src.Format, "err", err)
		return false, nil
	default:
		d.faults.Add(1)
		d.logger().Error("accel: hardware fault",
			"accelerator", d.hw.Name(), "op", req.Op,
			"area", req.Dst.Area(), "err", err)
		if errors.Is(err, ErrHardwareFault) {
			return true, fmt.Errorf("accel: %s %v: %w", d.hw.Name(), req.Op, err)
		}
		return true, fmt.Errorf("accel: %s %v: %w: %w", d.hw.Name(), req.Op, ErrHardwareFault, err)
	}
}

// Fill fills rect of dst with a solid color or, for unequal corners, a
// four-corner gradient spanned over rect. With blendOver the colors are
// blended over the existing pixels, otherwise they replace them.
// rect is clipped to dst; an empty result is a no-op.
func (d *Dispatcher) Fill(dst *surface.Surface, rect image.Rectangle, colors Corners, blendOver bool) error {
	area := rect.Intersect(dst.Bounds())
	if area.Empty() {
		return nil
	}
	if blendOver {
		if colors.Invisible() {
			return nil
		}
		if colors.Opaque() {
			blendOver = false
		}
	}

	mode := surface.LockWrite
	if blendOver {
		mode |= surface.LockRead
	}
	mem, err := dst.Lock(area, mode)
	if err != nil {
		return err
	}
	defer func() { _ = dst.Unlock(mem) }()

	if colors.Uniform() {
		op := OpFill
		if blendOver {
			op = OpFillBlend
		}
		handled, err := d.tryHardware(Request{Op: op, Dst: mem, Color: colors[0]})
		if handled {
			return err
		}
	}

	d.software.Add(1)
	d.logger().Debug("accel: software fill", "dst", dst.Format(), "area", area, "blend", blendOver)
	fillSoftware(mem, newShader(colors, rect, area), blendOver)
	return nil
}

// Copy copies the area of src starting at srcOrigin into dstRect of dst,
// modulated by colors as selected by Classify. With blendOver the source
// is blended over the destination. The area is clipped to both surfaces.
// src and dst may be the same surface; overlapping areas are handled.
func (d *Dispatcher) Copy(dst, src *surface.Surface, dstRect image.Rectangle, srcOrigin image.Point, colors Corners, blendOver bool) error {
	area, srcArea := clipCopy(dst.Bounds(), src.Bounds(), dstRect, srcOrigin)
	if area.Empty() {
		return nil
	}
	if blendOver && colors.Invisible() {
		return nil
	}

	variant := Classify(src.Format(), colors)
	if blendOver && variant == VariantPlain && !src.Format().HasAlpha() {
		blendOver = false
	}
	var sh *shader
	if variant != VariantPlain {
		sh = newShader(colors, dstRect, area)
	}
	return d.copyArea(dst, src, area, srcArea, variant, copyOp(variant, blendOver), colors[0], sh, blendOver, nil)
}

// Reconcile copies rect of src into the same rect of dst without
// modulation, converting the format. It is the frame-composition copy of
// the viewport; conv may hold a prebuilt conversion of the src CLUT.
//
// When the accelerator is an Aligner the rect may be widened on its rows,
// which is harmless because src holds the complete frame.
func (d *Dispatcher) Reconcile(dst, src *surface.Surface, rect image.Rectangle, conv *pixfmt.Conversion) error {
	if dst.Width() != src.Width() || dst.Height() != src.Height() {
		return fmt.Errorf("accel: reconcile %v into %v: %w", src, dst, ErrSizeMismatch)
	}
	area := rect.Intersect(dst.Bounds())
	if area.Empty() {
		return nil
	}
	if al, ok := d.hw.(Aligner); ok && src.Format() == dst.Format() {
		area = al.AlignRect(area, dst.Format(), dst.Bounds())
	}
	return d.copyArea(dst, src, area, area, VariantPlain, OpCopy, pixfmt.Color{}, nil, false, conv)
}

func (d *Dispatcher) copyArea(dst, src *surface.Surface, area, srcArea image.Rectangle,
	variant Variant, op Op, c pixfmt.Color, sh *shader, blendOver bool, conv *pixfmt.Conversion) error {
	mode := surface.LockWrite
	if blendOver {
		mode |= surface.LockRead
	}
	dmem, err := dst.Lock(area, mode)
	if err != nil {
		return err
	}
	defer func() { _ = dst.Unlock(dmem) }()
	smem, err := src.Lock(srcArea, surface.LockRead)
	if err != nil {
		return err
	}
	defer func() { _ = src.Unlock(smem) }()

	if variant != VariantGradient {
		handled, err := d.tryHardware(Request{Op: op, Dst: dmem, Src: smem, Color: c})
		if handled {
			return err
		}
	}

	d.software.Add(1)
	d.logger().Debug("accel: software copy",
		"dst", dst.Format(), "src", src.Format(), "area", area,
		"variant", variant, "blend", blendOver)
	backward := dst == src && area.Min.Y > srcArea.Min.Y
	copySoftware(dmem, smem, sh, blendOver, backward, conv)
	return nil
}

// clipCopy clips the destination rectangle against the destination bounds
// and the corresponding source rectangle against the source bounds.
func clipCopy(dstBounds, srcBounds, dstRect image.Rectangle, srcOrigin image.Point) (dst, src image.Rectangle) {
	dst = dstRect.Intersect(dstBounds)
	delta := srcOrigin.Sub(dstRect.Min)
	src = dst.Add(delta).Intersect(srcBounds)
	dst = src.Sub(delta)
	if dst.Empty() {
		return image.Rectangle{}, image.Rectangle{}
	}
	return dst, src
}

// DrawPixels writes colors[i] to pts[i] of dst, blending when blendOver
// is set. Points outside clip or dst are skipped. Scattered pixels have no
// blitter operation, so this always runs in software.
func (d *Dispatcher) DrawPixels(dst *surface.Surface, clip image.Rectangle, pts []image.Point, colors []pixfmt.Color, blendOver bool) error {
	if len(pts) != len(colors) {
		return fmt.Errorf("accel: %d points, %d colors: %w", len(pts), len(colors), ErrSizeMismatch)
	}
	if len(pts) == 0 {
		return nil
	}
	var box image.Rectangle
	for _, p := range pts {
		box = box.Union(image.Rectangle{Min: p, Max: p.Add(image.Pt(1, 1))})
	}
	area := box.Intersect(clip).Intersect(dst.Bounds())
	if area.Empty() {
		return nil
	}

	mode := surface.LockWrite
	if blendOver {
		mode |= surface.LockRead
	}
	mem, err := dst.Lock(area, mode)
	if err != nil {
		return err
	}
	defer func() { _ = dst.Unlock(mem) }()

	d.software.Add(1)
	for i, p := range pts {
		if !p.In(area) {
			continue
		}
		q := p.Sub(area.Min)
		put(mem.Format, mem.Clut, mem.Pix[mem.Offset(q.X, q.Y):], colors[i], blendOver)
	}
	return nil
}
