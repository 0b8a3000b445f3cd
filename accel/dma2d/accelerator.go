package dma2d

import (
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/gogpu/ewgfx/accel"
	"github.com/gogpu/ewgfx/internal/diag"
	"github.com/gogpu/ewgfx/pixfmt"
	"github.com/gogpu/ewgfx/surface"
)

// DefaultTimeout bounds every transfer.
const DefaultTimeout = time.Second

// Accelerator runs accel requests on a Driver.
type Accelerator struct {
	drv     Driver
	timeout time.Duration
	log     *slog.Logger
}

// Ensure Accelerator implements accel.Accelerator and accel.Aligner.
var (
	_ accel.Accelerator = (*Accelerator)(nil)
	_ accel.Aligner     = (*Accelerator)(nil)
)

// Option configures an Accelerator.
type Option func(*Accelerator)

// WithTimeout sets the transfer timeout. Non-positive values keep the
// default.
func WithTimeout(d time.Duration) Option {
	return func(a *Accelerator) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithLogger sets the logger. By default the shared ewgfx logger is used.
func WithLogger(l *slog.Logger) Option {
	return func(a *Accelerator) {
		a.log = l
	}
}

// New creates an Accelerator over drv.
func New(drv Driver, opts ...Option) *Accelerator {
	a := &Accelerator{drv: drv, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name implements accel.Accelerator.
func (a *Accelerator) Name() string { return "dma2d" }

// Timeout returns the transfer timeout.
func (a *Accelerator) Timeout() time.Duration { return a.timeout }

func (a *Accelerator) logger() *slog.Logger {
	return diag.Or(a.log)
}

func outputMode(f pixfmt.Format) (ColorMode, bool) {
	switch f {
	case pixfmt.FormatARGB8888:
		return CMARGB8888, true
	case pixfmt.FormatRGB888:
		return CMRGB888, true
	case pixfmt.FormatRGB565:
		return CMRGB565, true
	case pixfmt.FormatARGB4444:
		return CMARGB4444, true
	default:
		return 0, false
	}
}

func inputMode(f pixfmt.Format) (ColorMode, bool) {
	switch f {
	case pixfmt.FormatIndex8, pixfmt.FormatLumA44:
		return CML8, true
	case pixfmt.FormatAlpha8:
		return CMA8, true
	default:
		return outputMode(f)
	}
}

// CanAccelerate implements accel.Accelerator.
func (a *Accelerator) CanAccelerate(op accel.Op, dst, src pixfmt.Format) bool {
	_, outOK := outputMode(dst)
	_, inOK := inputMode(src)
	switch op {
	case accel.OpFill:
		return outOK
	case accel.OpCopy:
		return (src == dst && src.IsValid()) || (inOK && outOK)
	case accel.OpCopySolid, accel.OpBlend, accel.OpBlendSolid:
		return inOK && outOK
	default:
		return false
	}
}

// AlignSpan widens the span [x, x+w) to whole 32-bit words of 8-bit
// pixels, without leaving [0, limit).
func AlignSpan(x, w, limit int) (int, int) {
	x0 := x &^ 3
	end := (x + w + 3) &^ 3
	if x0 < 0 {
		x0 = 0
	}
	if end > limit {
		end = limit
	}
	return x0, end - x0
}

// AlignRect implements accel.Aligner: rectangles of 8-bit formats are
// widened with AlignSpan so the copy can move whole words.
func (a *Accelerator) AlignRect(r image.Rectangle, f pixfmt.Format, bounds image.Rectangle) image.Rectangle {
	if f.BytesPerPixel() != 1 {
		return r
	}
	x0, w := AlignSpan(r.Min.X-bounds.Min.X, r.Dx(), bounds.Dx())
	r.Min.X = bounds.Min.X + x0
	r.Max.X = r.Min.X + w
	return r
}

func wordAligned(m surface.Memory) bool {
	return m.Area().Min.X%4 == 0 && m.Width%4 == 0 && m.Pitch1Y%4 == 0 && m.Addr%4 == 0
}

func buffer(m surface.Memory) Buffer {
	return Buffer{Pix: m.Pix, Pitch: m.Pitch1Y, Addr: m.Addr}
}

// layer returns the input layer configuration for a locked area.
func layer(m surface.Memory) (LayerConfig, error) {
	cm, ok := inputMode(m.Format)
	if !ok {
		return LayerConfig{}, fmt.Errorf("input %v: %w", m.Format, accel.ErrFallback)
	}
	l := LayerConfig{ColorMode: cm}
	if cm == CML8 {
		if m.Clut == nil {
			return LayerConfig{}, fmt.Errorf("input %v without CLUT: %w", m.Format, accel.ErrFallback)
		}
		l.Clut = m.Clut.Words()
	}
	return l, nil
}

// Do implements accel.Accelerator.
func (a *Accelerator) Do(req accel.Request) error {
	dst := req.Dst
	if req.Op != accel.OpFill && (dst.Width != req.Src.Width || dst.Height != req.Src.Height) {
		return accel.ErrSizeMismatch
	}

	var err error
	switch req.Op {
	case accel.OpFill:
		err = a.fill(req)
	case accel.OpCopy:
		if req.Src.Format == dst.Format {
			err = a.copySame(req)
		} else {
			err = a.convert(req, AlphaNoModif)
		}
	case accel.OpCopySolid:
		err = a.convert(req, AlphaCombine)
	case accel.OpBlend:
		err = a.blend(req, AlphaNoModif)
	case accel.OpBlendSolid:
		err = a.blend(req, AlphaCombine)
	default:
		err = fmt.Errorf("dma2d: %v: %w", req.Op, accel.ErrFallback)
	}
	return err
}

func (a *Accelerator) fill(req accel.Request) error {
	cm, ok := outputMode(req.Dst.Format)
	if !ok {
		return fmt.Errorf("dma2d: fill %v: %w", req.Dst.Format, accel.ErrFallback)
	}
	out := OutputConfig{Mode: ModeR2M, ColorMode: cm, Color: pixfmt.PackColor(req.Dst.Format, req.Color)}
	if err := a.drv.Init(out); err != nil {
		return a.fault(req, err)
	}
	return a.run(req, func() error {
		return a.drv.Start(Buffer{}, buffer(req.Dst), req.Dst.Width, req.Dst.Height)
	})
}

// copySame moves pixels without conversion. 8-bit pixels move as 32-bit
// words, which needs both areas word aligned.
func (a *Accelerator) copySame(req accel.Request) error {
	dst, src := req.Dst, req.Src
	width := dst.Width
	var cm ColorMode
	switch dst.Format.BytesPerPixel() {
	case 4:
		cm = CMARGB8888
	case 3:
		cm = CMRGB888
	case 2:
		cm = CMRGB565
	default:
		if !wordAligned(dst) || !wordAligned(src) {
			return fmt.Errorf("dma2d: unaligned %v copy at %v: %w", dst.Format, dst.Area(), accel.ErrFallback)
		}
		if dst.Format == pixfmt.FormatIndex8 && dst.Clut != src.Clut &&
			(dst.Clut == nil || src.Clut == nil || *dst.Clut != *src.Clut) {
			return fmt.Errorf("dma2d: Index8 copy between palettes: %w", accel.ErrFallback)
		}
		cm = CMARGB8888
		width /= 4
	}
	if err := a.drv.Init(OutputConfig{Mode: ModeM2M, ColorMode: cm}); err != nil {
		return a.fault(req, err)
	}
	if err := a.drv.ConfigLayer(Foreground, LayerConfig{ColorMode: cm}); err != nil {
		return a.fault(req, err)
	}
	return a.run(req, func() error {
		return a.drv.Start(buffer(src), buffer(dst), width, dst.Height)
	})
}

func (a *Accelerator) convert(req accel.Request, am AlphaMode) error {
	out, ok := outputMode(req.Dst.Format)
	if !ok {
		return fmt.Errorf("dma2d: convert to %v: %w", req.Dst.Format, accel.ErrFallback)
	}
	fg, err := layer(req.Src)
	if err != nil {
		return err
	}
	fg.AlphaMode, fg.Alpha, fg.Color = am, req.Color.A, req.Color
	if err := a.drv.Init(OutputConfig{Mode: ModeM2MPFC, ColorMode: out}); err != nil {
		return a.fault(req, err)
	}
	if err := a.drv.ConfigLayer(Foreground, fg); err != nil {
		return a.fault(req, err)
	}
	return a.run(req, func() error {
		return a.drv.Start(buffer(req.Src), buffer(req.Dst), req.Dst.Width, req.Dst.Height)
	})
}

func (a *Accelerator) blend(req accel.Request, am AlphaMode) error {
	out, ok := outputMode(req.Dst.Format)
	if !ok {
		return fmt.Errorf("dma2d: blend into %v: %w", req.Dst.Format, accel.ErrFallback)
	}
	fg, err := layer(req.Src)
	if err != nil {
		return err
	}
	fg.AlphaMode, fg.Alpha, fg.Color = am, req.Color.A, req.Color
	if err := a.drv.Init(OutputConfig{Mode: ModeM2MBlend, ColorMode: out}); err != nil {
		return a.fault(req, err)
	}
	if err := a.drv.ConfigLayer(Foreground, fg); err != nil {
		return a.fault(req, err)
	}
	if err := a.drv.ConfigLayer(Background, LayerConfig{ColorMode: out}); err != nil {
		return a.fault(req, err)
	}
	dst := buffer(req.Dst)
	return a.run(req, func() error {
		return a.drv.StartBlending(buffer(req.Src), dst, dst, req.Dst.Width, req.Dst.Height)
	})
}

// run starts a transfer and polls it to completion.
func (a *Accelerator) run(req accel.Request, start func() error) error {
	a.logger().Debug("dma2d: transfer", "op", req.Op, "dst", req.Dst.Format,
		"src", req.Src.Format, "area", req.Dst.Area())
	if err := start(); err != nil {
		return a.fault(req, err)
	}
	if err := a.drv.PollForTransfer(a.timeout); err != nil {
		return a.fault(req, err)
	}
	return nil
}

func (a *Accelerator) fault(req accel.Request, err error) error {
	return fmt.Errorf("dma2d: %v at %v: %w: %w", req.Op, req.Dst.Area(), accel.ErrHardwareFault, err)
}
