package dma2d

import (
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/ewgfx/internal/blend"
	"github.com/gogpu/ewgfx/pixfmt"
)

// Sim is a software model of the engine. Transfers run when started;
// PollForTransfer reports completion. A stalled Sim never completes a
// transfer, which models a hung peripheral.
type Sim struct {
	mu          sync.Mutex
	initialized bool
	out         OutputConfig
	layers      [2]LayerConfig
	busy        bool
	pending     func()
	stalled     bool
	transfers   int
	lastMode    Mode
}

// Ensure Sim implements Driver.
var _ Driver = (*Sim)(nil)

// NewSim returns an idle simulator.
func NewSim() *Sim {
	return &Sim{}
}

// Stall makes subsequent transfers hang (true) or complete (false).
func (s *Sim) Stall(stalled bool) {
	s.mu.Lock()
	s.stalled = stalled
	s.mu.Unlock()
}

// Transfers returns the number of completed transfers.
func (s *Sim) Transfers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transfers
}

// LastMode returns the mode of the last started transfer.
func (s *Sim) LastMode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastMode
}

// Init implements Driver.
func (s *Sim) Init(cfg OutputConfig) error {
	if !cfg.ColorMode.IsOutput() || cfg.Mode > ModeR2M {
		return fmt.Errorf("init %v %v: %w", cfg.Mode, cfg.ColorMode, ErrConfig)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return ErrBusy
	}
	s.out = cfg
	s.initialized = true
	return nil
}

// DeInit implements Driver.
func (s *Sim) DeInit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initialized = false
	s.out = OutputConfig{}
	s.layers = [2]LayerConfig{}
	s.busy = false
	s.pending = nil
	return nil
}

// ConfigLayer implements Driver.
func (s *Sim) ConfigLayer(layer LayerIndex, cfg LayerConfig) error {
	if layer > Foreground || cfg.ColorMode > CMA8 {
		return fmt.Errorf("layer %d: %w", layer, ErrConfig)
	}
	if cfg.ColorMode == CML8 && cfg.Clut == nil {
		return fmt.Errorf("layer %d: L8 without CLUT: %w", layer, ErrConfig)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layers[layer] = cfg
	return nil
}

// Start implements Driver.
func (s *Sim) Start(src, dst Buffer, width, height int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.startLocked(width, height); err != nil {
		return err
	}
	out, fg := s.out, s.layers[Foreground]
	switch out.Mode {
	case ModeR2M:
		s.run(func() { fill(dst, out, width, height) })
	case ModeM2M:
		s.run(func() { copyBytes(src, dst, fg.ColorMode.Format().BytesPerPixel()*width, height) })
	case ModeM2MPFC:
		s.run(func() { convert(src, dst, fg, out.ColorMode, width, height) })
	default:
		s.busy = false
		return fmt.Errorf("start in %v: %w", out.Mode, ErrConfig)
	}
	return nil
}

// StartBlending implements Driver.
func (s *Sim) StartBlending(fg, bg, dst Buffer, width, height int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.startLocked(width, height); err != nil {
		return err
	}
	if s.out.Mode != ModeM2MBlend {
		s.busy = false
		return fmt.Errorf("blend in %v: %w", s.out.Mode, ErrConfig)
	}
	out, fgl, bgl := s.out, s.layers[Foreground], s.layers[Background]
	s.run(func() { blendLayers(fg, bg, dst, fgl, bgl, out.ColorMode, width, height) })
	return nil
}

func (s *Sim) startLocked(width, height int) error {
	if !s.initialized {
		return ErrNotInitialized
	}
	if s.busy {
		return ErrBusy
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("transfer %dx%d: %w", width, height, ErrConfig)
	}
	s.busy = true
	s.lastMode = s.out.Mode
	return nil
}

// run executes the transfer now, or parks it when stalled.
func (s *Sim) run(transfer func()) {
	if s.stalled {
		s.pending = transfer
		return
	}
	transfer()
	s.transfers++
}

// PollForTransfer implements Driver. A stalled transfer is aborted after
// timeout, leaving the destination untouched.
func (s *Sim) PollForTransfer(timeout time.Duration) error {
	s.mu.Lock()
	if !s.busy {
		s.mu.Unlock()
		return nil
	}
	if s.pending == nil {
		s.busy = false
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	<-timer.C

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
	s.busy = false
	return fmt.Errorf("after %v: %w", timeout, ErrTimeout)
}

func fill(dst Buffer, out OutputConfig, width, height int) {
	f := out.ColorMode.Format()
	for y := 0; y < height; y++ {
		pixfmt.FillRow(f, dst.Pix[y*dst.Pitch:], width, out.Color)
	}
}

func copyBytes(src, dst Buffer, n, height int) {
	for y := 0; y < height; y++ {
		copy(dst.Pix[y*dst.Pitch:y*dst.Pitch+n], src.Pix[y*src.Pitch:y*src.Pitch+n])
	}
}

// load is the input pixel format converter of a layer.
func load(l LayerConfig, b []byte) pixfmt.Color {
	f := l.ColorMode.Format()
	v := pixfmt.Load(f, b)
	var c pixfmt.Color
	switch l.ColorMode {
	case CML8:
		c = pixfmt.UnpackColor(pixfmt.FormatARGB8888, l.Clut[uint8(v)])
	case CMA8:
		c = pixfmt.Color{R: l.Color.R, G: l.Color.G, B: l.Color.B, A: uint8(v)}
	default:
		c = pixfmt.UnpackColor(f, v)
	}
	switch l.AlphaMode {
	case AlphaReplace:
		c.A = l.Alpha
	case AlphaCombine:
		c.A = blend.MulDiv255(c.A, l.Alpha)
	}
	return c
}

func convert(src, dst Buffer, fg LayerConfig, out ColorMode, width, height int) {
	sf, df := fg.ColorMode.Format(), out.Format()
	sb, db := sf.BytesPerPixel(), df.BytesPerPixel()
	for y := 0; y < height; y++ {
		s, d := src.Pix[y*src.Pitch:], dst.Pix[y*dst.Pitch:]
		for x := 0; x < width; x++ {
			pixfmt.Store(df, d[x*db:], pixfmt.PackColor(df, load(fg, s[x*sb:])))
		}
	}
}

func blendLayers(fg, bg, dst Buffer, fgl, bgl LayerConfig, out ColorMode, width, height int) {
	ff, bf, df := fgl.ColorMode.Format(), bgl.ColorMode.Format(), out.Format()
	fb, bb, db := ff.BytesPerPixel(), bf.BytesPerPixel(), df.BytesPerPixel()
	for y := 0; y < height; y++ {
		fr, br, dr := fg.Pix[y*fg.Pitch:], bg.Pix[y*bg.Pitch:], dst.Pix[y*dst.Pitch:]
		for x := 0; x < width; x++ {
			f := load(fgl, fr[x*fb:])
			b := load(bgl, br[x*bb:])
			r, g, bl, a := blend.Over(f.R, f.G, f.B, f.A, b.R, b.G, b.B, b.A)
			pixfmt.Store(df, dr[x*db:], pixfmt.PackColor(df, pixfmt.Color{R: r, G: g, B: bl, A: a}))
		}
	}
}
