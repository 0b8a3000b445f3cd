package viewport

import (
	"errors"
	"image"
	"sync"
	"testing"

	"github.com/gogpu/ewgfx/accel"
	"github.com/gogpu/ewgfx/config"
	"github.com/gogpu/ewgfx/pixfmt"
	"github.com/gogpu/ewgfx/sdram"
	"github.com/gogpu/ewgfx/surface"
)

// fakeDisplay records what the viewport programs.
type fakeDisplay struct {
	mu      sync.Mutex
	w, h    int
	addr    uintptr
	format  pixfmt.Format
	geom    Geometry
	clut    *[256]uint32
	line    int
	handler func()
	sets    int
}

func newFakeDisplay(w, h int) *fakeDisplay {
	return &fakeDisplay{w: w, h: h, line: -1}
}

func (d *fakeDisplay) Size() (int, int) { return d.w, d.h }

func (d *fakeDisplay) ConfigureLayer(addr uintptr, f pixfmt.Format, geom Geometry) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.addr, d.format, d.geom = addr, f, geom
	return nil
}

func (d *fakeDisplay) SetLayerAddress(addr uintptr) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.addr = addr
	d.sets++
	return nil
}

func (d *fakeDisplay) SetClut(clut *[256]uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	c := *clut
	d.clut = &c
	return nil
}

func (d *fakeDisplay) ConfigureLineEvent(line int, handler func()) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.line, d.handler = line, handler
	return nil
}

// Tick simulates the scan reaching the configured line.
func (d *fakeDisplay) Tick() {
	d.mu.Lock()
	h := d.handler
	d.mu.Unlock()
	if h != nil {
		h()
	}
}

func (d *fakeDisplay) Addr() uintptr {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.addr
}

const testBase = 0xC000_0000

type rig struct {
	vp    *Viewport
	disp  *fakeDisplay
	bank  *sdram.Bank
	alloc *surface.Allocator
	front uintptr
	back  uintptr
}

func newRig(t *testing.T, cfg config.Engine, physical pixfmt.Format, w, h int) *rig {
	t.Helper()
	return newRigWith(t, cfg, physical, w, h, nil)
}

// newRigWith is newRig with the viewport dispatching through d.
func newRigWith(t *testing.T, cfg config.Engine, physical pixfmt.Format, w, h int, d *accel.Dispatcher) *rig {
	t.Helper()
	size := physical.ImageBytes(w, h)
	r := &rig{
		disp:  newFakeDisplay(w, h),
		bank:  sdram.NewBank(testBase, 2*size),
		alloc: surface.NewAllocator(),
		front: testBase,
		back:  testBase + uintptr(size),
	}
	out := Output{
		Width: w, Height: h, Format: physical,
		Front: r.front, Display: r.disp, Memory: r.bank,
	}
	if cfg.Topology.HasDoubleBuffer() {
		out.Back = r.back
	}
	vp, err := New(cfg, out, r.alloc, d)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r.vp = vp
	return r
}

// pixel reads one framebuffer pixel straight from the memory bank.
func (r *rig) pixel(addr uintptr, x, y int) uint32 {
	f := r.vp.PhysicalFormat()
	off := int(addr-testBase) + y*f.RowBytes(r.vp.Bounds().Dx()) + x*f.BytesPerPixel()
	return pixfmt.Load(f, r.bank.Bytes()[off:])
}

func fill(t *testing.T, vp *Viewport, s *surface.Surface, rect image.Rectangle, c pixfmt.Color) {
	t.Helper()
	if err := vp.Dispatcher().Fill(s, rect, accel.Solid(c), false); err != nil {
		t.Fatalf("Fill: %v", err)
	}
}

func TestNewRejectsConfiguration(t *testing.T) {
	const w, h = 8, 4
	bank := sdram.NewBank(testBase, 1<<12)
	good := func() (config.Engine, Output) {
		return config.New(config.WithTopology(config.DoubleBuffered)), Output{
			Width: w, Height: h, Format: pixfmt.FormatARGB8888,
			Front: testBase, Back: testBase + 0x400,
			Display: newFakeDisplay(w, h), Memory: bank,
		}
	}

	tests := []struct {
		name   string
		modify func(*config.Engine, *Output)
	}{
		{"no front buffer", func(_ *config.Engine, o *Output) { o.Front = 0 }},
		{"no back buffer", func(_ *config.Engine, o *Output) { o.Back = 0 }},
		{"shared address", func(_ *config.Engine, o *Output) { o.Back = o.Front }},
		{"size mismatch", func(_ *config.Engine, o *Output) { o.Width = w + 1 }},
		{"zero size", func(_ *config.Engine, o *Output) { o.Width, o.Height = 0, 0 }},
		{"no display", func(_ *config.Engine, o *Output) { o.Display = nil }},
		{"no memory", func(_ *config.Engine, o *Output) { o.Memory = nil }},
		{"native mismatch", func(_ *config.Engine, o *Output) { o.Format = pixfmt.FormatRGB565 }},
		{"unmapped front", func(_ *config.Engine, o *Output) { o.Front = 0x1000 }},
		{"invalid engine", func(c *config.Engine, _ *Output) { c.Topology = config.Topology(42) }},
		{"not displayable", func(c *config.Engine, o *Output) {
			c.Topology = config.OffScreen
			o.Format = pixfmt.FormatPARGB8888
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, out := good()
			tt.modify(&cfg, &out)
			alloc := surface.NewAllocator()
			vp, err := New(cfg, out, alloc, nil)
			if !errors.Is(err, ErrConfig) {
				t.Fatalf("New = %v, %v; want ErrConfig", vp, err)
			}
			if n := alloc.Count(); n != 0 {
				t.Errorf("%d surfaces leaked", n)
			}
		})
	}

	t.Run("valid", func(t *testing.T) {
		cfg, out := good()
		if _, err := New(cfg, out, nil, nil); err != nil {
			t.Fatalf("New: %v", err)
		}
	})
}

func TestNewOutOfMemory(t *testing.T) {
	cfg := config.New(config.WithTopology(config.OffScreen))
	alloc := surface.NewAllocator(surface.WithLimit(16))
	out := Output{
		Width: 8, Height: 8, Format: pixfmt.FormatRGB565, Front: testBase,
		Display: newFakeDisplay(8, 8), Memory: sdram.NewBank(testBase, 128),
	}
	_, err := New(cfg, out, alloc, nil)
	if !errors.Is(err, surface.ErrOutOfMemory) {
		t.Fatalf("New = %v, want ErrOutOfMemory", err)
	}
	if alloc.Count() != 0 || alloc.UsedBytes() != 0 {
		t.Errorf("leaked: count %d, bytes %d", alloc.Count(), alloc.UsedBytes())
	}
}

func TestNewProgramsDisplay(t *testing.T) {
	cfg := config.New(
		config.WithTopology(config.OffScreenDoubleBuffered),
		config.WithNativeFormat(pixfmt.FormatARGB8888),
		config.WithVSyncLine(272),
	)
	r := newRig(t, cfg, pixfmt.FormatIndex8, 16, 8)

	if r.disp.addr != r.front || r.disp.format != pixfmt.FormatIndex8 {
		t.Errorf("layer = %#x %v", r.disp.addr, r.disp.format)
	}
	if want := (Geometry{Width: 16, Height: 8, Pitch: 16}); r.disp.geom != want {
		t.Errorf("geometry = %+v, want %+v", r.disp.geom, want)
	}
	if r.disp.line != 272 || r.disp.handler == nil {
		t.Errorf("line event = %d, armed %v", r.disp.line, r.disp.handler != nil)
	}
	if r.disp.clut == nil {
		t.Fatal("indexed framebuffer without a loaded clut")
	}
	if got, want := r.disp.clut[181], uint32(0xffff0000); got != want {
		t.Errorf("clut[181] = %#x, want %#x", got, want)
	}
	if n := r.alloc.Count(); n != 3 {
		t.Errorf("surfaces = %d, want 3", n)
	}
	if r.vp.State() != StateIdle {
		t.Errorf("state = %v", r.vp.State())
	}
}

func TestClose(t *testing.T) {
	r := newRig(t, config.New(config.WithTopology(config.OffScreen)), pixfmt.FormatARGB8888, 4, 4)

	if _, err := r.vp.BeginUpdate(); err != nil {
		t.Fatal(err)
	}
	if err := r.vp.Close(); !errors.Is(err, ErrUpdateInProgress) {
		t.Errorf("Close while drawing = %v", err)
	}
	if err := r.vp.EndUpdate(image.Rectangle{}); err != nil {
		t.Fatal(err)
	}
	if err := r.vp.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if r.alloc.Count() != 0 || r.alloc.UsedBytes() != 0 {
		t.Errorf("leaked: count %d, bytes %d", r.alloc.Count(), r.alloc.UsedBytes())
	}
	if _, err := r.vp.BeginUpdate(); !errors.Is(err, ErrClosed) {
		t.Errorf("BeginUpdate after Close = %v", err)
	}
	if err := r.vp.Close(); !errors.Is(err, ErrClosed) {
		t.Errorf("second Close = %v", err)
	}
}

func TestSetClut(t *testing.T) {
	blue := pixfmt.DefaultIndex8Clut()
	blue[0] = pixfmt.Opaque(0, 0, 255)

	t.Run("off-screen palette", func(t *testing.T) {
		cfg := config.New(config.WithTopology(config.OffScreen), config.WithNativeFormat(pixfmt.FormatIndex8))
		r := newRig(t, cfg, pixfmt.FormatRGB565, 4, 4)
		if err := r.vp.SetClut(blue); err != nil {
			t.Fatal(err)
		}
		if _, err := r.vp.BeginUpdate(); err != nil {
			t.Fatal(err)
		}
		if err := r.vp.EndUpdate(r.vp.Bounds()); err != nil {
			t.Fatal(err)
		}
		if got := r.pixel(r.front, 3, 3); got != 0x001f {
			t.Errorf("pixel = %#04x, want blue", got)
		}
	})

	t.Run("framebuffer palette", func(t *testing.T) {
		cfg := config.New(config.WithNativeFormat(pixfmt.FormatIndex8))
		r := newRig(t, cfg, pixfmt.FormatIndex8, 4, 4)
		if err := r.vp.SetClut(blue); err != nil {
			t.Fatal(err)
		}
		if got := r.disp.clut[0]; got != 0xff0000ff {
			t.Errorf("display clut[0] = %#x", got)
		}
		if got := r.vp.Front().Clut().At(0); got != blue[0] {
			t.Errorf("framebuffer clut[0] = %v", got)
		}
	})

	t.Run("no palette", func(t *testing.T) {
		r := newRig(t, config.New(config.WithTopology(config.DoubleBuffered)), pixfmt.FormatARGB8888, 4, 4)
		if err := r.vp.SetClut(blue); !errors.Is(err, ErrNoPalette) {
			t.Errorf("SetClut = %v, want ErrNoPalette", err)
		}
	})
}

func TestStateString(t *testing.T) {
	if got := StateAwaitingVSync.String(); got != "awaiting-vsync" {
		t.Errorf("String = %q", got)
	}
	if got := State(9).String(); got != "State(9)" {
		t.Errorf("String = %q", got)
	}
}
