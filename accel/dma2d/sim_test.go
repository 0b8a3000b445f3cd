package dma2d

import (
	"errors"
	"testing"
	"time"

	"github.com/gogpu/ewgfx/pixfmt"
)

func TestSimRequiresInit(t *testing.T) {
	s := NewSim()
	buf := Buffer{Pix: make([]byte, 16), Pitch: 16}
	if err := s.Start(buf, buf, 1, 1); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Start() error = %v, want ErrNotInitialized", err)
	}
}

func TestSimRejectsBadConfig(t *testing.T) {
	s := NewSim()
	if err := s.Init(OutputConfig{Mode: ModeM2M, ColorMode: CML8}); !errors.Is(err, ErrConfig) {
		t.Errorf("Init(L8 output) error = %v, want ErrConfig", err)
	}
	if err := s.ConfigLayer(Foreground, LayerConfig{ColorMode: CML8}); !errors.Is(err, ErrConfig) {
		t.Errorf("ConfigLayer(L8 without CLUT) error = %v, want ErrConfig", err)
	}
	_ = s.Init(OutputConfig{Mode: ModeM2M, ColorMode: CMARGB8888})
	buf := Buffer{Pix: make([]byte, 16), Pitch: 16}
	if err := s.StartBlending(buf, buf, buf, 1, 1); !errors.Is(err, ErrConfig) {
		t.Errorf("StartBlending in M2M error = %v, want ErrConfig", err)
	}
}

func TestSimFill(t *testing.T) {
	s := NewSim()
	pix := make([]byte, 3*2*2)
	color := pixfmt.PackColor(pixfmt.FormatRGB565, pixfmt.Opaque(0, 255, 0))
	if err := s.Init(OutputConfig{Mode: ModeR2M, ColorMode: CMRGB565, Color: color}); err != nil {
		t.Fatal(err)
	}
	// Fill the first two pixels of both rows; the last column is padding.
	if err := s.Start(Buffer{}, Buffer{Pix: pix, Pitch: 6}, 2, 2); err != nil {
		t.Fatal(err)
	}
	if err := s.PollForTransfer(time.Second); err != nil {
		t.Fatal(err)
	}
	want := []byte{0xe0, 0x07, 0xe0, 0x07, 0, 0, 0xe0, 0x07, 0xe0, 0x07, 0, 0}
	for i := range want {
		if pix[i] != want[i] {
			t.Fatalf("pix = % x, want % x", pix, want)
		}
	}
	if s.Transfers() != 1 {
		t.Errorf("Transfers() = %d", s.Transfers())
	}
}

func TestSimBusy(t *testing.T) {
	s := NewSim()
	s.Stall(true)
	_ = s.Init(OutputConfig{Mode: ModeR2M, ColorMode: CMARGB8888})
	buf := Buffer{Pix: make([]byte, 4), Pitch: 4}
	if err := s.Start(Buffer{}, buf, 1, 1); err != nil {
		t.Fatal(err)
	}
	if err := s.Start(Buffer{}, buf, 1, 1); !errors.Is(err, ErrBusy) {
		t.Errorf("second Start() error = %v, want ErrBusy", err)
	}
	if err := s.PollForTransfer(time.Millisecond); !errors.Is(err, ErrTimeout) {
		t.Errorf("PollForTransfer() error = %v, want ErrTimeout", err)
	}
	if err := s.PollForTransfer(time.Millisecond); err != nil {
		t.Errorf("poll after abort error = %v", err)
	}
}

func TestSimA8Layer(t *testing.T) {
	l := LayerConfig{ColorMode: CMA8, AlphaMode: AlphaCombine, Alpha: 128, Color: pixfmt.Opaque(10, 20, 30)}
	got := load(l, []byte{255})
	if got != pixfmt.RGBA(10, 20, 30, 128) {
		t.Errorf("load() = %+v", got)
	}
	l.AlphaMode = AlphaReplace
	l.Alpha = 7
	if got := load(l, []byte{255}); got.A != 7 {
		t.Errorf("replace alpha = %d", got.A)
	}
}
