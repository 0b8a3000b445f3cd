package surface

import (
	"errors"
	"image"
	"testing"

	"github.com/gogpu/ewgfx/pixfmt"
)

func TestCreate(t *testing.T) {
	tests := []struct {
		name    string
		format  pixfmt.Format
		width   int
		height  int
		wantErr error
	}{
		{"ARGB8888", pixfmt.FormatARGB8888, 480, 272, nil},
		{"RGB565", pixfmt.FormatRGB565, 31, 7, nil},
		{"RGB888 odd", pixfmt.FormatRGB888, 3, 5, nil},
		{"Alpha8", pixfmt.FormatAlpha8, 1, 1, nil},
		{"zero width", pixfmt.FormatARGB8888, 0, 10, ErrInvalidDimensions},
		{"negative height", pixfmt.FormatARGB8888, 10, -1, ErrInvalidDimensions},
		{"invalid format", pixfmt.FormatInvalid, 10, 10, ErrInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAllocator()
			s, err := a.Create(tt.format, tt.width, tt.height)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Create() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if a.UsedBytes() != 0 || a.Count() != 0 {
					t.Errorf("failed Create leaked: used=%d count=%d", a.UsedBytes(), a.Count())
				}
				return
			}
			want := tt.width * tt.height * tt.format.BytesPerPixel()
			mem, err := s.Lock(s.Bounds(), LockRead|LockWrite)
			if err != nil {
				t.Fatalf("Lock() error = %v", err)
			}
			if len(mem.Pix) != want {
				t.Errorf("locked bytes = %d, want %d", len(mem.Pix), want)
			}
			if a.UsedBytes() != int64(want) {
				t.Errorf("UsedBytes() = %d, want %d", a.UsedBytes(), want)
			}
			if err := s.Unlock(mem); err != nil {
				t.Fatalf("Unlock() error = %v", err)
			}
			if err := a.Destroy(s); err != nil {
				t.Fatalf("Destroy() error = %v", err)
			}
			if a.UsedBytes() != 0 || a.Count() != 0 {
				t.Errorf("after Destroy: used=%d count=%d", a.UsedBytes(), a.Count())
			}
		})
	}
}

func TestCreateOutOfMemory(t *testing.T) {
	a := NewAllocator(WithLimit(1000))
	s, err := a.Create(pixfmt.FormatARGB8888, 10, 20)
	if err != nil {
		t.Fatalf("first Create() error = %v", err)
	}
	if _, err := a.Create(pixfmt.FormatARGB8888, 10, 10); !errors.Is(err, ErrOutOfMemory) {
		t.Fatalf("second Create() error = %v, want ErrOutOfMemory", err)
	}
	if a.UsedBytes() != 800 || a.Count() != 1 {
		t.Errorf("failed Create changed counters: used=%d count=%d", a.UsedBytes(), a.Count())
	}
	if err := a.Destroy(s); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Create(pixfmt.FormatARGB8888, 10, 10); err != nil {
		t.Errorf("Create after Destroy error = %v", err)
	}
}

func TestCreateConst(t *testing.T) {
	a := NewAllocator()
	pix := make([]byte, 4*4*2)
	for i := range pix {
		pix[i] = byte(i)
	}
	s, err := a.CreateConst(pixfmt.FormatRGB565, 4, 4, Describe(pixfmt.FormatRGB565, pix, 4, 4, 8))
	if err != nil {
		t.Fatalf("CreateConst() error = %v", err)
	}

	if _, err := s.Lock(s.Bounds(), LockWrite); !errors.Is(err, ErrReadOnly) {
		t.Errorf("write Lock error = %v, want ErrReadOnly", err)
	}
	if _, err := s.Lock(s.Bounds(), LockRead|LockClutWrite); !errors.Is(err, ErrReadOnly) {
		t.Errorf("clut write Lock error = %v, want ErrReadOnly", err)
	}
	mem, err := s.Lock(s.Bounds(), LockRead)
	if err != nil {
		t.Fatalf("read Lock error = %v", err)
	}
	if &mem.Pix[0] != &pix[0] {
		t.Error("read Lock must return the caller's memory unchanged")
	}
	if err := s.Unlock(mem); err != nil {
		t.Fatal(err)
	}
	if err := a.Destroy(s); err != nil {
		t.Fatal(err)
	}
	if pix[5] != 5 {
		t.Error("Destroy must not touch preallocated memory")
	}
}

func TestCreateConstRejectsMismatchedDescriptor(t *testing.T) {
	a := NewAllocator()
	pix := make([]byte, 64)
	tests := []struct {
		name    string
		mem     Memory
		wantErr error
	}{
		{"column pitch", Memory{Pix: pix, Pitch1X: 4, Pitch1Y: 8}, ErrInvalidStride},
		{"row pitch too small", Memory{Pix: pix, Pitch1X: 2, Pitch1Y: 6}, ErrInvalidStride},
		{"short buffer", Memory{Pix: pix[:20], Pitch1X: 2, Pitch1Y: 8}, ErrDataTooSmall},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := a.CreateConst(pixfmt.FormatRGB565, 4, 4, tt.mem); !errors.Is(err, tt.wantErr) {
				t.Errorf("CreateConst() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
	if a.Count() != 0 {
		t.Errorf("rejected descriptors leaked %d surfaces", a.Count())
	}
}

func TestLockSubRectangle(t *testing.T) {
	a := NewAllocator()
	s, _ := a.Create(pixfmt.FormatARGB8888, 10, 10)
	mem, err := s.Lock(image.Rect(2, 3, 5, 7), LockWrite)
	if err != nil {
		t.Fatal(err)
	}
	if mem.Width != 3 || mem.Height != 4 || mem.Pitch1X != 4 || mem.Pitch1Y != 40 {
		t.Errorf("descriptor = %dx%d pitch %d/%d", mem.Width, mem.Height, mem.Pitch1X, mem.Pitch1Y)
	}
	pixfmt.Store(pixfmt.FormatARGB8888, mem.Pix, 0xff00ff00)
	_ = s.Unlock(mem)

	c, err := s.At(2, 3)
	if err != nil {
		t.Fatal(err)
	}
	if c != pixfmt.Opaque(0, 255, 0) {
		t.Errorf("At(2, 3) = %+v", c)
	}
}

func TestLockBounds(t *testing.T) {
	a := NewAllocator()
	s, _ := a.Create(pixfmt.FormatRGB565, 10, 10)
	for _, r := range []image.Rectangle{
		image.Rect(0, 0, 11, 1),
		image.Rect(-1, 0, 2, 2),
		image.Rect(3, 3, 3, 5),
	} {
		if _, err := s.Lock(r, LockRead); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("Lock(%v) error = %v, want ErrOutOfBounds", r, err)
		}
	}
	if s.Locked() {
		t.Error("failed locks must not count")
	}
}

func TestDestroyLifecycle(t *testing.T) {
	a := NewAllocator()
	s, _ := a.Create(pixfmt.FormatAlpha8, 4, 4)
	mem, _ := s.Lock(s.Bounds(), LockRead)
	if err := a.Destroy(s); !errors.Is(err, ErrLocked) {
		t.Errorf("Destroy(locked) error = %v, want ErrLocked", err)
	}
	_ = s.Unlock(mem)
	if err := s.Unlock(mem); !errors.Is(err, ErrNotLocked) {
		t.Errorf("double Unlock error = %v, want ErrNotLocked", err)
	}
	if err := a.Destroy(s); err != nil {
		t.Fatal(err)
	}
	if err := a.Destroy(s); !errors.Is(err, ErrDestroyed) {
		t.Errorf("double Destroy error = %v, want ErrDestroyed", err)
	}
	if _, err := s.Lock(image.Rect(0, 0, 1, 1), LockRead); !errors.Is(err, ErrDestroyed) {
		t.Errorf("Lock after Destroy error = %v", err)
	}
}

func TestWrapKeepsAddress(t *testing.T) {
	a := NewAllocator()
	pix := make([]byte, 8*2*4)
	mem := Describe(pixfmt.FormatARGB8888, pix, 8, 2, 32)
	mem.Addr = 0x1000
	s, err := a.Wrap(pixfmt.FormatARGB8888, 8, 2, mem)
	if err != nil {
		t.Fatal(err)
	}
	if s.Owned() || s.ReadOnly() {
		t.Error("wrapped framebuffer must be writable and not owned")
	}
	lm, err := s.Lock(image.Rect(1, 1, 2, 2), LockWrite)
	if err != nil {
		t.Fatal(err)
	}
	if lm.Addr != 0x1000+32+4 {
		t.Errorf("locked Addr = %#x, want %#x", lm.Addr, 0x1000+36)
	}
	_ = s.Unlock(lm)
	if a.UsedBytes() != 0 {
		t.Error("wrapped memory must not count as owned")
	}
}

type recordingBackend struct {
	locks, unlocks int
	lastMode       LockMode
}

func (b *recordingBackend) OnLock(_ *Surface, _ image.Rectangle, mode LockMode) {
	b.locks++
	b.lastMode = mode
}

func (b *recordingBackend) OnUnlock(*Surface, image.Rectangle, LockMode) { b.unlocks++ }

func TestBackendHooks(t *testing.T) {
	b := &recordingBackend{}
	a := NewAllocator(WithBackend(b))
	s, _ := a.Create(pixfmt.FormatRGB565, 2, 2)
	if err := s.Fill(pixfmt.Opaque(1, 2, 3)); err != nil {
		t.Fatal(err)
	}
	if b.locks != 1 || b.unlocks != 1 || b.lastMode != LockWrite {
		t.Errorf("hooks: locks=%d unlocks=%d mode=%v", b.locks, b.unlocks, b.lastMode)
	}
}

func TestIndex8SurfaceHasClut(t *testing.T) {
	a := NewAllocator()
	s, _ := a.Create(pixfmt.FormatIndex8, 2, 2)
	if s.Clut() == nil {
		t.Fatal("Index8 surface needs a CLUT")
	}
	if err := s.Fill(pixfmt.Opaque(255, 255, 255)); err != nil {
		t.Fatal(err)
	}
	c, _ := s.At(1, 1)
	if c != pixfmt.Opaque(255, 255, 255) {
		t.Errorf("At = %+v, want white", c)
	}
}
