package pixfmt

import "testing"

func TestDefaultIndex8Clut(t *testing.T) {
	c := DefaultIndex8Clut()
	if c[0] != Transparent {
		t.Errorf("entry 0 = %+v, want transparent black", c[0])
	}
	for i := 1; i < 256; i++ {
		if c[i].A != 255 {
			t.Fatalf("entry %d not opaque", i)
		}
	}
	c[5] = Opaque(1, 1, 1)
	if DefaultIndex8Clut()[5] == c[5] {
		t.Error("DefaultIndex8Clut must return a copy")
	}
}

func TestLumA44Clut(t *testing.T) {
	c := LumA44Clut()
	if c[0xf0] != (Color{A: 255}) {
		t.Errorf("entry 0xf0 = %+v, want opaque black", c[0xf0])
	}
	if c[0x0f] != (Color{R: 255, G: 255, B: 255}) {
		t.Errorf("entry 0x0f = %+v, want transparent white", c[0x0f])
	}
}

func TestClutNearest(t *testing.T) {
	c := DefaultIndex8Clut()
	for _, i := range []uint8{0, 1, 42, 216, 230} {
		if got := c.Nearest(c[i]); c[got] != c[i] {
			t.Errorf("Nearest(entry %d) = %d (%+v)", i, got, c[got])
		}
	}
}

func TestBuildConversion(t *testing.T) {
	conv := BuildConversion(FormatRGB565, DefaultIndex8Clut())
	if conv[0] != 0 {
		t.Errorf("index 0 -> %#04x, want RGB565 of transparent black", conv[0])
	}
	white := PackColor(FormatIndex8, Opaque(255, 255, 255))
	if conv[white] != 0xffff {
		t.Errorf("white -> %#04x, want 0xffff", conv[white])
	}
	words := LumA44Clut().Words()
	if words[0xff] != 0xffffffff {
		t.Errorf("LumA44 word 0xff = %#08x", words[0xff])
	}
}

func TestClutFor(t *testing.T) {
	if ClutFor(FormatRGB565) != nil {
		t.Error("direct format must not need a CLUT")
	}
	if ClutFor(FormatIndex8) == nil || ClutFor(FormatLumA44) == nil {
		t.Error("indexed formats need a CLUT")
	}
}
