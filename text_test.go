package ewgfx

import (
	"image"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gogpu/ewgfx/accel"
	"github.com/gogpu/ewgfx/config"
	"github.com/gogpu/ewgfx/pixfmt"
)

func pixBytes(t *testing.T, b *Bitmap) []byte {
	t.Helper()
	pix, err := snapshot(b)
	if err != nil {
		t.Fatal(err)
	}
	return pix
}

func newCanvas(t *testing.T, eng *Engine) *Bitmap {
	t.Helper()
	b, err := eng.CreateBitmap(pixfmt.FormatARGB8888, 64, 32)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Fill(pixfmt.Opaque(0, 0, 0)); err != nil {
		t.Fatal(err)
	}
	return b
}

func TestDrawText(t *testing.T) {
	d := newTestEngine(t, config.Default(), pixfmt.FormatARGB8888, 8, 8)
	dst := newCanvas(t, d.eng)
	surfaces := d.eng.Stats().Surfaces

	origin := image.Pt(2, 20)
	if err := d.eng.DrawText(dst, origin, "Hi", accel.Solid(white)); err != nil {
		t.Fatal(err)
	}
	bounds, adv, err := d.eng.MeasureText("Hi")
	if err != nil {
		t.Fatal(err)
	}
	if adv <= 0 || bounds.Empty() {
		t.Fatalf("MeasureText = %v, %d", bounds, adv)
	}
	inked := bounds.Add(origin)

	lit := 0
	for y := 0; y < 32; y++ {
		for x := 0; x < 64; x++ {
			c := at(t, dst, x, y)
			if c.R == 0 {
				continue
			}
			lit++
			if !image.Pt(x, y).In(inked) {
				t.Fatalf("pixel (%d,%d) = %v outside the text bounds %v", x, y, c, inked)
			}
			if c.R != c.G || c.G != c.B || c.A != 255 {
				t.Fatalf("pixel (%d,%d) = %v, want opaque gray", x, y, c)
			}
		}
	}
	if lit < 10 {
		t.Errorf("only %d pixels lit", lit)
	}
	if got := d.eng.Stats().Surfaces; got != surfaces {
		t.Errorf("text mask leaked: %d surfaces, want %d", got, surfaces)
	}
}

func TestDrawTextNormalizes(t *testing.T) {
	d := newTestEngine(t, config.Default(), pixfmt.FormatARGB8888, 8, 8)
	composed := newCanvas(t, d.eng)
	decomposed := newCanvas(t, d.eng)

	if err := d.eng.DrawText(composed, image.Pt(4, 20), "caf\u00e9", accel.Solid(white)); err != nil {
		t.Fatal(err)
	}
	if err := d.eng.DrawText(decomposed, image.Pt(4, 20), "cafe\u0301", accel.Solid(white)); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(pixBytes(t, composed), pixBytes(t, decomposed)); diff != "" {
		t.Errorf("composed and decomposed text differ:\n%s", diff)
	}
}

func TestDrawTextNoop(t *testing.T) {
	d := newTestEngine(t, config.Default(), pixfmt.FormatARGB8888, 8, 8)
	dst := newCanvas(t, d.eng)
	want := pixBytes(t, dst)

	if err := d.eng.DrawText(dst, image.Pt(4, 20), "", accel.Solid(white)); err != nil {
		t.Fatal(err)
	}
	if err := d.eng.DrawText(dst, image.Pt(4, 20), "x", accel.Solid(pixfmt.Transparent)); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, pixBytes(t, dst)); diff != "" {
		t.Errorf("no-op text changed the bitmap:\n%s", diff)
	}
}

func TestDrawTextGradient(t *testing.T) {
	d := newTestEngine(t, config.Default(), pixfmt.FormatARGB8888, 8, 8)
	dst := newCanvas(t, d.eng)

	colors := accel.Corners{red, blue, blue, red}
	if err := d.eng.DrawText(dst, image.Pt(2, 24), "MMMMM", colors); err != nil {
		t.Fatal(err)
	}
	// The leftmost lit pixel leans red, the rightmost blue.
	first, last := pixfmt.Color{}, pixfmt.Color{}
	for x := 0; x < 64; x++ {
		for y := 0; y < 32; y++ {
			c := at(t, dst, x, y)
			if c.R == 0 && c.B == 0 {
				continue
			}
			if first == (pixfmt.Color{}) {
				first = c
			}
			last = c
		}
	}
	if first.R <= first.B || last.B <= last.R {
		t.Errorf("gradient not applied: first %v, last %v", first, last)
	}
}
