package ewgfx

import (
	"fmt"
	"image"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/norm"

	"github.com/gogpu/ewgfx/accel"
	"github.com/gogpu/ewgfx/pixfmt"
	"github.com/gogpu/ewgfx/surface"
)

// DefaultFontSize is the size in points of the default face.
const DefaultFontSize = 16

var goRegular = sync.OnceValues(func() (*opentype.Font, error) {
	return opentype.Parse(goregular.TTF)
})

// Face returns the font face DrawText uses. Faces keep glyph caches and
// are not shared between engines.
func (e *Engine) Face() (font.Face, error) {
	if e.face != nil {
		return e.face, nil
	}
	f, err := goRegular()
	if err != nil {
		return nil, fmt.Errorf("ewgfx: default font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    DefaultFontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("ewgfx: default face: %w", err)
	}
	e.face = face
	return face, nil
}

// MeasureText returns the bounds of s drawn with its baseline origin at
// (0, 0), and the advance to the next origin.
func (e *Engine) MeasureText(s string) (image.Rectangle, int, error) {
	face, err := e.Face()
	if err != nil {
		return image.Rectangle{}, 0, err
	}
	d := font.Drawer{Face: face}
	b, adv := d.BoundString(norm.NFC.String(s))
	r := image.Rect(b.Min.X.Floor(), b.Min.Y.Floor(), b.Max.X.Ceil(), b.Max.Y.Ceil())
	return r, adv.Ceil(), nil
}

// DrawText draws s with its baseline origin at origin, blended over dst.
// The glyphs are rendered into an Alpha8 mask which is then copied with
// colors as its color: a solid color or a gradient across the text.
//
// s is normalized to NFC first so composed and decomposed input render
// alike. There is no shaping: one rune is one glyph.
func (e *Engine) DrawText(dst *Bitmap, origin image.Point, s string, colors accel.Corners) error {
	face, err := e.Face()
	if err != nil {
		return err
	}
	s = norm.NFC.String(s)
	d := font.Drawer{Face: face}
	b, _ := d.BoundString(s)
	r := image.Rect(b.Min.X.Floor(), b.Min.Y.Floor(), b.Max.X.Ceil(), b.Max.Y.Ceil())
	if r.Empty() || colors.Invisible() {
		return nil
	}

	mask, err := e.alloc.Create(pixfmt.FormatAlpha8, r.Dx(), r.Dy())
	if err != nil {
		return fmt.Errorf("ewgfx: text mask: %w", err)
	}
	defer func() { _ = e.alloc.Destroy(mask) }()

	v, err := mask.OpenView(surface.LockRead | surface.LockWrite)
	if err != nil {
		return err
	}
	d.Dst = v
	d.Src = image.Opaque
	d.Dot = fixed.P(-r.Min.X, -r.Min.Y)
	d.DrawString(s)
	if err := v.Close(); err != nil {
		return err
	}

	return e.disp.Copy(dst, mask, r.Add(origin), image.Point{}, colors, true)
}
