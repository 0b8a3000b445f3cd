package ltdc

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/ewgfx/internal/blend"
	"github.com/gogpu/ewgfx/pixfmt"
)

// Snapshot returns what the panel shows: the active layer blended over
// the background color, as an opaque image.
func (c *Controller) Snapshot() (*image.RGBA, error) {
	c.mu.Lock()
	l := c.active
	clut := c.clut
	bg := c.background
	c.mu.Unlock()

	img := image.NewRGBA(image.Rect(0, 0, c.width, c.height))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+0] = bg.R
		img.Pix[i+1] = bg.G
		img.Pix[i+2] = bg.B
		img.Pix[i+3] = 0xff
	}
	if !l.enabled {
		return img, nil
	}

	f, g := l.format, l.geom
	size := (g.Height-1)*g.Pitch + f.RowBytes(g.Width)
	pix, err := c.mem.Map(l.addr, size)
	if err != nil {
		return nil, fmt.Errorf("ltdc: scan %#x: %w", l.addr, err)
	}

	bpp := f.BytesPerPixel()
	for y := 0; y < g.Height; y++ {
		src := pix[y*g.Pitch:]
		dst := img.Pix[img.PixOffset(g.X, g.Y+y):]
		for x := 0; x < g.Width; x++ {
			s := src[x*bpp:]
			var px pixfmt.Color
			switch {
			case f.TextureFormat() == gputypes.TextureFormatBGRA8Unorm:
				// Same byte order as the texture format: B, G, R, A.
				px = pixfmt.Color{R: s[2], G: s[1], B: s[0], A: s[3]}
			case f.IsIndexed():
				px = pixfmt.UnpackColor(pixfmt.FormatARGB8888, clut[s[0]])
			default:
				px = pixfmt.UnpackColor(f, pixfmt.Load(f, s))
			}
			d := dst[x*4:]
			d[0] = blend.Lerp(d[0], px.R, px.A)
			d[1] = blend.Lerp(d[1], px.G, px.A)
			d[2] = blend.Lerp(d[2], px.B, px.A)
		}
	}
	return img, nil
}
