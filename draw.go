package ewgfx

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/gogpu/ewgfx/accel"
	"github.com/gogpu/ewgfx/internal/blend"
	"github.com/gogpu/ewgfx/pixfmt"
	"github.com/gogpu/ewgfx/surface"
)

// FillRectangle fills rect of dst with colors: one color, or four corner
// colors spanning a gradient over rect. With blendOver the colors are
// blended over the existing pixels.
func (e *Engine) FillRectangle(dst *Bitmap, rect image.Rectangle, colors accel.Corners, blendOver bool) error {
	return e.disp.Fill(dst, rect, colors, blendOver)
}

// CopyBitmap copies the area of src at srcOrigin into dstRect of dst,
// modulated by colors. Pass accel.Solid(pixfmt.Opaque(255, 255, 255))
// for a plain copy; Alpha8 sources take their color from colors.
func (e *Engine) CopyBitmap(dst, src *Bitmap, dstRect image.Rectangle, srcOrigin image.Point, colors accel.Corners, blendOver bool) error {
	return e.disp.Copy(dst, src, dstRect, srcOrigin, colors, blendOver)
}

// TileBitmap fills dstRect of dst with copies of srcRect of src, starting
// at the top-left corner of dstRect. Gradient colors span each tile.
func (e *Engine) TileBitmap(dst, src *Bitmap, dstRect, srcRect image.Rectangle, colors accel.Corners, blendOver bool) error {
	srcRect = srcRect.Intersect(src.Bounds())
	if srcRect.Empty() {
		return nil
	}
	area := dstRect.Intersect(dst.Bounds())
	tw, th := srcRect.Dx(), srcRect.Dy()
	for y := dstRect.Min.Y; y < area.Max.Y; y += th {
		if y+th <= area.Min.Y {
			continue
		}
		for x := dstRect.Min.X; x < area.Max.X; x += tw {
			if x+tw <= area.Min.X {
				continue
			}
			tile := image.Rect(x, y, x+tw, y+th)
			clipped := tile.Intersect(dstRect)
			if err := e.disp.Copy(dst, src, clipped, srcRect.Min.Add(clipped.Min.Sub(tile.Min)), colors, blendOver); err != nil {
				return err
			}
		}
	}
	return nil
}

// WarpBitmap scales srcRect of src onto dstRect of dst, then modulates
// and blends like CopyBitmap. Equal sizes are a plain copy.
func (e *Engine) WarpBitmap(dst, src *Bitmap, dstRect, srcRect image.Rectangle, colors accel.Corners, blendOver bool) error {
	srcRect = srcRect.Intersect(src.Bounds())
	if srcRect.Empty() || dstRect.Empty() {
		return nil
	}
	if srcRect.Size() == dstRect.Size() {
		return e.CopyBitmap(dst, src, dstRect, srcRect.Min, colors, blendOver)
	}

	// Alpha8 stays Alpha8 so the result is still a mask.
	f := pixfmt.FormatARGB8888
	if src.Format() == pixfmt.FormatAlpha8 {
		f = pixfmt.FormatAlpha8
	}
	tmp, err := e.alloc.Create(f, dstRect.Dx(), dstRect.Dy())
	if err != nil {
		return fmt.Errorf("ewgfx: warp: %w", err)
	}
	defer func() { _ = e.alloc.Destroy(tmp) }()

	if err := e.scale(tmp, src, srcRect); err != nil {
		return err
	}
	return e.disp.Copy(dst, tmp, dstRect, image.Point{}, colors, blendOver)
}

func (e *Engine) scale(dst, src *Bitmap, srcRect image.Rectangle) error {
	sv, err := src.OpenView(surface.LockRead)
	if err != nil {
		return err
	}
	defer func() { _ = sv.Close() }()
	dv, err := dst.OpenView(surface.LockWrite)
	if err != nil {
		return err
	}
	e.scaler.Scale(dv, dv.Bounds(), sv, srcRect, draw.Src, nil)
	return dv.Close()
}

// DrawLine draws a one pixel wide line from p0 to p1, both ends included.
// The color runs from c0 at p0 to c1 at p1. Pixels outside clip are not
// touched.
func (e *Engine) DrawLine(dst *Bitmap, p0, p1 image.Point, c0, c1 pixfmt.Color, clip image.Rectangle, blendOver bool) error {
	pts := bresenham(p0, p1)
	colors := make([]pixfmt.Color, len(pts))
	last := len(pts) - 1
	for i := range pts {
		if last == 0 {
			colors[i] = c0
			continue
		}
		t := uint8((i*255 + last/2) / last)
		colors[i] = pixfmt.Color{
			R: blend.Lerp(c0.R, c1.R, t),
			G: blend.Lerp(c0.G, c1.G, t),
			B: blend.Lerp(c0.B, c1.B, t),
			A: blend.Lerp(c0.A, c1.A, t),
		}
	}
	return e.disp.DrawPixels(dst, clip, pts, colors, blendOver)
}

// bresenham returns the points of the line from p0 to p1 in order.
func bresenham(p0, p1 image.Point) []image.Point {
	dx, sx := abs(p1.X-p0.X), sign(p1.X-p0.X)
	dy, sy := -abs(p1.Y-p0.Y), sign(p1.Y-p0.Y)
	pts := make([]image.Point, 0, max(dx, -dy)+1)
	err := dx + dy
	p := p0
	for {
		pts = append(pts, p)
		if p == p1 {
			return pts
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			p.X += sx
		}
		if e2 <= dx {
			err += dx
			p.Y += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
