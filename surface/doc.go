// Package surface provides the pixel buffer abstraction of the graphics core.
//
// A Surface is a rectangular pixel buffer with a fixed format, width and
// height. Surfaces are created by an Allocator, either owning their memory
// (Create), wrapping read-only memory such as flash resources (CreateConst),
// or wrapping writable memory the caller keeps ownership of, such as
// framebuffers at fixed SDRAM addresses (Wrap).
//
// # Locking
//
// Pixels are only read or written inside a Lock/Unlock window:
//
//	mem, err := s.Lock(image.Rect(0, 0, 16, 16), surface.LockWrite)
//	if err != nil {
//	    return err
//	}
//	pixfmt.FillRow(s.Format(), mem.Row(0), mem.Width, v)
//	_ = s.Unlock(mem)
//
// CPU surfaces hand out direct slices; the window exists so that a Backend
// can clean or invalidate caches, or copy to and from a shadow buffer.
//
// Surfaces are NOT safe for concurrent use. The only state shared with the
// vsync interrupt lives in the viewport package.
package surface
