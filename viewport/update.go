package viewport

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/gogpu/ewgfx/surface"
)

// BeginUpdate opens an update and returns the surface to draw into: the
// off-screen buffer if there is one, else the back buffer if there is
// one, else the front buffer.
//
// BeginUpdate does not wait for a pending swap. Unless the configuration
// asks EndUpdate to wait for vertical sync, the back buffer may still be
// on screen when drawing starts.
//
// With PreserveFramebufferContent the area changed by the previous frame
// is first copied into the back buffer. If that copy fails no update is
// opened and the copy is retried by the next BeginUpdate.
func (v *Viewport) BeginUpdate() (*surface.Surface, error) {
	switch v.state {
	case StateUninitialized:
		return nil, ErrClosed
	case StateDrawing, StateReconciling:
		return nil, ErrUpdateInProgress
	}
	if !v.preserve.Empty() {
		if err := v.disp.Reconcile(v.Back(), v.Front(), v.preserve, nil); err != nil {
			v.logger().Error("viewport: back buffer update failed", "area", v.preserve, "err", err)
			return nil, fmt.Errorf("viewport: begin update: %w", err)
		}
		v.preserve = image.Rectangle{}
	}
	v.state = StateDrawing
	return v.target(), nil
}

func (v *Viewport) target() *surface.Surface {
	switch {
	case v.offscreen != nil:
		return v.offscreen
	case v.bufs[1] != nil:
		return v.Back()
	default:
		return v.Front()
	}
}

// EndUpdate closes the update opened by BeginUpdate. dirty is the area
// drawn; it is clipped to the display. An empty dirty rectangle closes the
// update without touching the display, unless a failed update left area
// behind.
//
// If reconciling fails the update is closed, no swap happens and the
// error is returned. Another update can be started; it reconciles the
// failed area together with its own.
func (v *Viewport) EndUpdate(dirty image.Rectangle) error {
	return v.EndUpdateContext(context.Background(), dirty)
}

// EndUpdateContext is EndUpdate with a context bounding the vertical sync
// wait.
func (v *Viewport) EndUpdateContext(ctx context.Context, dirty image.Rectangle) error {
	switch v.state {
	case StateUninitialized:
		return ErrClosed
	case StateDrawing:
	default:
		return ErrNoUpdate
	}

	dirty = dirty.Intersect(v.Bounds()).Union(v.unsynced)
	if dirty.Empty() {
		v.state = StateIdle
		return nil
	}

	v.state = StateReconciling
	swapped, err := v.reconcile(dirty)
	if err != nil {
		v.unsynced = dirty
		v.state = StateIdle
		v.logger().Error("viewport: update failed",
			"topology", v.cfg.Topology, "dirty", dirty, "err", err)
		return fmt.Errorf("viewport: end update: %w", err)
	}
	v.unsynced = image.Rectangle{}
	v.lastDirty = dirty
	v.state = StateIdle
	if !swapped {
		return nil
	}
	if v.offscreen == nil && v.cfg.PreserveFramebufferContent {
		v.preserve = dirty
	}

	addr := v.Front().Addr()
	v.slot.Request(addr)
	v.logger().Debug("viewport: swap requested", "addr", fmt.Sprintf("%#x", addr), "dirty", dirty)
	if !v.cfg.VSyncWait {
		return nil
	}
	return v.waitVSync(ctx, addr)
}

// reconcile brings the dirty area of the frame to the framebuffer that
// will be shown and swaps double buffers. It reports whether a swap
// happened.
func (v *Viewport) reconcile(dirty image.Rectangle) (bool, error) {
	switch {
	case v.offscreen == nil && v.bufs[1] == nil:
		return false, nil

	case v.bufs[1] == nil:
		return false, v.disp.Reconcile(v.Front(), v.offscreen, dirty, v.conv)

	case v.offscreen == nil:
		// The new frame was drawn into the back buffer. The buffer on
		// screen is brought in step by the next BeginUpdate.
		v.front = 1 - v.front
		return true, nil

	default:
		// The back buffer missed the previous frame's changes, which only
		// reached the other buffer.
		area := dirty.Union(v.lastDirty)
		if err := v.disp.Reconcile(v.Back(), v.offscreen, area, v.conv); err != nil {
			return false, err
		}
		v.front = 1 - v.front
		return true, nil
	}
}

func (v *Viewport) waitVSync(ctx context.Context, addr uintptr) error {
	timer := time.NewTimer(v.cfg.VSyncTimeout)
	defer timer.Stop()

	for v.slot.Current() != addr {
		select {
		case <-v.vsync:
		case <-timer.C:
			v.logger().Warn("viewport: vertical sync timeout",
				"addr", fmt.Sprintf("%#x", addr), "timeout", v.cfg.VSyncTimeout)
			return ErrVSyncTimeout
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// OnVSyncLine applies a pending framebuffer swap. It is armed as the
// display's line event handler and runs in interrupt context: it touches
// nothing but the frame slot and the display.
func (v *Viewport) OnVSyncLine() {
	addr, ok := v.slot.Apply()
	if !ok {
		return
	}
	if err := v.out.Display.SetLayerAddress(addr); err != nil {
		v.logger().Error("viewport: layer address update failed", "addr", fmt.Sprintf("%#x", addr), "err", err)
	}
	select {
	case v.vsync <- struct{}{}:
	default:
	}
}
