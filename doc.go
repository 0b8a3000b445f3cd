// Package ewgfx is a surface compositing core for microcontroller displays
// driven by an LCD-TFT controller (LTDC) and a 2D blitter (DMA2D).
//
// # Overview
//
// An Engine owns a viewport, which couples one to three framebuffers into
// a single update target, and a dispatcher, which runs fills and copies on
// the blitter when it can and in software when it cannot. Both paths
// produce byte-identical pixels.
//
// # Quick Start
//
//	import (
//	    "image"
//
//	    "github.com/gogpu/ewgfx"
//	    "github.com/gogpu/ewgfx/accel"
//	    "github.com/gogpu/ewgfx/config"
//	    "github.com/gogpu/ewgfx/ltdc"
//	    "github.com/gogpu/ewgfx/pixfmt"
//	    "github.com/gogpu/ewgfx/sdram"
//	    "github.com/gogpu/ewgfx/viewport"
//	)
//
//	bank := sdram.NewBank(0xC000_0000, 2*480*272*2)
//	lcd := ltdc.New(480, 272, bank)
//	cfg := config.New(config.WithTopology(config.OffScreenDoubleBuffered))
//	eng, err := ewgfx.NewEngine(cfg, viewport.Output{
//	    Width: 480, Height: 272, Format: pixfmt.FormatRGB565,
//	    Front: 0xC000_0000, Back: 0xC000_0000 + 480*272*2,
//	    Display: lcd, Memory: bank,
//	})
//	if err != nil {
//	    return err
//	}
//
//	dst, _ := eng.BeginUpdate()
//	eng.FillRectangle(dst, image.Rect(10, 10, 60, 60), accel.Solid(pixfmt.Opaque(255, 0, 0)), false)
//	eng.EndUpdate(image.Rect(10, 10, 60, 60))
//
// # Update cycle
//
// BeginUpdate returns the surface to draw into; EndUpdate gets the dirty
// rectangle and reconciles it into the framebuffers as the topology
// requires. Framebuffer swaps are applied by OnVSyncLine, which the
// display calls from its line interrupt.
//
// # Coordinate System
//
// Origin (0,0) is the top-left pixel, X grows right and Y grows down.
// Rectangles are half-open as in package image.
package ewgfx
