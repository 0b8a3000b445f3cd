// Package viewport couples framebuffers into one update target and runs
// the screen update cycle.
//
// A Viewport owns up to three surfaces: the front buffer being scanned
// out, an optional back buffer of the same size and format, and an
// optional off-screen buffer in the engine's native format. Which of them
// exist is fixed by the configured topology (see config.Topology).
//
// Every redraw is bracketed by BeginUpdate, which returns the surface to
// draw into, and EndUpdate, which gets the dirty rectangle and brings the
// result to the display:
//
//	Direct                   nothing to do, drawing hit the front buffer
//	OffScreen                convert the dirty area into the front buffer
//	DoubleBuffered           swap front and back, publish the new front
//	OffScreenDoubleBuffered  convert the dirty area (united with the previous
//	                         one) into the back buffer, swap, publish
//
// Publishing a swapped buffer is deferred to the vertical sync interrupt:
// EndUpdate stores the address in a FrameSlot and OnVSyncLine, called from
// the display's line event, applies it. The slot is the only state shared
// with the interrupt.
package viewport
