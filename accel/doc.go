// Package accel dispatches rectangular fill, copy and blend operations
// between surfaces to a hardware blitter when one can do the job, and to
// software row drivers otherwise.
//
// Every operation is first normalized to one of a few primitives (see Op
// and Classify). A registered Accelerator is asked whether it can handle
// the primitive for the given formats; if it declines, or returns
// ErrFallback, the software path runs instead. The software path produces
// the same bytes the hardware would, so enabling or disabling the
// accelerator changes only speed.
//
// A hardware error other than ErrFallback is a fault: the operation is
// abandoned, the error is logged and returned wrapping ErrHardwareFault,
// and no software retry is attempted.
package accel
