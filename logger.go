package ewgfx

import (
	"log/slog"

	"github.com/gogpu/ewgfx/internal/diag"
)

// SetLogger configures the logger for ewgfx and all its sub-packages.
// By default, ewgfx produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Components created with their own WithLogger option keep that logger.
//
// Log levels used by ewgfx:
//   - [slog.LevelDebug]: per-operation diagnostics (software paths, swaps)
//   - [slog.LevelInfo]: lifecycle events (viewport ready, engine closed)
//   - [slog.LevelWarn]: blitter fallback, vertical sync timeouts, allocation failures
//   - [slog.LevelError]: configuration errors and hardware faults
//
// Example:
//
//	// Enable debug-level logging for full diagnostics:
//	ewgfx.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	diag.Set(l)
}

// Logger returns the current logger used by ewgfx.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return diag.Logger()
}
