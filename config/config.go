// Package config holds the graphics engine configuration: the values a
// board fixes once at start-up and every component reads afterwards.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gogpu/ewgfx/pixfmt"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("config: invalid engine configuration")

// Topology is the buffer arrangement of a viewport.
type Topology uint8

const (
	// Direct draws straight into the displayed framebuffer.
	Direct Topology = iota

	// DoubleBuffered draws into a back buffer and swaps it with the front
	// buffer at the end of every update.
	DoubleBuffered

	// OffScreen composes in a native-format buffer and converts the dirty
	// area into the displayed framebuffer.
	OffScreen

	// OffScreenDoubleBuffered composes off screen, converts into the back
	// buffer and swaps.
	OffScreenDoubleBuffered

	topologyCount
)

var topologyNames = [topologyCount]string{
	Direct:                  "direct",
	DoubleBuffered:          "double",
	OffScreen:               "offscreen",
	OffScreenDoubleBuffered: "offscreen-double",
}

// String returns the topology name as accepted by ParseTopology.
func (t Topology) String() string {
	if t < topologyCount {
		return topologyNames[t]
	}
	return fmt.Sprintf("topology(%d)", uint8(t))
}

// IsValid reports whether t is one of the four topologies.
func (t Topology) IsValid() bool { return t < topologyCount }

// HasOffScreen reports whether drawing goes to an off-screen buffer.
func (t Topology) HasOffScreen() bool {
	return t == OffScreen || t == OffScreenDoubleBuffered
}

// HasDoubleBuffer reports whether a back buffer is swapped with the front.
func (t Topology) HasDoubleBuffer() bool {
	return t == DoubleBuffered || t == OffScreenDoubleBuffered
}

// TopologyFor returns the topology with the given buffers.
func TopologyFor(offScreen, doubleBuffer bool) Topology {
	switch {
	case offScreen && doubleBuffer:
		return OffScreenDoubleBuffered
	case offScreen:
		return OffScreen
	case doubleBuffer:
		return DoubleBuffered
	default:
		return Direct
	}
}

// ParseTopology parses a topology name.
func ParseTopology(s string) (Topology, error) {
	for t, name := range topologyNames {
		if strings.EqualFold(s, name) {
			return Topology(t), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown topology %q", ErrInvalid, s)
}

// Engine is the graphics engine configuration.
type Engine struct {
	// NativeFormat is the format the engine draws in: the off-screen
	// buffer format, or the display format for topologies without one.
	NativeFormat pixfmt.Format

	// Topology selects the buffer arrangement.
	Topology Topology

	// VSyncWait makes EndUpdate block until a swapped buffer is on screen.
	VSyncWait bool

	// VSyncTimeout bounds the VSyncWait wait.
	VSyncTimeout time.Duration

	// VSyncLine is the scan line at which the display raises the vertical
	// sync event.
	VSyncLine int

	// AccelTimeout bounds every hardware blitter transfer.
	AccelTimeout time.Duration

	// MaxSurfaceCacheSize is the byte budget of the loaded-bitmap cache.
	// Zero disables caching.
	MaxSurfaceCacheSize int64

	// MaxSurfaceMemory caps the bytes all owned surfaces may hold.
	// Zero means unlimited.
	MaxSurfaceMemory int64

	// PreserveFramebufferContent keeps the back buffer of a double-buffered
	// viewport up to date after a swap, so partial redraws stay correct.
	PreserveFramebufferContent bool
}

// Default returns the configuration of a direct ARGB8888 display.
func Default() Engine {
	return Engine{
		NativeFormat:        pixfmt.FormatARGB8888,
		Topology:            Direct,
		VSyncTimeout:        100 * time.Millisecond,
		AccelTimeout:        time.Second,
		MaxSurfaceCacheSize: 1 << 20,
	}
}

// Option modifies an Engine configuration.
type Option func(*Engine)

// New returns Default with opts applied.
func New(opts ...Option) Engine {
	e := Default()
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// WithNativeFormat sets the engine native format.
func WithNativeFormat(f pixfmt.Format) Option {
	return func(e *Engine) {
		e.NativeFormat = f
	}
}

// WithTopology sets the buffer topology.
func WithTopology(t Topology) Option {
	return func(e *Engine) {
		e.Topology = t
	}
}

// WithVSyncWait makes EndUpdate wait up to timeout for a swap to complete.
func WithVSyncWait(timeout time.Duration) Option {
	return func(e *Engine) {
		e.VSyncWait = true
		e.VSyncTimeout = timeout
	}
}

// WithVSyncLine sets the scan line of the vertical sync event.
func WithVSyncLine(line int) Option {
	return func(e *Engine) {
		e.VSyncLine = line
	}
}

// WithAccelTimeout sets the blitter transfer timeout.
func WithAccelTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.AccelTimeout = d
	}
}

// WithSurfaceCache sets the loaded-bitmap cache budget in bytes.
func WithSurfaceCache(bytes int64) Option {
	return func(e *Engine) {
		e.MaxSurfaceCacheSize = bytes
	}
}

// WithSurfaceMemory caps owned surface memory in bytes.
func WithSurfaceMemory(bytes int64) Option {
	return func(e *Engine) {
		e.MaxSurfaceMemory = bytes
	}
}

// WithPreserveFramebufferContent keeps back buffers in sync after swaps.
func WithPreserveFramebufferContent(preserve bool) Option {
	return func(e *Engine) {
		e.PreserveFramebufferContent = preserve
	}
}

// Validate checks the configuration. The error wraps ErrInvalid.
func (e Engine) Validate() error {
	var errs []error
	if !e.NativeFormat.IsNativeCapable() {
		errs = append(errs, fmt.Errorf("native format %v not supported", e.NativeFormat))
	}
	if !e.Topology.IsValid() {
		errs = append(errs, fmt.Errorf("unknown topology %v", e.Topology))
	}
	if e.VSyncWait && e.VSyncTimeout <= 0 {
		errs = append(errs, errors.New("vsync wait needs a positive timeout"))
	}
	if e.VSyncLine < 0 {
		errs = append(errs, fmt.Errorf("negative vsync line %d", e.VSyncLine))
	}
	if e.AccelTimeout < 0 {
		errs = append(errs, fmt.Errorf("negative accelerator timeout %v", e.AccelTimeout))
	}
	if e.MaxSurfaceCacheSize < 0 || e.MaxSurfaceMemory < 0 {
		errs = append(errs, errors.New("negative memory budget"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}
