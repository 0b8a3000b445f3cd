package dma2d

import (
	"errors"
	"time"

	"github.com/gogpu/ewgfx/pixfmt"
)

var (
	// ErrTimeout is returned by PollForTransfer when the transfer does not
	// complete in time.
	ErrTimeout = errors.New("dma2d: transfer timeout")

	// ErrBusy is returned when a transfer is started while one is running.
	ErrBusy = errors.New("dma2d: transfer in progress")

	// ErrNotInitialized is returned when starting before Init.
	ErrNotInitialized = errors.New("dma2d: not initialized")

	// ErrConfig is returned for register combinations the engine rejects.
	ErrConfig = errors.New("dma2d: invalid configuration")
)

// Mode is the transfer mode.
type Mode uint8

const (
	// ModeM2M copies memory without conversion.
	ModeM2M Mode = iota
	// ModeM2MPFC copies memory with pixel format conversion.
	ModeM2MPFC
	// ModeM2MBlend blends foreground over background.
	ModeM2MBlend
	// ModeR2M fills memory with the output color register.
	ModeR2M
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeM2M:
		return "M2M"
	case ModeM2MPFC:
		return "M2M_PFC"
	case ModeM2MBlend:
		return "M2M_BLEND"
	case ModeR2M:
		return "R2M"
	default:
		return "unknown"
	}
}

// ColorMode is a pixel layout understood by the engine.
type ColorMode uint8

// Color modes.
const (
	CMARGB8888 ColorMode = iota
	CMRGB888
	CMRGB565
	CMARGB4444
	CML8
	CMA8
)

// Format returns the pixel format with the same memory layout.
func (m ColorMode) Format() pixfmt.Format {
	switch m {
	case CMARGB8888:
		return pixfmt.FormatARGB8888
	case CMRGB888:
		return pixfmt.FormatRGB888
	case CMRGB565:
		return pixfmt.FormatRGB565
	case CMARGB4444:
		return pixfmt.FormatARGB4444
	case CML8:
		return pixfmt.FormatIndex8
	case CMA8:
		return pixfmt.FormatAlpha8
	default:
		return pixfmt.FormatInvalid
	}
}

// IsOutput reports whether m can be written by the output stage.
func (m ColorMode) IsOutput() bool {
	return m <= CMARGB4444
}

// AlphaMode selects how the layer alpha register modifies pixel alpha.
type AlphaMode uint8

const (
	// AlphaNoModif keeps the pixel alpha.
	AlphaNoModif AlphaMode = iota
	// AlphaReplace replaces the pixel alpha with the register.
	AlphaReplace
	// AlphaCombine multiplies the pixel alpha by the register.
	AlphaCombine
)

// LayerIndex selects an input layer.
type LayerIndex uint8

const (
	// Background is the blend destination input.
	Background LayerIndex = iota
	// Foreground is the source of every memory transfer.
	Foreground
)

// OutputConfig is the transfer-wide configuration.
type OutputConfig struct {
	Mode      Mode
	ColorMode ColorMode

	// Color is the fill value of R2M transfers, already packed in
	// ColorMode.
	Color uint32
}

// LayerConfig is the configuration of one input layer.
type LayerConfig struct {
	ColorMode ColorMode
	AlphaMode AlphaMode
	Alpha     uint8

	// Color supplies red, green and blue for A8 input.
	Color pixfmt.Color

	// Clut is the ARGB8888 lookup table for L8 input.
	Clut *[256]uint32
}

// Buffer is a memory area handed to the engine: Pix starts at the first
// pixel, rows are Pitch bytes apart. Addr is the bus address of Pix[0],
// 0 for host memory.
type Buffer struct {
	Pix   []byte
	Pitch int
	Addr  uintptr
}

// Driver is the peripheral contract.
type Driver interface {
	// Init programs the transfer mode and output stage.
	Init(cfg OutputConfig) error

	// DeInit resets the engine.
	DeInit() error

	// ConfigLayer programs an input layer.
	ConfigLayer(layer LayerIndex, cfg LayerConfig) error

	// Start starts an M2M, M2M_PFC or R2M transfer of width×height
	// pixels. src is ignored for R2M.
	Start(src, dst Buffer, width, height int) error

	// StartBlending starts an M2M_BLEND transfer.
	StartBlending(fg, bg, dst Buffer, width, height int) error

	// PollForTransfer waits for the running transfer to complete.
	// It returns ErrTimeout if that takes longer than timeout.
	PollForTransfer(timeout time.Duration) error
}
