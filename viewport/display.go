package viewport

import "github.com/gogpu/ewgfx/pixfmt"

// Geometry places a display layer.
type Geometry struct {
	// X and Y are the layer position on the panel.
	X, Y int

	// Width and Height are the layer size in pixels.
	Width, Height int

	// Pitch is the byte distance between framebuffer rows.
	Pitch int
}

// Display is the display controller binding (LTDC on the target).
type Display interface {
	// Size returns the panel size in pixels.
	Size() (width, height int)

	// ConfigureLayer programs the layer to scan out the framebuffer at
	// addr.
	ConfigureLayer(addr uintptr, f pixfmt.Format, geom Geometry) error

	// SetLayerAddress switches the layer to another framebuffer of the
	// same geometry. Called from the vertical sync interrupt.
	SetLayerAddress(addr uintptr) error

	// SetClut loads the layer color table, as ARGB8888 words.
	SetClut(clut *[256]uint32) error

	// ConfigureLineEvent arms handler to run when the scan reaches line.
	// handler runs in interrupt context.
	ConfigureLineEvent(line int, handler func()) error
}

// Memory maps framebuffer bus addresses to bytes.
type Memory interface {
	Map(addr uintptr, size int) ([]byte, error)
}

// Output describes one physical display output.
type Output struct {
	// Width and Height are the logical size; they must match the panel.
	Width, Height int

	// Format is the physical framebuffer format.
	Format pixfmt.Format

	// Front is the address of the framebuffer shown first. Required.
	Front uintptr

	// Back is the address of the second framebuffer. Required by
	// double-buffered topologies, ignored otherwise.
	Back uintptr

	Display Display
	Memory  Memory
}
