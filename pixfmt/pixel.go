package pixfmt

// Load reads one little-endian pixel of format f from the start of b.
func Load(f Format, b []byte) uint32 {
	switch f.BytesPerPixel() {
	case 1:
		return uint32(b[0])
	case 2:
		_ = b[1]
		return uint32(b[0]) | uint32(b[1])<<8
	case 3:
		_ = b[2]
		return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
	case 4:
		_ = b[3]
		return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	default:
		return 0
	}
}

// Store writes one little-endian pixel of format f to the start of b.
func Store(f Format, b []byte, v uint32) {
	switch f.BytesPerPixel() {
	case 1:
		b[0] = byte(v)
	case 2:
		_ = b[1]
		b[0] = byte(v)
		b[1] = byte(v >> 8)
	case 3:
		_ = b[2]
		b[0] = byte(v)
		b[1] = byte(v >> 8)
		b[2] = byte(v >> 16)
	case 4:
		_ = b[3]
		b[0] = byte(v)
		b[1] = byte(v >> 8)
		b[2] = byte(v >> 16)
		b[3] = byte(v >> 24)
	}
}

// FillRow stores v into n consecutive pixels of format f starting at b.
func FillRow(f Format, b []byte, n int, v uint32) {
	bpp := f.BytesPerPixel()
	if n <= 0 || bpp == 0 {
		return
	}
	Store(f, b, v)
	// Double the filled prefix until the row is covered.
	filled := bpp
	total := n * bpp
	for filled < total {
		filled += copy(b[filled:total], b[:filled])
	}
}
