package pixfmt

// Clut is a 256-entry color lookup table for 8-bit indexed formats.
type Clut [256]Color

// The default Index8 palette: entry 0 is transparent black, entries 1..216
// are an opaque 6x6x6 color cube, entries 217..255 are an opaque gray ramp.
const (
	cubeBase  = 1
	cubeSize  = 6
	cubeStep  = 51
	grayBase  = cubeBase + cubeSize*cubeSize*cubeSize
	grayCount = 256 - grayBase
)

var defaultIndex8 = func() Clut {
	var c Clut
	for r := 0; r < cubeSize; r++ {
		for g := 0; g < cubeSize; g++ {
			for b := 0; b < cubeSize; b++ {
				i := cubeBase + r*cubeSize*cubeSize + g*cubeSize + b
				c[i] = Opaque(uint8(r*cubeStep), uint8(g*cubeStep), uint8(b*cubeStep))
			}
		}
	}
	for i := 0; i < grayCount; i++ {
		v := uint8((i + 1) * 255 / (grayCount + 1))
		c[grayBase+i] = Opaque(v, v, v)
	}
	return c
}()

// DefaultIndex8Clut returns a copy of the palette Index8 surfaces start with.
func DefaultIndex8Clut() *Clut {
	c := defaultIndex8
	return &c
}

// LumA44Clut returns the table that displays LumA44 pixels: the high nibble
// of the index is alpha, the low nibble is luminance.
func LumA44Clut() *Clut {
	var c Clut
	for i := range c {
		c[i] = UnpackColor(FormatLumA44, uint32(i))
	}
	return &c
}

// ClutFor returns the table a display needs to show pixels of format f, or
// nil when f is a direct-color format.
func ClutFor(f Format) *Clut {
	switch f {
	case FormatIndex8:
		return DefaultIndex8Clut()
	case FormatLumA44:
		return LumA44Clut()
	default:
		return nil
	}
}

// cubeIndex maps c onto the color cube of the default palette.
// Colors less than half opaque map to the transparent entry.
func cubeIndex(c Color) uint8 {
	if c.A < 128 {
		return 0
	}
	q := func(v uint8) int { return (int(v) + cubeStep/2) / cubeStep }
	return uint8(cubeBase + q(c.R)*cubeSize*cubeSize + q(c.G)*cubeSize + q(c.B))
}

// At returns the color of entry i.
func (t *Clut) At(i uint8) Color {
	return t[i]
}

// Nearest returns the index of the entry closest to c, comparing all four
// channels with squared distance. Ties resolve to the lowest index.
func (t *Clut) Nearest(c Color) uint8 {
	best, bestDist := 0, int(^uint(0)>>1)
	for i := range t {
		e := t[i]
		dr := int(e.R) - int(c.R)
		dg := int(e.G) - int(c.G)
		db := int(e.B) - int(c.B)
		da := int(e.A) - int(c.A)
		d := dr*dr + dg*dg + db*db + da*da
		if d < bestDist {
			best, bestDist = i, d
			if d == 0 {
				break
			}
		}
	}
	return uint8(best)
}

// Conversion maps every index of a CLUT to a packed value of a target format.
type Conversion [256]uint32

// BuildConversion expands t into the target format once, so converting an
// indexed buffer costs one table lookup per pixel.
func BuildConversion(target Format, t *Clut) *Conversion {
	var conv Conversion
	for i := range t {
		conv[i] = PackClutEntry(target, t[i])
	}
	return &conv
}

// Words returns the table as ARGB8888 CLUT register words.
func (t *Clut) Words() *[256]uint32 {
	var w [256]uint32
	for i := range t {
		w[i] = PackColor(FormatARGB8888, t[i])
	}
	return &w
}
