package pixfmt

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
)

func TestFormatBytesPerPixel(t *testing.T) {
	tests := []struct {
		format Format
		want   int
	}{
		{FormatARGB8888, 4},
		{FormatPARGB8888, 4},
		{FormatRGB888, 3},
		{FormatRGB565, 2},
		{FormatARGB4444, 2},
		{FormatLumA44, 1},
		{FormatIndex8, 1},
		{FormatAlpha8, 1},
		{FormatInvalid, 0},
		{Format(200), 0},
	}
	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			if got := tt.format.BytesPerPixel(); got != tt.want {
				t.Errorf("BytesPerPixel() = %d, want %d", got, tt.want)
			}
			if got := tt.format.ImageBytes(7, 3); got != 7*3*tt.want {
				t.Errorf("ImageBytes(7, 3) = %d, want %d", got, 7*3*tt.want)
			}
		})
	}
}

func TestFormatValidity(t *testing.T) {
	if FormatInvalid.IsValid() {
		t.Error("FormatInvalid must not be valid")
	}
	if Format(200).IsValid() {
		t.Error("out of range format must not be valid")
	}
	for f := FormatARGB8888; f < formatCount; f++ {
		if !f.IsValid() {
			t.Errorf("%v should be valid", f)
		}
	}
	if FormatAlpha8.IsDisplayCapable() || FormatPARGB8888.IsDisplayCapable() {
		t.Error("Alpha8 and PARGB8888 cannot be scanned out")
	}
	if FormatRGB888.IsNativeCapable() {
		t.Error("RGB888 is not an engine format")
	}
}

func TestFormatTexture(t *testing.T) {
	if FormatARGB8888.TextureFormat() != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("ARGB8888 texture = %v", FormatARGB8888.TextureFormat())
	}
	if FormatAlpha8.TextureFormat() != gputypes.TextureFormatR8Unorm {
		t.Errorf("Alpha8 texture = %v", FormatAlpha8.TextureFormat())
	}
	if FormatRGB565.TextureFormat() != gputypes.TextureFormatUndefined {
		t.Errorf("RGB565 texture = %v", FormatRGB565.TextureFormat())
	}
}

func TestParseFormat(t *testing.T) {
	for f := FormatARGB8888; f < formatCount; f++ {
		got, err := ParseFormat(f.String())
		if err != nil || got != f {
			t.Errorf("ParseFormat(%q) = %v, %v", f.String(), got, err)
		}
	}
	if got, err := ParseFormat("rgb565"); err != nil || got != FormatRGB565 {
		t.Errorf("ParseFormat(rgb565) = %v, %v", got, err)
	}
	for _, name := range []string{"", "Invalid", "RGBA5551"} {
		if _, err := ParseFormat(name); !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("ParseFormat(%q) = %v, want ErrUnknownFormat", name, err)
		}
	}
}
