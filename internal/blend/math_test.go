package blend

import "testing"

func TestMulDiv255Exact(t *testing.T) {
	for a := 0; a < 256; a++ {
		for b := 0; b < 256; b++ {
			got := MulDiv255(byte(a), byte(b))
			want := byte((a*b + 127) / 255)
			// Smith's formula rounds half up on a handful of products; it must
			// never be further than one step from the rounded quotient.
			if diff := int(got) - int(want); diff < -1 || diff > 1 {
				t.Fatalf("MulDiv255(%d, %d) = %d, want %d", a, b, got, want)
			}
		}
	}
	if MulDiv255(255, 255) != 255 {
		t.Error("MulDiv255(255, 255) must be 255")
	}
	if MulDiv255(0, 255) != 0 || MulDiv255(255, 0) != 0 {
		t.Error("MulDiv255 with zero operand must be 0")
	}
	for a := 0; a < 256; a++ {
		if got := MulDiv255(byte(a), 255); got != byte(a) {
			t.Fatalf("MulDiv255(%d, 255) = %d, want identity", a, got)
		}
	}
}

func TestLerpEndpoints(t *testing.T) {
	tests := []struct {
		a, b, t, want byte
	}{
		{0, 255, 0, 0},
		{0, 255, 255, 255},
		{10, 10, 128, 10},
		{200, 100, 255, 100},
	}
	for _, tt := range tests {
		if got := Lerp(tt.a, tt.b, tt.t); got != tt.want {
			t.Errorf("Lerp(%d, %d, %d) = %d, want %d", tt.a, tt.b, tt.t, got, tt.want)
		}
	}
}

func TestPremultiplyRoundTrip(t *testing.T) {
	for _, a := range []byte{0, 1, 64, 128, 200, 255} {
		r, g, b, pa := Premultiply(200, 100, 50, a)
		if pa != a {
			t.Fatalf("alpha changed: %d -> %d", a, pa)
		}
		if r > a || g > a || b > a {
			t.Fatalf("premultiplied channel exceeds alpha %d: %d %d %d", a, r, g, b)
		}
		ur, _, _, _ := Unpremultiply(r, g, b, pa)
		if a == 255 && ur != 200 {
			t.Errorf("opaque round trip: got %d, want 200", ur)
		}
		if a == 0 && ur != 0 {
			t.Errorf("transparent round trip: got %d, want 0", ur)
		}
	}
}
