package vecmath

import (
	"math"
	"testing"
)

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestDotCross(t *testing.T) {
	a := Vec2{3, 4}
	b := Vec2{1, 2}
	if got := a.Dot(b); !almostEqual(got, 11, 1e-9) {
		t.Errorf("Dot = %v, want 11", got)
	}
	if got := a.Cross(b); !almostEqual(got, 2, 1e-9) {
		t.Errorf("Cross = %v, want 2", got)
	}
}

func TestClampLength(t *testing.T) {
	v := Vec2{300, 400} // length 500
	clamped := v.ClampLength(100)
	if !almostEqual(clamped.Length(), 100, 1e-6) {
		t.Errorf("ClampLength length = %v, want 100", clamped.Length())
	}

	short := Vec2{1, 1}
	if got := short.ClampLength(100); got != short {
		t.Errorf("ClampLength should not alter vectors under max, got %v", got)
	}

	// Exactly at max: unchanged.
	exact := Vec2{100, 0}
	if got := exact.ClampLength(100); got != exact {
		t.Errorf("ClampLength at exactly max should be unchanged, got %v", got)
	}
}

func TestNormalizedZero(t *testing.T) {
	if got := Zero.Normalized(); got != Zero {
		t.Errorf("Normalized of zero vector = %v, want Zero", got)
	}
}

func TestRotated90(t *testing.T) {
	v := Vec2{1, 0}
	r := v.Rotated(math.Pi / 2)
	if !almostEqual(r.X, 0, 1e-9) || !almostEqual(r.Y, 1, 1e-9) {
		t.Errorf("Rotated(pi/2) = %v, want (0,1)", r)
	}
}

func TestLerp(t *testing.T) {
	a := Vec2{0, 0}
	b := Vec2{10, 20}
	mid := Lerp(a, b, 0.5)
	if mid != (Vec2{5, 10}) {
		t.Errorf("Lerp midpoint = %v, want (5,10)", mid)
	}
}

func TestClampScalar(t *testing.T) {
	if Clamp(5, 0, 10) != 5 {
		t.Error("in-range value should be unchanged")
	}
	if Clamp(-5, 0, 10) != 0 {
		t.Error("below-range value should clamp to lo")
	}
	if Clamp(50, 0, 10) != 10 {
		t.Error("above-range value should clamp to hi")
	}
}
