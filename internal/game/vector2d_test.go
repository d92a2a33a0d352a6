package game

import (
	"math"
	"testing"
)

func TestVec2Arithmetic(t *testing.T) {
	a := NewVec2(3, 4)
	b := NewVec2(1, -2)

	if got := a.Plus(b); got != (Vec2{4, 2}) {
		t.Errorf("Plus = %+v, want {4 2}", got)
	}
	if got := a.Minus(b); got != (Vec2{2, 6}) {
		t.Errorf("Minus = %+v, want {2 6}", got)
	}
	if got := a.Times(2); got != (Vec2{6, 8}) {
		t.Errorf("Times = %+v, want {6 8}", got)
	}
	if got := a.Magnitude(); got != 5 {
		t.Errorf("Magnitude = %v, want 5", got)
	}
	if got := a.Distance(Vec2{}); got != 5 {
		t.Errorf("Distance = %v, want 5", got)
	}
}

func TestNormalizeUnitLength(t *testing.T) {
	n := NewVec2(-7, 24).Normalize()
	if math.Abs(n.Magnitude()-1) > 1e-12 {
		t.Errorf("normalized magnitude = %v, want 1", n.Magnitude())
	}
	if n.X >= 0 || n.Y <= 0 {
		t.Errorf("normalize changed direction: %+v", n)
	}
}

func TestNormalizeZeroVector(t *testing.T) {
	if got := (Vec2{}).Normalize(); !got.IsZero() {
		t.Errorf("Normalize of zero = %+v, want zero vector", got)
	}
}
