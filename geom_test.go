package main

import "testing"

func TestVec2Arithmetic(t *testing.T) {
	a := Vec2{3, -1}
	b := Vec2{1, 2}

	if got := a.Add(b); got != (Vec2{4, 1}) {
		t.Errorf("Add = %v", got)
	}
	if got := a.Sub(b); got != (Vec2{2, -3}) {
		t.Errorf("Sub = %v", got)
	}
	if got := b.Scale(2.5); got != (Vec2{2.5, 5}) {
		t.Errorf("Scale = %v", got)
	}
}

func TestDistanceHelpers(t *testing.T) {
	if d := Distance(0, 0, 3, 4); d != 5 {
		t.Errorf("Distance = %v, want 5", d)
	}
	if d2 := DistanceSq(1, 1, 4, 5); d2 != 25 {
		t.Errorf("DistanceSq = %v, want 25", d2)
	}
	if got := Clamp(11, 0, 10); got != 10 {
		t.Errorf("Clamp above = %v", got)
	}
	if got := Clamp(-1, 0, 10); got != 0 {
		t.Errorf("Clamp below = %v", got)
	}
}
