package game

import "testing"

func kickoff(t *testing.T) PitchState {
	t.Helper()
	s, err := NewPitchState(testGeometry())
	if err != nil {
		t.Fatalf("NewPitchState: %v", err)
	}
	return s
}

func TestNewPointerEventPhases(t *testing.T) {
	pos := Vec2{1, 2}
	if e := NewPointerEvent(3, pos, true, false); e.Phase != PointerDown {
		t.Errorf("down flag -> %s", e.Phase)
	}
	if e := NewPointerEvent(3, pos, false, false); e.Phase != PointerMove {
		t.Errorf("no flags -> %s", e.Phase)
	}
	if e := NewPointerEvent(3, pos, false, true); e.Phase != PointerUp {
		t.Errorf("up flag -> %s", e.Phase)
	}
	if _, err := ParsePointerPhase("hover"); err == nil {
		t.Error("ParsePointerPhase accepted an unknown phase")
	}
}

func TestPointerCapturesPaddleOne(t *testing.T) {
	s := kickoff(t)
	s = ApplyPointerEvent(s, PointerEvent{ID: 7, Position: Vec2{560, 310}, Phase: PointerDown})

	if s.ActivePointers[7] != PaddleOne {
		t.Fatalf("pointer 7 bound to %d, want paddle one", s.ActivePointers[7])
	}
	if s.PlayerOneOffset != (Vec2{560, 310}) {
		t.Errorf("paddle one at %+v, want pointer position", s.PlayerOneOffset)
	}
	if s.PlayerOneVelocity != (Vec2{20, 10}) {
		t.Errorf("paddle one velocity %+v, want {20 10}", s.PlayerOneVelocity)
	}

	s = ApplyPointerEvent(s, PointerEvent{ID: 7, Position: Vec2{600, 350}, Phase: PointerMove})
	if s.PlayerOneOffset != (Vec2{600, 350}) || s.PlayerOneVelocity != (Vec2{40, 40}) {
		t.Errorf("after move: offset %+v velocity %+v", s.PlayerOneOffset, s.PlayerOneVelocity)
	}
	if s.PreviousPlayerOneOffset != (Vec2{560, 310}) {
		t.Errorf("previous offset %+v, want {560 310}", s.PreviousPlayerOneOffset)
	}
	if s.PlayerTwoOffset != (Vec2{540, 1620}) {
		t.Errorf("paddle two moved: %+v", s.PlayerTwoOffset)
	}
}

func TestPointerCapturesPaddleTwo(t *testing.T) {
	s := kickoff(t)
	s = ApplyPointerEvent(s, PointerEvent{ID: 1, Position: Vec2{540, 1600}, Phase: PointerDown})
	if s.ActivePointers[1] != PaddleTwo {
		t.Fatalf("bound to %d, want paddle two", s.ActivePointers[1])
	}
	if s.PlayerTwoOffset != (Vec2{540, 1600}) {
		t.Errorf("paddle two at %+v", s.PlayerTwoOffset)
	}
}

func TestPointerFarFromPaddlesIsIgnored(t *testing.T) {
	s := kickoff(t)
	s = ApplyPointerEvent(s, PointerEvent{ID: 2, Position: Vec2{100, 100}, Phase: PointerDown})
	s = ApplyPointerEvent(s, PointerEvent{ID: 2, Position: Vec2{540, 300}, Phase: PointerMove})

	if _, ok := s.ActivePointers[2]; ok {
		t.Error("unassigned pointer was tracked")
	}
	if s.PlayerOneOffset != (Vec2{540, 300}) || !s.PlayerOneVelocity.IsZero() {
		t.Errorf("paddle one affected: offset %+v velocity %+v", s.PlayerOneOffset, s.PlayerOneVelocity)
	}
}

func TestPointerReleaseKeepsVelocity(t *testing.T) {
	s := kickoff(t)
	s = ApplyPointerEvent(s, PointerEvent{ID: 4, Position: Vec2{540, 300}, Phase: PointerDown})
	s = ApplyPointerEvent(s, PointerEvent{ID: 4, Position: Vec2{570, 340}, Phase: PointerMove})
	s = ApplyPointerEvent(s, PointerEvent{ID: 4, Position: Vec2{900, 900}, Phase: PointerUp})

	if _, ok := s.ActivePointers[4]; ok {
		t.Error("released pointer still tracked")
	}
	if s.PlayerOneOffset != (Vec2{570, 340}) {
		t.Errorf("release moved the paddle to %+v", s.PlayerOneOffset)
	}
	if s.PlayerOneVelocity != (Vec2{30, 40}) {
		t.Errorf("velocity after release %+v, want {30 40}", s.PlayerOneVelocity)
	}
}

func TestUnknownPointerReleaseIsNoop(t *testing.T) {
	s := kickoff(t)
	s = ApplyPointerEvent(s, PointerEvent{ID: 1, Position: Vec2{540, 300}, Phase: PointerDown})
	next := ApplyPointerEvent(s, PointerEvent{ID: 99, Position: Vec2{0, 0}, Phase: PointerUp})

	if len(next.ActivePointers) != 1 || next.ActivePointers[1] != PaddleOne {
		t.Errorf("pointers changed: %v", next.ActivePointers)
	}
	if next.PlayerOneOffset != s.PlayerOneOffset {
		t.Errorf("paddle moved on unknown release")
	}
}

func TestPointerEventDoesNotMutatePreviousSnapshot(t *testing.T) {
	s := kickoff(t)
	before := ApplyPointerEvent(s, PointerEvent{ID: 1, Position: Vec2{540, 300}, Phase: PointerDown})
	after := ApplyPointerEvent(before, PointerEvent{ID: 1, Position: Vec2{540, 300}, Phase: PointerUp})

	if _, ok := before.ActivePointers[1]; !ok {
		t.Error("release mutated the earlier snapshot's pointer map")
	}
	if _, ok := after.ActivePointers[1]; ok {
		t.Error("release not applied to the new snapshot")
	}
	if len(s.ActivePointers) != 0 {
		t.Error("capture mutated the kickoff snapshot's pointer map")
	}
}

func TestRestrictedPointerOnlyCapturesItsPaddle(t *testing.T) {
	s := kickoff(t)
	s = ApplyPointerEvent(s, PointerEvent{ID: 1, Position: Vec2{540, 300}, Phase: PointerDown, Restrict: PaddleTwo})
	if _, ok := s.ActivePointers[1]; ok {
		t.Error("pointer restricted to paddle two captured paddle one")
	}
	s = ApplyPointerEvent(s, PointerEvent{ID: 2, Position: Vec2{540, 1620}, Phase: PointerDown, Restrict: PaddleTwo})
	if s.ActivePointers[2] != PaddleTwo {
		t.Error("pointer restricted to paddle two could not capture it")
	}
}

func TestTwoPointersMayShareAPaddle(t *testing.T) {
	s := kickoff(t)
	s = ApplyPointerEvent(s, PointerEvent{ID: 1, Position: Vec2{540, 300}, Phase: PointerDown})
	s = ApplyPointerEvent(s, PointerEvent{ID: 2, Position: Vec2{545, 305}, Phase: PointerDown})
	if s.ActivePointers[1] != PaddleOne || s.ActivePointers[2] != PaddleOne {
		t.Fatalf("pointers %v, want both on paddle one", s.ActivePointers)
	}
	s = ApplyPointerEvent(s, PointerEvent{ID: 1, Position: Vec2{500, 280}, Phase: PointerMove})
	if s.PlayerOneOffset != (Vec2{500, 280}) {
		t.Errorf("last writer should drive the paddle, got %+v", s.PlayerOneOffset)
	}
}

func TestReleasePointers(t *testing.T) {
	s := kickoff(t)
	s = ApplyPointerEvent(s, PointerEvent{ID: 10, Position: Vec2{540, 300}, Phase: PointerDown})
	s = ApplyPointerEvent(s, PointerEvent{ID: 20, Position: Vec2{540, 1620}, Phase: PointerDown})
	s = ReleasePointers(s, func(id PointerID) bool { return id == 10 })

	if _, ok := s.ActivePointers[10]; ok {
		t.Error("pointer 10 not released")
	}
	if s.ActivePointers[20] != PaddleTwo {
		t.Error("pointer 20 should stay bound")
	}
}
