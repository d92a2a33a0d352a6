package game

import (
	"fmt"
	"maps"
)

// PointerPhase is the transition a pointer event reports.
type PointerPhase string

const (
	PointerDown PointerPhase = "down" // first contact
	PointerMove PointerPhase = "move" // still pressed
	PointerUp   PointerPhase = "up"   // released
)

// PointerEvent is one raw pointer sample forwarded by the presentation layer.
type PointerEvent struct {
	ID       PointerID    `json:"id"`
	Position Vec2         `json:"position"`
	Phase    PointerPhase `json:"phase"`

	// Restrict limits which paddle a down event may capture. PaddleNone allows either.
	Restrict PaddleID `json:"-"`
}

// NewPointerEvent builds an event from the down/up transition flags. A sample that is
// neither a down nor an up transition is a move of a pressed pointer.
func NewPointerEvent(id PointerID, pos Vec2, isDown, isUp bool) PointerEvent {
	phase := PointerMove
	switch {
	case isUp:
		phase = PointerUp
	case isDown:
		phase = PointerDown
	}
	return PointerEvent{ID: id, Position: pos, Phase: phase}
}

// ParsePointerPhase validates a phase received over the wire.
func ParsePointerPhase(s string) (PointerPhase, error) {
	switch p := PointerPhase(s); p {
	case PointerDown, PointerMove, PointerUp:
		return p, nil
	}
	return "", fmt.Errorf("unknown pointer phase %q", s)
}

func (e PointerEvent) pressed() bool {
	return e.Phase != PointerUp
}

func (e PointerEvent) allows(p PaddleID) bool {
	return e.Restrict == PaddleNone || e.Restrict == p
}

// ApplyPointerEvent binds, drives and releases paddles from one pointer sample.
//
// A down event within PaddleCaptureRadius of a paddle binds the pointer to it, paddle
// one first. While pressed, a bound pointer teleports its paddle to the pointer and sets
// the paddle velocity to its displacement since the previous event. Release drops the
// binding and leaves the last velocity in place. Previous offsets always advance to the
// pre-event offsets before anything else is applied.
func ApplyPointerEvent(s PitchState, e PointerEvent) PitchState {
	pointers := s.ActivePointers

	if e.Phase == PointerDown {
		var claim PaddleID
		if e.allows(PaddleOne) && s.PlayerOneOffset.Distance(e.Position) < PaddleCaptureRadius {
			claim = PaddleOne
		} else if e.allows(PaddleTwo) && s.PlayerTwoOffset.Distance(e.Position) < PaddleCaptureRadius {
			claim = PaddleTwo
		}
		if claim != PaddleNone {
			pointers = maps.Clone(pointers)
			if pointers == nil {
				pointers = map[PointerID]PaddleID{}
			}
			pointers[e.ID] = claim
		}
	}

	next := s
	next.PreviousPlayerOneOffset = s.PlayerOneOffset
	next.PreviousPlayerTwoOffset = s.PlayerTwoOffset
	if e.pressed() {
		switch pointers[e.ID] {
		case PaddleOne:
			next.PlayerOneVelocity = e.Position.Minus(next.PreviousPlayerOneOffset)
			next.PlayerOneOffset = e.Position
		case PaddleTwo:
			next.PlayerTwoVelocity = e.Position.Minus(next.PreviousPlayerTwoOffset)
			next.PlayerTwoOffset = e.Position
		}
	}

	if e.Phase == PointerUp {
		if _, ok := pointers[e.ID]; ok {
			pointers = maps.Clone(pointers)
			delete(pointers, e.ID)
		}
	}

	next.ActivePointers = pointers
	return next
}

// ReleasePointers drops every binding for which drop returns true, as if each of those
// pointers had been lifted. Used when a connection goes away without sending up events.
func ReleasePointers(s PitchState, drop func(PointerID) bool) PitchState {
	pointers := make(map[PointerID]PaddleID, len(s.ActivePointers))
	for id, p := range s.ActivePointers {
		if !drop(id) {
			pointers[id] = p
		}
	}
	s.ActivePointers = pointers
	return s
}
