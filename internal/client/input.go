package client

import (
	"maps"
	"slices"

	"github.com/playmatatu/pitch/internal/game"
	"github.com/playmatatu/pitch/internal/protocol"
)

// MousePointer is the pointer id of the left mouse button. Touch ids are shifted up by
// one so they never collide with it.
const MousePointer int64 = 0

// Tracker turns the set of currently pressed pointers into down, move and up samples.
type Tracker struct {
	last map[int64]game.Vec2
}

func NewTracker() *Tracker {
	return &Tracker{last: map[int64]game.Vec2{}}
}

// Diff compares now with the previous frame. Moves are only reported for pointers whose
// position changed. Output is ordered by pointer id.
func (t *Tracker) Diff(now map[int64]game.Vec2) []protocol.Pointer {
	var out []protocol.Pointer

	for _, id := range slices.Sorted(maps.Keys(t.last)) {
		if _, ok := now[id]; !ok {
			p := t.last[id]
			out = append(out, protocol.Pointer{ID: id, X: p.X, Y: p.Y, Phase: string(game.PointerUp)})
			delete(t.last, id)
		}
	}

	for _, id := range slices.Sorted(maps.Keys(now)) {
		p := now[id]
		prev, pressed := t.last[id]
		switch {
		case !pressed:
			out = append(out, protocol.Pointer{ID: id, X: p.X, Y: p.Y, Phase: string(game.PointerDown)})
		case prev != p:
			out = append(out, protocol.Pointer{ID: id, X: p.X, Y: p.Y, Phase: string(game.PointerMove)})
		default:
			continue
		}
		t.last[id] = p
	}
	return out
}

// ReleaseAll reports an up for every pressed pointer.
func (t *Tracker) ReleaseAll() []protocol.Pointer {
	return t.Diff(nil)
}
