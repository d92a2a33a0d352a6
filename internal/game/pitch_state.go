package game

import (
	"errors"
	"fmt"
	"maps"
)

var ErrInvalidGeometry = errors.New("invalid pitch geometry")

// PaddleID identifies one of the two player paddles.
type PaddleID int

const (
	PaddleNone PaddleID = 0
	PaddleOne  PaddleID = 1
	PaddleTwo  PaddleID = 2
)

// PointerID identifies a physical pointer (a finger or mouse) for as long as it is pressed.
type PointerID int64

// Geometry is the arena size and the inset of the playable pitch within it.
type Geometry struct {
	ScreenWidth            float64 `json:"screen_width"`
	ScreenHeight           float64 `json:"screen_height"`
	PitchVerticalPadding   float64 `json:"pitch_vertical_padding"`
	PitchHorizontalPadding float64 `json:"pitch_horizontal_padding"`
}

// Validate rejects dimensions that leave the pitch without positive area.
func (g Geometry) Validate() error {
	if g.ScreenWidth <= 0 || g.ScreenHeight <= 0 {
		return fmt.Errorf("%w: screen must be positive, got %vx%v", ErrInvalidGeometry, g.ScreenWidth, g.ScreenHeight)
	}
	if g.PitchVerticalPadding <= 0 || g.PitchHorizontalPadding <= 0 {
		return fmt.Errorf("%w: paddings must be positive, got v=%v h=%v", ErrInvalidGeometry, g.PitchVerticalPadding, g.PitchHorizontalPadding)
	}
	if g.PitchVerticalPadding >= g.ScreenHeight/2 {
		return fmt.Errorf("%w: vertical padding %v must be below half the height %v", ErrInvalidGeometry, g.PitchVerticalPadding, g.ScreenHeight)
	}
	if g.PitchHorizontalPadding >= g.ScreenWidth/2 {
		return fmt.Errorf("%w: horizontal padding %v must be below half the width %v", ErrInvalidGeometry, g.PitchHorizontalPadding, g.ScreenWidth)
	}
	return nil
}

func (g Geometry) goalLeftX() float64   { return g.ScreenWidth/2 - GoalWidth/2 }
func (g Geometry) goalRightX() float64  { return g.ScreenWidth/2 + GoalWidth/2 }
func (g Geometry) goalTopY() float64    { return g.PitchVerticalPadding - GoalDepth }
func (g Geometry) goalBottomY() float64 { return g.ScreenHeight - g.PitchVerticalPadding + GoalDepth }

// inGoalSpan reports whether x lies within the goal mouth's horizontal span.
func (g Geometry) inGoalSpan(x float64) bool {
	return x >= g.goalLeftX() && x <= g.goalRightX()
}

// PitchState is an immutable snapshot of the simulation at one instant.
// A new value is produced for every tick and every pointer event; ActivePointers
// is never mutated once a snapshot is published.
type PitchState struct {
	Geometry

	// Seq increases with every published snapshot of a session.
	Seq uint64 `json:"seq"`

	BallOffset   Vec2 `json:"ball_offset"`
	BallVelocity Vec2 `json:"ball_velocity"`

	PlayerOneOffset         Vec2 `json:"player_one_offset"`
	PlayerOneVelocity       Vec2 `json:"player_one_velocity"`
	PreviousPlayerOneOffset Vec2 `json:"previous_player_one_offset"`

	PlayerTwoOffset         Vec2 `json:"player_two_offset"`
	PlayerTwoVelocity       Vec2 `json:"player_two_velocity"`
	PreviousPlayerTwoOffset Vec2 `json:"previous_player_two_offset"`

	PlayerOneScore int `json:"player_one_score"`
	PlayerTwoScore int `json:"player_two_score"`

	ShowGoalDialog bool `json:"show_goal_dialog"`

	ActivePointers map[PointerID]PaddleID `json:"active_pointers"`
}

// NewPitchState creates the kickoff snapshot for a validated geometry.
func NewPitchState(g Geometry) (PitchState, error) {
	if err := g.Validate(); err != nil {
		return PitchState{}, err
	}
	s := PitchState{
		Geometry:       g,
		ActivePointers: map[PointerID]PaddleID{},
	}
	return s.Reset(), nil
}

// Reset returns the kickoff layout: paddles at their start marks, ball at the center spot,
// every velocity zero. Scores, the goal dialog flag and tracked pointers carry over.
// Previous paddle offsets move with the paddles so the next drag starts from rest.
func (s PitchState) Reset() PitchState {
	s.PlayerOneOffset = Vec2{X: s.ScreenWidth / 2, Y: PaddleStartInset}
	s.PlayerTwoOffset = Vec2{X: s.ScreenWidth / 2, Y: s.ScreenHeight - PaddleStartInset}
	s.PreviousPlayerOneOffset = s.PlayerOneOffset
	s.PreviousPlayerTwoOffset = s.PlayerTwoOffset
	s.BallOffset = Vec2{X: s.ScreenWidth / 2, Y: s.ScreenHeight / 2}
	s.BallVelocity = Vec2{}
	s.PlayerOneVelocity = Vec2{}
	s.PlayerTwoVelocity = Vec2{}
	return s
}

// Clone returns a snapshot that shares no mutable memory with s.
func (s PitchState) Clone() PitchState {
	s.ActivePointers = maps.Clone(s.ActivePointers)
	if s.ActivePointers == nil {
		s.ActivePointers = map[PointerID]PaddleID{}
	}
	return s
}

// PaddleOffset returns the position of paddle p.
func (s PitchState) PaddleOffset(p PaddleID) Vec2 {
	if p == PaddleTwo {
		return s.PlayerTwoOffset
	}
	return s.PlayerOneOffset
}

// Score returns the score of paddle p.
func (s PitchState) Score(p PaddleID) int {
	if p == PaddleTwo {
		return s.PlayerTwoScore
	}
	return s.PlayerOneScore
}
