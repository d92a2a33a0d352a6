package game

// GoalSide names the end of the pitch the ball went in at.
type GoalSide string

const (
	GoalTop    GoalSide = "TOP"
	GoalBottom GoalSide = "BOTTOM"
)

// GoalEvent records a scoring event for persistence and fan-out.
type GoalEvent struct {
	Side           GoalSide `json:"side"`
	Scorer         PaddleID `json:"scorer"`
	PlayerOneScore int      `json:"player_one_score"`
	PlayerTwoScore int      `json:"player_two_score"`
	BallOffset     Vec2     `json:"ball_offset"`
}

// AdvanceBall moves the ball by its velocity and applies one tick of damping.
func AdvanceBall(s PitchState) PitchState {
	s.BallOffset = s.BallOffset.Plus(s.BallVelocity)
	s.BallVelocity = s.BallVelocity.Times(DampingFactor)
	return s
}

// ResolveBoundaries reflects the ball off the side walls, the end lines and the back of
// each net. Reflection flips one velocity component and loses no energy.
func ResolveBoundaries(s PitchState) PitchState {
	g := s.Geometry
	pos := s.BallOffset
	vel := s.BallVelocity

	top := g.PitchVerticalPadding
	bottom := g.ScreenHeight - g.PitchVerticalPadding
	left := g.PitchHorizontalPadding
	right := g.ScreenWidth - g.PitchHorizontalPadding

	inTopMouth := pos.Y >= g.goalTopY() && pos.Y <= top
	inBottomMouth := pos.Y >= bottom && pos.Y <= g.goalBottomY()

	// Side walls do not apply while the ball is inside a goal mouth.
	if !inTopMouth && !inBottomMouth {
		if pos.X-BallRadius <= left || pos.X+BallRadius >= right {
			vel.X = -vel.X
			pos.X = clamp(pos.X, left+BallRadius, right-BallRadius)
		}
	}

	if pos.Y-BallRadius <= top {
		if !g.inGoalSpan(pos.X) {
			vel.Y = -vel.Y
			pos.Y = top + BallRadius
		} else if pos.Y-BallRadius < g.goalTopY() {
			vel.Y = -vel.Y
			pos.Y = g.goalTopY() + BallRadius
		}
	}

	if pos.Y+BallRadius >= bottom {
		if !g.inGoalSpan(pos.X) {
			vel.Y = -vel.Y
			pos.Y = bottom - BallRadius
		} else if pos.Y+BallRadius > g.goalBottomY() {
			vel.Y = -vel.Y
			pos.Y = g.goalBottomY() - BallRadius
		}
	}

	s.BallOffset = pos
	s.BallVelocity = vel
	return s
}

// CheckGoal scores the ball once its edge reaches a goal's back line inside the mouth.
// A ball in the top goal scores for player two, the bottom goal for player one.
func CheckGoal(s PitchState) (PitchState, GoalEvent, bool) {
	g := s.Geometry
	pos := s.BallOffset
	if !g.inGoalSpan(pos.X) {
		return s, GoalEvent{}, false
	}

	var ev GoalEvent
	switch {
	case pos.Y-BallRadius <= g.goalTopY():
		s.PlayerTwoScore++
		ev = GoalEvent{Side: GoalTop, Scorer: PaddleTwo}
	case pos.Y+BallRadius >= g.goalBottomY():
		s.PlayerOneScore++
		ev = GoalEvent{Side: GoalBottom, Scorer: PaddleOne}
	default:
		return s, GoalEvent{}, false
	}

	ev.PlayerOneScore = s.PlayerOneScore
	ev.PlayerTwoScore = s.PlayerTwoScore
	ev.BallOffset = pos
	return s, ev, true
}

// ResolvePaddleCollision returns the ball velocity after contact with a paddle.
// On contact the ball leaves along the paddle-to-ball direction at its old speed plus
// part of the paddle's speed plus a fixed kick; its previous direction is discarded.
func ResolvePaddleCollision(ballOffset, ballVelocity, paddleOffset, paddleVelocity Vec2) Vec2 {
	delta := ballOffset.Minus(paddleOffset)
	if delta.Magnitude() >= PaddleHitDistance {
		return ballVelocity
	}
	speed := ballVelocity.Magnitude() + paddleVelocity.Magnitude()*PaddleSpeedTransfer + ImpulseFloor
	return delta.Normalize().Times(speed)
}

// Step runs one simulation tick. Paddle two is resolved after paddle one, so it wins
// when both touch the ball in the same tick.
func Step(s PitchState) (PitchState, GoalEvent, bool) {
	s = AdvanceBall(s)
	s = ResolveBoundaries(s)
	s.BallVelocity = ResolvePaddleCollision(s.BallOffset, s.BallVelocity, s.PlayerOneOffset, s.PlayerOneVelocity)
	s.BallVelocity = ResolvePaddleCollision(s.BallOffset, s.BallVelocity, s.PlayerTwoOffset, s.PlayerTwoVelocity)
	return CheckGoal(s)
}

// Advance runs n ticks without a scheduler, stopping early at the first goal.
func Advance(s PitchState, n int) (PitchState, GoalEvent, bool) {
	for i := 0; i < n; i++ {
		var ev GoalEvent
		var scored bool
		s, ev, scored = Step(s)
		if scored {
			return s, ev, true
		}
	}
	return s, GoalEvent{}, false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
