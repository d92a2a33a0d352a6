package game

import "time"

// Pitch physics and layout constants, in screen pixels unless noted.
const (
	BallRadius          = 20.0
	GoalWidth           = 370.0 // goal mouth, centered on the screen's vertical axis
	GoalDepth           = 100.0 // how far the net extends past the vertical padding
	DampingFactor       = 0.98  // per-tick velocity decay
	PaddleHitDistance   = 85.0  // center-to-center distance that counts as contact
	PaddleSpeedTransfer = 0.9
	ImpulseFloor        = 5.0 // minimum kick on any contact
	PaddleCaptureRadius = 50.0
	PaddleStartInset    = 300.0 // paddle distance from the top/bottom screen edge at kickoff

	TickInterval      = 16 * time.Millisecond
	GoalPauseDuration = 3000 * time.Millisecond
)
