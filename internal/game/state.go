package game

// SessionStatus is the lifecycle phase of a pitch session.
type SessionStatus string

const (
	StatusRunning SessionStatus = "RUNNING"
	StatusPaused  SessionStatus = "PAUSED" // goal celebration, ticks suspended
	StatusEnded   SessionStatus = "ENDED"
)
