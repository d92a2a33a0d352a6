package game

// EventType names a session lifecycle event fanned out to clients.
type EventType string

const (
	EventGoalScored     EventType = "goal_scored"
	EventGoalPauseEnded EventType = "goal_pause_ended"
	EventSessionEnded   EventType = "session_ended"
	EventSessionExpired EventType = "session_expired"
)

// EventsChannel is the Redis pub/sub channel every instance publishes lifecycle events on.
const EventsChannel = "pitch_events"

// Event is a lifecycle notification for one game. Origin is the publishing instance so
// that subscribers can skip events they already delivered locally.
type Event struct {
	Type      EventType   `json:"type"`
	GameID    string      `json:"game_id"`
	GameToken string      `json:"game_token"`
	Origin    string      `json:"origin,omitempty"`
	Goal      *GoalEvent  `json:"goal,omitempty"`
	State     *PitchState `json:"state,omitempty"`
	Reason    string      `json:"reason,omitempty"`
}

// EventListener receives lifecycle events of one game. It runs on the goroutine that
// produced the event and must not block.
type EventListener func(Event)
