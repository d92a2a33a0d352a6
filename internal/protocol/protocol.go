package protocol

import (
	"encoding/json"

	"github.com/playmatatu/pitch/internal/game"
)

// Message types on the pitch websocket
const (
	// C->S
	TypePointer  = "pointer"
	TypeGetState = "get_state"
	TypeDismiss  = "dismiss"

	// S->C
	TypeJoined     = "joined"
	TypePitchState = "pitch_state"
	TypeError      = "error"
)

// Envelope frames every message in both directions.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Encode wraps v in an Envelope of type t.
func Encode(t string, v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: t, Data: data})
}

// Pointer is one pointer sample. ID is chosen by the client and only has to be stable
// while the pointer is pressed.
type Pointer struct {
	ID    int64   `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Phase string  `json:"phase"`
}

// Joined tells a new connection what it may control.
type Joined struct {
	GameID    string        `json:"game_id"`
	Paddle    game.PaddleID `json:"paddle"`
	Spectator bool          `json:"spectator"`
}

// Lifecycle is the payload of goal_scored, goal_pause_ended, session_ended and
// session_expired messages.
type Lifecycle struct {
	GameID string           `json:"game_id"`
	Goal   *game.GoalEvent  `json:"goal,omitempty"`
	State  *game.PitchState `json:"state,omitempty"`
	Reason string           `json:"reason,omitempty"`
}

type Error struct {
	Message string `json:"message"`
}
