package client

import (
	"encoding/json"
	"fmt"

	"github.com/playmatatu/pitch/internal/game"
	"github.com/playmatatu/pitch/internal/protocol"
)

// Model is what the client knows about the game, rebuilt from server messages.
type Model struct {
	GameID    string
	Paddle    game.PaddleID
	Spectator bool
	Joined    bool

	State    game.PitchState
	HasState bool
	LastGoal *game.GoalEvent

	Status string
	Ended  bool
}

// Apply folds one server message into the model. Snapshots older than the one held
// are ignored.
func (m *Model) Apply(env protocol.Envelope) error {
	switch env.Type {
	case protocol.TypeJoined:
		var j protocol.Joined
		if err := json.Unmarshal(env.Data, &j); err != nil {
			return fmt.Errorf("decode joined: %w", err)
		}
		m.GameID, m.Paddle, m.Spectator, m.Joined = j.GameID, j.Paddle, j.Spectator, true
		if j.Spectator {
			m.Status = "Watching"
		} else {
			m.Status = fmt.Sprintf("Playing as %s", paddleName(j.Paddle))
		}

	case protocol.TypePitchState:
		var st game.PitchState
		if err := json.Unmarshal(env.Data, &st); err != nil {
			return fmt.Errorf("decode pitch_state: %w", err)
		}
		m.applyState(st)

	case string(game.EventGoalScored):
		var l protocol.Lifecycle
		if err := json.Unmarshal(env.Data, &l); err != nil {
			return fmt.Errorf("decode goal: %w", err)
		}
		m.LastGoal = l.Goal
		if l.State != nil {
			m.applyState(*l.State)
		}

	case string(game.EventGoalPauseEnded):
		var l protocol.Lifecycle
		if err := json.Unmarshal(env.Data, &l); err != nil {
			return fmt.Errorf("decode resume: %w", err)
		}
		if l.State != nil {
			m.applyState(*l.State)
		}

	case string(game.EventSessionEnded), string(game.EventSessionExpired):
		m.Ended = true
		m.Status = "Game over"
		if len(env.Data) == 0 {
			return nil
		}
		var l protocol.Lifecycle
		if err := json.Unmarshal(env.Data, &l); err != nil {
			return fmt.Errorf("decode %s: %w", env.Type, err)
		}
		if l.State != nil {
			m.applyState(*l.State)
		}
		if l.Reason != "" {
			m.Status += " (" + l.Reason + ")"
		}

	case protocol.TypeError:
		var e protocol.Error
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return fmt.Errorf("decode error: %w", err)
		}
		m.Status = "Server: " + e.Message
	}
	return nil
}

func (m *Model) applyState(st game.PitchState) {
	if m.HasState && st.Seq <= m.State.Seq {
		return
	}
	m.State = st
	m.HasState = true
}

// Flip reports whether the pitch should be drawn upside down, keeping the local
// player's paddle at the bottom of the window.
func (m *Model) Flip() bool {
	return m.Paddle == game.PaddleOne
}

// Banner is the goal dialog text, or "" while play runs.
func (m *Model) Banner() string {
	if !m.HasState || !m.State.ShowGoalDialog {
		return ""
	}
	if m.LastGoal == nil {
		return "GOAL!"
	}
	return fmt.Sprintf("GOAL! %s scores  %d - %d", paddleName(m.LastGoal.Scorer), m.LastGoal.PlayerOneScore, m.LastGoal.PlayerTwoScore)
}

// Scoreline is the score with the local player's goals first. Spectators see player
// one first.
func (m *Model) Scoreline() string {
	mine, theirs := game.PaddleOne, game.PaddleTwo
	if m.Paddle == game.PaddleTwo {
		mine, theirs = theirs, mine
	}
	if m.Spectator || m.Paddle == game.PaddleNone {
		return fmt.Sprintf("P1 %d  -  %d P2", m.State.Score(game.PaddleOne), m.State.Score(game.PaddleTwo))
	}
	return fmt.Sprintf("You %d  -  %d %s", m.State.Score(mine), m.State.Score(theirs), paddleName(theirs))
}

func paddleName(p game.PaddleID) string {
	switch p {
	case game.PaddleOne:
		return "player one"
	case game.PaddleTwo:
		return "player two"
	}
	return "nobody"
}
