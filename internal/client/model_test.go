package client

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/playmatatu/pitch/internal/game"
	"github.com/playmatatu/pitch/internal/protocol"
)

func envelope(t *testing.T, typ string, v interface{}) protocol.Envelope {
	t.Helper()
	b, err := protocol.Encode(typ, v)
	if err != nil {
		t.Fatal(err)
	}
	var env protocol.Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		t.Fatal(err)
	}
	return env
}

func TestModelJoined(t *testing.T) {
	var m Model
	if err := m.Apply(envelope(t, protocol.TypeJoined, protocol.Joined{GameID: "pitch_1", Paddle: game.PaddleOne})); err != nil {
		t.Fatal(err)
	}
	if !m.Joined || m.Paddle != game.PaddleOne || m.Spectator || m.GameID != "pitch_1" {
		t.Errorf("model %+v", m)
	}
	if !m.Flip() {
		t.Error("player one should see a flipped pitch")
	}
}

func TestModelDropsStaleSnapshots(t *testing.T) {
	var m Model
	newer := game.PitchState{Seq: 5, BallOffset: game.Vec2{X: 1, Y: 1}}
	older := game.PitchState{Seq: 4, BallOffset: game.Vec2{X: 9, Y: 9}}

	if err := m.Apply(envelope(t, protocol.TypePitchState, newer)); err != nil {
		t.Fatal(err)
	}
	if err := m.Apply(envelope(t, protocol.TypePitchState, older)); err != nil {
		t.Fatal(err)
	}
	if m.State.Seq != 5 || m.State.BallOffset != newer.BallOffset {
		t.Errorf("state %+v, want seq 5", m.State)
	}
}

func TestModelGoalBanner(t *testing.T) {
	var m Model
	st := game.PitchState{Seq: 1, ShowGoalDialog: true, PlayerTwoScore: 1}
	goal := game.GoalEvent{Side: game.GoalTop, Scorer: game.PaddleTwo, PlayerTwoScore: 1}
	if err := m.Apply(envelope(t, string(game.EventGoalScored), protocol.Lifecycle{Goal: &goal, State: &st})); err != nil {
		t.Fatal(err)
	}
	if b := m.Banner(); !strings.Contains(b, "player two") || !strings.Contains(b, "0 - 1") {
		t.Errorf("banner %q", b)
	}

	resumed := game.PitchState{Seq: 2, PlayerTwoScore: 1}
	if err := m.Apply(envelope(t, string(game.EventGoalPauseEnded), protocol.Lifecycle{State: &resumed})); err != nil {
		t.Fatal(err)
	}
	if m.Banner() != "" {
		t.Errorf("banner %q after resume", m.Banner())
	}
}

func TestModelEnded(t *testing.T) {
	var m Model
	if err := m.Apply(envelope(t, string(game.EventSessionExpired), protocol.Lifecycle{Reason: "idle"})); err != nil {
		t.Fatal(err)
	}
	if !m.Ended || !strings.Contains(m.Status, "idle") {
		t.Errorf("model %+v", m)
	}
}

func TestModelServerError(t *testing.T) {
	var m Model
	if err := m.Apply(envelope(t, protocol.TypeError, protocol.Error{Message: "Spectators cannot control paddles"})); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(m.Status, "Spectators") {
		t.Errorf("status %q", m.Status)
	}
	if err := m.Apply(protocol.Envelope{Type: protocol.TypePitchState, Data: []byte(`{"seq":"x"}`)}); err == nil {
		t.Error("bad snapshot accepted")
	}
}

func TestModelEndedWithBadPayload(t *testing.T) {
	var m Model
	err := m.Apply(protocol.Envelope{Type: string(game.EventSessionEnded), Data: []byte(`{"state":7}`)})
	if err == nil {
		t.Fatal("bad session_ended payload accepted")
	}
	if !m.Ended || m.Status != "Game over" {
		t.Errorf("model %+v, want ended", m)
	}
}

func TestModelScoreline(t *testing.T) {
	st := game.PitchState{Seq: 1, PlayerOneScore: 2, PlayerTwoScore: 5}
	cases := []struct {
		name string
		m    Model
		want string
	}{
		{"player one", Model{Paddle: game.PaddleOne, State: st}, "You 2  -  5 player two"},
		{"player two", Model{Paddle: game.PaddleTwo, State: st}, "You 5  -  2 player one"},
		{"spectator", Model{Spectator: true, State: st}, "P1 2  -  5 P2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.m.Scoreline(); got != tc.want {
				t.Errorf("Scoreline() = %q, want %q", got, tc.want)
			}
		})
	}
}
