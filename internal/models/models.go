package models

import (
	"database/sql"
	"time"
)

// PitchSession is the persisted record of one game
type PitchSession struct {
	ID                     int            `db:"id" json:"id"`
	GameID                 string         `db:"game_id" json:"game_id"`
	GameToken              string         `db:"game_token" json:"game_token"`
	ScreenWidth            float64        `db:"screen_width" json:"screen_width"`
	ScreenHeight           float64        `db:"screen_height" json:"screen_height"`
	PitchVerticalPadding   float64        `db:"pitch_vertical_padding" json:"pitch_vertical_padding"`
	PitchHorizontalPadding float64        `db:"pitch_horizontal_padding" json:"pitch_horizontal_padding"`
	PlayerOneScore         int            `db:"player_one_score" json:"player_one_score"`
	PlayerTwoScore         int            `db:"player_two_score" json:"player_two_score"`
	Status                 string         `db:"status" json:"status"`
	EndReason              sql.NullString `db:"end_reason" json:"end_reason,omitempty"`
	CreatedAt              time.Time      `db:"created_at" json:"created_at"`
	EndedAt                sql.NullTime   `db:"ended_at" json:"ended_at,omitempty"`
}

// GoalEvent is one scored goal
type GoalEvent struct {
	ID             int       `db:"id" json:"id"`
	SessionID      int       `db:"session_id" json:"session_id"`
	Scorer         int       `db:"scorer" json:"scorer"`
	Side           string    `db:"side" json:"side"`
	PlayerOneScore int       `db:"player_one_score" json:"player_one_score"`
	PlayerTwoScore int       `db:"player_two_score" json:"player_two_score"`
	BallX          float64   `db:"ball_x" json:"ball_x"`
	BallY          float64   `db:"ball_y" json:"ball_y"`
	ScoredAt       time.Time `db:"scored_at" json:"scored_at"`
}
