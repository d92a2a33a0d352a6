package game

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/playmatatu/pitch/internal/models"
	"github.com/redis/go-redis/v9"
)

// CachedGame is the Redis copy of a game's latest snapshot. It outlives the in-memory
// session so finished games can still be looked up for an hour.
type CachedGame struct {
	ID        string        `json:"id"`
	Token     string        `json:"token"`
	Status    SessionStatus `json:"status"`
	SessionID int           `json:"session_id"`
	State     PitchState    `json:"state"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func stateKey(token string) string {
	return "pitch:" + token + ":state"
}

// createSessionRecord inserts the pitch_sessions row and returns its id, or 0 when no
// database is configured or the insert failed.
func (gm *SessionManager) createSessionRecord(g *PitchGame, geom Geometry) int {
	if gm == nil || gm.db == nil {
		return 0
	}

	var sessionID int
	err := gm.db.QueryRowx(
		`INSERT INTO pitch_sessions (game_id, game_token, screen_width, screen_height, pitch_vertical_padding, pitch_horizontal_padding, status, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id`,
		g.ID, g.Token, geom.ScreenWidth, geom.ScreenHeight, geom.PitchVerticalPadding, geom.PitchHorizontalPadding,
		string(StatusRunning), g.CreatedAt,
	).Scan(&sessionID)
	if err != nil {
		log.Printf("[DB] Failed to create pitch_session for %s: %v", g.ID, err)
		return 0
	}
	return sessionID
}

// RecordGoal stores one goal and the running score on the session row. Scores only
// grow, so a goal committed late never lowers the stored score.
func (gm *SessionManager) RecordGoal(rec models.GoalEvent) {
	if gm == nil || gm.db == nil || rec.SessionID == 0 {
		return
	}

	tx, err := gm.db.Beginx()
	if err != nil {
		log.Printf("[DB] Failed to begin goal tx for session %d: %v", rec.SessionID, err)
		return
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO goal_events (session_id, scorer, side, player_one_score, player_two_score, ball_x, ball_y, scored_at) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		rec.SessionID, rec.Scorer, rec.Side, rec.PlayerOneScore, rec.PlayerTwoScore, rec.BallX, rec.BallY, rec.ScoredAt,
	)
	if err != nil {
		log.Printf("[DB] Failed to record goal for session %d: %v", rec.SessionID, err)
		return
	}
	_, err = tx.Exec(
		`UPDATE pitch_sessions SET player_one_score=GREATEST(player_one_score, $1), player_two_score=GREATEST(player_two_score, $2) WHERE id=$3`,
		rec.PlayerOneScore, rec.PlayerTwoScore, rec.SessionID,
	)
	if err != nil {
		log.Printf("[DB] Failed to update score for session %d: %v", rec.SessionID, err)
		return
	}
	if err := tx.Commit(); err != nil {
		log.Printf("[DB] Failed to commit goal for session %d: %v", rec.SessionID, err)
	}
}

// CompleteSessionRecord marks the session row ended with its final score.
func (gm *SessionManager) CompleteSessionRecord(sessionID int, final PitchState, reason string) {
	if gm == nil || gm.db == nil || sessionID == 0 {
		return
	}
	_, err := gm.db.Exec(
		`UPDATE pitch_sessions SET status=$1, end_reason=$2, player_one_score=$3, player_two_score=$4, ended_at=NOW() WHERE id=$5`,
		string(StatusEnded), reason, final.PlayerOneScore, final.PlayerTwoScore, sessionID,
	)
	if err != nil {
		log.Printf("[DB] Failed to complete session %d: %v", sessionID, err)
	}
}

// ListGoals returns the stored goals of the game with this token, oldest first.
// Without a database it returns nil.
func (gm *SessionManager) ListGoals(ctx context.Context, token string) ([]models.GoalEvent, error) {
	if gm == nil || gm.db == nil {
		return nil, nil
	}
	var goals []models.GoalEvent
	err := gm.db.SelectContext(ctx, &goals,
		`SELECT g.id, g.session_id, g.scorer, g.side, g.player_one_score, g.player_two_score, g.ball_x, g.ball_y, g.scored_at
		 FROM goal_events g JOIN pitch_sessions s ON s.id = g.session_id
		 WHERE s.game_token = $1 ORDER BY g.scored_at, g.id`, token)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	return goals, nil
}

// GetSessionRecord loads the pitch_sessions row of the game with this token. It is
// the last lookup for games that have left both memory and the Redis cache.
func (gm *SessionManager) GetSessionRecord(ctx context.Context, token string) (*models.PitchSession, error) {
	if gm == nil || gm.db == nil {
		return nil, ErrGameNotFound
	}
	var rec models.PitchSession
	err := gm.db.GetContext(ctx, &rec,
		`SELECT id, game_id, game_token, screen_width, screen_height, pitch_vertical_padding, pitch_horizontal_padding,
		        player_one_score, player_two_score, status, end_reason, created_at, ended_at
		 FROM pitch_sessions WHERE game_token=$1`, token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", token, err)
	}
	return &rec, nil
}

// GoalHistory returns the goals of a game: from the database when one is configured,
// otherwise from the in-memory record of an active game.
func (gm *SessionManager) GoalHistory(ctx context.Context, token string) ([]models.GoalEvent, error) {
	if gm.db != nil {
		goals, err := gm.ListGoals(ctx, token)
		if err != nil {
			return nil, err
		}
		if goals == nil {
			goals = []models.GoalEvent{}
		}
		return goals, nil
	}
	g, err := gm.GetGameByToken(token)
	if err != nil {
		return nil, err
	}
	return g.Goals(), nil
}

// savePitchGameToRedis caches the snapshot of g under pitch:<token>:state.
func (gm *SessionManager) savePitchGameToRedis(g *PitchGame, st PitchState, status SessionStatus) error {
	if gm.rdb == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	data, err := json.Marshal(CachedGame{
		ID:        g.ID,
		Token:     g.Token,
		Status:    status,
		SessionID: g.SessionID,
		State:     st,
		CreatedAt: g.CreatedAt,
		UpdatedAt: time.Now(),
	})
	if err != nil {
		return err
	}

	return gm.rdb.SetEx(ctx, stateKey(g.Token), data, time.Hour).Err()
}

// LoadCachedGame reads the cached snapshot for token.
func (gm *SessionManager) LoadCachedGame(ctx context.Context, token string) (*CachedGame, error) {
	if gm.rdb == nil {
		return nil, ErrGameNotFound
	}
	raw, err := gm.rdb.Get(ctx, stateKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}
	var cg CachedGame
	if err := json.Unmarshal(raw, &cg); err != nil {
		return nil, fmt.Errorf("decode cached game %s: %w", token, err)
	}
	return &cg, nil
}

// publishEvent shares ev with every instance subscribed to EventsChannel.
func (gm *SessionManager) publishEvent(ev Event) {
	if gm.rdb == nil {
		return
	}
	b, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[REDIS] Failed to encode %s event: %v", ev.Type, err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if n, err := gm.rdb.Publish(ctx, EventsChannel, b).Result(); err != nil {
		log.Printf("[REDIS] publish %s failed: game=%s err=%v", ev.Type, ev.GameToken, err)
	} else {
		log.Printf("[REDIS] published %s: game=%s subscribers=%d", ev.Type, ev.GameToken, n)
	}
}
