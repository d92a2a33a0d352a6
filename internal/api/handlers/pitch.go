package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/pitch/internal/auth"
	"github.com/playmatatu/pitch/internal/game"
	"github.com/playmatatu/pitch/internal/models"
)

// HostKeyHeader carries the host key returned by CreatePitch.
const HostKeyHeader = "X-Host-Key"

// createPitchRequest overrides the configured arena size. Zero fields keep the default.
type createPitchRequest struct {
	ScreenWidth            float64 `json:"screen_width"`
	ScreenHeight           float64 `json:"screen_height"`
	PitchVerticalPadding   float64 `json:"pitch_vertical_padding"`
	PitchHorizontalPadding float64 `json:"pitch_horizontal_padding"`
}

func (r createPitchRequest) geometry(def game.Geometry) game.Geometry {
	g := def
	if r.ScreenWidth != 0 {
		g.ScreenWidth = r.ScreenWidth
	}
	if r.ScreenHeight != 0 {
		g.ScreenHeight = r.ScreenHeight
	}
	if r.PitchVerticalPadding != 0 {
		g.PitchVerticalPadding = r.PitchVerticalPadding
	}
	if r.PitchHorizontalPadding != 0 {
		g.PitchHorizontalPadding = r.PitchHorizontalPadding
	}
	return g
}

// CreatePitch starts a new game and returns the tokens both players and the host need
func CreatePitch(manager *game.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createPitchRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
				return
			}
		}

		geom := req.geometry(game.DefaultGeometry(manager.Config()))
		g, hostKey, err := manager.CreateGame(geom)
		if errors.Is(err, game.ErrInvalidGeometry) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create game"})
			return
		}

		c.Header("X-Game-ID", g.ID)
		c.JSON(http.StatusCreated, gin.H{
			"game_id":          g.ID,
			"game_token":       g.Token,
			"player_one_token": g.PlayerOneToken,
			"player_two_token": g.PlayerTwoToken,
			"host_key":         hostKey,
			"geometry":         geom,
			"ws_path":          "/api/v1/pitch/" + g.Token + "/ws",
		})
	}
}

// GetPitch returns the latest snapshot of a game. Games hosted by another instance, or
// finished within the cache window, are served from Redis. Older finished games only
// have their stored session row.
func GetPitch(manager *game.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")

		if g, err := manager.GetGameByToken(token); err == nil {
			c.JSON(http.StatusOK, gin.H{
				"game_id":  g.ID,
				"status":   g.Session.Status(),
				"geometry": g.Geometry(),
				"state":    g.Session.State(),
			})
			return
		}

		if cached, err := manager.LoadCachedGame(c.Request.Context(), token); err == nil {
			c.JSON(http.StatusOK, gin.H{
				"game_id": cached.ID,
				"status":  cached.Status,
				"state":   cached.State,
				"cached":  true,
			})
			return
		}

		rec, err := manager.GetSessionRecord(c.Request.Context(), token)
		if errors.Is(err, game.ErrGameNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load game"})
			return
		}
		c.JSON(http.StatusOK, archivedPitch(rec))
	}
}

// archivedPitch describes a game known only from its pitch_sessions row.
func archivedPitch(rec *models.PitchSession) gin.H {
	out := gin.H{
		"game_id": rec.GameID,
		"status":  rec.Status,
		"geometry": game.Geometry{
			ScreenWidth:            rec.ScreenWidth,
			ScreenHeight:           rec.ScreenHeight,
			PitchVerticalPadding:   rec.PitchVerticalPadding,
			PitchHorizontalPadding: rec.PitchHorizontalPadding,
		},
		"player_one_score": rec.PlayerOneScore,
		"player_two_score": rec.PlayerTwoScore,
		"archived":         true,
	}
	if rec.EndReason.Valid {
		out["end_reason"] = rec.EndReason.String
	}
	if rec.EndedAt.Valid {
		out["ended_at"] = rec.EndedAt.Time
	}
	return out
}

// DismissGoal ends the goal pause. Either player (pt query) or the host may dismiss.
func DismissGoal(manager *game.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")

		g, err := manager.GetGameByToken(token)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
			return
		}
		if !authorizedPlayer(manager, c, token) && !g.VerifyHostKey(c.GetHeader(HostKeyHeader)) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Player token or host key required"})
			return
		}

		dismissed, err := manager.DismissGoalPause(token)
		switch {
		case errors.Is(err, game.ErrGameNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		case errors.Is(err, game.ErrGameEnded):
			c.JSON(http.StatusConflict, gin.H{"error": "Game has ended"})
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusOK, gin.H{"dismissed": dismissed, "state": g.Session.State()})
		}
	}
}

// EndPitch stops a game. Only the host may end it.
func EndPitch(manager *game.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		g, err := manager.GetGameByToken(c.Param("token"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
			return
		}
		if !g.VerifyHostKey(c.GetHeader(HostKeyHeader)) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Invalid host key"})
			return
		}
		if err := manager.EndGame(g.ID); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
			return
		}

		final := g.Session.State()
		c.JSON(http.StatusOK, gin.H{
			"game_id":          g.ID,
			"status":           game.StatusEnded,
			"player_one_score": final.PlayerOneScore,
			"player_two_score": final.PlayerTwoScore,
		})
	}
}

// GetGoals lists the goals scored in a game, oldest first
func GetGoals(manager *game.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		goals, err := manager.GoalHistory(c.Request.Context(), c.Param("token"))
		if errors.Is(err, game.ErrGameNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load goals"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"goals": goals, "count": len(goals)})
	}
}

func authorizedPlayer(manager *game.SessionManager, c *gin.Context, token string) bool {
	pt := c.Query("pt")
	if pt == "" {
		return false
	}
	claims, err := auth.ParsePlayerToken(manager.Config().JWTSecret, pt)
	return err == nil && claims.GameToken == token
}
