package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/pitch/internal/config"
	"github.com/playmatatu/pitch/internal/game"
)

// GetConfig returns the pitch defaults clients need before creating or joining a game
func GetConfig(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"geometry":         game.DefaultGeometry(cfg),
			"tick_interval_ms": cfg.TickIntervalMs,
			"goal_pause_ms":    cfg.GoalPauseMs,
			"ball_radius":      game.BallRadius,
			"goal_width":       game.GoalWidth,
			"goal_depth":       game.GoalDepth,
			"paddle_radius":    game.PaddleHitDistance - game.BallRadius,
		})
	}
}
