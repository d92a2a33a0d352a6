package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/pitch/internal/game"
)

var startTime = time.Now()

const version = "1.0.0"

// HealthCheck returns server health status
func HealthCheck(manager *game.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":       "ok",
			"service":      "pitch-api",
			"version":      version,
			"instance_id":  manager.InstanceID(),
			"active_games": manager.ActiveGameCount(),
			"uptime":       time.Since(startTime).String(),
		})
	}
}
