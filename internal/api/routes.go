package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/pitch/internal/api/handlers"
	"github.com/playmatatu/pitch/internal/config"
	"github.com/playmatatu/pitch/internal/game"
	"github.com/playmatatu/pitch/internal/middleware"
	"github.com/playmatatu/pitch/internal/ws"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, manager *game.SessionManager, hub *ws.Hub, cfg *config.Config) {
	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.WebSocketCORSCheck(cfg))

	if !cfg.IsProduction() {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		log.Println("[DEV MODE] no-cache headers enabled for all routes")
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck(manager))
		v1.GET("/config", handlers.GetConfig(cfg))

		pitch := v1.Group("/pitch")
		{
			pitch.POST("", handlers.CreatePitch(manager))
			pitch.GET("/:token", handlers.GetPitch(manager))
			pitch.DELETE("/:token", handlers.EndPitch(manager))
			pitch.POST("/:token/dismiss", handlers.DismissGoal(manager))
			pitch.GET("/:token/goals", handlers.GetGoals(manager))
			pitch.GET("/:token/ws", handlers.HandlePitchWebSocket(hub))
		}
	}
}
