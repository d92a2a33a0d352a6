package middleware

import (
	"log"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/playmatatu/pitch/internal/config"
)

// CORSMiddleware returns a CORS middleware configured for the environment
func CORSMiddleware(cfg *config.Config) gin.HandlerFunc {
	log.Printf("[CORS] Environment: %s, FrontendURL: %s", cfg.Environment, cfg.FrontendURL)

	corsConfig := cors.Config{
		AllowMethods: []string{
			"GET", "POST", "DELETE", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin", "Content-Length", "Content-Type", "Accept",
			"X-Host-Key", "X-Requested-With",
		},
		ExposeHeaders: []string{
			"Content-Length", "X-Game-ID",
		},
		MaxAge: 12 * time.Hour, // Cache preflight responses
	}

	if cfg.IsProduction() {
		origins := productionOrigins(cfg)
		log.Printf("[CORS] Production allowed origins: %v", origins)
		if len(origins) == 0 {
			// cors.New rejects an empty origin list; refuse every cross-origin request instead.
			corsConfig.AllowOriginFunc = func(string) bool { return false }
		}
		corsConfig.AllowOrigins = origins
	} else {
		corsConfig.AllowOriginFunc = isLocalOrigin
	}

	return cors.New(corsConfig)
}

// AllowedOrigin reports whether a browser at origin may open a pitch websocket.
// Native clients send no Origin and are always allowed.
func AllowedOrigin(cfg *config.Config, origin string) bool {
	if origin == "" {
		return true
	}
	if !cfg.IsProduction() {
		return isLocalOrigin(origin)
	}
	for _, allowed := range productionOrigins(cfg) {
		if origin == allowed {
			return true
		}
	}
	return false
}

// WebSocketCORSCheck rejects websocket upgrades from origins AllowedOrigin refuses
func WebSocketCORSCheck(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Only check for WebSocket upgrade requests
		if !strings.Contains(strings.ToLower(c.GetHeader("Connection")), "upgrade") ||
			strings.ToLower(c.GetHeader("Upgrade")) != "websocket" {
			c.Next()
			return
		}

		if !AllowedOrigin(cfg, c.GetHeader("Origin")) {
			log.Printf("[CORS] Rejected websocket origin %q", c.GetHeader("Origin"))
			c.JSON(403, gin.H{"error": "WebSocket origin not allowed"})
			c.Abort()
			return
		}

		c.Next()
	}
}

func isLocalOrigin(origin string) bool {
	return strings.HasPrefix(origin, "http://localhost:") ||
		strings.HasPrefix(origin, "http://127.0.0.1:") ||
		origin == "http://localhost" || origin == "http://127.0.0.1"
}

func productionOrigins(cfg *config.Config) []string {
	var origins []string
	if cfg.FrontendURL != "" {
		origins = append(origins, strings.TrimSuffix(cfg.FrontendURL, "/"))
	}
	return origins
}
