package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/playmatatu/pitch/internal/ws"
)

// HandlePitchWebSocket streams snapshots and accepts pointer input for one game
func HandlePitchWebSocket(hub *ws.Hub) gin.HandlerFunc {
	return hub.HandleWebSocket
}
