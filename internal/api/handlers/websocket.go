package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/playmatatu/duel/internal/ws"
)

// HandleGameWebSocket upgrades the request and joins the caller to matchmaking
func HandleGameWebSocket(h *ws.Handler) gin.HandlerFunc {
	return h.ServeWS
}
