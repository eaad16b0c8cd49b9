package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/duel/internal/config"
	"github.com/playmatatu/duel/internal/game"
)

const version = "1.0.0"

// GameState is the read-only view of the game the HTTP API exposes.
type GameState interface {
	Stats() game.Stats
	MatchView(id game.MatchID) (game.MatchView, error)
	Config() config.Game
}

// HealthCheck returns server health status
func HealthCheck(g GameState) gin.HandlerFunc {
	return func(c *gin.Context) {
		st := g.Stats()
		c.JSON(http.StatusOK, gin.H{
			"status":              "ok",
			"service":             "duel-server",
			"version":             version,
			"uptime":              st.Uptime.Round(time.Second).String(),
			"connections":         st.Connections,
			"waiting_connections": st.WaitingConnections,
			"live_matches":        st.LiveMatches,
		})
	}
}
