package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/duel/internal/game"
)

// GetMatch returns a read-only snapshot of a live match
func GetMatch(g GameState) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := g.MatchView(game.MatchID(c.Param("id")))
		if errors.Is(err, game.ErrMatchNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "match not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, view)
	}
}
