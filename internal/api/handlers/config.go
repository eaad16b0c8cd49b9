package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetConfig returns the game configuration clients need to render timers
func GetConfig(g GameState) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, g.Config())
	}
}
