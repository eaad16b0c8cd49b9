package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/duel/internal/api/handlers"
	"github.com/playmatatu/duel/internal/config"
	"github.com/playmatatu/duel/internal/middleware"
	"github.com/playmatatu/duel/internal/ws"
	"github.com/rs/zerolog/log"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, cfg *config.Config, state handlers.GameState, wsHandler *ws.Handler) {
	router.Use(middleware.CORSMiddleware(cfg))

	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		log.Debug().Msg("no-cache headers enabled for all routes")
	}

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck(state))
		v1.GET("/config", handlers.GetConfig(state))
		v1.GET("/matches/:id", handlers.GetMatch(state))
		v1.GET("/ws", middleware.WebSocketOriginCheck(cfg), handlers.HandleGameWebSocket(wsHandler))
	}

	// Browser client
	if cfg.StaticDir != "" {
		router.NoRoute(gin.WrapH(http.FileServer(http.Dir(cfg.StaticDir))))
		log.Info().Str("dir", cfg.StaticDir).Msg("serving static client")
	}
}
