package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/playmatatu/duel/internal/config"
	"github.com/rs/zerolog/log"
)

// CORSMiddleware returns a CORS middleware configured for the environment.
func CORSMiddleware(cfg *config.Config) gin.HandlerFunc {
	origins := AllowedOrigins(cfg)
	log.Info().Str("env", cfg.Environment).Strs("origins", origins).Msg("cors configured")

	return cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{"GET", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Length", "Content-Type", "Accept", "Cache-Control", "X-Requested-With"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	})
}

// AllowedOrigins lists the browser origins accepted in this environment.
func AllowedOrigins(cfg *config.Config) []string {
	if cfg.Environment == "development" {
		return []string{
			"http://localhost:5173",
			"http://127.0.0.1:5173",
			"http://localhost:" + cfg.Port,
			"http://127.0.0.1:" + cfg.Port,
		}
	}
	var origins []string
	if cfg.FrontendURL != "" {
		origins = append(origins, cfg.FrontendURL)
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:" + cfg.Port}
	}
	return origins
}

// WebSocketOriginCheck rejects websocket upgrades from foreign origins.
// Requests without an Origin header (non-browser clients) pass.
func WebSocketOriginCheck(cfg *config.Config) gin.HandlerFunc {
	allowed := AllowedOrigins(cfg)
	return func(c *gin.Context) {
		if !strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
			c.Next()
			return
		}

		origin := c.GetHeader("Origin")
		if origin == "" || (cfg.StaticDir != "" && sameHost(origin, c.Request.Host)) {
			c.Next()
			return
		}
		for _, o := range allowed {
			if origin == o {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(403, gin.H{"error": "WebSocket origin not allowed"})
	}
}

// sameHost reports whether origin points at host, so a client served from
// STATIC_DIR can always reach its own server.
func sameHost(origin, host string) bool {
	origin = strings.TrimPrefix(strings.TrimPrefix(origin, "https://"), "http://")
	return origin == host
}
