package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/duel/internal/config"
)

func newRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws", WebSocketOriginCheck(cfg), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func TestWebSocketOriginCheck(t *testing.T) {
	cfg := &config.Config{Environment: "production", FrontendURL: "https://duel.example.com", Port: "3000"}
	r := newRouter(cfg)

	cases := []struct {
		name    string
		upgrade string
		origin  string
		want    int
	}{
		{"plain request", "", "https://evil.example.com", http.StatusNoContent},
		{"allowed origin", "websocket", "https://duel.example.com", http.StatusNoContent},
		{"no origin", "websocket", "", http.StatusNoContent},
		{"foreign origin", "websocket", "https://evil.example.com", http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tc.upgrade != "" {
				req.Header.Set("Upgrade", tc.upgrade)
			}
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Errorf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}
}

func TestAllowedOriginsDevelopment(t *testing.T) {
	got := AllowedOrigins(&config.Config{Environment: "development", Port: "3000"})
	found := false
	for _, o := range got {
		if o == "http://localhost:3000" {
			found = true
		}
	}
	if !found {
		t.Errorf("development origins %v miss the server itself", got)
	}
}
