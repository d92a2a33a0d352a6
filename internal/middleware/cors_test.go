package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/pitch/internal/config"
)

func TestAllowedOrigin(t *testing.T) {
	dev := &config.Config{Environment: "development"}
	prod := &config.Config{Environment: "production", FrontendURL: "https://pitch.example.com/"}

	cases := []struct {
		cfg    *config.Config
		origin string
		want   bool
	}{
		{dev, "", true},
		{dev, "http://localhost:5173", true},
		{dev, "http://127.0.0.1:3000", true},
		{dev, "https://evil.example.com", false},
		{prod, "https://pitch.example.com", true},
		{prod, "http://localhost:5173", false},
		{prod, "", true},
	}
	for _, tc := range cases {
		if got := AllowedOrigin(tc.cfg, tc.origin); got != tc.want {
			t.Errorf("AllowedOrigin(%s, %q) = %v, want %v", tc.cfg.Environment, tc.origin, got, tc.want)
		}
	}
}

func TestWebSocketCORSCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(WebSocketCORSCheck(&config.Config{Environment: "production", FrontendURL: "https://pitch.example.com"}))
	r.GET("/ws", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	req.Header.Set("Origin", "https://evil.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("foreign origin: status %d, want 403", w.Code)
	}

	req.Header.Set("Origin", "https://pitch.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("allowed origin: status %d, want 204", w.Code)
	}

	// Plain requests pass through untouched.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws", nil))
	if w.Code != http.StatusNoContent {
		t.Errorf("non-upgrade request: status %d", w.Code)
	}
}
