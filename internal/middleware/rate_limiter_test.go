package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func setupRateLimitedRouter(rl *RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(rl.Middleware())
	r.POST("/test", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func requestFrom(r *gin.Engine, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/test", http.NoBody)
	req.RemoteAddr = ip + ":1234"
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter(t *testing.T) {
	t.Run("blocks_after_burst", func(t *testing.T) {
		r := setupRateLimitedRouter(NewRateLimiter(1, 2))

		for i := 0; i < 2; i++ {
			if rec := requestFrom(r, "10.0.0.1"); rec.Code != http.StatusNoContent {
				t.Fatalf("request %d: status = %d", i+1, rec.Code)
			}
		}
		rec := requestFrom(r, "10.0.0.1")
		if rec.Code != http.StatusTooManyRequests {
			t.Fatalf("status = %d, want 429", rec.Code)
		}
		assertErrorCode(t, rec, "RATE_LIMITED")
	})

	t.Run("clients_are_independent", func(t *testing.T) {
		r := setupRateLimitedRouter(NewRateLimiter(1, 1))

		if rec := requestFrom(r, "10.0.0.1"); rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d", rec.Code)
		}
		if rec := requestFrom(r, "10.0.0.2"); rec.Code != http.StatusNoContent {
			t.Errorf("second client should have its own budget, status = %d", rec.Code)
		}
	})

	t.Run("idle_visitors_are_forgotten", func(t *testing.T) {
		rl := NewRateLimiter(1, 1)
		now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		rl.now = func() time.Time { return now }

		rl.getVisitor("10.0.0.1")
		rl.getVisitor("10.0.0.2")
		if rl.size() != 2 {
			t.Fatalf("expected 2 visitors, got %d", rl.size())
		}

		now = now.Add(visitorTTL + cleanupInterval + time.Second)
		rl.getVisitor("10.0.0.3")
		if rl.size() != 1 {
			t.Errorf("expected idle visitors to be pruned, got %d", rl.size())
		}
	})
}
