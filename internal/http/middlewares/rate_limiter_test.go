package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func limiterRouter(rl *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(rl.RateLimitMiddleware())
	r.GET("/quote", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func hit(r *gin.Engine, ip string) int {
	req := httptest.NewRequest(http.MethodGet, "/quote", nil)
	req.RemoteAddr = ip + ":1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimiterEnforcesBurstPerIP(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	r := limiterRouter(rl)

	for i := 0; i < 2; i++ {
		if code := hit(r, "10.0.0.1"); code != http.StatusOK {
			t.Fatalf("request %d: code = %d, want 200", i+1, code)
		}
	}
	if code := hit(r, "10.0.0.1"); code != http.StatusTooManyRequests {
		t.Errorf("over-burst code = %d, want 429", code)
	}
	if code := hit(r, "10.0.0.2"); code != http.StatusOK {
		t.Errorf("other client code = %d, want 200; buckets must be per IP", code)
	}
}

func TestRateLimiterRefillsOverTime(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	r := limiterRouter(rl)

	hit(r, "10.0.0.1")
	hit(r, "10.0.0.1")
	if code := hit(r, "10.0.0.1"); code != http.StatusTooManyRequests {
		t.Fatalf("drained bucket code = %d, want 429", code)
	}

	now = now.Add(2 * time.Second)
	if code := hit(r, "10.0.0.1"); code != http.StatusOK {
		t.Errorf("code after refill window = %d, want 200", code)
	}
}

func TestRateLimiterPrunesIdleVisitors(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	r := limiterRouter(rl)

	hit(r, "10.0.0.1")

	now = now.Add(visitorIdleTTL)
	hit(r, "10.0.0.2")

	rl.mu.Lock()
	_, stale := rl.visitors["10.0.0.1"]
	_, fresh := rl.visitors["10.0.0.2"]
	rl.mu.Unlock()
	if stale {
		t.Error("idle visitor survived the prune")
	}
	if !fresh {
		t.Error("active visitor pruned")
	}
}
