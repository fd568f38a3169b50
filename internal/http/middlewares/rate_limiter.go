package middlewares

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// visitorIdleTTL is how long a client's bucket survives without traffic
// before it is pruned.
const visitorIdleTTL = 3 * time.Minute

// visitor is one client's token bucket.
type visitor struct {
	tokens   int
	lastSeen time.Time
}

// RateLimiter is a per-client-IP token bucket. Quote traffic is bursty, so
// the bucket refills at a steady per-second rate up to a burst ceiling.
// Idle entries are pruned so one-off clients do not grow the map forever.
type RateLimiter struct {
	mu        sync.Mutex
	rate      int
	burst     int
	idleTTL   time.Duration
	lastPrune time.Time
	visitors  map[string]*visitor

	now func() time.Time
}

func NewRateLimiter(rate, burst int) *RateLimiter {
	return &RateLimiter{
		rate:     rate,
		burst:    burst,
		idleTTL:  visitorIdleTTL,
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}
}

func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		rl.mu.Lock()
		now := rl.now()
		rl.pruneLocked(now)

		v, ok := rl.visitors[ip]
		if !ok {
			v = &visitor{tokens: rl.burst}
			rl.visitors[ip] = v
		} else {
			v.tokens += int(now.Sub(v.lastSeen).Seconds()) * rl.rate
			if v.tokens > rl.burst {
				v.tokens = rl.burst
			}
		}
		v.lastSeen = now

		if v.tokens <= 0 {
			rl.mu.Unlock()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		v.tokens--
		rl.mu.Unlock()

		c.Next()
	}
}

// pruneLocked drops visitors idle past the TTL. It runs at most once per TTL
// so steady traffic never pays a full map sweep per request.
func (rl *RateLimiter) pruneLocked(now time.Time) {
	if now.Sub(rl.lastPrune) < rl.idleTTL {
		return
	}
	rl.lastPrune = now
	for ip, v := range rl.visitors {
		if now.Sub(v.lastSeen) >= rl.idleTTL {
			delete(rl.visitors, ip)
		}
	}
}
