package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"portalar/api/models"
)

// RateLimiter is a sliding-window per-source-address limiter. When
// refundOnSuccess is set (the login limiter), requests that complete below
// 400 are not counted, so only failed attempts burn the budget.
type RateLimiter struct {
	mu              sync.Mutex
	max             int
	window          time.Duration
	refundOnSuccess bool
	hits            map[string][]time.Time
}

func NewRateLimiter(max int, window time.Duration) *RateLimiter {
	return &RateLimiter{max: max, window: window, hits: make(map[string][]time.Time)}
}

// NewLoginRateLimiter builds the far stricter limiter for the login route.
func NewLoginRateLimiter(max int, window time.Duration) *RateLimiter {
	rl := NewRateLimiter(max, window)
	rl.refundOnSuccess = true
	return rl
}

// allow records an attempt for key, returning false once the window is full.
func (rl *RateLimiter) allow(key string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := now.Add(-rl.window)
	kept := rl.hits[key][:0]
	for _, t := range rl.hits[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) >= rl.max {
		rl.hits[key] = kept
		return false
	}
	rl.hits[key] = append(kept, now)
	return true
}

// refund removes the most recent attempt for key.
func (rl *RateLimiter) refund(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if n := len(rl.hits[key]); n > 0 {
		rl.hits[key] = rl.hits[key][:n-1]
	}
}

func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if !rl.allow(key, time.Now()) {
			apiErr := models.NewRateLimitError("too many requests, try again later")
			c.AbortWithStatusJSON(apiErr.Status, apiErr)
			return
		}

		c.Next()

		if rl.refundOnSuccess && c.Writer.Status() < http.StatusBadRequest {
			rl.refund(key)
		}
	}
}
