package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func limitedRouter(rl *RateLimiter, status int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/x", rl.Handler(), func(c *gin.Context) {
		c.Status(status)
	})
	return r
}

func doPost(r *gin.Engine, ip string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	req.RemoteAddr = ip + ":12345"
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiterBlocksAfterMax(t *testing.T) {
	rl := NewRateLimiter(5, time.Minute)
	r := limitedRouter(rl, http.StatusOK)

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, doPost(r, "203.0.113.7").Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, doPost(r, "203.0.113.7").Code)
}

func TestRateLimiterKeysPerAddress(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	r := limitedRouter(rl, http.StatusOK)

	assert.Equal(t, http.StatusOK, doPost(r, "203.0.113.7").Code)
	assert.Equal(t, http.StatusTooManyRequests, doPost(r, "203.0.113.7").Code)
	assert.Equal(t, http.StatusOK, doPost(r, "203.0.113.8").Code, "other addresses keep their own budget")
}

func TestRateLimiterWindowSlides(t *testing.T) {
	rl := NewRateLimiter(2, 50*time.Millisecond)

	now := time.Now()
	assert.True(t, rl.allow("k", now))
	assert.True(t, rl.allow("k", now))
	assert.False(t, rl.allow("k", now))
	assert.True(t, rl.allow("k", now.Add(60*time.Millisecond)), "old attempts age out")
}

// The login limiter only counts failed attempts: a successful request hands
// its slot back.
func TestLoginLimiterRefundsSuccess(t *testing.T) {
	rl := NewLoginRateLimiter(2, time.Minute)
	ok := limitedRouter(rl, http.StatusOK)

	for i := 0; i < 10; i++ {
		assert.Equal(t, http.StatusOK, doPost(ok, "203.0.113.7").Code)
	}

	fail := limitedRouter(rl, http.StatusUnauthorized)
	assert.Equal(t, http.StatusUnauthorized, doPost(fail, "203.0.113.7").Code)
	assert.Equal(t, http.StatusUnauthorized, doPost(fail, "203.0.113.7").Code)
	assert.Equal(t, http.StatusTooManyRequests, doPost(fail, "203.0.113.7").Code)
}
