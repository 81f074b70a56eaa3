package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{MaxAttempts: 3, WindowDuration: time.Minute, LockoutDuration: 10 * time.Minute})
	defer rl.Stop()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		allowed, _ := rl.Allow("10.0.0.1", "admin")
		assert.True(t, allowed)
		assert.False(t, rl.RecordFailure("10.0.0.1", "admin"))
	}
	assert.True(t, rl.RecordFailure("10.0.0.1", "admin"), "third failure locks")

	allowed, retry := rl.Allow("10.0.0.1", "admin")
	assert.False(t, allowed)
	assert.Equal(t, 10*time.Minute, retry)

	allowed, _ = rl.Allow("10.0.0.1", "editor")
	assert.True(t, allowed, "other usernames are independent")
	allowed, _ = rl.Allow("10.0.0.2", "admin")
	assert.True(t, allowed, "other addresses are independent")

	now = now.Add(12 * time.Minute)
	allowed, _ = rl.Allow("10.0.0.1", "admin")
	assert.True(t, allowed, "lockout expires")

	rl.cleanup()
	rl.mu.Lock()
	assert.Empty(t, rl.attempts)
	rl.mu.Unlock()
}

func TestRateLimiter_SuccessResets(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{MaxAttempts: 2})
	defer rl.Stop()

	rl.RecordFailure("ip", "user")
	rl.RecordSuccess("ip", "user")
	assert.False(t, rl.RecordFailure("ip", "user"))

	rl.Stop() // second Stop is a no-op
}

func TestSecurityHeaders(t *testing.T) {
	router := gin.New()
	router.Use(SecurityHeadersMiddleware())
	router.GET("/documentation", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/documentation/widget", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/documentation", nil))

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	csp := w.Header().Get("Content-Security-Policy")
	assert.Contains(t, csp, "media-src 'self' https:")
	assert.Contains(t, csp, "frame-ancestors 'none'")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/documentation/widget", nil))
	assert.Equal(t, "SAMEORIGIN", w.Header().Get("X-Frame-Options"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "frame-ancestors 'self'")
}

func TestHSTSHeader(t *testing.T) {
	router := gin.New()
	router.Use(StrictTransportSecurityMiddleware())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Contains(t, w.Header().Get("Strict-Transport-Security"), "max-age=31536000")
}
