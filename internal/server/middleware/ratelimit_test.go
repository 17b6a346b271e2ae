package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(10, time.Minute, setupTestLogger())
	defer limiter.Stop()

	assert.Equal(t, 10, limiter.rate)
	assert.Equal(t, time.Minute, limiter.window)
	assert.NotNil(t, limiter.buckets)

	// Повторная остановка безопасна
	limiter.Stop()
}

func TestRateLimiter_Allow(t *testing.T) {
	t.Run("Requests over limit are denied", func(t *testing.T) {
		limiter := NewRateLimiter(3, time.Minute, setupTestLogger())
		defer limiter.Stop()

		for i := 0; i < 3; i++ {
			assert.True(t, limiter.Allow("192.168.1.2"), fmt.Sprintf("request %d should be allowed", i+1))
		}
		assert.False(t, limiter.Allow("192.168.1.2"), "request over limit should be denied")
	})

	t.Run("Different keys are tracked separately", func(t *testing.T) {
		limiter := NewRateLimiter(1, time.Minute, setupTestLogger())
		defer limiter.Stop()

		assert.True(t, limiter.Allow("a"))
		assert.False(t, limiter.Allow("a"))
		assert.True(t, limiter.Allow("b"))
	})

	t.Run("Tokens refill after window expires", func(t *testing.T) {
		limiter := NewRateLimiter(2, 50*time.Millisecond, setupTestLogger())
		defer limiter.Stop()

		assert.True(t, limiter.Allow("k"))
		assert.True(t, limiter.Allow("k"))
		assert.False(t, limiter.Allow("k"))

		time.Sleep(60 * time.Millisecond)

		assert.True(t, limiter.Allow("k"), "tokens should be refilled")
	})
}

func TestRateLimiter_CleanupOldBuckets(t *testing.T) {
	limiter := NewRateLimiter(10, 100*time.Millisecond, setupTestLogger())
	defer limiter.Stop()

	limiter.Allow("192.168.1.1")
	limiter.Allow("192.168.1.2")

	limiter.mu.Lock()
	assert.Len(t, limiter.buckets, 2)
	limiter.mu.Unlock()

	time.Sleep(250 * time.Millisecond)
	limiter.cleanupOldBuckets()

	limiter.mu.Lock()
	assert.Empty(t, limiter.buckets, "old buckets should be cleaned up")
	limiter.mu.Unlock()
}

func TestRateLimitByPathMiddleware(t *testing.T) {
	var logBuf strings.Builder
	logger := slog.New(slog.NewTextHandler(&logBuf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	limits := []PathRateLimit{
		{Path: "/api/v1/auth/login", Rate: 2, Window: time.Minute},
	}

	mw, stop := RateLimitByPathMiddleware(limits, 5, time.Minute, logger)
	defer stop()

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(method, path, remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		req.RemoteAddr = remote
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	t.Run("Login endpoint has its own limit", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			assert.Equal(t, http.StatusOK, do(http.MethodPost, "/api/v1/auth/login", "192.168.1.1:1").Code)
		}

		w := do(http.MethodPost, "/api/v1/auth/login", "192.168.1.1:1")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		assert.Equal(t, "60", w.Header().Get("Retry-After"))
		assert.Contains(t, w.Body.String(), "rate limit exceeded")

		// Порт клиента не влияет на ключ
		assert.Equal(t, http.StatusTooManyRequests, do(http.MethodPost, "/api/v1/auth/login", "192.168.1.1:2").Code)
	})

	t.Run("Other paths use default limit", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			assert.Equal(t, http.StatusOK, do(http.MethodGet, "/api/v1/files", "192.168.1.3:1").Code)
		}
		assert.Equal(t, http.StatusTooManyRequests, do(http.MethodGet, "/api/v1/files", "192.168.1.3:1").Code)
	})

	t.Run("Exceeded requests are logged", func(t *testing.T) {
		logOutput := logBuf.String()
		assert.Contains(t, logOutput, "Rate limit exceeded")
		assert.Contains(t, logOutput, "192.168.1.1")
		assert.Contains(t, logOutput, "/api/v1/auth/login")
	})
}
