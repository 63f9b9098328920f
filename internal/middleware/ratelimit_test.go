package middleware_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/backpackor/planner/internal/middleware"
)

func TestKeyedRateLimiter_Allow(t *testing.T) {
	now := time.Now()
	l := middleware.NewKeyedRateLimiter(1, time.Minute, 2)

	ok, _ := l.Allow("a", now)
	assert.True(t, ok)
	ok, _ = l.Allow("a", now)
	assert.True(t, ok)
	ok, wait := l.Allow("a", now)
	assert.False(t, ok, "burst exhausted")
	assert.Greater(t, wait, time.Duration(0))

	ok, _ = l.Allow("b", now)
	assert.True(t, ok, "keys are independent")

	ok, _ = l.Allow("a", now.Add(time.Minute))
	assert.True(t, ok, "token refilled")
}

func TestKeyedRateLimiter_Prune(t *testing.T) {
	now := time.Now()
	l := middleware.NewKeyedRateLimiter(10, time.Minute, 1)
	l.Allow("old", now.Add(-time.Hour))
	l.Allow("new", now)

	assert.Equal(t, 1, l.Prune(now.Add(-time.Minute)))
}

func TestRateLimitHandler(t *testing.T) {
	l := middleware.NewKeyedRateLimiter(1, time.Minute, 1)
	h := middleware.NewRateLimitHandler(l, slog.New(slog.NewTextHandler(io.Discard, nil)))(okHandler)

	do := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/generate-plan", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1:1234").Code)

	rec := do("10.0.0.1:5678")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), `"rate_limited"`)

	assert.Equal(t, http.StatusOK, do("10.0.0.2:1234").Code)
}
