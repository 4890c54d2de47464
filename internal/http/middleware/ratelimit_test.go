package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentseek/b2beelanding/pkg/logging"
)

func TestMemoryLimiterRefills(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(2)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, _ := l.Allow(ctx, "1.2.3.4")
	assert.False(t, ok)

	ok, _ = l.Allow(ctx, "5.6.7.8")
	assert.True(t, ok, "keys are independent")

	now = now.Add(30 * time.Second)
	ok, _ = l.Allow(ctx, "1.2.3.4")
	assert.True(t, ok, "one token refilled after 30s at 2/min")
}

func TestMemoryLimiterSweepsIdleKeys(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(5)
	l.now = func() time.Time { return now }

	_, _ = l.Allow(context.Background(), "idle")
	now = now.Add(time.Hour)
	_, _ = l.Allow(context.Background(), "fresh")

	assert.NotContains(t, l.buckets, "idle")
	assert.Contains(t, l.buckets, "fresh")
}

func TestRedisLimiterWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	now := time.Date(2025, 6, 1, 12, 0, 10, 0, time.UTC)
	l := NewRedisLimiter(client, 2)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for _, want := range []bool{true, true, false} {
		ok, err := l.Allow(ctx, "lead:1.2.3.4")
		require.NoError(t, err)
		assert.Equal(t, want, ok)
	}

	now = now.Add(time.Minute)
	ok, err := l.Allow(ctx, "lead:1.2.3.4")
	require.NoError(t, err)
	assert.True(t, ok, "new window")
	assert.Positive(t, mr.TTL(l.prefix+"lead:1.2.3.4:"+strconv.FormatInt(now.Unix()/60, 10)))
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func TestRateLimitMiddleware(t *testing.T) {
	mw := RateLimit(NewMemoryLimiter(1), "lead", logging.Discard())
	handler := mw(okHandler(nil))

	send := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/lead", nil)
		req.RemoteAddr = ip + ":51000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1").Code)
	rec := send("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"error":"Too many requests"}`, rec.Body.String())
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, http.StatusOK, send("10.0.0.2").Code)
}

func TestRateLimitFailsOpen(t *testing.T) {
	called := false
	rec := httptest.NewRecorder()
	RateLimit(failingLimiter{}, "lead", logging.Discard())(okHandler(&called)).
		ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/lead", nil))

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}
