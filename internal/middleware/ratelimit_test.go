package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestCheckRateLimit(t *testing.T) {
	mr, rdb := newTestRedis(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, err := CheckRateLimit(ctx, rdb, "writes", "user:1", 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := CheckRateLimit(ctx, rdb, "writes", "user:1", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	// Other identities keep their own window.
	allowed, err = CheckRateLimit(ctx, rdb, "writes", "user:2", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)

	assert.Greater(t, mr.TTL("rl:writes:user:1"), time.Duration(0))

	mr.FastForward(2 * time.Minute)
	allowed, err = CheckRateLimit(ctx, rdb, "writes", "user:1", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestCheckRateLimit_NilRedis(t *testing.T) {
	allowed, err := CheckRateLimit(context.Background(), nil, "writes", "1", 1, time.Minute)
	assert.ErrorIs(t, err, errNoRedis)
	assert.False(t, allowed)
}

func TestRateLimitMiddleware(t *testing.T) {
	do := func(app *fiber.App, path string) int {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, path, nil))
		require.NoError(t, err)
		_ = resp.Body.Close()
		return resp.StatusCode
	}
	ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }

	t.Run("Bypass in test mode", func(t *testing.T) {
		app := fiber.New()
		app.Post("/test", RateLimit(nil, RateLimitConfig{Limit: 1, Window: time.Minute, Env: "test"}), ok)
		assert.Equal(t, http.StatusOK, do(app, "/test"))
		assert.Equal(t, http.StatusOK, do(app, "/test"))
	})

	t.Run("Limits in production", func(t *testing.T) {
		_, rdb := newTestRedis(t)
		app := fiber.New()
		app.Post("/test", RateLimit(rdb, RateLimitConfig{Name: "writes", Limit: 1, Window: time.Minute, Env: "production"}), ok)
		assert.Equal(t, http.StatusOK, do(app, "/test"))
		assert.Equal(t, http.StatusTooManyRequests, do(app, "/test"))
	})

	t.Run("FailOpen with nil redis in production", func(t *testing.T) {
		app := fiber.New()
		app.Post("/test", RateLimit(nil, RateLimitConfig{Limit: 1, Window: time.Minute, Env: "production"}), ok)
		assert.Equal(t, http.StatusOK, do(app, "/test"))
	})

	t.Run("FailClosed with nil redis in production", func(t *testing.T) {
		app := fiber.New()
		app.Post("/sensitive", RateLimit(nil, RateLimitConfig{Limit: 1, Window: time.Minute, Policy: FailClosed, Env: "production"}), ok)
		assert.Equal(t, http.StatusServiceUnavailable, do(app, "/sensitive"))
	})
}
