package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterMiddleware(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	e := echo.New()
	e.POST("/location-update", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, IPRateLimiter(2, time.Minute, client, nil, nil))

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/location-update", nil)
		req.RemoteAddr = "10.0.0.7:5555"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, send().Code)
	second := send()
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "0", second.Header().Get("X-RateLimit-Remaining"))

	third := send()
	assert.Equal(t, http.StatusTooManyRequests, third.Code)
	assert.NotEmpty(t, third.Header().Get("Retry-After"))

	mr.FastForward(time.Minute + time.Second)
	assert.Equal(t, http.StatusOK, send().Code)
}

func TestRateLimiterMiddleware_FailsOpen(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	e := echo.New()
	e.POST("/location-update", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, IPRateLimiter(1, time.Minute, client, nil, nil))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/location-update", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiterMiddleware_WindowKeyAlwaysExpires(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	e := echo.New()
	e.POST("/location-update", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, IPRateLimiter(5, time.Minute, client, nil, nil))

	send := func() {
		req := httptest.NewRequest(http.MethodPost, "/location-update", nil)
		req.RemoteAddr = "10.0.0.7:5555"
		e.ServeHTTP(httptest.NewRecorder(), req)
	}

	key := "rate:ingest:/location-update:10.0.0.7"
	send()
	assert.Equal(t, time.Minute, mr.TTL(key))

	// a counter left without expiry by an earlier crash gets one on the next hit
	require.NoError(t, client.Persist(context.Background(), key).Err())
	send()
	assert.Equal(t, time.Minute, mr.TTL(key))
	count, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "2", count)
}

func TestRateLimiterMiddleware_SkipperBypassesCounting(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	skip := func(c echo.Context) bool { return c.Request().Header.Get("X-Stop") == "1" }

	e := echo.New()
	e.POST("/location-update", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, IPRateLimiter(1, time.Minute, client, nil, skip))

	send := func(stop bool) int {
		req := httptest.NewRequest(http.MethodPost, "/location-update", nil)
		req.RemoteAddr = "10.0.0.7:5555"
		if stop {
			req.Header.Set("X-Stop", "1")
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send(false))
	assert.Equal(t, http.StatusTooManyRequests, send(false))
	assert.Equal(t, http.StatusOK, send(true))
	assert.Equal(t, http.StatusOK, send(true))

	count, err := mr.Get("rate:ingest:/location-update:10.0.0.7")
	require.NoError(t, err)
	assert.Equal(t, "2", count)
}
