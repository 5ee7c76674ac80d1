package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"github.com/piresc/trackmybus/internal/pkg/logger"
	"github.com/piresc/trackmybus/internal/utils"
)

// RateLimiterConfig contains configuration for the rate limiter
type RateLimiterConfig struct {
	RedisClient *redis.Client
	Key         string        // Key prefix for Redis
	Limit       int           // Maximum number of requests per window
	Period      time.Duration // Window length
	Logger      *logger.ZapLogger
	Skipper     func(echo.Context) bool // requests it matches are never counted
}

// windowScript counts one request and returns {count, pttl}. The expiry is set in the
// same call so a key can never outlive its window.
var windowScript = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
local ttl = redis.call('PTTL', KEYS[1])
if n == 1 or ttl < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return {n, ttl}
`)

func countRequest(ctx context.Context, client *redis.Client, key string, period time.Duration) (int64, time.Duration, error) {
	res, err := windowScript.Run(ctx, client, []string{key}, period.Milliseconds()).Result()
	if err != nil {
		return 0, 0, err
	}
	vals, ok := res.([]interface{})
	if !ok || len(vals) != 2 {
		return 0, 0, fmt.Errorf("unexpected rate window reply %v", res)
	}
	count, ok1 := vals[0].(int64)
	pttl, ok2 := vals[1].(int64)
	if !ok1 || !ok2 {
		return 0, 0, fmt.Errorf("unexpected rate window reply %v", res)
	}
	return count, time.Duration(pttl) * time.Millisecond, nil
}

// RateLimiterMiddleware is a fixed-window limiter keyed by route and client.
// Redis failures let the request through.
func RateLimiterMiddleware(config RateLimiterConfig) echo.MiddlewareFunc {
	if config.Logger == nil {
		config.Logger = logger.NewNopLogger()
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if config.Skipper != nil && config.Skipper(c) {
				return next(c)
			}

			identifier := c.RealIP()
			if sid, ok := SessionFromContext(c); ok {
				identifier = sid
			}

			key := fmt.Sprintf("%s:%s:%s", config.Key, c.Path(), identifier)

			count, reset, err := countRequest(c.Request().Context(), config.RedisClient, key, config.Period)
			if err != nil {
				config.Logger.Warn("Rate limiter unavailable, allowing request",
					logger.String("key", key),
					logger.Err(err))
				return next(c)
			}

			remaining := config.Limit - int(count)
			if remaining < 0 {
				remaining = 0
			}

			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(config.Limit))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if int(count) > config.Limit {
				if reset <= 0 {
					reset = config.Period
				}
				c.Response().Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(reset).Unix(), 10))
				c.Response().Header().Set("Retry-After", strconv.FormatInt(int64(math.Ceil(reset.Seconds())), 10))
				return utils.ErrorResponseHandler(c, http.StatusTooManyRequests, "Rate limit exceeded")
			}

			return next(c)
		}
	}
}

// IPRateLimiter creates a simple client-based rate limiter. skipper may be nil.
func IPRateLimiter(limit int, period time.Duration, redisClient *redis.Client, l *logger.ZapLogger, skipper func(echo.Context) bool) echo.MiddlewareFunc {
	return RateLimiterMiddleware(RateLimiterConfig{
		RedisClient: redisClient,
		Key:         "rate:ingest",
		Limit:       limit,
		Period:      period,
		Logger:      l,
		Skipper:     skipper,
	})
}
