package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/room-reservation/internal/config"
)

// RateLimit returns a Redis-backed token-bucket limiter keyed by
// client IP, authenticated user and route.  The bucket state lives in
// a Redis hash so the limit holds across replicas.  When Redis is
// unavailable (nil client or script error) the middleware passes
// requests through rather than failing the API.
func RateLimit(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	// Refill-and-take in one atomic script: tokens accumulate at
	// refill_tokens per interval up to capacity; a request takes one
	// or is told how long until the next refill.
	bucket := redis.NewScript(`
		local key = KEYS[1]
		local now_ms = tonumber(ARGV[1])
		local capacity = tonumber(ARGV[2])
		local refill = tonumber(ARGV[3])
		local interval_ms = tonumber(ARGV[4])
		local ttl_s = tonumber(ARGV[5])

		local state = redis.call('HMGET', key, 'tokens', 'last_ms')
		local tokens = tonumber(state[1])
		local last = tonumber(state[2])
		if tokens == nil or last == nil then
			tokens = capacity
			last = now_ms
		end

		local intervals = math.floor(math.max(0, now_ms - last) / interval_ms)
		if intervals > 0 then
			tokens = math.min(capacity, tokens + intervals * refill)
			last = last + intervals * interval_ms
		end

		local allowed = 0
		local retry_ms = 0
		if tokens > 0 then
			allowed = 1
			tokens = tokens - 1
		else
			retry_ms = math.max(0, interval_ms - (now_ms - last))
		end

		redis.call('HMSET', key, 'tokens', tokens, 'last_ms', last)
		redis.call('EXPIRE', key, ttl_s)
		return { allowed, tokens, retry_ms }
	`)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := rateKey(cfg.Prefix, c)
			vals, err := bucket.Run(c.Request().Context(), rdb, []string{key},
				time.Now().UnixMilli(),
				cfg.Capacity,
				cfg.RefillTokens,
				cfg.RefillInterval.Milliseconds(),
				int64(cfg.TTL/time.Second),
			).Result()
			if err != nil {
				return next(c)
			}
			arr, ok := vals.([]interface{})
			if !ok || len(arr) != 3 {
				return next(c)
			}
			allowed := asInt64(arr[0]) == 1
			remaining := asInt64(arr[1])
			retryMs := asInt64(arr[2])

			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			if !allowed {
				secs := int(math.Ceil(float64(retryMs) / 1000.0))
				c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"error":       "too_many_requests",
					"retry_after": secs,
				})
			}
			return next(c)
		}
	}
}

func rateKey(prefix string, c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	uid := "anon"
	if v := c.Get("user_id"); v != nil {
		uid = fmt.Sprint(v)
	}
	return fmt.Sprintf("%s:ip:%s:user:%s:route:%s %s", prefix, ip, uid, c.Request().Method, c.Path())
}

func asInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
	}
	return 0
}
