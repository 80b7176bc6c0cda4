package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/bus-seat-reservation/internal/config"
)

// takeScript refills the bucket for the elapsed whole intervals and takes
// one token.  Reply: {allowed 0|1, tokens left, ms until next refill}.
var takeScript = redis.NewScript(`
local tokens, last = unpack(redis.call('HMGET', KEYS[1], 'tokens', 'last_refill_ms'))
local now, cap, refill, every, ttl = tonumber(ARGV[1]), tonumber(ARGV[2]), tonumber(ARGV[3]), tonumber(ARGV[4]), tonumber(ARGV[5])
tokens, last = tonumber(tokens), tonumber(last)
if tokens == nil or last == nil then
	tokens, last = cap, now
end
local steps = math.floor(math.max(0, now - last) / every)
if steps > 0 then
	tokens = math.min(cap, tokens + steps * refill)
	last = last + steps * every
end
local allowed, wait = 0, 0
if tokens > 0 then
	allowed, tokens = 1, tokens - 1
else
	wait = math.max(0, every - (now - last))
end
redis.call('HSET', KEYS[1], 'tokens', tokens, 'last_refill_ms', last)
redis.call('EXPIRE', KEYS[1], ttl)
return {allowed, tokens, wait}
`)

// decision is the outcome of one take on a bucket.
type decision struct {
	allowed   bool
	remaining int64
	retryMs   int64
}

type bucket struct {
	cfg config.RateLimitConfig
	rdb *redis.Client
}

func (b bucket) take(ctx context.Context, key string) (decision, error) {
	res, err := takeScript.Run(ctx, b.rdb, []string{key},
		time.Now().UnixMilli(),
		b.cfg.Capacity,
		b.cfg.RefillTokens,
		b.cfg.RefillInterval.Milliseconds(),
		int64(b.cfg.TTL/time.Second),
	).Slice()
	if err != nil {
		return decision{}, err
	}
	if len(res) != 3 {
		return decision{}, fmt.Errorf("unexpected script reply %v", res)
	}
	return decision{
		allowed:   asInt64(res[0]) == 1,
		remaining: asInt64(res[1]),
		retryMs:   asInt64(res[2]),
	}, nil
}

// NewTokenBucket throttles booking traffic with a Redis token bucket per
// key.  It is a pass-through when disabled or when rdb is nil.  Redis
// errors let the request through so an outage never blocks a booking.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	b := bucket{cfg: cfg, rdb: rdb}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := buildRateKey(cfg, c)
			d, err := b.take(c.Request().Context(), key)
			if err != nil {
				if cfg.Debug {
					c.Logger().Warnf("ratelimit: key=%s: %v", key, err)
				}
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(d.remaining, 10))
			if d.allowed {
				return next(c)
			}

			secs := retryAfterSeconds(d.retryMs)
			h.Set("Retry-After", strconv.Itoa(secs))
			if cfg.Debug {
				c.Logger().Infof("ratelimit: blocked key=%s retry=%dms", key, d.retryMs)
			}
			return c.JSON(http.StatusTooManyRequests, echo.Map{
				"error":       "too_many_requests",
				"message":     "rate limit exceeded",
				"retry_after": secs,
			})
		}
	}
}

func retryAfterSeconds(ms int64) int {
	if ms <= 0 {
		return 0
	}
	return int(math.Ceil(float64(ms) / 1000))
}

func asInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case string:
		n, _ := strconv.ParseInt(t, 10, 64)
		return n
	}
	return 0
}

// buildRateKey joins the prefix with the request attributes named by the
// key strategy.  "bus" keys on the route ID so one hot bus cannot starve
// the others.
func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	endpoint := c.Request().Method + " " + c.Path()

	parts := []string{cfg.Prefix}
	switch strings.ToLower(cfg.KeyStrategy) {
	case "ip":
		parts = append(parts, "ip", ip)
	case "route":
		parts = append(parts, "route", endpoint)
	case "bus":
		parts = append(parts, "bus", busID(c))
	case "subject":
		parts = append(parts, "sub", currentSubject(c))
	case "ip_subject_route":
		parts = append(parts, "ip", ip, "sub", currentSubject(c), "route", endpoint)
	default: // ip_route
		parts = append(parts, "ip", ip, "route", endpoint)
	}
	return strings.Join(parts, ":")
}

func busID(c echo.Context) string {
	if id := c.Param("id"); id != "" {
		return id
	}
	return "none"
}

// currentSubject returns the token subject stored by JWTAuth, or "anon".
func currentSubject(c echo.Context) string {
	if s, ok := c.Get("subject").(string); ok && s != "" {
		return s
	}
	return "anon"
}
