package middlewares

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// windowStore counts hits against a fixed window and reports how long the
// current window has left.
type windowStore interface {
	hit(ctx context.Context, key string, window time.Duration) (count int64, remaining time.Duration, err error)
}

// redisWindow implements the window on redis so the count survives restarts
// and is shared if the site ever runs more than one replica.
type redisWindow struct {
	rdb *redis.Client
}

func (s *redisWindow) hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	// one round trip; EXPIRE NX also heals a key that lost its TTL
	pipe := s.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	ttl := pipe.TTL(ctx, key)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, err
	}

	return incr.Val(), ttl.Val(), nil
}

// RateLimiter enforces a fixed-window per-client limit. When the backing
// store is unreachable the limiter fails open; a throttle outage must not
// take the site down with it.
type RateLimiter struct {
	store  windowStore
	limit  int
	window time.Duration
}

func NewRateLimiter(rdb *redis.Client, limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		limit:  limit,
		window: window,
	}

	if rdb != nil {
		rl.store = &redisWindow{rdb: rdb}
	}

	return rl
}

// Middleware returns a gin.HandlerFunc enforcing the limit for a derived key.
func (rl *RateLimiter) RateLimiterMiddleware(keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.store == nil || rl.limit <= 0 {
			c.Next()
			return
		}

		key := keyFn(c)

		if key == "" {
			// fallback to IP if key cannot be derived
			key = clientIP(c)
		}

		count, remaining, err := rl.store.hit(c.Request.Context(), "ratelimit:"+key, rl.window)

		if err != nil {
			// fail open
			c.Next()
			return
		}

		if count > int64(rl.limit) {
			retryAfter := int(remaining.Seconds())
			if retryAfter < 0 {
				retryAfter = 0
			}

			c.Header("Retry-After", strconv.Itoa(retryAfter))

			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{
					"code":    "rate_limited",
					"message": "Too many requests. Please try again shortly.",
				},
			})

			return
		}

		c.Next()
	}
}

// KeyByIP rate limits unauthenticated endpoints by client IP.
func KeyByIP(c *gin.Context) string {
	return clientIP(c)
}

func clientIP(c *gin.Context) string {
	// Gin's ClientIP respects X-Forwarded-For / X-Real-IP if configured.
	ip := c.ClientIP()

	host, _, err := net.SplitHostPort(ip)

	if err == nil && host != "" {
		return host
	}

	return ip
}
