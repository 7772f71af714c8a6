package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"task_manager/internal/logger"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

// RedisLimiter is a fixed-window limiter backed by Redis INCR/EXPIRE.
// A nil limiter or one without a client lets every request through.
type RedisLimiter struct {
	client *redis.Client
}

func NewRedisLimiter(client *redis.Client) *RedisLimiter {
	return &RedisLimiter{client: client}
}

// InitRedisRateLimiter connects to addr. An empty addr or a failed ping
// yields a fail-open limiter so the API stays available without Redis.
func InitRedisRateLimiter(addr, password string, db int) *RedisLimiter {
	if addr == "" {
		return &RedisLimiter{}
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, rate limiting disabled", "addr", addr, "error", err)
		_ = client.Close()
		return &RedisLimiter{}
	}
	logger.Info("redis rate limiter connected", "addr", addr)
	return &RedisLimiter{client: client}
}

func (l *RedisLimiter) Enabled() bool {
	return l != nil && l.client != nil
}

func (l *RedisLimiter) Close() error {
	if !l.Enabled() {
		return nil
	}
	return l.client.Close()
}

// ByIP limits each client IP to maxRequests per window.
// key format: rl:<window_seconds>:<ip>
func (l *RedisLimiter) ByIP(maxRequests int, window time.Duration) gin.HandlerFunc {
	return l.limit(maxRequests, window, "rl", "", func(c *gin.Context) string {
		return c.ClientIP()
	})
}

// BySubject limits write requests per authenticated subject, falling back
// to the client IP when auth is off.
// key format: wrl:<window_seconds>:<subject>
func (l *RedisLimiter) BySubject(maxRequests int, window time.Duration) gin.HandlerFunc {
	return l.limit(maxRequests, window, "wrl", "write:", func(c *gin.Context) string {
		if sub := c.GetString(SubjectKey); sub != "" {
			return "sub:" + sub
		}
		return "ip:" + c.ClientIP()
	})
}

func (l *RedisLimiter) limit(maxRequests int, window time.Duration, prefix, label string, ident func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Enabled() || maxRequests <= 0 {
			c.Next()
			return
		}

		key := prefix + ":" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + ident(c)
		ctx := c.Request.Context()

		val, err := l.client.Incr(ctx, key).Result()
		if err != nil {
			// fail-open
			c.Header("X-RateLimit-Error", "redis-error")
			c.Next()
			return
		}

		if val == 1 {
			if err := l.client.Expire(ctx, key, window).Err(); err != nil {
				// a counter without TTL would block this client for good
				l.client.Del(ctx, key)
				c.Header("X-RateLimit-Error", "redis-error")
				c.Next()
				return
			}
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(maxRequests)-val), 10))

		endpoint := label + routeLabel(c)
		if val > int64(maxRequests) {
			l.ensureTTL(ctx, key, window)
			RLBlocked.WithLabelValues(endpoint).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message":     "rate limit exceeded",
				"retry_after": int(window.Seconds()),
			})
			return
		}

		RLRequests.WithLabelValues(endpoint).Inc()
		c.Next()
	}
}

// ensureTTL restores the expiry on a counter left without one, e.g. when
// the EXPIRE after the first INCR was lost.
func (l *RedisLimiter) ensureTTL(ctx context.Context, key string, window time.Duration) {
	ttl, err := l.client.TTL(ctx, key).Result()
	if err != nil || ttl >= 0 {
		return
	}
	if err := l.client.Expire(ctx, key, window).Err(); err != nil {
		logger.Warn("rate limiter: failed to restore key ttl", "key", key, "error", err)
	}
}
