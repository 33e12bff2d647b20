package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/yigit/paperarchive/internal/app/models/dto"
	"github.com/yigit/paperarchive/internal/pkg/logger"
	"github.com/yigit/paperarchive/internal/pkg/metrics"
)

// WindowCounter counts hits on key within the current window
type WindowCounter interface {
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RedisCounter is a WindowCounter backed by INCR + EXPIRE
type RedisCounter struct {
	client *redis.Client
}

// NewRedisCounter creates a new RedisCounter
func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client}
}

// Increment bumps key and sets its expiry when the key is new
func (r *RedisCounter) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// RateLimiter is a per-IP fixed window rate limiter shared across instances
// through its WindowCounter.
type RateLimiter struct {
	counter WindowCounter
	limit   int
	window  time.Duration
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewRateLimiter creates a RateLimiter allowing limit requests per window
func NewRateLimiter(counter WindowCounter, limit int, window time.Duration, m *metrics.Metrics) *RateLimiter {
	return &RateLimiter{
		counter: counter,
		limit:   limit,
		window:  window,
		metrics: m,
		now:     time.Now,
	}
}

// Middleware returns a Gin middleware that rate-limits requests by IP.
// Counter failures let the request through.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		slot := rl.now().UnixNano() / int64(rl.window)
		key := fmt.Sprintf("ratelimit:%s:%d", c.ClientIP(), slot)

		count, err := rl.counter.Increment(c.Request.Context(), key, rl.window)
		if err != nil {
			logger.Warn().Err(err).Msg("Rate limiter unavailable")
			c.Next()
			return
		}

		remaining := int64(rl.limit) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(rl.limit) {
			rl.metrics.RecordRateLimited()
			c.Header("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponse(
				dto.NewErrorDetail(dto.ErrorCodeRateLimited, "Too many requests, please try again later"),
			))
			return
		}

		c.Next()
	}
}
