package middleware

import (
	"net/http"
	"time"

	"github.com/foundersportal/portal/backend/go-services/pkg/metrics"
	"github.com/foundersportal/portal/backend/go-services/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RedisRateLimitMiddleware provides a coarse fixed-window Redis-backed limiter.
// Keying: prefers `claims.sub` when present, otherwise uses client IP.
// allowed per window = floor(rps*windowSeconds)+burst.
func RedisRateLimitMiddleware(client *redis.Client, rps float64, burst int, win time.Duration) gin.HandlerFunc {
	if client == nil {
		return RateLimitMiddleware(rps, burst)
	}
	windowSeconds := int(win.Seconds())
	if windowSeconds <= 0 {
		windowSeconds = 1
	}
	allowedPerWindow := int(rps*float64(windowSeconds)) + burst
	counter := NewRedisWindowCounter(client)
	return func(c *gin.Context) {
		cnt, err := counter.Incr(c.Request.Context(), rateKey(c), time.Duration(windowSeconds)*time.Second)
		if err != nil {
			response.Fail(c, http.StatusInternalServerError, "Rate limit check failed")
			return
		}
		if cnt > allowedPerWindow {
			c.Header("Retry-After", formatSeconds(time.Duration(windowSeconds)*time.Second))
			metrics.RateLimitRejected.WithLabelValues("redis").Inc()
			response.Fail(c, http.StatusTooManyRequests, rateLimitMessage)
			return
		}
		metrics.RateLimitAllowed.WithLabelValues("redis").Inc()
		c.Next()
	}
}
