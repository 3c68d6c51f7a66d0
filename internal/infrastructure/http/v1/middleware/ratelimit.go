package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"warebase/internal/infrastructure/cache"
	"warebase/pkg/logger"
)

// RateLimit throttles requests per client IP using a fixed window
// counter in the cache.
func RateLimit(client cache.Client, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := "rate-limit:" + c.ClientIP()

		count, err := client.GetInt(ctx, key)
		if err == cache.ErrCacheMiss {
			if err := client.Set(ctx, key, 1, window); err != nil {
				logger.Warn(ctx, "rate limit store failed", "error", err)
				c.Next()
				return
			}
			c.Header("X-RateLimit-Remaining", strconv.Itoa(limit-1))
			c.Next()
			return
		}
		if err != nil {
			// Cache failures must not take the API down
			logger.Warn(ctx, "rate limit lookup failed", "error", err)
			c.Next()
			return
		}

		if count >= limit {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    "RATE_LIMITED",
				"message": "Rate limit exceeded",
			})
			return
		}

		if err := client.Incr(ctx, key); err != nil {
			logger.Warn(ctx, "rate limit increment failed", "error", err)
		}
		c.Header("X-RateLimit-Remaining", strconv.Itoa(limit-count-1))
		c.Next()
	}
}
