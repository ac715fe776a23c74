package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"velocars/api/database"
	"velocars/api/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimit enforces a fixed window per (IP, path) on the public tracking
// endpoints. Redis trouble fails open: losing a rate-limit check must never
// cost a tracked view.
func RateLimit(redis *database.RedisClient, logger *zap.Logger, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := utils.ClientIP(c.Request)
		key := fmt.Sprintf("ratelimit:%s:%s", ip, c.FullPath())

		count, err := redis.Incr(c.Request.Context(), key, window)
		if err != nil {
			logger.Warn("rate limit check failed, allowing request", zap.Error(err))
			c.Next()
			return
		}

		if count > int64(limit) {
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}

		c.Next()
	}
}
