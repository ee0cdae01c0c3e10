package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harbourstay/harbourstay/backend/cms-api/pkg/logger"
	"github.com/harbourstay/harbourstay/backend/cms-api/pkg/metrics"
	"github.com/redis/go-redis/v9"
)

// RedisRateLimitMiddleware counts requests per caller in fixed windows kept
// in Redis, so every API instance shares one budget per caller. A caller may
// make floor(rps*window)+burst requests per window. A nil client falls back
// to the in-memory limiter.
func RedisRateLimitMiddleware(client *redis.Client, rps float64, burst int, window time.Duration) gin.HandlerFunc {
	if client == nil {
		return RateLimitMiddleware(rps, burst)
	}
	if window < time.Second {
		window = time.Second
	}
	secs := int64(window / time.Second)
	limit := int64(rps*float64(secs)) + int64(burst)
	retryAfter := strconv.FormatInt(secs, 10)

	return func(c *gin.Context) {
		key := "cms:rl:" + limitKey(c) + ":" + strconv.FormatInt(time.Now().Unix()/secs, 10)

		var incr *redis.IntCmd
		_, err := client.TxPipelined(c.Request.Context(), func(p redis.Pipeliner) error {
			incr = p.Incr(c.Request.Context(), key)
			p.Expire(c.Request.Context(), key, window+time.Second)
			return nil
		})
		if err != nil {
			logger.Errorf("rate limit: redis %s: %v", key, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		if incr.Val() > limit {
			c.Header("Retry-After", retryAfter)
			metrics.RateLimitRejected.WithLabelValues("redis").Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			return
		}
		metrics.RateLimitAllowed.WithLabelValues("redis").Inc()
		c.Next()
	}
}
