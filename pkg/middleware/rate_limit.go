package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/harbourstay/harbourstay/backend/cms-api/pkg/metrics"
	"golang.org/x/time/rate"
)

// Limiter is an in-memory token-bucket limiter keyed by caller.
type Limiter struct {
	rps   float64
	burst int
	store sync.Map // map[string]*rate.Limiter
}

func NewLimiter(rps float64, burst int) *Limiter {
	return &Limiter{rps: rps, burst: burst}
}

// get returns (and lazily creates) the bucket for key.
func (l *Limiter) get(key string) *rate.Limiter {
	if v, ok := l.store.Load(key); ok {
		return v.(*rate.Limiter)
	}
	v, _ := l.store.LoadOrStore(key, rate.NewLimiter(rate.Limit(l.rps), l.burst))
	return v.(*rate.Limiter)
}

// limitKey prefers the verified subject, falling back to the client IP.
func limitKey(c *gin.Context) string {
	if sub := c.GetString(SubjectKey); sub != "" {
		return "sub:" + sub
	}
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}

// Middleware enforces the limit and answers 429 once a caller's bucket is empty.
func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.get(limitKey(c)).Allow() {
			c.Header("Retry-After", "1")
			metrics.RateLimitRejected.WithLabelValues("memory").Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			return
		}
		metrics.RateLimitAllowed.WithLabelValues("memory").Inc()
		c.Next()
	}
}

// RateLimitMiddleware returns a middleware backed by a fresh Limiter.
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	return NewLimiter(rps, burst).Middleware()
}
