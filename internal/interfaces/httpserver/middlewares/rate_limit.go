package middlewares

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// simple token bucket per client IP.
type rateBucket struct {
	tokens     float64
	lastRefill time.Time
}

// RateLimit limits requests per client IP within a sliding window. Each route
// group gets its own bucket map so proxy traffic cannot starve resolves.
func RateLimit(limitPerMinute float64) gin.HandlerFunc {
	var (
		mu      sync.Mutex
		buckets = make(map[string]*rateBucket)
		rate    = limitPerMinute / 60.0
	)

	return func(c *gin.Context) {
		key := clientIP(c.ClientIP())

		mu.Lock()
		bucket, ok := buckets[key]
		now := time.Now()
		if !ok {
			bucket = &rateBucket{tokens: limitPerMinute, lastRefill: now}
			buckets[key] = bucket
		}

		elapsed := now.Sub(bucket.lastRefill).Seconds()
		bucket.tokens = min(limitPerMinute, bucket.tokens+elapsed*rate)
		bucket.lastRefill = now

		if bucket.tokens < 1 {
			mu.Unlock()
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "Too many requests. Please try again later.",
			})
			return
		}
		bucket.tokens -= 1
		mu.Unlock()

		c.Next()
	}
}

// Normalize IPv6-mapped IPv4 etc.
func clientIP(raw string) string {
	if raw == "" {
		return "anonymous"
	}
	if ip := net.ParseIP(raw); ip != nil {
		return ip.String()
	}
	return raw
}
