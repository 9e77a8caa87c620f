package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

type RateLimiterConfig struct {
	Rate  rate.Limit
	Burst int
	// ClientTTL bounds how long an idle client keeps its token bucket
	// before the entry is evicted.
	ClientTTL time.Duration
}

// RateLimiter keeps one token bucket per client IP so a single noisy
// client cannot exhaust the budget for everyone else.
type RateLimiter struct {
	config  RateLimiterConfig
	clients *cache.Cache
}

func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.ClientTTL <= 0 {
		config.ClientTTL = 10 * time.Minute
	}
	return &RateLimiter{
		config:  config,
		clients: cache.New(config.ClientTTL, 2*config.ClientTTL),
	}
}

// limiterFor returns the client's bucket, creating it on first sight.
// Add loses the race against a concurrent first request from the same
// client, in which case the winner's bucket is used.
func (rl *RateLimiter) limiterFor(clientIP string) *rate.Limiter {
	if v, ok := rl.clients.Get(clientIP); ok {
		return v.(*rate.Limiter)
	}
	limiter := rate.NewLimiter(rl.config.Rate, rl.config.Burst)
	if err := rl.clients.Add(clientIP, limiter, cache.DefaultExpiration); err != nil {
		if v, ok := rl.clients.Get(clientIP); ok {
			return v.(*rate.Limiter)
		}
	}
	return limiter
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.limiterFor(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
