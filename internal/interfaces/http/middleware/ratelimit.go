package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/turtacn/cdforge/internal/infrastructure/monitoring/prometheus"
)

// RateLimitConfig holds configuration for the rate limit middleware.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained request rate per client.
	RequestsPerSecond float64
	// BurstSize is the maximum burst above the sustained rate.
	BurstSize int
	// KeyFunc extracts the rate limit key.  Defaults to the client IP.
	KeyFunc func(c *gin.Context) string
	// SkipPaths bypass rate limiting.
	SkipPaths []string
	// IdleTimeout is how long an unused client limiter is kept.
	IdleTimeout time.Duration
}

// DefaultRateLimitConfig returns the default rate limit configuration.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 5,
		BurstSize:         10,
		SkipPaths:         []string{"/healthz", "/readyz", "/metrics"},
		IdleTimeout:       10 * time.Minute,
	}
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ClientLimiter keeps one token bucket per client key.
type ClientLimiter struct {
	limit rate.Limit
	burst int
	idle  time.Duration

	mu        sync.Mutex
	clients   map[string]*clientLimiter
	lastSweep time.Time
	now       func() time.Time
}

// NewClientLimiter creates a limiter allowing rps requests per second with
// the given burst for every distinct key.
func NewClientLimiter(rps float64, burst int, idle time.Duration) *ClientLimiter {
	if burst < 1 {
		burst = 1
	}
	if idle <= 0 {
		idle = 10 * time.Minute
	}
	return &ClientLimiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		idle:    idle,
		clients: make(map[string]*clientLimiter),
		now:     time.Now,
	}
}

// Allow reports whether a request for key may proceed, together with the
// tokens left and the delay until the next token.
func (l *ClientLimiter) Allow(key string) (bool, int, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	cl, ok := l.clients[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = cl
	}
	cl.lastSeen = now

	if cl.limiter.AllowN(now, 1) {
		return true, int(math.Max(0, cl.limiter.TokensAt(now))), 0
	}
	r := cl.limiter.ReserveN(now, 1)
	wait := r.DelayFrom(now)
	r.CancelAt(now)
	return false, 0, wait
}

// Len returns the number of tracked clients.
func (l *ClientLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// sweep drops idle clients.  Called with l.mu held.
func (l *ClientLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.idle {
		return
	}
	l.lastSweep = now
	for key, cl := range l.clients {
		if now.Sub(cl.lastSeen) >= l.idle {
			delete(l.clients, key)
		}
	}
}

// RateLimit returns middleware that rejects clients exceeding their budget
// with 429 and a Retry-After header.
func RateLimit(config RateLimitConfig, metrics *prometheus.AppMetrics) gin.HandlerFunc {
	if metrics == nil {
		metrics = prometheus.NewNoopAppMetrics()
	}
	limiter := NewClientLimiter(config.RequestsPerSecond, config.BurstSize, config.IdleTimeout)
	skipSet := make(map[string]bool, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skipSet[p] = true
	}
	keyFunc := config.KeyFunc
	if keyFunc == nil {
		keyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}
	limit := strconv.Itoa(limiter.burst)

	return func(c *gin.Context) {
		if skipSet[c.Request.URL.Path] {
			c.Next()
			return
		}

		allowed, remaining, wait := limiter.Allow(keyFunc(c))
		c.Header("X-RateLimit-Limit", limit)
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			retryAfter := int(math.Ceil(wait.Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(wait).Unix(), 10))
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			metrics.RateLimitedTotal.WithLabelValues().Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "rate limit exceeded, please retry later",
			})
			return
		}
		c.Next()
	}
}

//Personal.AI order the ending
