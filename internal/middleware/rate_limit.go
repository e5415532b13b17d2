package middleware

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiterConfig holds the per-client token bucket settings.
type RateLimiterConfig struct {
	RequestsPerSecond float64
	Burst             int
	// TTL is how long an idle client's bucket is kept.
	TTL time.Duration
}

// RateLimiter keeps one token bucket per client IP. Idle buckets are pruned
// while handling requests, so no background goroutine is needed.
type RateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	ttl       time.Duration
	lastPrune time.Time
	now       func() time.Time
}

// NewRateLimiter creates a RateLimiter from config.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.TTL == 0 {
		config.TTL = 3 * time.Minute
	}
	if config.Burst <= 0 {
		config.Burst = 1
	}
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(config.RequestsPerSecond),
		burst:    config.Burst,
		ttl:      config.TTL,
		now:      time.Now,
	}
}

// Allow reports whether a request from key may proceed now.
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastPrune) > l.ttl {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > l.ttl {
				delete(l.visitors, k)
			}
		}
		l.lastPrune = now
	}

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// Handler returns the Fiber middleware, keyed by client IP.
func (l *RateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !l.Allow(c.IP()) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"detail": "Too many requests",
			})
		}
		return c.Next()
	}
}

// Len returns the number of tracked clients.
func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}
