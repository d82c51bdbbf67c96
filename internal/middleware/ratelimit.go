package middleware

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"

	"github.com/fairyhunter13/coupon-api/internal/model"
)

// visitor holds one client's token bucket and when it was last used.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a process-local, per-client-IP token bucket limiter.
// Idle buckets are evicted opportunistically during lookups.
// It is safe for concurrent use.
type RateLimiter struct {
	rps   rate.Limit
	burst int
	ttl   time.Duration

	mu          sync.Mutex
	visitors    map[string]*visitor
	lastCleanup time.Time
	now         func() time.Time
}

// NewRateLimiter creates a limiter allowing rps requests per second with the given burst per IP.
// A non-positive rps disables limiting.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		ttl:      10 * time.Minute,
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}
}

// Handler returns the fiber middleware. Rejected requests get a 429 envelope.
func (rl *RateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rl.rps <= 0 {
			return c.Next()
		}
		if !rl.limiter(c.IP()).AllowN(rl.now(), 1) {
			LoggerFrom(c).Warn().Str("remote_ip", c.IP()).Msg("rate limit exceeded")
			return c.Status(fiber.StatusTooManyRequests).
				JSON(model.NewErrorResponse(fiber.StatusTooManyRequests, "Too many requests"))
		}
		return c.Next()
	}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastCleanup) > rl.ttl {
		for k, v := range rl.visitors {
			if now.Sub(v.lastSeen) > rl.ttl {
				delete(rl.visitors, k)
			}
		}
		rl.lastCleanup = now
	}

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter
}
