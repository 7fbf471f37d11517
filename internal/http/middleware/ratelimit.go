// Per-identity token-bucket rate limiting.
//
// The limiter is process-local and meant for edge abuse control on a
// single-instance deployment; a horizontally scaled setup needs a shared
// limiter instead. Buckets are keyed by customer when the request carries
// one and by client IP otherwise, and idempotent replays bypass limiting
// entirely so retries of completed writes never burn tokens.

package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Idle buckets are evicted after this long, during the opportunistic sweep
// that runs every gcEvery lookups.
const (
	bucketIdleTTL = 10 * time.Minute
	gcEvery       = 5000
)

// keyFunc maps a request to the identity string that keys its bucket.
type keyFunc func(*gin.Context) string

// KeyByCustomerOrIP keys by customer identity (context "customerID" or the
// X-Customer-ID hint header) with a client-IP fallback. Keys carry a
// namespace prefix so a customer ID can never collide with an IP literal.
func KeyByCustomerOrIP() keyFunc {
	return func(c *gin.Context) string {
		if cid := customerIDFromCtx(c); cid != "" {
			return "customer:" + cid
		}
		return "ip:" + c.ClientIP()
	}
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter holds one token bucket per identity. Safe for concurrent use.
type RateLimiter struct {
	rps   rate.Limit
	burst int
	keyFn keyFunc

	mu      sync.Mutex
	buckets map[string]*bucket
	ttl     time.Duration
	lookups uint64
}

// NewRateLimiter builds a limiter replenishing rps tokens per second with
// the given burst size (coerced to at least 1). Install it with Handler.
func NewRateLimiter(rps float64, burst int, keyFn keyFunc) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		keyFn:   keyFn,
		buckets: make(map[string]*bucket),
		ttl:     bucketIdleTTL,
	}
}

// getBucket fetches or creates the limiter for key. The idle sweep runs
// before the fetch so a stale bucket is evicted even when it is the one
// being requested.
func (rl *RateLimiter) getBucket(key string) *rate.Limiter {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.lookups++
	if rl.lookups >= gcEvery {
		for k, b := range rl.buckets {
			if now.Sub(b.lastSeen) >= rl.ttl {
				delete(rl.buckets, k)
			}
		}
		rl.lookups = 0
	}

	if b, exists := rl.buckets[key]; exists {
		b.lastSeen = now
		return b.limiter
	}

	lim := rate.NewLimiter(rl.rps, rl.burst)
	rl.buckets[key] = &bucket{limiter: lim, lastSeen: now}
	return lim
}

// IsRateBypass reports whether IdempotencyValidator marked the request as a
// replay of a completed write; Handler serves those without consuming tokens.
func IsRateBypass(c *gin.Context) bool {
	v, found := c.Get(ctxKeyRateBypass)
	if !found {
		return false
	}
	b, _ := v.(bool)
	return b
}

// Handler enforces the per-key limit, answering 429 with the standard error
// envelope and a Retry-After header when the bucket is empty.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsRateBypass(c) {
			c.Next()
			return
		}

		if rl.getBucket(rl.keyFn(c)).Allow() {
			c.Next()
			return
		}

		c.Header("Retry-After", "1")
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"request_id": c.Writer.Header().Get("X-Request-ID"),
			"code":       "rate_limited",
			"message":    "rate limit exceeded",
		})
	}
}
