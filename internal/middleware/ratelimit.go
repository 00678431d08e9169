// Package middleware provides HTTP middleware for the broker API.
package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// maxTrackedClients caps the number of tracked IPs so an address-spraying
// client cannot grow the bucket table without bound.
const maxTrackedClients = 100_000

// Eviction cadence for idle client buckets. A bucket idle longer than
// clientIdleAge holds a full burst anyway, so dropping it loses nothing.
const (
	evictEvery    = 5 * time.Minute
	clientIdleAge = 10 * time.Minute
)

// RateLimiter applies a per-client-IP token bucket. Claim traffic is the
// concern here: a claim holds row locks, so one IP hammering the claim
// endpoint must not starve the pool for everyone else.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientBucket
	rate    float64
	burst   float64
}

// clientBucket tracks one IP's remaining tokens. Tokens refill continuously
// at the limiter rate and are capped at the burst size.
type clientBucket struct {
	tokens   float64
	lastSeen time.Time
}

// take refills the bucket for the time elapsed since the last request and
// consumes one token if available.
func (b *clientBucket) take(now time.Time, rate, burst float64) bool {
	b.tokens += now.Sub(b.lastSeen).Seconds() * rate
	if b.tokens > burst {
		b.tokens = burst
	}

	b.lastSeen = now

	if b.tokens < 1 {
		return false
	}

	b.tokens--

	return true
}

// NewRateLimiter creates a RateLimiter allowing ratePerSec sustained
// requests with the given burst per client IP. A background goroutine
// evicts idle buckets until ctx is cancelled.
func NewRateLimiter(ctx context.Context, ratePerSec, burst int) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*clientBucket),
		rate:    float64(ratePerSec),
		burst:   float64(burst),
	}
	go rl.evictLoop(ctx)

	return rl
}

func (rl *RateLimiter) evictLoop(ctx context.Context) {
	ticker := time.NewTicker(evictEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for ip, b := range rl.clients {
				if now.Sub(b.lastSeen) > clientIdleAge {
					delete(rl.clients, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Handler returns Gin middleware enforcing the limit per client IP.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		// c.ClientIP() cannot be forged through X-Forwarded-For here:
		// the router disables proxy header trust via SetTrustedProxies(nil).
		ip := c.ClientIP()
		now := time.Now()

		rl.mu.Lock()
		b, ok := rl.clients[ip]
		if !ok {
			if len(rl.clients) >= maxTrackedClients {
				rl.mu.Unlock()
				respondError(c, http.StatusTooManyRequests, "rate_limited", "too many clients")

				return
			}

			b = &clientBucket{tokens: rl.burst, lastSeen: now}
			rl.clients[ip] = b
		}

		allowed := b.take(now, rl.rate, rl.burst)
		rl.mu.Unlock()

		if !allowed {
			respondError(c, http.StatusTooManyRequests, "rate_limited", "rate limit exceeded")

			return
		}

		c.Next()
	}
}
