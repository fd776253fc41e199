package middleware

import (
	"net/http"
	"sync"
	"time"
)

// Rate limiting for the listing API. Buckets are keyed per tenant and
// client address so one pipeline hammering the error webhook cannot
// starve another tenant's listings.

// unlimitedPaths are exempt operational endpoints.
var unlimitedPaths = map[string]bool{
	"/health":  true,
	"/livez":   true,
	"/metrics": true,
}

// tokenBucket refills continuously at refillRate tokens per second up
// to capacity. The zero time on clock injection keeps it testable.
type tokenBucket struct {
	mu         sync.Mutex
	capacity   int
	tokens     int
	refillRate int
	lastRefill time.Time
}

func newTokenBucket(capacity, refillRate int, now time.Time) *tokenBucket {
	return &tokenBucket{
		capacity:   capacity,
		tokens:     capacity,
		refillRate: refillRate,
		lastRefill: now,
	}
}

// takeAt consumes one token if available after refilling up to now.
func (tb *tokenBucket) takeAt(now time.Time) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	elapsed := now.Sub(tb.lastRefill).Seconds()
	if add := int(elapsed * float64(tb.refillRate)); add > 0 {
		tb.tokens += add
		if tb.tokens > tb.capacity {
			tb.tokens = tb.capacity
		}
		tb.lastRefill = now
	}

	if tb.tokens == 0 {
		return false
	}
	tb.tokens--
	return true
}

// RateLimiter hands out one bucket per key and drops buckets that have
// been idle long enough to be fully refilled anyway.
type RateLimiter struct {
	mu         sync.RWMutex
	buckets    map[string]*tokenBucket
	capacity   int
	refillRate int
}

func NewRateLimiter(capacity, refillRate int) *RateLimiter {
	rl := &RateLimiter{
		buckets:    make(map[string]*tokenBucket),
		capacity:   capacity,
		refillRate: refillRate,
	}

	go rl.cleanup()

	return rl
}

// Allow reports whether the request for key may proceed now.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.bucket(key).takeAt(time.Now())
}

func (rl *RateLimiter) bucket(key string) *tokenBucket {
	rl.mu.RLock()
	b, ok := rl.buckets[key]
	rl.mu.RUnlock()
	if ok {
		return b
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if b, ok := rl.buckets[key]; ok {
		return b
	}
	b = newTokenBucket(rl.capacity, rl.refillRate, time.Now())
	rl.buckets[key] = b
	return b
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		rl.mu.Lock()
		for key, b := range rl.buckets {
			b.mu.Lock()
			idle := now.Sub(b.lastRefill)
			b.mu.Unlock()
			if idle > 10*time.Minute {
				delete(rl.buckets, key)
			}
		}
		rl.mu.Unlock()
	}
}

// RateLimitMiddleware limits requests per tenant + client IP.
// capacity: max tokens in a bucket
// refillRate: tokens added per second
func RateLimitMiddleware(capacity, refillRate int) func(http.Handler) http.Handler {
	limiter := NewRateLimiter(capacity, refillRate)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if unlimitedPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			key := GetTenantFromContext(r.Context()) + ":" + r.RemoteAddr
			if !limiter.Allow(key) {
				w.Header().Set("Retry-After", "60")
				http.Error(w, "rate limit exceeded, please try again later", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
