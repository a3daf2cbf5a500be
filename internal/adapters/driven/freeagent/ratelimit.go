package freeagent

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultRequestsPerMinute is the per-owner budget when none is configured.
const DefaultRequestsPerMinute = 120

// RateLimiter keeps one token bucket per owner.
// It never blocks: over-limit requests fail fast.
type RateLimiter struct {
	mu        sync.Mutex
	perMinute int
	limiters  map[string]*rate.Limiter
	retryAt   map[string]time.Time
	now       func() time.Time
}

// NewRateLimiter creates a limiter allowing perMinute requests per owner,
// with a burst of the same size.
func NewRateLimiter(perMinute int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = DefaultRequestsPerMinute
	}
	return &RateLimiter{
		perMinute: perMinute,
		limiters:  make(map[string]*rate.Limiter),
		retryAt:   make(map[string]time.Time),
		now:       time.Now,
	}
}

func (r *RateLimiter) limiter(owner string) *rate.Limiter {
	l, ok := r.limiters[owner]
	if !ok {
		l = rate.NewLimiter(rate.Every(time.Minute/time.Duration(r.perMinute)), r.perMinute)
		r.limiters[owner] = l
	}
	return l
}

// Allow reports whether owner may make a request now and consumes a token.
// It also respects any backoff set by RecordRateLimitError.
func (r *RateLimiter) Allow(owner string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if now.Before(r.retryAt[owner]) {
		return false
	}
	return r.limiter(owner).AllowN(now, 1)
}

// RecordRateLimitError blocks owner until the remote's Retry-After elapses.
// Call this when the remote answers 429.
func (r *RateLimiter) RecordRateLimitError(owner string, retryAfter time.Duration) {
	if retryAfter <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.retryAt[owner] = r.now().Add(retryAfter)
}
