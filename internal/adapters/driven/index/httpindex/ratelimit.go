package httpindex

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter provides rate limiting for indexer requests.
// It uses a token bucket algorithm with a backoff window for 429 responses.
type RateLimiter struct {
	mu             sync.Mutex
	limiter        *rate.Limiter
	retryAt        time.Time
	defaultBackoff time.Duration
}

// NewRateLimiter creates a limiter allowing requestsPerSecond with the given burst.
// defaultBackoff applies when a 429 response carries no usable Retry-After.
func NewRateLimiter(requestsPerSecond float64, burst int, defaultBackoff time.Duration) *RateLimiter {
	if defaultBackoff <= 0 {
		defaultBackoff = DefaultBackoff
	}
	return &RateLimiter{
		limiter:        rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
		defaultBackoff: defaultBackoff,
	}
}

// Wait blocks until a request can be made without exceeding the rate limit.
// It also respects any backoff period set by RecordRateLimitError.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if wait := time.Until(retryAt); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return r.limiter.Wait(ctx)
}

// RecordRateLimitError sets a backoff period after a 429 response.
// A non-positive retryAfter selects the default backoff.
func (r *RateLimiter) RecordRateLimitError(retryAfter time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if retryAfter <= 0 {
		retryAfter = r.defaultBackoff
	}
	r.retryAt = time.Now().Add(retryAfter)
}
