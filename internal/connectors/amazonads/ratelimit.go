package amazonads

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Rate limit configuration for the Amazon Ads API.
// The API throttles per account with undocumented, load-dependent quotas and
// signals pressure through 429 responses. We use conservative limits and let
// RecordRateLimitError extend the gap when throttled anyway.
const (
	// RequestsPerSecond is the sustained rate limit.
	RequestsPerSecond = 2.0
	// BurstSize is the maximum burst size.
	BurstSize = 5
)

// RateLimiter provides rate limiting for Amazon Ads API requests.
// It uses a token bucket algorithm with optional backoff for 429 responses.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
}

// NewRateLimiter creates a new rate limiter for the Ads API.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(RequestsPerSecond), BurstSize),
	}
}

// Wait blocks until a request can be made without exceeding the rate limit.
// It also respects any backoff period set by RecordRateLimitError.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if time.Now().Before(retryAt) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(retryAt)):
		}
	}

	return r.limiter.Wait(ctx)
}

// RecordRateLimitError records a rate limit error and sets a backoff period.
// Call this when receiving a 429 response. The retryAfterSeconds parameter
// should come from the Retry-After header.
func (r *RateLimiter) RecordRateLimitError(retryAfterSeconds int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if retryAfterSeconds <= 0 {
		// Default backoff: 60 seconds
		retryAfterSeconds = 60
	}

	r.retryAt = time.Now().Add(time.Duration(retryAfterSeconds) * time.Second)
}
