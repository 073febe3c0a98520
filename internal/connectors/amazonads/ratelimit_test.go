package amazonads

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRateLimiter(t *testing.T) {
	rl := NewRateLimiter()
	require.NotNil(t, rl)
	assert.NotNil(t, rl.limiter)
}

func TestRateLimiter_Wait(t *testing.T) {
	rl := NewRateLimiter()

	err := rl.Wait(context.Background())

	assert.NoError(t, err)
}

func TestRateLimiter_Wait_ContextCancelled(t *testing.T) {
	rl := NewRateLimiter()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := rl.Wait(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestRateLimiter_Wait_BurstWithoutBlocking(t *testing.T) {
	rl := NewRateLimiter()

	start := time.Now()
	for i := 0; i < BurstSize; i++ {
		require.NoError(t, rl.Wait(context.Background()), "request %d", i)
	}

	assert.Less(t, time.Since(start), time.Second, "burst should not block")
}

func TestRateLimiter_RecordRateLimitError(t *testing.T) {
	rl := NewRateLimiter()

	rl.RecordRateLimitError(30)

	rl.mu.Lock()
	retryAt := rl.retryAt
	rl.mu.Unlock()

	expectedRetry := time.Now().Add(30 * time.Second)
	assert.WithinDuration(t, expectedRetry, retryAt, 2*time.Second)
}

func TestRateLimiter_RecordRateLimitError_DefaultBackoff(t *testing.T) {
	rl := NewRateLimiter()

	rl.RecordRateLimitError(0)

	rl.mu.Lock()
	retryAt := rl.retryAt
	rl.mu.Unlock()

	expectedRetry := time.Now().Add(60 * time.Second)
	assert.WithinDuration(t, expectedRetry, retryAt, 2*time.Second)
}
