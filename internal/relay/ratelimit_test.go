package relay

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_BurstThenDeny(t *testing.T) {
	t.Parallel()

	// 1 request/second with burst 2: two immediate requests pass, the third
	// is denied.
	limiter := NewRateLimiter(1, 2)

	assert.True(t, limiter.Allow("endpoint"))
	assert.True(t, limiter.Allow("endpoint"))
	assert.False(t, limiter.Allow("endpoint"))
}

func TestRateLimiter_EndpointsIndependent(t *testing.T) {
	t.Parallel()

	limiter := NewRateLimiter(1, 1)

	assert.True(t, limiter.Allow("first"))
	assert.False(t, limiter.Allow("first"))

	// A different endpoint has its own bucket.
	assert.True(t, limiter.Allow("second"))
}

func TestRateLimiter_WaitHonorsContext(t *testing.T) {
	t.Parallel()

	limiter := NewRateLimiter(0.001, 1)
	require.NoError(t, limiter.Wait(context.Background(), "endpoint"))

	// The bucket is empty and refills far too slowly; Wait must give up with
	// the context.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := limiter.Wait(ctx, "endpoint")
	assert.Error(t, err)
}

func TestDefaultRateLimiter(t *testing.T) {
	t.Parallel()

	limiter := DefaultRateLimiter()

	// Burst of 10 immediate requests passes.
	for i := 0; i < 10; i++ {
		assert.True(t, limiter.Allow("endpoint"), "request %d", i)
	}
	assert.False(t, limiter.Allow("endpoint"))
}

func TestRateLimiter_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	limiter := NewRateLimiter(1000, 1000)

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 50; j++ {
				limiter.Allow("shared")
			}
		}()
	}

	for i := 0; i < 8; i++ {
		<-done
	}
}
