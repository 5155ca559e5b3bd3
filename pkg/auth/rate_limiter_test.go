package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBucketLimiterAllowsBurst(t *testing.T) {
	limiter := NewIPRateLimiter(3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, allowed)

	// Another key has its own bucket
	allowed, err = limiter.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRateLimiterClampsNonPositiveRate(t *testing.T) {
	ctx := context.Background()

	for _, rate := range []int{0, -5} {
		ip := NewIPRateLimiter(rate)
		user := NewUserRateLimiter(rate)

		// Clamped to one request per minute rather than panicking
		allowed, err := ip.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = ip.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.False(t, allowed)

		allowed, err = user.Allow(ctx, "user-1")
		require.NoError(t, err)
		assert.True(t, allowed)
	}
}

func TestPerMinuteRate(t *testing.T) {
	tokens, interval := perMinuteRate(60)
	assert.Equal(t, 60, tokens)
	assert.Equal(t, time.Second, interval)

	tokens, interval = perMinuteRate(0)
	assert.Equal(t, 1, tokens)
	assert.Equal(t, time.Minute, interval)
}

func TestRateLimiterReset(t *testing.T) {
	limiter := NewIPRateLimiter(1)
	ctx := context.Background()

	allowed, err := limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, err = limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	require.False(t, allowed)

	require.NoError(t, limiter.Reset(ctx, "10.0.0.1"))

	allowed, err = limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, allowed)
}
