package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLimiterIsPerProvider(t *testing.T) {
	l := NewProviderLimiterWithDefaults()

	a := l.GetLimiter("RealTimeTrains")
	b := l.GetLimiter("TransportAPI")
	assert.Same(t, a, l.GetLimiter("RealTimeTrains"))
	assert.NotSame(t, a, b)
	assert.Equal(t, DefaultConfig().BurstSize, a.Burst())
}

func TestSetProviderLimit(t *testing.T) {
	l := NewProviderLimiterWithDefaults()
	l.SetProviderLimit("TransportAPI", 1, 2)

	assert.True(t, l.GetLimiter("TransportAPI").Allow())
	assert.True(t, l.GetLimiter("TransportAPI").Allow())
	assert.False(t, l.GetLimiter("TransportAPI").Allow())
	assert.True(t, l.GetLimiter("RealTimeTrains").Allow())
}

func TestWaitHonoursContext(t *testing.T) {
	l := NewProviderLimiter(RateLimitConfig{RequestsPerSecond: 0.001, BurstSize: 1})
	require.NoError(t, l.Wait(context.Background(), "slow"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := l.Wait(ctx, "slow")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit: ")
}
