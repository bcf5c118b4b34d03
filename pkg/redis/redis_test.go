package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/finpulse/pkg/config"
)

func disabledClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(context.Background(), config.RedisConfig{Enabled: false})
	require.NoError(t, err)
	return client
}

func TestNewClient_Disabled(t *testing.T) {
	client := disabledClient(t)
	assert.False(t, client.Enabled())
	assert.Equal(t, StatusDisabled, client.Status(context.Background()))
	assert.NoError(t, client.Close())
}

func TestRateLimiter_Disabled(t *testing.T) {
	limiter := NewRateLimiter(disabledClient(t), "test")

	allowed, remaining, err := limiter.Allow(context.Background(), YahooRateLimit)
	require.NoError(t, err)
	assert.True(t, allowed, "requests are allowed when redis is disabled")
	assert.Equal(t, YahooRateLimit.Limit, remaining)

	assert.NoError(t, limiter.Wait(context.Background(), YahooRateLimit))
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(disabledClient(t), "test")
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "key", "value", DefaultTTL))

	var result string
	found, err := cache.Get(ctx, "key", &result)
	require.NoError(t, err)
	assert.False(t, found, "cache is a no-op when redis is disabled")
	assert.NoError(t, cache.Delete(ctx, "key"))
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "snapshot:AAPL", SnapshotKey("aapl"))
	assert.Equal(t, "opportunities:abc", OpportunitiesKey("abc"))
	assert.Equal(t, "overview:abc", OverviewKey("abc"))
}

func TestNewClient_Unreachable(t *testing.T) {
	// nothing listens on port 1
	_, err := New(context.Background(), config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: "1"})
	assert.Error(t, err)
}

func TestRateLimiterKey(t *testing.T) {
	limiter := NewRateLimiter(disabledClient(t), "finpulse")
	assert.Equal(t, "finpulse:ratelimit:yahoo", limiter.key(YahooRateLimit))
}
