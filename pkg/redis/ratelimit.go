package redis

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter implements sliding window rate limiting using Redis, shared
// by every process that talks to the same market data provider
// ⭐ SSOT: 분산 레이트 리밋은 여기서만
type RateLimiter struct {
	client *Client
	prefix string
}

// RateLimitConfig defines rate limit parameters
type RateLimitConfig struct {
	Key    string        // Unique identifier (e.g., "yahoo")
	Limit  int           // Maximum requests allowed
	Window time.Duration // Time window
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(client *Client, prefix string) *RateLimiter {
	return &RateLimiter{
		client: client,
		prefix: prefix,
	}
}

// slidingWindow trims the window, then admits the request if under limit.
// Returns {allowed, remaining, retry_after_ms}; members carry a sequence
// suffix so same-millisecond requests from different callers all count.
var slidingWindow = redis.NewScript(`
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window_ms = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local member = ARGV[4]

	redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window_ms)

	local count = redis.call('ZCARD', key)
	if count < limit then
		redis.call('ZADD', key, now, member)
		redis.call('PEXPIRE', key, window_ms)
		return {1, limit - count - 1, 0}
	end

	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
	local retry = window_ms
	if oldest[2] then
		retry = tonumber(oldest[2]) + window_ms - now
	end
	return {0, 0, retry}
`)

// seq disambiguates members added within the same millisecond
var seq atomic.Uint64

// Allow checks if a request is allowed under the rate limit.
// Returns (allowed, remaining, error).
func (r *RateLimiter) Allow(ctx context.Context, cfg RateLimitConfig) (bool, int, error) {
	allowed, remaining, _, err := r.allow(ctx, cfg)
	return allowed, remaining, err
}

func (r *RateLimiter) allow(ctx context.Context, cfg RateLimitConfig) (bool, int, time.Duration, error) {
	if !r.client.Enabled() {
		return true, cfg.Limit, 0, nil
	}

	now := time.Now().UnixMilli()
	member := fmt.Sprintf("%d-%d", now, seq.Add(1))

	result, err := slidingWindow.Run(ctx, r.client.rdb, []string{r.key(cfg)},
		now,
		cfg.Window.Milliseconds(),
		cfg.Limit,
		member,
	).Int64Slice()
	if err != nil {
		return false, 0, 0, fmt.Errorf("rate limit script failed: %w", err)
	}
	if len(result) != 3 {
		return false, 0, 0, fmt.Errorf("rate limit script returned %d values", len(result))
	}

	return result[0] == 1, int(result[1]), time.Duration(result[2]) * time.Millisecond, nil
}

func (r *RateLimiter) key(cfg RateLimitConfig) string {
	return fmt.Sprintf("%s:ratelimit:%s", r.prefix, cfg.Key)
}

// Wait blocks until a request is allowed or ctx ends. It sleeps until the
// oldest request leaves the window (at least minWait) between attempts.
func (r *RateLimiter) Wait(ctx context.Context, cfg RateLimitConfig) error {
	for {
		allowed, _, retry, err := r.allow(ctx, cfg)
		if err != nil {
			return err
		}
		if allowed {
			return nil
		}
		if retry < minWait {
			retry = minWait
		}

		timer := time.NewTimer(retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// minWait bounds the polling rate of Wait
const minWait = 10 * time.Millisecond

// YahooRateLimit is a conservative shared budget for the Yahoo chart API
var YahooRateLimit = RateLimitConfig{
	Key:    "yahoo",
	Limit:  30,
	Window: 10 * time.Second,
}
