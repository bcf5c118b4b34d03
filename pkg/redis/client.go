package redis

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wonny/finpulse/pkg/config"
)

// Cache states reported by Status
const (
	StatusDisabled    = "disabled"
	StatusOK          = "ok"
	StatusUnavailable = "unavailable"
)

// Client wraps the Redis client. A disabled client is a valid no-op: the
// cache misses and the rate limiter always allows.
// ⭐ SSOT: Redis 연결은 여기서만 관리
type Client struct {
	rdb     *redis.Client
	enabled bool
}

// New connects to Redis and verifies the connection within 3s
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if !cfg.Enabled {
		return &Client{}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &Client{
		rdb:     rdb,
		enabled: true,
	}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	if c.rdb != nil {
		return c.rdb.Close()
	}
	return nil
}

// Enabled returns whether Redis is enabled
func (c *Client) Enabled() bool {
	return c.enabled
}

// Status pings Redis and reports disabled, ok or unavailable
func (c *Client) Status(ctx context.Context) string {
	if !c.enabled {
		return StatusDisabled
	}
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return StatusUnavailable
	}
	return StatusOK
}
