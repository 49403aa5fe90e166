// Package redis opens the go-redis client behind the redis preference store.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"reviewapp/internal/platform/config"
	"reviewapp/pkg/platform/sentinel"
)

// Client is a pinged go-redis client.
type Client struct {
	*redis.Client
}

// New connects using cfg. A blank URL means Redis is not configured and
// yields (nil, nil). An unreachable server is reported as
// sentinel.ErrUnavailable.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	applyConfig(opts, cfg)

	c := &Client{Client: redis.NewClient(opts)}
	if err := c.Health(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

func applyConfig(opts *redis.Options, cfg config.RedisConfig) {
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	opts.MinIdleConns = cfg.MinIdleConns
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}
}

// Health pings the server.
func (c *Client) Health(ctx context.Context) error {
	if err := c.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}
