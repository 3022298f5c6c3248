// Package redis builds the shared go-redis client used by the check-in lock.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"regdesk/internal/platform/config"
)

const clientName = "regdesk"

// Client is a pinged go-redis client.
type Client struct {
	*redis.Client
}

// New parses cfg.URL, applies pool settings and verifies the server answers
// within cfg.DialTimeout.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("redis URL is empty")
	}
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opts.ClientName = clientName
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping %s: %w", opts.Addr, err)
	}
	return &Client{Client: rdb}, nil
}

// Health is the /healthz probe for the lock backend.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}
