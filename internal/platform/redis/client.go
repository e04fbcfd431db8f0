// Package redis builds the shared cache client from configuration.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"slfcert/internal/platform/config"
)

const defaultPingTimeout = 5 * time.Second

// Client is the shared inspection cache connection. It embeds a
// UniversalClient so a single node and a cluster look the same to callers.
type Client struct {
	redis.UniversalClient
}

// New connects to cfg.URL and verifies the connection. It returns a nil
// client and no error when no URL is configured.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	parsed, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        []string{parsed.Addr},
		Username:     parsed.Username,
		Password:     parsed.Password,
		DB:           parsed.DB,
		TLSConfig:    parsed.TLSConfig,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Client{UniversalClient: client}, nil
}

// Health pings the server.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}
