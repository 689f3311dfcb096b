package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Timeline reads fall back to Postgres, so Redis calls fail fast.
const (
	dialTimeout = 2 * time.Second
	ioTimeout   = 500 * time.Millisecond
	clientName  = "warbler"
)

// Client is the shared connection pool behind the timeline cache.
type Client struct {
	*redis.Client
}

// NewClient builds a pool for redisURL (redis://[:password@]host:port[/db]).
// It does not dial; use PingContext to check reachability.
func NewClient(redisURL string) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.ClientName = clientName
	opts.DialTimeout = dialTimeout
	opts.ReadTimeout = ioTimeout
	opts.WriteTimeout = ioTimeout
	opts.MaxRetries = 1

	return &Client{Client: redis.NewClient(opts)}, nil
}

// PingContext reports whether Redis answers. It satisfies the health check's Pinger.
func (c *Client) PingContext(ctx context.Context) error {
	if err := c.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping %s: %w", c.Options().Addr, err)
	}
	return nil
}
