package redisclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const idempotencyTTL = 24 * time.Hour

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// GetIdempotentResult returns a previously stored checkout result for the
// key, or nil when the key is unseen.
func (c *Client) GetIdempotentResult(ctx context.Context, key string) ([]byte, error) {
	data, err := c.rdb.Get(ctx, "idempotency:"+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// SetIdempotentResult stores a checkout result under its idempotency key
func (c *Client) SetIdempotentResult(ctx context.Context, key string, value []byte) error {
	return c.rdb.Set(ctx, "idempotency:"+key, value, idempotencyTTL).Err()
}

// CacheGet returns a cached value, or nil on a miss
func (c *Client) CacheGet(ctx context.Context, key string) ([]byte, error) {
	data, err := c.rdb.Get(ctx, "cache:"+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// CacheSet stores a value with a TTL
func (c *Client) CacheSet(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, "cache:"+key, value, ttl).Err()
}

// CacheInvalidate drops a cached value
func (c *Client) CacheInvalidate(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, "cache:"+key).Err()
}
