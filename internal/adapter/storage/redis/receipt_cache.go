package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ReceiptCache implements ports.ReceiptCache using Redis. Postgres remains
// the source of truth; a cache miss is never an authoritative "unknown".
type ReceiptCache struct {
	client *goredis.Client
	prefix string
}

// NewReceiptCache creates a new Redis-backed receipt cache.
func NewReceiptCache(client *goredis.Client) *ReceiptCache {
	return &ReceiptCache{
		client: client,
		prefix: "receipt:",
	}
}

// Seen returns true if the receipt id is present in the cache.
func (c *ReceiptCache) Seen(ctx context.Context, id string) (bool, error) {
	n, err := c.client.Exists(ctx, c.prefix+id).Result()
	if err != nil {
		return false, fmt.Errorf("redis receipt check: %w", err)
	}
	return n > 0, nil
}

// Mark records a receipt id with TTL.
func (c *ReceiptCache) Mark(ctx context.Context, id string, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+id, 1, ttl).Err(); err != nil {
		return fmt.Errorf("redis receipt mark: %w", err)
	}
	return nil
}
