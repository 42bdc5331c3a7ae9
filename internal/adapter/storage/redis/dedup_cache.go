package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// DedupCache implements ports.DedupCache using Redis.
// It only short-circuits known duplicates; PostgreSQL stays authoritative.
type DedupCache struct {
	client *goredis.Client
	prefix string
}

// NewDedupCache creates a new Redis-backed dedup cache.
func NewDedupCache(client *goredis.Client) *DedupCache {
	return &DedupCache{
		client: client,
		prefix: "dedup:event:",
	}
}

// Seen reports whether the event id was remembered.
func (c *DedupCache) Seen(ctx context.Context, eventID string) (bool, error) {
	n, err := c.client.Exists(ctx, c.prefix+eventID).Result()
	if err != nil {
		return false, fmt.Errorf("redis dedup exists: %w", err)
	}
	return n > 0, nil
}

// Remember marks the event id as handled for ttl.
func (c *DedupCache) Remember(ctx context.Context, eventID string, ttl time.Duration) error {
	err := c.client.Set(ctx, c.prefix+eventID, time.Now().UTC().Format(time.RFC3339), ttl).Err()
	if err != nil {
		return fmt.Errorf("redis dedup set: %w", err)
	}
	return nil
}
