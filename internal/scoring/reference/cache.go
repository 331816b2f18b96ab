package reference

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultCacheKey is where the snapshot is stored when no key is given.
const DefaultCacheKey = "wellness:reference:v1"

// Cache stores a JSON snapshot of the reference tables in redis so that
// instances started after the first one skip the database.
type Cache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewCache(client *redis.Client, key string, ttl time.Duration) *Cache {
	if key == "" {
		key = DefaultCacheKey
	}
	return &Cache{client: client, key: key, ttl: ttl}
}

// Get returns the cached snapshot. found is false on a cache miss.
func (c *Cache) Get(ctx context.Context) (snap Snapshot, found bool, err error) {
	val, err := c.client.Get(ctx, c.key).Result()
	if err == redis.Nil {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("redis get %s: %w", c.key, err)
	}
	if err := json.Unmarshal([]byte(val), &snap); err != nil {
		return Snapshot{}, false, fmt.Errorf("decode cached snapshot: %w", err)
	}
	return snap, true, nil
}

// Set writes the snapshot with the configured TTL.
func (c *Cache) Set(ctx context.Context, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := c.client.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", c.key, err)
	}
	return nil
}

// Invalidate drops the cached snapshot.
func (c *Cache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, c.key).Err()
}
