package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const HierarchyKey = "locations:hierarchy"

// HierarchyCache keeps the city -> talukas map as one JSON blob.
type HierarchyCache struct {
	client *goredis.Client
	key    string
}

func NewHierarchyCache(client *goredis.Client) *HierarchyCache {
	return &HierarchyCache{client: client, key: HierarchyKey}
}

// Get returns nil without error on a cache miss.
func (c *HierarchyCache) Get(ctx context.Context) (map[string][]string, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis.HierarchyCache.Get: %w", err)
	}

	var h map[string][]string
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("redis.HierarchyCache.Get: decode: %w", err)
	}
	return h, nil
}

func (c *HierarchyCache) Set(ctx context.Context, hierarchy map[string][]string, ttl time.Duration) error {
	b, err := json.Marshal(hierarchy)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, c.key, b, ttl).Err(); err != nil {
		return fmt.Errorf("redis.HierarchyCache.Set: %w", err)
	}
	return nil
}

func (c *HierarchyCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("redis.HierarchyCache.Invalidate: %w", err)
	}
	return nil
}
