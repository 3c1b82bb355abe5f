package main

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/matheusmosca/ecommerce-services/internal/logging"
)

const (
	catalogItemKeyPrefix = "sales:catalog:item:"
	catalogListKey       = "sales:catalog:items"
)

// RedisCatalogCache is a read-through cache for catalog reads. Redis errors
// are logged and treated as misses.
type RedisCatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCatalogCache(client *redis.Client, ttl time.Duration) *RedisCatalogCache {
	return &RedisCatalogCache{client: client, ttl: ttl}
}

func (c *RedisCatalogCache) GetItem(ctx context.Context, itemID int64) (*Item, bool) {
	var item Item
	if !c.get(ctx, catalogItemKeyPrefix+strconv.FormatInt(itemID, 10), &item) {
		return nil, false
	}
	return &item, true
}

func (c *RedisCatalogCache) SetItem(ctx context.Context, item *Item) {
	c.set(ctx, catalogItemKeyPrefix+strconv.FormatInt(item.ID, 10), item)
}

func (c *RedisCatalogCache) GetItems(ctx context.Context) ([]Item, bool) {
	var items []Item
	if !c.get(ctx, catalogListKey, &items) {
		return nil, false
	}
	return items, true
}

func (c *RedisCatalogCache) SetItems(ctx context.Context, items []Item) {
	c.set(ctx, catalogListKey, items)
}

func (c *RedisCatalogCache) Invalidate(ctx context.Context, itemID int64) {
	key := catalogItemKeyPrefix + strconv.FormatInt(itemID, 10)
	if err := c.client.Del(ctx, key, catalogListKey).Err(); err != nil {
		logging.FromContext(ctx).Warn("catalog cache invalidation failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *RedisCatalogCache) get(ctx context.Context, key string, out any) bool {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logging.FromContext(ctx).Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		logging.FromContext(ctx).Warn("catalog cache entry corrupted", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *RedisCatalogCache) set(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		logging.FromContext(ctx).Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// noCache is used when REDIS_ADDR is not configured.
type noCache struct{}

func (noCache) GetItem(context.Context, int64) (*Item, bool) { return nil, false }
func (noCache) SetItem(context.Context, *Item) {}
func (noCache) GetItems(context.Context) ([]Item, bool) { return nil, false }
func (noCache) SetItems(context.Context, []Item) {}
func (noCache) Invalidate(context.Context, int64) {}
