package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/dukerupert/artesania/internal/domain"
)

type RedisCatalogCache struct {
	client redis.UniversalClient
}

func NewRedisCatalogCache(client redis.UniversalClient) *RedisCatalogCache {
	return &RedisCatalogCache{client: client}
}

func (c *RedisCatalogCache) Get(ctx context.Context, key string) (*domain.Catalog, bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var catalog domain.Catalog
	if err := json.Unmarshal(val, &catalog); err != nil {
		return nil, false, err
	}
	return &catalog, true, nil
}

func (c *RedisCatalogCache) Set(ctx context.Context, key string, value *domain.Catalog, ttl time.Duration) error {
	if value == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *RedisCatalogCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}
