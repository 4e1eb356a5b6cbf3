package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/variant-service/internal/domain"
)

// keyPrefix is bumped whenever the cached JSON shape changes.
const keyPrefix = "variant:catalog:v1:"

// CatalogCache implements repository.CatalogCache on Redis.
type CatalogCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewCatalogCache creates a cache whose entries expire after ttl.
func NewCatalogCache(client redis.Cmdable, ttl time.Duration) *CatalogCache {
	return &CatalogCache{client: client, ttl: ttl}
}

func key(productID string) string { return keyPrefix + productID }

// Get returns the cached source, or nil, nil when absent.
func (c *CatalogCache) Get(ctx context.Context, productID string) (*domain.CatalogSource, error) {
	data, err := c.client.Get(ctx, key(productID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get catalog: %w", err)
	}

	var src domain.CatalogSource
	if err := json.Unmarshal(data, &src); err != nil {
		return nil, fmt.Errorf("unmarshal catalog: %w", err)
	}
	return &src, nil
}

// Set stores src under its product ID.
func (c *CatalogCache) Set(ctx context.Context, src *domain.CatalogSource) error {
	data, err := json.Marshal(src)
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}
	if err := c.client.Set(ctx, key(src.Product.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set catalog: %w", err)
	}
	return nil
}

// Delete drops the entry for productID. Deleting a missing key is not an
// error.
func (c *CatalogCache) Delete(ctx context.Context, productID string) error {
	if err := c.client.Del(ctx, key(productID)).Err(); err != nil {
		return fmt.Errorf("redis del catalog: %w", err)
	}
	return nil
}
