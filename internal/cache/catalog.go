// Package cache keeps hot catalog reads in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wichananm65/chat-shop-backend/internal/metrics"
	"github.com/wichananm65/chat-shop-backend/internal/product"
	"golang.org/x/sync/singleflight"
)

// Catalog is a read-through product.Catalog backed by Redis. Redis errors
// are logged and the inner catalog answers instead. Missing products are not
// cached.
type Catalog struct {
	inner   product.Catalog
	client  *redis.Client
	ttl     time.Duration
	metrics *metrics.Registry
	sfg     singleflight.Group
}

var _ product.Catalog = (*Catalog)(nil)

func NewCatalog(inner product.Catalog, client *redis.Client, ttl time.Duration, m *metrics.Registry) *Catalog {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Catalog{inner: inner, client: client, ttl: ttl, metrics: m}
}

func (c *Catalog) GetByID(ctx context.Context, id int64) (product.Product, error) {
	key := productKey(id)
	v, err, _ := c.sfg.Do(key, func() (any, error) {
		data, err := c.client.Get(ctx, key).Bytes()
		if err == nil {
			var p product.Product
			if err := json.Unmarshal(data, &p); err == nil {
				c.metrics.CacheHit()
				return p, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			log.Printf("[cache] get %s failed: %v", key, err)
		}

		c.metrics.CacheMiss()
		p, err := c.inner.GetByID(ctx, id)
		if err != nil {
			return product.Product{}, err
		}
		c.store(ctx, p)
		return p, nil
	})
	if err != nil {
		return product.Product{}, err
	}
	return v.(product.Product), nil
}

func (c *Catalog) ListByIDs(ctx context.Context, ids []int64) ([]product.Product, error) {
	if len(ids) == 0 {
		return []product.Product{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = productKey(id)
	}

	out := make([]product.Product, 0, len(ids))
	missing := make([]int64, 0)
	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		log.Printf("[cache] mget failed: %v", err)
		values = make([]any, len(ids))
	}
	for i, v := range values {
		s, ok := v.(string)
		var p product.Product
		if !ok || json.Unmarshal([]byte(s), &p) != nil {
			missing = append(missing, ids[i])
			continue
		}
		c.metrics.CacheHit()
		out = append(out, p)
	}
	if len(missing) == 0 {
		return out, nil
	}

	c.metrics.CacheMiss()
	loaded, err := c.inner.ListByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}
	for _, p := range loaded {
		c.store(ctx, p)
	}
	return append(out, loaded...), nil
}

func (c *Catalog) store(ctx context.Context, p product.Product) {
	data, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, productKey(p.ID), data, c.ttl).Err(); err != nil {
		log.Printf("[cache] set product %d failed: %v", p.ID, err)
	}
}

func productKey(id int64) string {
	return "product:" + strconv.FormatInt(id, 10)
}
