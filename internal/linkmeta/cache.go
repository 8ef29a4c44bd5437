package linkmeta

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"classwork_service/internal/reconcile"
)

// CachedResolver wraps a resolver with a redis cache so repeated links
// resolve once. Cache failures fall through to the inner resolver.
type CachedResolver struct {
	inner reconcile.MetadataResolver
	rdb   *redis.Client
	ttl   time.Duration
}

func NewCachedResolver(inner reconcile.MetadataResolver, rdb *redis.Client, ttl time.Duration) *CachedResolver {
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &CachedResolver{inner: inner, rdb: rdb, ttl: ttl}
}

func cacheKey(url string) string {
	return "linkmeta:" + url
}

func (c *CachedResolver) Resolve(ctx context.Context, url string) (reconcile.LinkMetadata, error) {
	if data, err := c.rdb.Get(ctx, cacheKey(url)).Bytes(); err == nil {
		var meta reconcile.LinkMetadata
		if err := json.Unmarshal(data, &meta); err == nil {
			return meta, nil
		}
	}

	meta, err := c.inner.Resolve(ctx, url)
	if err != nil {
		return reconcile.LinkMetadata{}, err
	}

	if data, err := json.Marshal(meta); err == nil {
		c.rdb.Set(ctx, cacheKey(url), data, c.ttl)
	}
	return meta, nil
}
