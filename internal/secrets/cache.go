package secrets

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

// DefaultCacheTTL is how long a resolved secret is reused.
const DefaultCacheTTL = 5 * time.Minute

const secretCacheKeyPrefix = "concur-accruals::secret::v1::"

// CachedProvider memoizes successful lookups of an inner provider for a
// fixed TTL. Failures are never cached.
type CachedProvider struct {
	inner Provider
	ttl   time.Duration
	cache repositorycache.CacheService

	mu    sync.Mutex
	names map[string]struct{}
}

// NewCachedProvider wraps inner. A ttl of zero or less uses DefaultCacheTTL.
func NewCachedProvider(inner Provider, ttl time.Duration) (*CachedProvider, error) {
	if inner == nil {
		return nil, fmt.Errorf("secrets: cached provider needs an inner provider")
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	config := repositorycache.DefaultConfig()
	config.TTL = ttl
	service, err := repositorycache.NewCacheService(config)
	if err != nil {
		return nil, fmt.Errorf("creating secret cache: %w", err)
	}

	return &CachedProvider{
		inner: inner,
		ttl:   ttl,
		cache: service,
		names: make(map[string]struct{}),
	}, nil
}

// SecretCacheKey returns the cache key for a secret name.
func SecretCacheKey(name string) string {
	return secretCacheKeyPrefix + url.PathEscape(name)
}

// Name implements Provider.
func (c *CachedProvider) Name() string { return c.inner.Name() }

// Secret implements Provider.
func (c *CachedProvider) Secret(ctx context.Context, name string) (string, error) {
	return repositorycache.GetOrFetch(ctx, c.cache, SecretCacheKey(name), func(ctx context.Context) (string, error) {
		v, err := c.inner.Secret(ctx, name)
		if err != nil {
			return "", err
		}
		c.mu.Lock()
		c.names[name] = struct{}{}
		c.mu.Unlock()
		return v, nil
	})
}

// Invalidate drops a cached name.
func (c *CachedProvider) Invalidate(ctx context.Context, name string) error {
	c.mu.Lock()
	delete(c.names, name)
	c.mu.Unlock()
	if err := c.cache.Delete(ctx, SecretCacheKey(name)); err != nil {
		return fmt.Errorf("invalidating cached secret %s: %w", name, err)
	}
	return nil
}

// Len returns the number of names fetched since their last invalidation.
// Entries past their TTL are still counted.
func (c *CachedProvider) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.names)
}

// TTL returns the cache lifetime.
func (c *CachedProvider) TTL() time.Duration { return c.ttl }
