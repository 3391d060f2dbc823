// Package cache provides a Redis-backed read cache for blacklist lookups.
package cache

import (
	"context"
	"log/slog"
	"time"

	platformredis "northstar/internal/platform/redis"
)

const (
	keyPrefix  = "northstar:blacklist:"
	defaultTTL = 15 * time.Minute
)

// BlacklistCache caches blacklist verdicts in Redis. Purely an optimization:
// every failure degrades to a store lookup, never to a wrong answer.
type BlacklistCache struct {
	client *platformredis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// Option configures the cache.
type Option func(*BlacklistCache)

// WithTTL overrides the default verdict TTL.
func WithTTL(ttl time.Duration) Option {
	return func(c *BlacklistCache) { c.ttl = ttl }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *BlacklistCache) { c.logger = logger }
}

// New creates a blacklist cache on top of the shared Redis client.
func New(client *platformredis.Client, opts ...Option) *BlacklistCache {
	c := &BlacklistCache{
		client: client,
		ttl:    defaultTTL,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsBlacklisted returns the cached verdict. found=false on a miss or any
// Redis failure.
func (c *BlacklistCache) IsBlacklisted(ctx context.Context, domainName string) (bool, bool) {
	val, err := c.client.Get(ctx, keyPrefix+domainName).Result()
	if err != nil {
		return false, false
	}
	return val == "1", true
}

// Set records a verdict with the configured TTL.
func (c *BlacklistCache) Set(ctx context.Context, domainName string, blacklisted bool) {
	val := "0"
	if blacklisted {
		val = "1"
	}
	if err := c.client.Client.Set(ctx, keyPrefix+domainName, val, c.ttl).Err(); err != nil {
		c.logger.Warn("blacklist cache set failed", "domain", domainName, "error", err)
	}
}

// Invalidate drops a verdict after any status transition touching the
// blacklist.
func (c *BlacklistCache) Invalidate(ctx context.Context, domainName string) {
	if err := c.client.Del(ctx, keyPrefix+domainName).Err(); err != nil {
		c.logger.Warn("blacklist cache invalidate failed", "domain", domainName, "error", err)
	}
}
