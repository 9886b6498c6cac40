// Package cache provides a Redis-backed cache of search results keyed by
// the raw query text together with status and policy, with singleflight
// collapsing of concurrent misses. The query text is not normalized, so
// queries that differ only in spacing or word order get separate entries.
// Mutations of the index must call Invalidate.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/Text-Search-Server/internal/search"
	"github.com/Adithya-Monish-Kumar-K/Text-Search-Server/pkg/config"
	pkgredis "github.com/Adithya-Monish-Kumar-K/Text-Search-Server/pkg/redis"
)

const keyPrefix = "textsearch:"

// QueryCache caches ranked result lists in Redis.
type QueryCache struct {
	client *pkgredis.Client
	cfg    config.RedisConfig
	group  singleflight.Group
	logger *slog.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a QueryCache over an established Redis client.
func New(client *pkgredis.Client, cfg config.RedisConfig) *QueryCache {
	return &QueryCache{
		client: client,
		cfg:    cfg,
		logger: slog.Default().With("component", "query-cache"),
	}
}

// GetOrCompute returns the cached result for the (query, status, policy)
// triple, or runs compute once (collapsing concurrent callers) and caches
// its result. The second return reports whether the value came from cache.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	rawQuery string,
	status search.DocumentStatus,
	policy search.ExecutionPolicy,
	compute func() ([]search.Document, error),
) ([]search.Document, bool, error) {
	key := c.buildKey(rawQuery, status, policy)
	if docs, ok := c.get(ctx, key); ok {
		c.hits.Add(1)
		return docs, true, nil
	}
	c.misses.Add(1)

	val, err, _ := c.group.Do(key, func() (any, error) {
		if docs, ok := c.get(ctx, key); ok {
			return docs, nil
		}
		docs, err := compute()
		if err != nil {
			return nil, err
		}
		c.set(ctx, key, docs)
		return docs, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.([]search.Document), false, nil
}

// Invalidate drops every cached result. Called after each index mutation.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	deleted, err := c.client.DeleteByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating query cache: %w", err)
	}
	c.logger.Debug("query cache invalidated", "keys_deleted", deleted)
	return nil
}

// Stats returns cumulative hit and miss counts.
func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *QueryCache) get(ctx context.Context, key string) ([]search.Document, bool) {
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsMiss(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		return nil, false
	}
	var docs []search.Document
	if err := json.Unmarshal([]byte(data), &docs); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		return nil, false
	}
	return docs, true
}

func (c *QueryCache) set(ctx context.Context, key string, docs []search.Document) {
	data, err := json.Marshal(docs)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.cfg.CacheTTL); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

func (c *QueryCache) buildKey(rawQuery string, status search.DocumentStatus, policy search.ExecutionPolicy) string {
	raw := fmt.Sprintf("%s|%s|%s", rawQuery, status, policy)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}
