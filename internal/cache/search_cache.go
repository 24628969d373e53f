// Package cache keeps recent search results in Redis. Each scope has a
// generation counter that is bumped on every write to the underlying
// records, which orphans all older entries at once; they then expire by TTL.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/PrathushaR/ithotlist-api/internal/logger"
	"github.com/PrathushaR/ithotlist-api/internal/metrics"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "ithotlist:search"

// Scopes.
const (
	ScopeCandidates = "candidates"
	ScopeHotlists   = "hotlists"
)

// SearchCache is best effort: every Redis failure is logged and treated as
// a miss, so callers always fall through to the store.
type SearchCache struct {
	client *redis.Client
	ttl    time.Duration
	log    logger.Logger
}

// NewSearchCache returns a disabled cache when client is nil.
func NewSearchCache(client *redis.Client, ttl time.Duration, log logger.Logger) *SearchCache {
	return &SearchCache{
		client: client,
		ttl:    ttl,
		log:    log.WithFields(map[string]interface{}{"component": "search_cache"}),
	}
}

func (c *SearchCache) Enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

func generationKey(scope string) string {
	return fmt.Sprintf("%s:%s:gen", keyPrefix, scope)
}

// Entry is a generation-qualified key handed out by Get. Set writes under
// it, so a result read before a concurrent write lands in the generation
// that write has already retired. The zero Entry is never stored.
type Entry string

func (c *SearchCache) entryKey(ctx context.Context, scope, key string) (Entry, error) {
	gen, err := c.client.Get(ctx, generationKey(scope)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return Entry(fmt.Sprintf("%s:%s:%d:%s", keyPrefix, scope, gen, key)), nil
}

// Get decodes a cached value into dest and reports whether it was found.
// On a miss the returned Entry is where the caller should Set the value it
// loads.
func (c *SearchCache) Get(ctx context.Context, scope, key string, dest interface{}) (Entry, bool) {
	if !c.Enabled() {
		return "", false
	}

	entry, err := c.entryKey(ctx, scope, key)
	if err != nil {
		c.warn("read generation", scope, err)
		return "", false
	}

	raw, err := c.client.Get(ctx, string(entry)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.warn("read entry", scope, err)
		}
		metrics.SearchCacheRequests.WithLabelValues(scope, "miss").Inc()
		return entry, false
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		c.warn("decode entry", scope, err)
		metrics.SearchCacheRequests.WithLabelValues(scope, "miss").Inc()
		return entry, false
	}
	metrics.SearchCacheRequests.WithLabelValues(scope, "hit").Inc()
	return entry, true
}

func (c *SearchCache) Set(ctx context.Context, entry Entry, value interface{}) {
	if !c.Enabled() || entry == "" {
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		c.warn("encode entry", string(entry), err)
		return
	}
	if err := c.client.Set(ctx, string(entry), raw, c.ttl).Err(); err != nil {
		c.warn("write entry", string(entry), err)
	}
}

// Invalidate bumps the generation of each scope.
func (c *SearchCache) Invalidate(ctx context.Context, scopes ...string) {
	if !c.Enabled() {
		return
	}
	for _, scope := range scopes {
		if err := c.client.Incr(ctx, generationKey(scope)).Err(); err != nil {
			c.warn("bump generation", scope, err)
		}
	}
}

func (c *SearchCache) warn(op, scope string, err error) {
	c.log.Warn("search cache "+op+" failed", map[string]interface{}{
		"scope": scope,
		"error": err,
	})
}
