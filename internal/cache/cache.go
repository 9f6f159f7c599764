// Package cache implements the ephemeral side of the cache-aside scheme:
// a read-through link cache and a short-lived analytics rollup cache, both
// backed by a narrow key-value store interface.
//
// Cache failures are always soft. A failed read is treated as a miss and a
// failed write is logged and dropped, so the resolution path degrades to
// direct store reads when the cache is unavailable.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	urlKeyPrefix       = "url:"
	analyticsKeyPrefix = "analytics:"

	// URLTTL bounds the staleness window of resolved links: a deactivated
	// link may keep serving redirects for up to this long.
	URLTTL = 24 * time.Hour

	// RollupTTL bounds how stale a served analytics rollup may be.
	RollupTTL = 5 * time.Minute

	// callTimeout bounds every individual cache operation.
	callTimeout = 2 * time.Second
)

// ErrMiss is returned by Store implementations when a key is absent.
var ErrMiss = errors.New("cache: key not found")

// Store is the minimal key-value surface the caches need. Keeping it this
// narrow lets tests swap the redis client for an in-process map.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// LinkCache caches resolved long URLs under "url:{alias}".
type LinkCache struct {
	store Store
}

func NewLinkCache(store Store) *LinkCache {
	return &LinkCache{store: store}
}

// GetURL returns the cached long URL for alias. Both a miss and a cache
// error report false; the caller falls through to the durable store.
func (c *LinkCache) GetURL(ctx context.Context, alias string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	val, err := c.store.Get(ctx, urlKeyPrefix+alias)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			log.Warn().Err(err).Str("alias", alias).Msg("link cache read failed")
		}
		return "", false
	}
	return val, true
}

// SetURL primes the cache entry for alias. The write is idempotent
// (last writer wins with the same value), so concurrent re-population after
// a miss is safe without any stampede protection.
func (c *LinkCache) SetURL(ctx context.Context, alias, longURL string) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	if err := c.store.Set(ctx, urlKeyPrefix+alias, longURL, URLTTL); err != nil {
		log.Warn().Err(err).Str("alias", alias).Msg("link cache write failed")
	}
}

// RollupCache caches serialized analytics rollups under
// "analytics:{kind}:{key}", e.g. "analytics:topic:marketing". Serving stale
// data within the TTL is intentional; freshness is not a guarantee of the
// analytics component.
type RollupCache struct {
	store Store
}

func NewRollupCache(store Store) *RollupCache {
	return &RollupCache{store: store}
}

// Get unmarshals a cached rollup into out. Returns false on miss, cache
// error, or a corrupt entry.
func (c *RollupCache) Get(ctx context.Context, kind, key string, out any) bool {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	val, err := c.store.Get(ctx, analyticsKeyPrefix+kind+":"+key)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			log.Warn().Err(err).Str("kind", kind).Str("key", key).Msg("rollup cache read failed")
		}
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		log.Warn().Err(err).Str("kind", kind).Str("key", key).Msg("corrupt rollup cache entry")
		return false
	}
	return true
}

// Set stores a rollup as JSON with the standard rollup TTL.
func (c *RollupCache) Set(ctx context.Context, kind, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Warn().Err(err).Str("kind", kind).Str("key", key).Msg("rollup marshal failed")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	if err := c.store.Set(ctx, analyticsKeyPrefix+kind+":"+key, string(data), RollupTTL); err != nil {
		log.Warn().Err(err).Str("kind", kind).Str("key", key).Msg("rollup cache write failed")
	}
}
