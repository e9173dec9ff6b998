// Package tiered layers the in-process ristretto cache over the shared
// JetStream KV cache. Reads prefer the local tier; a remote hit is
// copied back locally for the backfill TTL so repeated leaderboard and
// catalog reads stay off the wire.
package tiered

import (
	"context"
	"time"

	"github.com/synod-io/synod/internal/port/cache"
)

// Cache is the two-tier composite. It satisfies the same cache port as
// its tiers, so services never know which tier answered.
type Cache struct {
	local       cache.Cache
	remote      cache.Cache
	backfillTTL time.Duration
}

// New builds the composite. backfillTTL bounds how stale the local copy
// of a remote hit may grow; it is deliberately shorter than the remote
// TTL so cross-instance invalidation converges.
func New(local, remote cache.Cache, backfillTTL time.Duration) *Cache {
	return &Cache{local: local, remote: remote, backfillTTL: backfillTTL}
}

// Get answers from the local tier when it can, otherwise consults the
// remote tier and backfills the local copy on a hit.
func (c *Cache) Get(ctx context.Context, key string) (data []byte, ok bool, err error) {
	val, found, err := c.local.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if found {
		return val, true, nil
	}

	val, found, err = c.remote.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}
	_ = c.local.Set(ctx, key, val, c.backfillTTL)
	return val, true, nil
}

// Set writes through to both tiers.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.local.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	return c.remote.Set(ctx, key, value, ttl)
}

// Delete removes the key from both tiers. The remote tier goes first so
// a concurrent reader cannot re-backfill the local tier from a value
// already known to be stale.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.remote.Delete(ctx, key); err != nil {
		return err
	}
	return c.local.Delete(ctx, key)
}
