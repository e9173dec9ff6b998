// Package ristretto provides the in-process L1 tier of Synod's cache.
// It sits in front of the JetStream KV tier and holds rendered JSON
// documents (leaderboard, model catalog) keyed by stable names.
package ristretto

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// Cached documents are rendered JSON bodies, typically a few KB each.
// Counter capacity is sized from this estimate per ristretto's
// guidance of ~10x the expected item count.
const estimatedDocBytes = 4 * 1024

// Cache is a size-bounded in-process cache of serialized documents.
// The cost of an entry is the byte length of its value, so maxCostBytes
// bounds the total cached payload, not an item count.
type Cache struct {
	store *ristretto.Cache[string, []byte]
}

func New(maxCostBytes int64) (*Cache, error) {
	counters := maxCostBytes / estimatedDocBytes * 10
	if counters < 64 {
		counters = 64
	}
	store, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: counters,
		MaxCost:     maxCostBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{store: store}, nil
}

func (c *Cache) Get(_ context.Context, key string) ([]byte, bool, error) {
	val, found := c.store.Get(key)
	if !found {
		return nil, false, nil
	}
	return val, true, nil
}

// Set stores value under key for at most ttl. Admission is best effort:
// ristretto may reject an entry under cost pressure, in which case the
// next read falls through to the KV tier and backfills.
func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.store.SetWithTTL(key, value, int64(len(value)), ttl)
	return nil
}

// Delete drops key so a stale document cannot be served after a writer
// invalidates it.
func (c *Cache) Delete(_ context.Context, key string) error {
	c.store.Del(key)
	return nil
}
