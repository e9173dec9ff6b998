// Package cache defines the cache port shared by the in-process and
// NATS-backed tiers.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key-value cache. Synod caches rendered JSON
// documents under stable keys (leaderboard, model catalog); writers
// invalidate by key after a score update. A miss is (nil, false, nil),
// never an error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
