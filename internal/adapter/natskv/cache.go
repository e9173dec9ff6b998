// Package natskv implements the cache and score-store ports using NATS
// JetStream KV buckets.
package natskv

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// Cache exposes a JetStream KV bucket as the shared remote cache tier.
// Entry lifetime is the bucket's TTL, set when the bucket is created;
// the per-call TTL from the cache port is ignored here.
type Cache struct {
	kv jetstream.KeyValue
}

// NewCache wraps an existing KV bucket.
func NewCache(kv jetstream.KeyValue) *Cache {
	return &Cache{kv: kv}
}

// encodeKey maps cache keys onto the KV key alphabet. Synod cache keys
// use ':' as a namespace separator, which JetStream KV rejects; '.' is
// its native separator.
func encodeKey(key string) string {
	return strings.ReplaceAll(key, ":", ".")
}

func (c *Cache) Get(ctx context.Context, key string) (data []byte, ok bool, err error) {
	entry, err := c.kv.Get(ctx, encodeKey(key))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return entry.Value(), true, nil
}

func (c *Cache) Set(ctx context.Context, key string, value []byte, _ time.Duration) error {
	_, err := c.kv.Put(ctx, encodeKey(key), value)
	return err
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	err := c.kv.Delete(ctx, encodeKey(key))
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil
	}
	return err
}
