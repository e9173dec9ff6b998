package tiered_test

import (
	"context"
	"testing"
	"time"

	"github.com/synod-io/synod/internal/adapter/tiered"
)

// memCache is a simple in-memory cache for testing.
type memCache struct {
	data map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte)}
}

func (m *memCache) Get(_ context.Context, key string) (data []byte, ok bool, err error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.data[key] = value
	return nil
}

func (m *memCache) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func TestTiered_L1Hit(t *testing.T) {
	l1 := newMemCache()
	l2 := newMemCache()
	c := tiered.New(l1, l2, 5*time.Minute)
	ctx := context.Background()

	// Present only in L1
	l1.data["catalog:models"] = []byte(`[{"id":"openai/gpt-5.2"}]`)

	val, found, err := c.Get(ctx, "catalog:models")
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Fatal("expected L1 hit")
	}
	if string(val) != `[{"id":"openai/gpt-5.2"}]` {
		t.Fatalf("unexpected value: %s", val)
	}
}

func TestTiered_L2HitWithBackfill(t *testing.T) {
	l1 := newMemCache()
	l2 := newMemCache()
	c := tiered.New(l1, l2, 5*time.Minute)
	ctx := context.Background()

	// Present only in L2
	l2.data["catalog:models"] = []byte(`[{"id":"x-ai/grok-5"}]`)

	val, found, err := c.Get(ctx, "catalog:models")
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Fatal("expected L2 hit")
	}
	if string(val) != `[{"id":"x-ai/grok-5"}]` {
		t.Fatalf("unexpected value: %s", val)
	}

	// Verify backfill into L1
	l1Val, ok := l1.data["catalog:models"]
	if !ok {
		t.Fatal("expected L1 backfill")
	}
	if string(l1Val) != `[{"id":"x-ai/grok-5"}]` {
		t.Fatalf("unexpected backfilled value: %s", l1Val)
	}
}

func TestTiered_Miss(t *testing.T) {
	l1 := newMemCache()
	l2 := newMemCache()
	c := tiered.New(l1, l2, 5*time.Minute)
	ctx := context.Background()

	_, found, err := c.Get(ctx, "catalog:missing")
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Fatal("expected miss")
	}
}

func TestTiered_SetBoth(t *testing.T) {
	l1 := newMemCache()
	l2 := newMemCache()
	c := tiered.New(l1, l2, 5*time.Minute)
	ctx := context.Background()

	if err := c.Set(ctx, "scores:leaderboard", []byte(`{"GPT-5.2":20.67}`), time.Minute); err != nil {
		t.Fatal(err)
	}

	if _, ok := l1.data["scores:leaderboard"]; !ok {
		t.Fatal("expected entry in L1")
	}
	if _, ok := l2.data["scores:leaderboard"]; !ok {
		t.Fatal("expected entry in L2")
	}
}

func TestTiered_DeleteBoth(t *testing.T) {
	l1 := newMemCache()
	l2 := newMemCache()
	c := tiered.New(l1, l2, 5*time.Minute)
	ctx := context.Background()

	l1.data["catalog:models"] = []byte(`[]`)
	l2.data["catalog:models"] = []byte(`[]`)

	if err := c.Delete(ctx, "catalog:models"); err != nil {
		t.Fatal(err)
	}

	if _, ok := l1.data["catalog:models"]; ok {
		t.Fatal("expected entry deleted from L1")
	}
	if _, ok := l2.data["catalog:models"]; ok {
		t.Fatal("expected entry deleted from L2")
	}
}
