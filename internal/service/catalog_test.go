package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/synod-io/synod/internal/domain/catalog"
)

// mockLister implements provider.ModelLister for testing.
type mockLister struct {
	models []catalog.ModelInfo
	err    error
	calls  int
}

func (m *mockLister) ListModels(_ context.Context) ([]catalog.ModelInfo, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return append([]catalog.ModelInfo(nil), m.models...), nil
}

func TestCatalogService_ListModels_SortsByCapability(t *testing.T) {
	lister := &mockLister{models: []catalog.ModelInfo{
		{ID: "b/small", ContextLength: 8192},
		{ID: "a/thinker", ContextLength: 128000, Reasoning: true},
		{ID: "c/large", ContextLength: 200000},
	}}
	svc := NewCatalogService(lister, nil, time.Minute)

	models, err := svc.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels failed: %v", err)
	}

	wantOrder := []string{"a/thinker", "c/large", "b/small"}
	if len(models) != len(wantOrder) {
		t.Fatalf("expected %d models, got %d", len(wantOrder), len(models))
	}
	for i, id := range wantOrder {
		if models[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, models[i].ID)
		}
	}
}

func TestCatalogService_ListModels_CachesResult(t *testing.T) {
	lister := &mockLister{models: []catalog.ModelInfo{{ID: "a/one"}}}
	c := &mockCache{}
	svc := NewCatalogService(lister, c, time.Minute)

	if _, err := svc.ListModels(context.Background()); err != nil {
		t.Fatalf("first ListModels failed: %v", err)
	}
	if _, err := svc.ListModels(context.Background()); err != nil {
		t.Fatalf("second ListModels failed: %v", err)
	}

	if lister.calls != 1 {
		t.Errorf("expected 1 upstream fetch, got %d", lister.calls)
	}
	if c.lastTTL != time.Minute {
		t.Errorf("expected configured TTL, got %v", c.lastTTL)
	}
}

func TestCatalogService_ListModels_CorruptCacheFallsThrough(t *testing.T) {
	lister := &mockLister{models: []catalog.ModelInfo{{ID: "a/one"}}}
	c := &mockCache{entries: map[string][]byte{modelsCacheKey: []byte("not json")}}
	svc := NewCatalogService(lister, c, time.Minute)

	models, err := svc.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels failed: %v", err)
	}
	if len(models) != 1 || models[0].ID != "a/one" {
		t.Errorf("expected upstream fetch, got %+v", models)
	}
	if lister.calls != 1 {
		t.Errorf("expected 1 upstream fetch, got %d", lister.calls)
	}
}

func TestCatalogService_ListModels_UpstreamError(t *testing.T) {
	lister := &mockLister{err: errors.New("502 from upstream")}
	svc := NewCatalogService(lister, nil, time.Minute)

	_, err := svc.ListModels(context.Background())
	if err == nil {
		t.Fatal("expected error when upstream fetch fails")
	}
}
