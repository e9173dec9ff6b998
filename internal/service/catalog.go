package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/synod-io/synod/internal/domain/catalog"
	"github.com/synod-io/synod/internal/port/cache"
	"github.com/synod-io/synod/internal/port/provider"
)

// modelsCacheKey is the tiered-cache key for the sorted model catalog.
const modelsCacheKey = "catalog:models"

// CatalogService serves the provider's model catalog through the tiered
// cache so the UI model picker does not hit the upstream on every load.
type CatalogService struct {
	lister provider.ModelLister
	cache  cache.Cache
	ttl    time.Duration
}

// NewCatalogService creates a CatalogService. ttl bounds how long a fetched
// catalog is served from cache.
func NewCatalogService(lister provider.ModelLister, c cache.Cache, ttl time.Duration) *CatalogService {
	return &CatalogService{lister: lister, cache: c, ttl: ttl}
}

// ListModels returns the catalog sorted by capability: reasoning models
// first, then context length descending, then ID.
func (s *CatalogService) ListModels(ctx context.Context) ([]catalog.ModelInfo, error) {
	if s.cache != nil {
		if data, ok, err := s.cache.Get(ctx, modelsCacheKey); err == nil && ok {
			var models []catalog.ModelInfo
			if err := json.Unmarshal(data, &models); err == nil {
				return models, nil
			}
		}
	}

	models, err := s.lister.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch models: %w", err)
	}
	catalog.SortByCapability(models)

	if s.cache != nil {
		if data, err := json.Marshal(models); err == nil {
			if err := s.cache.Set(ctx, modelsCacheKey, data, s.ttl); err != nil {
				slog.Warn("model catalog cache write failed", "error", err)
			}
		}
	}

	return models, nil
}
