package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/synod-io/synod/internal/domain/council"
	"github.com/synod-io/synod/internal/port/cache"
	"github.com/synod-io/synod/internal/port/scorestore"
)

// leaderboardCacheKey is the tiered-cache key for the rendered leaderboard.
const leaderboardCacheKey = "scores:leaderboard"

// leaderboardTTL bounds staleness across instances. A local update
// invalidates immediately; other instances converge within the TTL.
const leaderboardTTL = time.Minute

// ScoreEntry is one leaderboard row: an agent's persistent skill score.
type ScoreEntry struct {
	Agent string  `json:"agent"`
	Score float64 `json:"score"`
}

// ScoreService folds each turn's rankings into the durable score table and
// serves the leaderboard.
type ScoreService struct {
	store     scorestore.Store
	cache     cache.Cache // optional leaderboard cache
	countSelf bool
}

// NewScoreService creates a ScoreService. countSelf controls whether a
// reviewer's vote for its own (anonymized) response is counted.
func NewScoreService(store scorestore.Store, countSelf bool) *ScoreService {
	return &ScoreService{store: store, countSelf: countSelf}
}

// SetCache attaches a cache for leaderboard reads. Updates invalidate it.
func (s *ScoreService) SetCache(c cache.Cache) {
	s.cache = c
}

// Update folds one turn's rankings into the persistent score table and
// returns the updated table. The table is a single document: load, blend,
// store back.
func (s *ScoreService) Update(ctx context.Context, rankings []council.Ranking, labelToAgent map[string]string) (map[string]float64, error) {
	prior, err := s.store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load scores: %w", err)
	}

	updated := council.UpdateScores(prior, rankings, labelToAgent, s.countSelf)

	if err := s.store.Set(ctx, updated); err != nil {
		return nil, fmt.Errorf("store scores: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, leaderboardCacheKey); err != nil {
			slog.Warn("leaderboard cache invalidation failed", "error", err)
		}
	}

	return updated, nil
}

// All returns the current score table keyed by canonical agent name.
func (s *ScoreService) All(ctx context.Context) (map[string]float64, error) {
	return s.store.Get(ctx)
}

// Leaderboard returns the persistent scores sorted descending, ties broken
// by agent name for a stable order.
func (s *ScoreService) Leaderboard(ctx context.Context) ([]ScoreEntry, error) {
	if s.cache != nil {
		if data, ok, err := s.cache.Get(ctx, leaderboardCacheKey); err == nil && ok {
			var entries []ScoreEntry
			if err := json.Unmarshal(data, &entries); err == nil {
				return entries, nil
			}
			// Corrupt entry: fall through and rebuild from the store.
		}
	}

	scores, err := s.store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load scores: %w", err)
	}

	entries := make([]ScoreEntry, 0, len(scores))
	for name, score := range scores {
		entries = append(entries, ScoreEntry{Agent: name, Score: score})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Agent < entries[j].Agent
	})

	if s.cache != nil {
		if data, err := json.Marshal(entries); err == nil {
			if err := s.cache.Set(ctx, leaderboardCacheKey, data, leaderboardTTL); err != nil {
				slog.Warn("leaderboard cache write failed", "error", err)
			}
		}
	}

	return entries, nil
}
