package natskv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"
)

// scoresKey is the single KV entry holding the whole score table.
const scoresKey = "leaderboard"

// ScoreStore implements scorestore.Store on a NATS JetStream KV bucket.
// The table is one JSON document of canonical agent name to score.
type ScoreStore struct {
	kv jetstream.KeyValue
}

// NewScoreStore creates a score store backed by the given bucket.
func NewScoreStore(kv jetstream.KeyValue) *ScoreStore {
	return &ScoreStore{kv: kv}
}

// Get returns the persisted score table. A missing entry is an empty
// table, not an error.
func (s *ScoreStore) Get(ctx context.Context) (map[string]float64, error) {
	entry, err := s.kv.Get(ctx, scoresKey)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return map[string]float64{}, nil
		}
		return nil, fmt.Errorf("get scores: %w", err)
	}

	var scores map[string]float64
	if err := json.Unmarshal(entry.Value(), &scores); err != nil {
		return nil, fmt.Errorf("unmarshal scores: %w", err)
	}
	if scores == nil {
		scores = map[string]float64{}
	}
	return scores, nil
}

// Set persists the full score table, replacing the previous document.
func (s *ScoreStore) Set(ctx context.Context, scores map[string]float64) error {
	data, err := json.Marshal(scores)
	if err != nil {
		return fmt.Errorf("marshal scores: %w", err)
	}
	if _, err := s.kv.Put(ctx, scoresKey, data); err != nil {
		return fmt.Errorf("put scores: %w", err)
	}
	return nil
}
