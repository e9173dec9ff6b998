package ws

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/synod-io/synod/internal/domain/council"
	"github.com/synod-io/synod/internal/domain/event"
)

// Event type constants for WebSocket messages, shared with the event domain
// so NATS consumers and WebSocket clients see the same names.
const (
	EventTurnStarted     = string(event.TypeTurnStarted)
	EventStage1Completed = string(event.TypeStage1Completed)
	EventStage2Completed = string(event.TypeStage2Completed)
	EventStage3Completed = string(event.TypeStage3Completed)
	EventTurnFailed      = string(event.TypeTurnFailed)
	EventScoresUpdated   = string(event.TypeScoresUpdated)
)

// TurnStartedEvent is broadcast when a deliberation turn begins.
type TurnStartedEvent struct {
	TurnID         string   `json:"turn_id"`
	ConversationID string   `json:"conversation_id"`
	Agents         []string `json:"agents"`
}

// Stage1CompletedEvent carries the anonymized first-pass answers.
type Stage1CompletedEvent struct {
	TurnID         string                    `json:"turn_id"`
	ConversationID string                    `json:"conversation_id"`
	Responses      []council.LabeledResponse `json:"responses"`
}

// Stage2CompletedEvent carries the parsed peer reviews and the ranking
// table for this turn.
type Stage2CompletedEvent struct {
	TurnID         string                     `json:"turn_id"`
	ConversationID string                     `json:"conversation_id"`
	Rankings       []council.Ranking          `json:"rankings"`
	Leaderboard    []council.AggregateRanking `json:"leaderboard"`
}

// Stage3CompletedEvent carries the chairman's synthesis.
type Stage3CompletedEvent struct {
	TurnID         string `json:"turn_id"`
	ConversationID string `json:"conversation_id"`
	Agent          string `json:"agent"`
	Text           string `json:"text"`
}

// TurnFailedEvent is broadcast when a turn short-circuits before Stage3.
type TurnFailedEvent struct {
	TurnID         string `json:"turn_id"`
	ConversationID string `json:"conversation_id"`
	Reason         string `json:"reason"`
}

// ScoresUpdatedEvent carries the persistent score table after a turn.
type ScoresUpdatedEvent struct {
	Scores map[string]float64 `json:"scores"`
}

// BroadcastEvent is a convenience method that marshals a typed event and
// broadcasts it to every client.
func (h *Hub) BroadcastEvent(ctx context.Context, eventType string, payload any) {
	data, ok := marshalPayload(eventType, payload)
	if !ok {
		return
	}
	h.Broadcast(ctx, Message{Type: eventType, Payload: data})
}

// BroadcastConversationEvent marshals a typed event and sends it to clients
// following the given conversation (and to unfiltered clients).
func (h *Hub) BroadcastConversationEvent(ctx context.Context, conversationID, eventType string, payload any) {
	data, ok := marshalPayload(eventType, payload)
	if !ok {
		return
	}
	h.BroadcastToConversation(ctx, conversationID, Message{Type: eventType, Payload: data})
}

func marshalPayload(eventType string, payload any) (json.RawMessage, bool) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal ws event payload", "type", eventType, "error", err)
		return nil, false
	}
	return data, true
}
