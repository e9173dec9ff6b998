// Package event defines the TurnEvent envelope streamed while the
// council deliberates.
package event

import (
	"encoding/json"
	"time"
)

// Type identifies the kind of turn event.
type Type string

const (
	TypeTurnStarted     Type = "turn.started"
	TypeStage1Completed Type = "turn.stage1.completed"
	TypeStage2Completed Type = "turn.stage2.completed"
	TypeStage3Completed Type = "turn.stage3.completed"
	TypeTurnFailed      Type = "turn.failed"
	TypeScoresUpdated   Type = "scores.updated"
)

// TurnEvent represents a single progress notice emitted while a
// conversation turn moves through the deliberation stages.
type TurnEvent struct {
	ID             string          `json:"id"`
	ConversationID string          `json:"conversation_id"`
	Type           Type            `json:"type"`
	Payload        json.RawMessage `json:"payload"`
	CreatedAt      time.Time       `json:"created_at"`
}
