// Package broadcast defines the port for broadcasting real-time events to connected clients.
package broadcast

import "context"

// Broadcaster sends real-time events to connected clients. Marshal or
// delivery failures are logged by the implementation, never returned; event
// delivery is best effort and must not disturb the deliberation pipeline.
type Broadcaster interface {
	// BroadcastEvent sends a typed event to all connected clients.
	BroadcastEvent(ctx context.Context, eventType string, payload any)

	// BroadcastConversationEvent sends a typed event to clients subscribed
	// to the given conversation, plus clients with no conversation filter.
	BroadcastConversationEvent(ctx context.Context, conversationID, eventType string, payload any)
}
