package ws

import (
	"context"
	"testing"
)

func TestNewHub(t *testing.T) {
	hub := NewHub()
	if hub == nil {
		t.Fatal("expected non-nil hub")
	}
	if hub.ConnectionCount() != 0 {
		t.Fatalf("expected 0 connections, got %d", hub.ConnectionCount())
	}
}

func TestHubBroadcastNoConnections(t *testing.T) {
	hub := NewHub()

	// Broadcast with no connections should not panic.
	hub.Broadcast(context.Background(), Message{
		Type:    "test",
		Payload: []byte(`{"key":"value"}`),
	})
}

func TestHubBroadcastEventNoConnections(t *testing.T) {
	hub := NewHub()

	// BroadcastEvent with no connections should not panic.
	hub.BroadcastEvent(context.Background(), EventTurnStarted, TurnStartedEvent{
		TurnID:         "t1",
		ConversationID: "c1",
		Agents:         []string{"GPT-5.2", "Claude 4.5"},
	})
}

func TestHubBroadcastEventMarshalError(t *testing.T) {
	hub := NewHub()

	// A channel cannot be marshaled to JSON — should log error, not panic.
	hub.BroadcastEvent(context.Background(), "bad", make(chan int))
}

func TestHubBroadcastConversationEventNoConnections(t *testing.T) {
	hub := NewHub()

	// BroadcastConversationEvent with no connections should not panic.
	hub.BroadcastConversationEvent(context.Background(), "c1", EventTurnFailed, TurnFailedEvent{
		TurnID:         "t1",
		ConversationID: "c1",
		Reason:         "no agents answered",
	})
}

func TestHubRemoveNonexistent(t *testing.T) {
	hub := NewHub()

	// Removing a connection that was never added should not panic.
	_, cancel := context.WithCancel(context.Background())
	defer cancel()
	c := &conn{ws: nil, cancel: cancel, conversationID: "c1"}
	hub.remove(c)
}

func TestEventTypesMatchEventDomain(t *testing.T) {
	if EventTurnStarted != "turn.started" {
		t.Fatalf("unexpected turn.started type: %s", EventTurnStarted)
	}
	if EventScoresUpdated != "scores.updated" {
		t.Fatalf("unexpected scores.updated type: %s", EventScoresUpdated)
	}
}
