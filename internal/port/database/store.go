// Package database defines the database store port (interface).
package database

import (
	"context"

	"github.com/synod-io/synod/internal/domain/conversation"
)

// Store is the port interface for conversation persistence.
type Store interface {
	// Conversations
	CreateConversation(ctx context.Context, c *conversation.Conversation) (*conversation.Conversation, error)
	GetConversation(ctx context.Context, id string) (*conversation.Conversation, error)
	ListConversations(ctx context.Context) ([]conversation.Conversation, error)
	UpdateConversationTitle(ctx context.Context, id, title string) error
	DeleteConversation(ctx context.Context, id string) error

	// Messages
	CreateMessage(ctx context.Context, m *conversation.Message) (*conversation.Message, error)
	ListMessages(ctx context.Context, conversationID string) ([]conversation.Message, error)
}
