// Package conversation defines chat threads between a user and the
// council, and the messages recorded for each deliberation turn.
package conversation

import (
	"encoding/json"
	"strings"
	"time"
)

// DefaultTitle is used for new conversations and as the fallback when
// title generation fails.
const DefaultTitle = "New Conversation"

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Conversation represents a chat thread.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	// MessageCount is populated by list queries only.
	MessageCount int `json:"message_count,omitempty"`
}

// Message represents a single message in a conversation. Assistant
// messages carry the chairman's synthesis as Content and the full
// deliberation record (stage responses, rankings, label map) as
// Artifacts.
type Message struct {
	ID             string          `json:"id"`
	ConversationID string          `json:"conversation_id"`
	Role           string          `json:"role"`
	Agent          string          `json:"agent,omitempty"`
	Content        string          `json:"content"`
	Artifacts      json.RawMessage `json:"artifacts,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Detail is a conversation with its full transcript.
type Detail struct {
	Conversation
	Messages []Message `json:"messages"`
}

// CreateRequest is the request body for creating a new conversation. A
// non-empty Message runs a full deliberation turn on the new conversation
// before the create call returns.
type CreateRequest struct {
	Title   string `json:"title,omitempty"`
	Message string `json:"message,omitempty"`
}

// SendMessageRequest is the request body for asking the council a question.
type SendMessageRequest struct {
	Content string `json:"content"`
}

// NormalizeTitle cleans a model-generated title: surrounding quotes are
// stripped, titles over 50 characters are truncated to 47 plus an
// ellipsis, and an empty result falls back to DefaultTitle.
func NormalizeTitle(raw string) string {
	title := strings.TrimSpace(raw)
	title = strings.Trim(title, `"'`)
	if title == "" {
		return DefaultTitle
	}
	if runes := []rune(title); len(runes) > 50 {
		title = string(runes[:47]) + "..."
	}
	return title
}
