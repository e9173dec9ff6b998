package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/synod-io/synod/internal/domain"
	"github.com/synod-io/synod/internal/domain/conversation"
	"github.com/synod-io/synod/internal/domain/council"
	"github.com/synod-io/synod/internal/port/database"
)

// ConversationService manages chat threads and drives a full deliberation
// turn for every user message.
type ConversationService struct {
	db           database.Store
	council      *CouncilService
	titles       *TitleService
	contextTurns int
}

// NewConversationService creates a ConversationService. contextTurns
// bounds how many prior exchanges are replayed into each turn's prompts.
func NewConversationService(db database.Store, c *CouncilService, titles *TitleService, contextTurns int) *ConversationService {
	return &ConversationService{db: db, council: c, titles: titles, contextTurns: contextTurns}
}

// Create creates a new conversation. When the request carries a first
// message, a full turn runs before the call returns and the transcript is
// included in the result.
func (s *ConversationService) Create(ctx context.Context, req conversation.CreateRequest) (*conversation.Detail, error) {
	c := &conversation.Conversation{Title: req.Title}
	if c.Title == "" {
		c.Title = conversation.DefaultTitle
	}

	created, err := s.db.CreateConversation(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}

	detail := &conversation.Detail{Conversation: *created}
	if req.Message == "" {
		return detail, nil
	}

	msg, err := s.SendMessage(ctx, created.ID, conversation.SendMessageRequest{Content: req.Message})
	if msg != nil {
		messages, listErr := s.db.ListMessages(ctx, created.ID)
		if listErr == nil {
			detail.Messages = messages
		} else {
			detail.Messages = []conversation.Message{*msg}
		}
	}
	return detail, err
}

// Get returns a conversation with its full transcript.
func (s *ConversationService) Get(ctx context.Context, id string) (*conversation.Detail, error) {
	c, err := s.db.GetConversation(ctx, id)
	if err != nil {
		return nil, err
	}
	messages, err := s.db.ListMessages(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return &conversation.Detail{Conversation: *c, Messages: messages}, nil
}

// List returns all conversations, newest first.
func (s *ConversationService) List(ctx context.Context) ([]conversation.Conversation, error) {
	return s.db.ListConversations(ctx)
}

// Rename updates a conversation's title.
func (s *ConversationService) Rename(ctx context.Context, id, title string) error {
	if title == "" {
		return fmt.Errorf("title must not be empty: %w", domain.ErrValidation)
	}
	return s.db.UpdateConversationTitle(ctx, id, title)
}

// Delete removes a conversation and its messages.
func (s *ConversationService) Delete(ctx context.Context, id string) error {
	return s.db.DeleteConversation(ctx, id)
}

// SendMessage stores the user message, runs a full deliberation turn and
// stores the chairman's synthesis as the assistant message, with the stage
// artifacts attached. If persisting the assistant message fails, the
// message is still returned alongside the error so callers can surface the
// turn's outcome.
func (s *ConversationService) SendMessage(ctx context.Context, conversationID string, req conversation.SendMessageRequest) (*conversation.Message, error) {
	if req.Content == "" {
		return nil, fmt.Errorf("content must not be empty: %w", domain.ErrValidation)
	}

	conv, err := s.db.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}

	// History is read before the new user message is stored, so it holds
	// exactly the prior turns.
	prior, err := s.db.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	history := contextWindow(prior, s.contextTurns)
	firstTurn := len(prior) == 0

	userMsg := &conversation.Message{
		ConversationID: conversationID,
		Role:           conversation.RoleUser,
		Content:        req.Content,
	}
	if _, err := s.db.CreateMessage(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("store user message: %w", err)
	}

	result := s.council.RunTurn(ctx, conversationID, req.Content, history)

	artifacts, err := json.Marshal(result.Artifacts)
	if err != nil {
		slog.Error("marshal turn artifacts", "turn_id", result.TurnID, "error", err)
		artifacts = nil
	}

	assistantMsg := &conversation.Message{
		ConversationID: conversationID,
		Role:           conversation.RoleAssistant,
		Agent:          result.Synthesis.Agent,
		Content:        result.Synthesis.Text,
		Artifacts:      artifacts,
	}

	stored, err := s.db.CreateMessage(ctx, assistantMsg)
	if err != nil {
		// The deliberation already ran; hand the unstored message back so
		// the caller can surface it alongside the persistence failure.
		slog.Error("store assistant message failed", "conversation_id", conversationID, "error", err)
		return assistantMsg, fmt.Errorf("store assistant message: %w", err)
	}

	if firstTurn && s.titles != nil && conv.Title == conversation.DefaultTitle {
		s.titles.GenerateAsync(conversationID, req.Content)
	}

	return stored, nil
}

// contextWindow pairs prior user/assistant messages into turns and keeps
// the most recent limit of them.
func contextWindow(messages []conversation.Message, limit int) []council.ContextTurn {
	if limit <= 0 {
		return nil
	}

	var turns []council.ContextTurn
	question := ""
	for _, m := range messages {
		switch m.Role {
		case conversation.RoleUser:
			question = m.Content
		case conversation.RoleAssistant:
			if question == "" {
				continue
			}
			turns = append(turns, council.ContextTurn{Question: question, Answer: m.Content})
			question = ""
		}
	}

	if len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	return turns
}
