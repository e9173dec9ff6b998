package postgres

import (
	"context"
	"fmt"

	"github.com/synod-io/synod/internal/domain/conversation"
)

func (s *Store) CreateConversation(ctx context.Context, c *conversation.Conversation) (*conversation.Conversation, error) {
	title := c.Title
	if title == "" {
		title = conversation.DefaultTitle
	}

	var created conversation.Conversation
	err := s.pool.QueryRow(ctx,
		`INSERT INTO conversations (title)
		 VALUES ($1)
		 RETURNING id, title, created_at, updated_at`,
		title,
	).Scan(&created.ID, &created.Title, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	return &created, nil
}

func (s *Store) GetConversation(ctx context.Context, id string) (*conversation.Conversation, error) {
	var c conversation.Conversation
	err := s.pool.QueryRow(ctx,
		`SELECT id, title, created_at, updated_at
		 FROM conversations WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.Title, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, notFoundWrap(err, "get conversation %s", id)
	}
	return &c, nil
}

func (s *Store) ListConversations(ctx context.Context) ([]conversation.Conversation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT c.id, c.title, c.created_at, c.updated_at, COUNT(m.id)::int AS message_count
		 FROM conversations c
		 LEFT JOIN conversation_messages m ON m.conversation_id = c.id
		 GROUP BY c.id
		 ORDER BY c.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var result []conversation.Conversation
	for rows.Next() {
		var c conversation.Conversation
		if err := rows.Scan(&c.ID, &c.Title, &c.CreatedAt, &c.UpdatedAt, &c.MessageCount); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (s *Store) UpdateConversationTitle(ctx context.Context, id, title string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE conversations SET title = $2, updated_at = NOW() WHERE id = $1`,
		id, title)
	return execExpectOne(tag, err, "update conversation title %s", id)
}

func (s *Store) DeleteConversation(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM conversations WHERE id = $1`, id)
	return execExpectOne(tag, err, "delete conversation %s", id)
}

func (s *Store) CreateMessage(ctx context.Context, m *conversation.Message) (*conversation.Message, error) {
	var created conversation.Message
	err := s.pool.QueryRow(ctx,
		`INSERT INTO conversation_messages (conversation_id, role, agent, content, artifacts)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, conversation_id, role, agent, content, artifacts, created_at`,
		m.ConversationID, m.Role, m.Agent, m.Content, m.Artifacts,
	).Scan(&created.ID, &created.ConversationID, &created.Role, &created.Agent,
		&created.Content, &created.Artifacts, &created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	// Update conversation's updated_at
	_, _ = s.pool.Exec(ctx, `UPDATE conversations SET updated_at = NOW() WHERE id = $1`, m.ConversationID)
	return &created, nil
}

func (s *Store) ListMessages(ctx context.Context, conversationID string) ([]conversation.Message, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, conversation_id, role, agent, content, artifacts, created_at
		 FROM conversation_messages WHERE conversation_id = $1 ORDER BY created_at ASC`,
		conversationID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var result []conversation.Message
	for rows.Next() {
		var m conversation.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Agent,
			&m.Content, &m.Artifacts, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		result = append(result, m)
	}
	return result, rows.Err()
}
