package service

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"text/template"
	"time"

	"github.com/synod-io/synod/internal/domain/conversation"
	"github.com/synod-io/synod/internal/port/database"
	"github.com/synod-io/synod/internal/port/provider"
)

//go:embed templates/title.tmpl
var titleTmplText string

// titleTmpl is the parsed prompt template for title generation.
var titleTmpl = template.Must(template.New("title").Parse(titleTmplText))

// titleTimeout bounds the background title call; titles are cosmetic and
// must never hold a turn open.
const titleTimeout = 30 * time.Second

// TitleService derives a conversation title from its first user message
// with a single cheap model call.
type TitleService struct {
	db       database.Store
	provider provider.ModelProvider
	model    string
}

// NewTitleService creates a TitleService using the given model ID for
// title generation.
func NewTitleService(db database.Store, p provider.ModelProvider, model string) *TitleService {
	return &TitleService{db: db, provider: p, model: model}
}

// Generate derives and stores a title for the conversation. The raw model
// reply is normalized (quotes stripped, length capped) before storage.
func (s *TitleService) Generate(ctx context.Context, conversationID, firstMessage string) error {
	var buf bytes.Buffer
	if err := titleTmpl.Execute(&buf, struct{ Message string }{Message: firstMessage}); err != nil {
		return fmt.Errorf("render title prompt: %w", err)
	}

	raw, err := s.provider.Query(ctx, s.model, []provider.Message{{Role: "user", Content: buf.String()}})
	if err != nil {
		return fmt.Errorf("title query: %w", err)
	}

	title := conversation.NormalizeTitle(raw)
	if err := s.db.UpdateConversationTitle(ctx, conversationID, title); err != nil {
		return fmt.Errorf("store title: %w", err)
	}

	slog.Info("conversation titled", "conversation_id", conversationID, "title", title)
	return nil
}

// GenerateAsync runs Generate in the background with its own timeout.
// Failures are logged; the conversation keeps its default title.
func (s *TitleService) GenerateAsync(conversationID, firstMessage string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), titleTimeout)
		defer cancel()
		if err := s.Generate(ctx, conversationID, firstMessage); err != nil {
			slog.Warn("title generation failed", "conversation_id", conversationID, "error", err)
		}
	}()
}
