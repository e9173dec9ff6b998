package http

import (
	"github.com/synod-io/synod/internal/service"
)

// Handlers holds the HTTP handler dependencies.
type Handlers struct {
	Conversations *service.ConversationService
	Catalog       *service.CatalogService
	Scores        *service.ScoreService
}
