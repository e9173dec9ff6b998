// Package provider defines the model provider port (interface).
package provider

import (
	"context"

	"github.com/synod-io/synod/internal/domain/catalog"
)

// Message is one chat message sent to a model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ModelProvider is the port interface for obtaining agent replies. Any
// error, timeout, or empty reply is treated uniformly by the pipeline as "no
// answer" for the current stage; retry policy lives inside the adapter.
type ModelProvider interface {
	// Name returns the provider's unique identifier (e.g. "openrouter").
	Name() string

	// Query sends the messages to the identified model and returns its text.
	Query(ctx context.Context, modelID string, messages []Message) (string, error)
}

// ModelLister is implemented by providers that can enumerate their models
// for the catalog surface.
type ModelLister interface {
	ListModels(ctx context.Context) ([]catalog.ModelInfo, error)
}
