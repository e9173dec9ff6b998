package mcp

import (
	"context"
	"encoding/json"

	mcplib "github.com/mark3labs/mcp-go/mcp"
)

// registerResources registers all MCP resources on the server.
func (s *Server) registerResources() {
	s.mcpServer.AddResource(
		mcplib.NewResource(
			"synod://leaderboard",
			"Agent Leaderboard",
			mcplib.WithResourceDescription("Persistent agent skill scores, best first"),
			mcplib.WithMIMEType("application/json"),
		),
		s.handleLeaderboardResource,
	)

	s.mcpServer.AddResource(
		mcplib.NewResource(
			"synod://models",
			"Model Catalog",
			mcplib.WithResourceDescription("Models available through the configured provider"),
			mcplib.WithMIMEType("application/json"),
		),
		s.handleModelsResource,
	)
}

func (s *Server) handleLeaderboardResource(ctx context.Context, req mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	if s.deps.Scores == nil {
		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     `{"error":"score service not configured"}`,
			},
		}, nil
	}
	entries, err := s.deps.Scores.Leaderboard(ctx)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return nil, err
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleModelsResource(ctx context.Context, req mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	if s.deps.Catalog == nil {
		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     `{"error":"model catalog not configured"}`,
			},
		}, nil
	}
	models, err := s.deps.Catalog.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(models)
	if err != nil {
		return nil, err
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
