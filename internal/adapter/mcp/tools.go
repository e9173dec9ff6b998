package mcp

import (
	"context"
	"encoding/json"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/synod-io/synod/internal/domain/council"
)

// registerTools registers all MCP tools on the server.
func (s *Server) registerTools() {
	s.mcpServer.AddTools(
		s.councilAskTool(),
		s.councilLeaderboardTool(),
		s.councilModelsTool(),
	)
}

func (s *Server) councilAskTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("council_ask",
		mcplib.WithDescription("Run a full council deliberation on a question and return the synthesized consensus answer"),
		mcplib.WithString("query",
			mcplib.Required(),
			mcplib.Description("The question for the council"),
		),
	)
	return mcpserver.ServerTool{
		Tool:    tool,
		Handler: s.handleCouncilAsk,
	}
}

func (s *Server) councilLeaderboardTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("council_leaderboard",
		mcplib.WithDescription("Get the persistent agent skill scores, best first"),
	)
	return mcpserver.ServerTool{
		Tool:    tool,
		Handler: s.handleCouncilLeaderboard,
	}
}

func (s *Server) councilModelsTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("council_models",
		mcplib.WithDescription("List the models available through the configured provider"),
	)
	return mcpserver.ServerTool{
		Tool:    tool,
		Handler: s.handleCouncilModels,
	}
}

// askResult is the council_ask payload: the consensus answer plus the turn
// leaderboard that produced it.
type askResult struct {
	Agent       string                     `json:"agent"`
	Answer      string                     `json:"answer"`
	Leaderboard []council.AggregateRanking `json:"leaderboard,omitempty"`
}

func (s *Server) handleCouncilAsk(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Council == nil {
		return mcplib.NewToolResultError("council not configured"), nil
	}
	args := req.GetArguments()
	query, ok := args["query"].(string)
	if !ok || query == "" {
		return mcplib.NewToolResultError("query is required"), nil
	}

	result := s.deps.Council.RunTurn(ctx, "", query, nil)
	data, err := json.Marshal(askResult{
		Agent:       result.Synthesis.Agent,
		Answer:      result.Synthesis.Text,
		Leaderboard: result.Artifacts.Leaderboard,
	})
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to marshal turn result", err), nil
	}
	return toolResultJSON(string(data)), nil
}

func (s *Server) handleCouncilLeaderboard(ctx context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Scores == nil {
		return mcplib.NewToolResultError("score service not configured"), nil
	}
	entries, err := s.deps.Scores.Leaderboard(ctx)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to load leaderboard", err), nil
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to marshal leaderboard", err), nil
	}
	return toolResultJSON(string(data)), nil
}

func (s *Server) handleCouncilModels(ctx context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Catalog == nil {
		return mcplib.NewToolResultError("model catalog not configured"), nil
	}
	models, err := s.deps.Catalog.ListModels(ctx)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to list models", err), nil
	}
	data, err := json.Marshal(models)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to marshal models", err), nil
	}
	return toolResultJSON(string(data)), nil
}

func toolResultJSON(data string) *mcplib.CallToolResult {
	return mcplib.NewToolResultText(data)
}
