// Package mcp exposes the council over the Model Context Protocol so MCP
// clients can run deliberation turns and inspect the leaderboard and model
// catalog as tools.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/synod-io/synod/internal/domain/catalog"
	"github.com/synod-io/synod/internal/domain/council"
	"github.com/synod-io/synod/internal/service"
)

// ServerConfig holds the MCP server settings. An empty APIKey disables
// authentication.
type ServerConfig struct {
	Addr    string
	Name    string
	Version string
	APIKey  string
}

// TurnRunner runs one full deliberation turn.
type TurnRunner interface {
	RunTurn(ctx context.Context, conversationID, query string, history []council.ContextTurn) *service.TurnResult
}

// ScoreReader serves the persistent leaderboard.
type ScoreReader interface {
	Leaderboard(ctx context.Context) ([]service.ScoreEntry, error)
}

// ModelLister enumerates the model catalog.
type ModelLister interface {
	ListModels(ctx context.Context) ([]catalog.ModelInfo, error)
}

// ServerDeps are the collaborators behind the MCP tools. A nil dependency
// turns its tools into error results rather than panics.
type ServerDeps struct {
	Council TurnRunner
	Scores  ScoreReader
	Catalog ModelLister
}

// Server hosts the MCP tool surface over SSE.
type Server struct {
	cfg        ServerConfig
	deps       ServerDeps
	mcpServer  *mcpserver.MCPServer
	httpServer *http.Server
}

// NewServer creates an MCP server with all council tools and resources
// registered.
func NewServer(cfg ServerConfig, deps ServerDeps) *Server {
	s := &Server{
		cfg:  cfg,
		deps: deps,
		mcpServer: mcpserver.NewMCPServer(cfg.Name, cfg.Version,
			mcpserver.WithToolCapabilities(false),
		),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server, used by tests to inspect
// registered tools.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcpServer
}

// Start begins serving the MCP endpoint on the configured address. It
// returns once the listener is bound; serve errors after that are logged.
func (s *Server) Start() error {
	sse := mcpserver.NewSSEServer(s.mcpServer)
	s.httpServer = &http.Server{
		Handler:           AuthMiddleware(s.cfg.APIKey, sse),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("mcp listen on %s: %w", s.cfg.Addr, err)
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("mcp server stopped", "error", err)
		}
	}()

	slog.Info("mcp server listening", "addr", ln.Addr().String())
	return nil
}

// Stop gracefully shuts the MCP endpoint down.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
