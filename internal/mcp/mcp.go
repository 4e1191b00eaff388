// Package mcp implements the Model Context Protocol server for the
// leaderboard service.
//
// The MCP server exposes the same capabilities as the HTTP API through
// MCP resources and tools, allowing MCP-compatible AI agents to submit
// stats and read leaderboards.
package mcp

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/primeboard/primeboard/internal/model"
	"github.com/primeboard/primeboard/internal/service/ingest"
	"github.com/primeboard/primeboard/internal/service/rank"
)

// Store is the storage surface the MCP handlers read from.
type Store interface {
	GetBoard(ctx context.Context, metric string, faction model.Faction) (model.CachedBoard, error)
	GetAgentByName(ctx context.Context, name string) (model.Agent, error)
	LatestSubmissionForAgent(ctx context.Context, agentID uuid.UUID) (model.Submission, error)
}

// Server wraps the MCP server with the service layer.
type Server struct {
	mcpServer *mcpserver.MCPServer
	store     Store
	ingestSvc *ingest.Service
	rankSvc   *rank.Service
	logger    *slog.Logger
}

// New creates and configures a new MCP server with all resources and tools.
func New(store Store, ingestSvc *ingest.Service, rankSvc *rank.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		store:     store,
		ingestSvc: ingestSvc,
		rankSvc:   rankSvc,
		logger:    logger,
	}

	s.mcpServer = mcpserver.NewMCPServer(
		"primeboard",
		"0.1.0",
		mcpserver.WithResourceCapabilities(true, true),
		mcpserver.WithToolCapabilities(true),
	)

	s.registerResources()
	s.registerTools()

	return s
}

// MCPServer returns the underlying mcp-go server for transport setup.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcpServer
}

func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{
			mcplib.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}

func textResult(text string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{
			mcplib.TextContent{Type: "text", Text: text},
		},
	}
}
