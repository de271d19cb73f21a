// Package mcp exposes the corpus engine as Model Context Protocol tools over stdio.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/hyperjump/seisho/internal/config"
	"github.com/hyperjump/seisho/internal/search"
)

// ServerName is the MCP server name
const ServerName = "seisho"

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp    *server.MCPServer
	engine *search.AsyncEngine
	config *config.Config
	logger *zap.Logger
}

// NewServer creates an MCP server with all tools registered.
func NewServer(engine *search.AsyncEngine, cfg *config.Config, version string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		mcp:    server.NewMCPServer(ServerName, version),
		engine: engine,
		config: cfg,
		logger: logger,
	}
	s.registerTools()
	return s
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) registerTools() {
	s.mcp.AddTool(crossReferenceTool(), s.handleCrossReference)
	s.mcp.AddTool(proximityTool(), s.handleProximity)
	s.mcp.AddTool(wordFrequencyTool(), s.handleWordFrequency)
	s.mcp.AddTool(corpusStatusTool(), s.handleCorpusStatus)
}
