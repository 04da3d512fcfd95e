// Package mcpadapter exposes the QA pipeline as MCP tools over stdio so
// agent hosts can query the legal corpus directly.
package mcpadapter

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/hoanglb/legal-qa-assistant/internal/core/ports"
)

const (
	serverName    = "legal-qa-assistant"
	serverVersion = "1.0.0"
)

type Server struct {
	mcp      *server.MCPServer
	answerer ports.QuestionAnswerer
}

func NewServer(answerer ports.QuestionAnswerer) *Server {
	s := &Server{
		mcp:      server.NewMCPServer(serverName, serverVersion),
		answerer: answerer,
	}
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	s.mcp.AddTool(legalAskTool(), s.handleLegalAsk)
	s.mcp.AddTool(legalSearchTool(), s.handleLegalSearch)
}

// Serve runs the stdio transport until the host closes the stream.
func (s *Server) Serve(_ context.Context) error {
	return server.ServeStdio(s.mcp)
}
