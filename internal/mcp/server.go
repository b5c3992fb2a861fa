// ABOUTME: MCP server setup for the big3 record store.
// ABOUTME: Wraps the MCP server around a hydrated repository.
package mcp

import (
	"context"
	"time"

	"github.com/harperreed/big3/internal/models"
	"github.com/harperreed/big3/internal/repository"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server with repository access.
type Server struct {
	mcpServer *mcp.Server
	repo      *repository.Repository
	strict    bool
	now       func() time.Time
}

// NewServer creates a new MCP server. strict limits 1RM updates to
// completed sets.
func NewServer(repo *repository.Repository, strict bool) (*Server, error) {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "big3",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		repo:      repo,
		strict:    strict,
		now:       time.Now,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) dateOrToday(date string) (string, error) {
	if date == "" {
		return models.FormatDate(s.now()), nil
	}
	t, err := models.ParseDate(date)
	if err != nil {
		return "", err
	}
	return models.FormatDate(t), nil
}
