// Package mcp exposes the chunk store as Model Context Protocol tools over
// stdio.
//
// Tools:
//   - rlm_chunk: store a new chunk
//   - rlm_peek: read a chunk by ID
//   - rlm_list: list chunk records, newest first
//   - rlm_grep: regex or fuzzy line search over chunk bodies
//   - rlm_search: BM25 ranked search
//   - rlm_stats: store statistics
//
// Handlers return *MCPError for invalid arguments and store failures.
package mcp

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/server"

	"github.com/rlmkit/rlm/internal/store"
)

const (
	// ServerName is the MCP server name
	ServerName = "rlm"
	// ServerVersion is the current server version
	ServerVersion = "0.10.0"
)

// Server wraps the MCP server with the chunk store.
type Server struct {
	mcp    *server.MCPServer
	store  store.Store
	logger *log.Logger

	afterChunk func()
}

// NewServer creates a server over st. A nil logger discards.
func NewServer(st store.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{
		mcp:    server.NewMCPServer(ServerName, ServerVersion),
		store:  st,
		logger: logger,
	}
	s.registerTools()
	return s
}

// OnChunk registers fn to run after every successful rlm_chunk call.
func (s *Server) OnChunk(fn func()) { s.afterChunk = fn }

// Serve runs the server on stdio until the client disconnects. The store is
// closed on return.
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.store.Close() }()
	s.logger.Info("serving MCP on stdio", "name", ServerName, "version", ServerVersion)
	return server.ServeStdio(s.mcp)
}

func (s *Server) registerTools() {
	s.mcp.AddTool(chunkTool(), s.handleChunk)
	s.mcp.AddTool(peekTool(), s.handlePeek)
	s.mcp.AddTool(listTool(), s.handleList)
	s.mcp.AddTool(grepTool(), s.handleGrep)
	s.mcp.AddTool(searchTool(), s.handleSearch)
	s.mcp.AddTool(statsTool(), s.handleStats)
}
