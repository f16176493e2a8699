// Package mcpserver exposes the extraction pipeline as Model Context Protocol
// tools so that MCP-capable clients (IDEs, agent frameworks) can parse meeting
// transcripts and extract requirements documents remotely.
package mcpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/MrWong99/reqsift/internal/pipeline"
	"github.com/MrWong99/reqsift/pkg/provider/llm"
)

// Version is the MCP server version.
const Version = "0.1.0"

// Server is the MCP server for Reqsift.
type Server struct {
	provider llm.Provider
	cfg      pipeline.Config
	server   *mcp.Server
}

// NewServer creates an MCP server whose extract_requirements tool runs
// against the given LLM provider with the given pipeline defaults.
func NewServer(provider llm.Provider, cfg pipeline.Config) (*Server, error) {
	if provider == nil {
		return nil, fmt.Errorf("mcpserver: provider must not be nil")
	}

	impl := &mcp.Implementation{
		Name:    "reqsift",
		Version: Version,
	}

	s := &Server{
		provider: provider,
		cfg:      cfg,
		server:   mcp.NewServer(impl, nil),
	}

	s.registerTools()

	return s, nil
}

// Run starts the MCP server over stdio.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Handler returns a streamable HTTP handler serving this MCP server, for
// mounting on an existing mux alongside health and metrics endpoints.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)
}

// RunHTTP starts the MCP server over HTTP on the specified address.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background()) //nolint:errcheck
	}()

	err := httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
