// Package mcp exposes folio's search and indexing over the Model Context
// Protocol so AI assistants can query local PDF collections.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is reported in the MCP initialize handshake.
const Version = "0.2.0"

// ErrMissingSearchService is returned when Ports.Search is nil.
var ErrMissingSearchService = errors.New("mcp: search service is required")

const instructions = `folio searches semantic indexes built from folders of PDFs.
Call search with a natural-language question; each result names the PDF,
the 1-based page and the section title it came from. Indexes are selected
by identity; omit it to use the default index.`

// Server wraps an mcp.Server with folio's tools and resources registered.
type Server struct {
	ports  Ports
	server *mcp.Server
}

// NewServer validates ports and registers every tool the ports allow.
// The caller's Ports value is copied, not modified.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{ports: *ports}
	if s.ports.DefaultIdentity == "" {
		s.ports.DefaultIdentity = "default"
	}
	s.server = mcp.NewServer(
		&mcp.Implementation{Name: "folio", Version: Version},
		&mcp.ServerOptions{Instructions: instructions},
	)

	s.registerTools()
	s.registerResources()
	return s, nil
}

// Run serves over stdin/stdout until ctx ends or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Handler serves the streamable HTTP transport. folio serve mounts it at /mcp.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return s.server }, nil)
}

// RunHTTP serves Handler on addr until ctx is cancelled.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-stopped
	return nil
}
