// Package mcp serves the stored procurement chunks to AI assistants over the
// Model Context Protocol, on stdio or streamable HTTP.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/proctok/internal/core/ports/driving"
	"github.com/custodia-labs/proctok/internal/logger"
)

// Version is reported to clients during initialisation.
const Version = "0.1.0"

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

const instructions = `Search procurement documents (tenders, RFPs, guidance) that were ` +
	`chunked and embedded by proctok. Use the "search" tool with a natural-language ` +
	`query; results are ranked by cosine similarity. "collection_stats" reports how ` +
	`many chunks are stored.`

// ErrMissingSearchService is returned by NewServer when Ports.Search is nil.
var ErrMissingSearchService = errors.New("mcp: search service is required")

// Ports are the services behind the tools and resources.
type Ports struct {
	Search driving.SearchService

	// Tokens backs the token report resource. Optional.
	Tokens driving.TokenService
}

// Validate reports a missing required service.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}

// Server wraps an mcp.Server with the proctok tools and resources registered.
type Server struct {
	ports  *Ports
	server *mcp.Server
}

// NewServer registers tools and resources for ports.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{
		ports: ports,
		server: mcp.NewServer(
			&mcp.Implementation{Name: "proctok", Title: "Procurement document search", Version: Version},
			&mcp.ServerOptions{Instructions: instructions},
		),
	}
	s.registerTools()
	s.registerResources()
	return s, nil
}

// Run serves over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	logger.Debug("mcp: serving on stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Handler returns the streamable HTTP handler for s.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return s.server }, nil)
}

// RunHTTP serves streamable HTTP on addr until ctx is cancelled.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("mcp: listening on %s", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("mcp: shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
