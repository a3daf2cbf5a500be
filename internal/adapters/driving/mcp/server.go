package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
	"github.com/custodia-labs/ledgerbridge/internal/logger"
)

// Version is the MCP server version.
const Version = "0.1.0"

// Server exposes the invoice mirror as MCP tools and resources.
type Server struct {
	ports  *Ports
	server *mcp.Server
}

// NewServer creates a new MCP server acting as ports.Principal.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{
		ports: ports,
		server: mcp.NewServer(
			&mcp.Implementation{Name: "ledgerbridge", Version: Version},
			&mcp.ServerOptions{Instructions: instructions(ports.Principal)},
		),
	}
	s.registerTools()
	s.registerResources()
	return s, nil
}

// instructions tells the client what the acting principal can see.
func instructions(p domain.Principal) string {
	scope := "all mirrored FreeAgent invoices, contacts and projects"
	if contact, ok := p.LinkedContactID(); ok && !p.IsAdministrator() {
		scope = fmt.Sprintf("the invoices of FreeAgent contact %s only", domain.ShortID(contact))
	} else if !p.IsAdministrator() {
		scope = "nothing; the principal is not linked to a contact"
	}

	text := fmt.Sprintf("Read-only access to a local FreeAgent invoice mirror as %q, covering %s. "+
		"Invoice ids may be short ids such as 42 or full FreeAgent URLs.", p.ID(), scope)
	if p.IsAdministrator() {
		text += " sync_invoices forces a refresh from FreeAgent; listing already syncs when the mirror is stale."
	}
	return text
}

// Run serves over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	logger.Debug("MCP server on stdio acting as %s", s.ports.Principal.ID())
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves the streamable HTTP transport on addr until ctx is cancelled.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr: addr,
		Handler: mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
			return s.server
		}, nil),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("MCP HTTP shutdown: %v", err)
		}
	}()

	logger.Info("MCP server listening on %s acting as %s", addr, s.ports.Principal.ID())
	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
