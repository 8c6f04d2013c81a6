package mcp

import (
	"context"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is the server version reported during the MCP handshake.
const Version = "0.1.0"

// Server wraps an MCP server exposing semdex search tools and resources.
type Server struct {
	server *mcp.Server
	ports  Ports
}

// NewServer creates an MCP server with the given ports.
func NewServer(ports Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, err
	}

	s := &Server{
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "semdex",
			Version: Version,
		}, nil),
		ports: ports,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Run starts the server on stdio and blocks until the context is cancelled
// or the transport closes.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP starts the server on the given address using the streamable HTTP
// transport. It blocks until the context is cancelled or the listener fails.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
