package operation

import (
	"context"
	"net/http"
	"time"

	"github.com/go-training/miurev/pkg/core"
	"github.com/go-training/miurev/pkg/observability"
	"github.com/go-training/miurev/pkg/operation/token"

	"github.com/mark3labs/mcp-go/server"
)

// ServerName and ServerVersion identify the gateway to MCP clients.
const (
	ServerName    = "miurev"
	ServerVersion = "1.0.0"
)

// MCPServer wraps the underlying MCP server instance.
type MCPServer struct {
	server *server.MCPServer
}

// NewMCPServer creates an MCP server exposing the catalog and token tools.
// tokens may be nil, in which case show_token_status is not registered.
func NewMCPServer(svc Catalog, tokens token.Loader) *MCPServer {
	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(true),
		server.WithLogging(),
		server.WithRecovery(),
		server.WithToolHandlerMiddleware(observability.MCPToolHandlerMiddleware()),
	)

	RegisterCatalogTool(mcpServer, svc)
	if tokens != nil {
		RegisterTokenTool(mcpServer, tokens, nil)
	}

	return &MCPServer{server: mcpServer}
}

// Server returns the underlying MCP server.
func (s *MCPServer) Server() *server.MCPServer {
	return s.server
}

// ServeHTTP returns a streamable HTTP server that tags every call with the
// caller's request ID.
func (s *MCPServer) ServeHTTP() *server.StreamableHTTPServer {
	return server.NewStreamableHTTPServer(s.server,
		server.WithHeartbeatInterval(30*time.Second),
		server.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			return core.WithRequestID(ctx, r.Header.Get(core.RequestIDHeader))
		}),
	)
}

// ServeStdio starts the MCP server using stdio transport.
func (s *MCPServer) ServeStdio() error {
	return server.ServeStdio(s.server, server.WithStdioContextFunc(func(ctx context.Context) context.Context {
		return core.WithRequestID(ctx, "")
	}))
}
