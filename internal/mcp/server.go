// Package mcp exposes the logbook register to MCP clients: AI agents can
// search records, log in, and submit edits through typed tools.
package mcp

import (
	"log/slog"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/logbookhq/logbook/internal/service"
	"github.com/logbookhq/logbook/internal/session"
)

// MCPServer wraps the mcp-go server with the logbook tool and resource
// registrations. One MCP process holds at most one authenticated session at
// a time; search works without one.
type MCPServer struct {
	authSvc    *service.AuthService
	vehicleSvc *service.VehicleService
	logger     *slog.Logger
	server     *server.MCPServer

	mu   sync.Mutex
	sess *session.Session
}

// NewMCPServer creates an MCPServer pre-loaded with the logbook tools and
// resources. The returned server is ready to serve over stdio or HTTP.
func NewMCPServer(authSvc *service.AuthService, vehicleSvc *service.VehicleService, logger *slog.Logger) *MCPServer {
	s := &MCPServer{
		authSvc:    authSvc,
		vehicleSvc: vehicleSvc,
		logger:     logger,
	}

	mcpServer := server.NewMCPServer(
		"Logbook Register",
		"0.1.0",
		server.WithResourceCapabilities(true, false),
		server.WithToolCapabilities(true),
	)

	s.registerTools(mcpServer)
	s.registerResources(mcpServer)

	s.server = mcpServer
	return s
}

// Server returns the underlying mcp-go MCPServer instance. Useful for
// advanced configuration or testing.
func (s *MCPServer) Server() *server.MCPServer {
	return s.server
}

// ServeStdio starts the MCP server in stdio mode. This is the primary
// integration path for MCP clients that launch the server as a subprocess.
func (s *MCPServer) ServeStdio() error {
	s.logger.Info("starting MCP server in stdio mode")
	return server.ServeStdio(s.server)
}

// ServeHTTP starts the MCP server in Streamable HTTP mode, listening on
// the given address (e.g. ":3001"). This is suitable for remote MCP clients.
func (s *MCPServer) ServeHTTP(addr string) error {
	httpServer := server.NewStreamableHTTPServer(s.server)
	s.logger.Info("MCP HTTP server starting", "addr", addr)
	return httpServer.Start(addr)
}

// currentSession returns the session established by the login tool, or nil.
func (s *MCPServer) currentSession() *session.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess
}

func (s *MCPServer) setSession(sess *session.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess = sess
}

func readOnlyAnnotation() mcp.ToolAnnotation {
	return mcp.ToolAnnotation{
		ReadOnlyHint: boolPtr(true),
	}
}

func mutatingAnnotation() mcp.ToolAnnotation {
	return mcp.ToolAnnotation{
		ReadOnlyHint: boolPtr(false),
	}
}

func boolPtr(b bool) *bool {
	return &b
}
