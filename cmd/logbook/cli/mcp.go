package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	lmcp "github.com/logbookhq/logbook/internal/mcp"
	"github.com/logbookhq/logbook/internal/service"
	"github.com/logbookhq/logbook/internal/session"
	"github.com/logbookhq/logbook/internal/sheets"
)

func newMCPCmd() *cobra.Command {
	var (
		transport string
		port      int
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server for AI agents",
		Long: `Start a Model Context Protocol (MCP) server that exposes the vehicle
register as tools for AI agents like Claude. Supports stdio (default) and
HTTP transports.

In stdio mode, the MCP server communicates over stdin/stdout using JSON-RPC,
suitable for direct integration with Claude Desktop or other MCP clients.

In HTTP mode, the server listens on the specified port for streaming HTTP
connections.`,
		Example: `  logbook mcp                              # stdio mode (for Claude Desktop)
  logbook mcp --transport http --port 3001  # HTTP mode`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMCP(transport, port)
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport mode: stdio or http")
	cmd.Flags().IntVar(&port, "port", 3001, "HTTP port (only used with --transport http)")

	return cmd
}

func runMCP(transport string, port int) error {
	// Logs go to stderr; stdout belongs to the JSON-RPC stream in stdio mode.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Upstream.URL == "" {
		return fmt.Errorf("no upstream gateway configured; set upstream.url in %s", "logbook.yaml")
	}

	store, err := session.NewStore(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("init session store: %w", err)
	}
	defer store.Close()

	upstreamTimeout, _ := cfg.UpstreamTimeout()
	gateway := sheets.NewClient(cfg.Upstream.URL, upstreamTimeout)

	jwtSecret := cfg.Auth.JWTSecret
	if jwtSecret == "" {
		jwtSecret = "logbook-mcp-local"
	}
	authSvc := service.NewAuthService(gateway, store, jwtSecret)
	vehicleSvc := service.NewVehicleService(gateway)

	mcpSrv := lmcp.NewMCPServer(authSvc, vehicleSvc, logger)

	switch transport {
	case "stdio":
		return mcpSrv.ServeStdio()
	case "http":
		addr := fmt.Sprintf(":%d", port)
		logger.Info("starting MCP HTTP server", "addr", addr)
		return mcpSrv.ServeHTTP(addr)
	default:
		return fmt.Errorf("unsupported transport %q; use 'stdio' or 'http'", transport)
	}
}
