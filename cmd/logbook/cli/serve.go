package cli

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/logbookhq/logbook/internal/server"
	"github.com/logbookhq/logbook/internal/service"
	"github.com/logbookhq/logbook/internal/session"
	"github.com/logbookhq/logbook/internal/sheets"
	"github.com/logbookhq/logbook/internal/telemetry"
)

const banner = `
 _    ___   ___ ___  ___   ___  _  __
| |  / _ \ / __| _ )/ _ \ / _ \| |/ /
| |_| (_) | (__| _ \ (_) | (_) | ' <
|____\___/ \___|___/\___/ \___/|_|\_\
`

func newServeCmd() *cobra.Command {
	var (
		port       int
		host       string
		upstream   string
		noUI       bool
		dev        bool
		background bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the logbook server",
		Long:  "Start the HTTP server that serves the browser UI and the JSON API over the vehicle register gateway.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if background {
				return spawnBackground()
			}
			return runServe(cmd, host, port, upstream, noUI, dev)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP listen port (overrides config)")
	cmd.Flags().StringVar(&host, "host", "", "HTTP listen host (overrides config)")
	cmd.Flags().StringVar(&upstream, "upstream", "", "register gateway URL (overrides config)")
	cmd.Flags().BoolVar(&noUI, "no-ui", false, "Disable the browser UI, serve the API only")
	cmd.Flags().BoolVar(&dev, "dev", false, "Enable development mode (verbose logging, CORS *)")
	cmd.Flags().BoolVarP(&background, "background", "d", false, "Run the server as a background process")

	viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", cmd.Flags().Lookup("host"))
	viper.BindPFlag("upstream.url", cmd.Flags().Lookup("upstream"))

	return cmd
}

// spawnBackground re-execs the current command without --background,
// detached from the terminal, with output redirected to the log file.
func spawnBackground() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locate executable: %w", err)
	}

	args := make([]string, 0, len(os.Args)-1)
	for _, a := range os.Args[1:] {
		if a == "--background" || a == "-d" {
			continue
		}
		args = append(args, a)
	}

	if err := os.MkdirAll(resolveDataDir(), 0755); err != nil {
		return err
	}
	logFile, err := os.OpenFile(logFilePath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	child := exec.Command(exe, args...)
	child.Stdout = logFile
	child.Stderr = logFile
	setSysProcAttr(child)

	if err := child.Start(); err != nil {
		return fmt.Errorf("start background server: %w", err)
	}

	fmt.Printf("Server started in the background (PID %d)\n", child.Process.Pid)
	fmt.Printf("  Logs: %s\n", logFilePath())
	fmt.Println("  Stop with: logbook stop")
	return nil
}

func runServe(cmd *cobra.Command, host string, port int, upstream string, noUI, dev bool) error {
	fmt.Print(banner)
	fmt.Println()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if host != "" {
		cfg.Server.Host = host
	}
	if port != 0 {
		cfg.Server.Port = port
	}
	if upstream != "" {
		cfg.Upstream.URL = upstream
	}
	if secret := os.Getenv("LOGBOOK_JWT_SECRET"); secret != "" && cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = secret
	}
	if dev && cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = "logbook-dev-secret-change-me"
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := newLogger(cfg.Logging.Level, cfg.Logging.Format, dev)

	// 1. Session store (SQLite)
	store, err := session.NewStore(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("init session store: %w", err)
	}
	defer store.Close()
	logger.Info("session store initialized", "path", cfg.Storage.DataDir)

	// 2. Gateway client
	upstreamTimeout, _ := cfg.UpstreamTimeout()
	gateway := sheets.NewClient(cfg.Upstream.URL, upstreamTimeout)
	logger.Info("register gateway configured", "url", cfg.Upstream.URL)

	// 3. Services
	sessionTTL, _ := cfg.SessionTTL()
	authSvc := service.NewAuthService(gateway, store, cfg.Auth.JWTSecret).WithSessionTTL(sessionTTL)
	vehicleSvc := service.NewVehicleService(gateway)

	// Trim session rows whose tokens the gateway has long since expired.
	store.StartJanitor(cmd.Context(), authSvc.SessionTTL(), time.Hour, logger)

	// 4. Telemetry (anonymous heartbeats, opt out with
	// `logbook config set telemetry.enabled false`)
	tracker := telemetry.New(cmd.Context(), store, func() telemetry.Properties {
		count, _ := store.Count(cmd.Context())
		return telemetry.Properties{
			Version:   versionString(),
			GoVersion: runtime.Version(),
			OS:        runtime.GOOS,
			Arch:      runtime.GOARCH,
			Sessions:  count,
		}
	})
	if tracker != nil {
		telemetry.PrintNotice()
		tracker.Start()
		defer tracker.Shutdown()
	}

	// 5. HTTP server
	shutdownTimeout, _ := cfg.ShutdownTimeout()
	corsOrigins := cfg.Server.CORS.Origins
	if dev {
		corsOrigins = []string{"*"}
	}
	srvCfg := server.Config{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ShutdownTimeout: shutdownTimeout,
		CORSOrigins:     corsOrigins,
		EnableUI:        !noUI,
		RateLimit:       server.DefaultConfig().RateLimit,
		LoginRateLimit:  server.DefaultConfig().LoginRateLimit,
	}
	if cfg.Server.TLS.Enabled {
		srvCfg.TLSCertFile = cfg.Server.TLS.CertFile
		srvCfg.TLSKeyFile = cfg.Server.TLS.KeyFile
	}

	srv := server.New(srvCfg, gateway, authSvc, vehicleSvc, logger)

	if err := writePID(os.Getpid()); err != nil {
		logger.Warn("failed to write pid file", "error", err)
	}
	defer removePID()

	scheme := "http"
	if cfg.Server.TLS.Enabled {
		scheme = "https"
	}
	fmt.Printf("→ Logbook %s\n", versionString())
	fmt.Printf("→ Listening on %s://%s:%d\n", scheme, cfg.Server.Host, cfg.Server.Port)
	if !noUI {
		fmt.Printf("→ Browser UI: %s://%s:%d/\n", scheme, cfg.Server.Host, cfg.Server.Port)
	}
	fmt.Printf("→ OpenAPI:    %s://%s:%d/openapi.json\n", scheme, cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("→ Health:     %s://%s:%d/healthz\n", scheme, cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("→ Register:   %s\n", cfg.Upstream.URL)
	fmt.Println()

	return srv.ListenAndServe()
}

// newLogger builds the process logger from the logging config. Dev mode
// forces debug level.
func newLogger(level, format string, dev bool) *slog.Logger {
	logLevel := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	if dev {
		logLevel = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
