// Package server wires the HTTP surface of logbook: the JSON API, the
// health probes, and the embedded browser UI.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/logbookhq/logbook/internal/handler"
	"github.com/logbookhq/logbook/internal/openapi"
	"github.com/logbookhq/logbook/internal/server/middleware"
	"github.com/logbookhq/logbook/internal/service"
	"github.com/logbookhq/logbook/internal/sheets"
	"github.com/logbookhq/logbook/internal/ui"
)

// Config holds the HTTP server configuration.
type Config struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	EnableUI        bool
	TLSCertFile     string
	TLSKeyFile      string
	// RateLimit caps API requests per IP per minute. Zero disables the
	// limiter (tests).
	RateLimit int
	// LoginRateLimit caps login attempts per IP per minute. Zero disables
	// the limiter (tests).
	LoginRateLimit int
}

// DefaultConfig returns a Config with sensible production defaults.
func DefaultConfig() Config {
	return Config{
		Host:            "0.0.0.0",
		Port:            8080,
		ShutdownTimeout: 30 * time.Second,
		CORSOrigins:     []string{"*"},
		EnableUI:        true,
		RateLimit:       240,
		LoginRateLimit:  10,
	}
}

// Server is the top-level HTTP server. It owns the Chi router, the gateway
// client, and the auth and vehicle services.
type Server struct {
	cfg        Config
	router     chi.Router
	gateway    *sheets.Client
	authSvc    *service.AuthService
	vehicleSvc *service.VehicleService
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a new Server, wires up all routes and middleware, and returns
// it ready to listen. Call ListenAndServe to start accepting connections.
func New(cfg Config, gateway *sheets.Client, authSvc *service.AuthService, vehicleSvc *service.VehicleService, logger *slog.Logger) *Server {
	s := &Server{
		cfg:        cfg,
		gateway:    gateway,
		authSvc:    authSvc,
		vehicleSvc: vehicleSvc,
		logger:     logger,
	}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// --- Global middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(chimw.Compress(5))

	// --- Health checks (no auth required) ---
	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)

	// --- OpenAPI spec (no auth required) ---
	r.Get("/openapi.json", handleOpenAPI)

	secureCookies := s.cfg.TLSCertFile != ""
	sessionHandler := handler.NewSessionHandler(s.authSvc, secureCookies)
	vehicleHandler := handler.NewVehicleHandler(s.vehicleSvc)
	userHandler := handler.NewUserHandler(s.authSvc)

	// --- API routes ---
	r.Route("/api/v1", func(r chi.Router) {
		if s.cfg.RateLimit > 0 {
			r.Use(middleware.RateLimit(s.cfg.RateLimit))
		}

		// Login is the only unauthenticated endpoint and the only one with
		// a limiter of its own beyond the blanket API limit.
		r.Group(func(r chi.Router) {
			if s.cfg.LoginRateLimit > 0 {
				r.Use(middleware.LoginRateLimit(s.cfg.LoginRateLimit))
			}
			r.Post("/session", sessionHandler.Login)
		})

		// Search is read-only and carries no token upstream, so it is
		// served without a session, like the original register page.
		r.Get("/vehicles", vehicleHandler.Search)

		// Everything else requires a live session.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(s.authSvc))

			r.Get("/session", sessionHandler.Whoami)
			r.Delete("/session", sessionHandler.Logout)
			r.Post("/session/password", userHandler.ChangePassword)

			r.Put("/vehicles/{rowIndex}", vehicleHandler.Update)

			// User management is admin only.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin())

				r.Get("/users", userHandler.ListUsers)
				r.Post("/users", userHandler.AddUser)
				r.Delete("/users/{username}", userHandler.DeleteUser)
			})
		})
	})

	// --- Embedded browser UI ---
	if s.cfg.EnableUI {
		staticFS, err := fs.Sub(ui.Static, "static")
		if err != nil {
			s.logger.Error("failed to create sub filesystem for UI", "error", err)
		} else {
			fileServer := http.FileServer(http.FS(staticFS))
			r.Get("/app.js", fileServer.ServeHTTP)
			r.Get("/styles.css", fileServer.ServeHTTP)
			r.Get("/favicon.svg", fileServer.ServeHTTP)

			// The UI is a single page; serve index.html for the root and
			// anything that falls through to it.
			pageHandler := func(w http.ResponseWriter, r *http.Request) {
				f, err := staticFS.Open("index.html")
				if err != nil {
					http.Error(w, "UI not available", http.StatusNotFound)
					return
				}
				defer f.Close()
				stat, _ := f.Stat()
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				http.ServeContent(w, r, "index.html", stat.ModTime(), f.(io.ReadSeeker))
			}
			r.Get("/", pageHandler)
		}
	}

	s.router = r
}

// handleOpenAPI serves the generated API description.
func handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	doc := openapi.Spec()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(doc)
}

// handleHealthz is a liveness probe. Returns 200 if the process is running.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// handleReadyz is a readiness probe. Returns 200 when the upstream gateway
// answers a ping, or 503 when it does not. Readiness tracks the dependency
// we cannot serve without.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	httpStatus := http.StatusOK
	checks := make(map[string]string)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if err := s.gateway.Ping(ctx); err != nil {
		checks["gateway"] = "error: " + err.Error()
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["gateway"] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": status,
		"checks": checks,
	})
}

// ListenAndServe starts the HTTP server and blocks until a SIGINT or SIGTERM
// is received. It then performs a graceful shutdown, draining in-flight
// requests before returning.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Listen for shutdown signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start server in background goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", addr, "tls", s.cfg.TLSCertFile != "")
		var err error
		if s.cfg.TLSCertFile != "" {
			err = s.httpServer.ListenAndServeTLS(s.cfg.TLSCertFile, s.cfg.TLSKeyFile)
		} else {
			err = s.httpServer.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errCh:
		return fmt.Errorf("server listen: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutdown signal received, draining connections...")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// Router returns the underlying Chi router, useful for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ServeHTTP implements http.Handler, delegating to the router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
