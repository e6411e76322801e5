// Package http exposes the engine's operational shell: a small admin API
// for triggering a rescan, reading stats, checking health, and previewing
// a transform against an uploaded class file.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mixinforge/mixinengine/internal/core/ports/driven"
	"github.com/mixinforge/mixinengine/internal/core/ports/driving"
)

// Pinger is a health-check interface satisfied by both the Postgres and
// Redis adapters.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the admin HTTP API.
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	log        *slog.Logger
	version    string

	admin       driving.AdminService
	hostAdapter driving.HostAdapter
	auth        driven.AuthAdapter

	adminUsername     string
	adminPasswordHash string

	allowedOrigins []string

	db    Pinger // optional
	redis Pinger // optional
}

// Config holds server configuration.
type Config struct {
	Host    string
	Port    int
	Version string

	AdminUsername     string
	AdminPasswordHash string

	// AllowedOrigins lists the origins the admin dashboard may call the
	// API from. "*" allows any origin. Empty disables CORS headers.
	AllowedOrigins []string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Host:           "0.0.0.0",
		Port:           8080,
		Version:        "dev",
		AllowedOrigins: []string{"*"},
	}
}

// NewServer creates the admin HTTP server.
func NewServer(
	cfg Config,
	log *slog.Logger,
	admin driving.AdminService,
	hostAdapter driving.HostAdapter,
	auth driven.AuthAdapter,
	db Pinger,
	redis Pinger,
) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		router:            http.NewServeMux(),
		log:               log,
		version:           cfg.Version,
		admin:             admin,
		hostAdapter:       hostAdapter,
		auth:              auth,
		adminUsername:     cfg.AdminUsername,
		adminPasswordHash: cfg.AdminPasswordHash,
		allowedOrigins:    cfg.AllowedOrigins,
		db:                db,
		redis:             redis,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.withMiddleware(s.router),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes()
	return s
}

func (s *Server) withMiddleware(h http.Handler) http.Handler {
	h = NewLoggingMiddleware(s.log).Handler(h)
	h = NewRecoveryMiddleware(s.log).Handler(h)
	if len(s.allowedOrigins) > 0 {
		h = NewCORSMiddleware(s.allowedOrigins).Handler(h)
	}
	return h
}

func (s *Server) setupRoutes() {
	authMiddleware := NewAuthMiddleware(s.auth)

	s.router.HandleFunc("GET /healthz", s.handleHealth)
	s.router.HandleFunc("GET /version", s.handleVersion)
	s.router.HandleFunc("POST /admin/login", s.handleLogin)

	s.router.Handle("POST /admin/rescan",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleRescan)))
	s.router.Handle("GET /admin/stats",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleStats)))
	s.router.Handle("POST /admin/preview",
		authMiddleware.Authenticate(http.HandlerFunc(s.handlePreview)))
}

// Start runs the server and blocks until it receives SIGINT/SIGTERM, then
// shuts down gracefully.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		s.log.Info("admin http server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error("admin http server error", "error", err)
		}
	}()

	<-stop
	s.log.Info("admin http server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.log.Info("admin http server stopped")
	return nil
}

// Stop shuts the server down using the given context's deadline.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
