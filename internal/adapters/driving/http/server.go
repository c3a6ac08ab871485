package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/custodia-labs/sercha-datasync/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the admin API
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string
	logger     *slog.Logger

	// Services
	authService  driving.AuthService
	orchestrator driving.SyncOrchestrator
	registry     driving.ConfigRegistry

	// Infrastructure
	db             Pinger       // PostgreSQL health check
	redisClient    Pinger       // Redis health check (optional)
	metricsHandler http.Handler // Prometheus scrape handler (optional)
}

// Config holds server configuration
type Config struct {
	Host    string
	Port    int
	Version string
	Logger  *slog.Logger
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:    "0.0.0.0",
		Port:    8080,
		Version: "dev",
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	authService driving.AuthService,
	orchestrator driving.SyncOrchestrator,
	registry driving.ConfigRegistry,
	db Pinger,
	redisClient Pinger, // can be nil
	metricsHandler http.Handler, // can be nil
) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		router:         http.NewServeMux(),
		version:        cfg.Version,
		logger:         logger,
		authService:    authService,
		orchestrator:   orchestrator,
		registry:       registry,
		db:             db,
		redisClient:    redisClient,
		metricsHandler: metricsHandler,
	}

	s.setupRoutes()

	var handler http.Handler = s.router
	handler = NewLoggingMiddleware(logger).Handler(handler)
	handler = NewRecoveryMiddleware(logger).Handler(handler)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute, // manual runs hold the request open
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the fully wrapped handler
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	authMiddleware := NewAuthMiddleware(s.authService)
	authed := func(h http.HandlerFunc) http.Handler {
		return authMiddleware.Authenticate(h)
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return authMiddleware.Authenticate(authMiddleware.RequireAdmin(h))
	}

	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)
	if s.metricsHandler != nil {
		s.router.Handle("GET /metrics", s.metricsHandler)
	}

	// Auth endpoints (public)
	s.router.HandleFunc("POST /api/v1/auth/token", s.handleToken)

	// Sync configuration
	s.router.Handle("GET /api/v1/sync/configs", authed(s.handleListConfigs))
	s.router.Handle("GET /api/v1/sync/configs/{source}", authed(s.handleGetConfig))
	s.router.Handle("PATCH /api/v1/sync/configs/{source}", admin(s.handleUpdateConfig))
	s.router.Handle("POST /api/v1/sync/configs/{source}/enable", admin(s.handleEnableSource))
	s.router.Handle("POST /api/v1/sync/configs/{source}/disable", admin(s.handleDisableSource))

	// Sync runs and audit trail
	s.router.Handle("POST /api/v1/sync/sources/{source}/run", admin(s.handleRunSync))
	s.router.Handle("GET /api/v1/sync/sources/{source}/last-success", authed(s.handleLastSuccess))
	s.router.Handle("GET /api/v1/sync/history", authed(s.handleHistory))
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
