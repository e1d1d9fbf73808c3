package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/olimpofit/gym-server/internal/auth"
	"github.com/olimpofit/gym-server/internal/config"
	"github.com/olimpofit/gym-server/internal/membership"
	"github.com/olimpofit/gym-server/internal/notification"
	"github.com/olimpofit/gym-server/internal/uploads"
)

// Deps carries the handler groups and middleware the server mounts.
// Uploads may be nil when no S3 bucket is configured.
type Deps struct {
	Auth          *auth.Middleware
	Memberships   *membership.Handlers
	Notifications *notification.Handlers
	Uploads       *uploads.Handlers
	Health        *HealthChecker
}

// Server is the HTTP API server.
type Server struct {
	cfg    config.ServerConfig
	server *http.Server
}

// NewServer creates the API server with all routes mounted.
func NewServer(cfg config.ServerConfig, deps Deps) *Server {
	router := SetupRoutes(cfg, deps)
	return &Server{
		cfg: cfg,
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Start begins serving. Blocks until the server stops.
func (s *Server) Start() error {
	log.Printf("[API] Listening on %s", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Printf("[API] Shutting down...")
	return s.server.Shutdown(ctx)
}
