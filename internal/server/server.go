// Package server exposes the portal over HTTP.
package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alkime/healthvoice/internal/auth"
	"github.com/alkime/healthvoice/internal/config"
)

// Options supplies the pieces the handlers depend on.
type Options struct {
	// Evaluator decides /api/v1/verify. Defaults to auth.NewHeuristic(nil).
	Evaluator auth.Evaluator
	// Now dates the dashboard. Defaults to time.Now.
	Now func() time.Time
}

// Server represents the HTTP server
type Server struct {
	config *config.Config
	logger *slog.Logger
	router *gin.Engine

	now func() time.Time

	// evaluators may hold a non-concurrent random source
	evalMu    sync.Mutex
	evaluator auth.Evaluator
}

// New creates a new Server instance
func New(cfg *config.Config, logger *slog.Logger, opts Options) (*Server, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if opts.Evaluator == nil {
		opts.Evaluator = auth.NewHeuristic(nil)
	}

	if opts.Now == nil {
		opts.Now = time.Now
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("failed to set trusted proxies: %w", err)
	}

	logger.Debug("Configured trusted proxies", "proxies", cfg.TrustedProxies)

	server := &Server{
		config:    cfg,
		logger:    logger,
		router:    router,
		now:       opts.Now,
		evaluator: opts.Evaluator,
	}

	setupSecurityMiddleware(router, cfg, logger)
	server.setupRoutes()

	return server, nil
}

// Router returns the underlying engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run starts the HTTP server
func Run(s *Server) error {
	s.logger.Info("Server listening", "port", s.config.Port)
	return s.router.Run(":" + s.config.Port)
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api/v1")
	{
		api.GET("/dashboard", s.handleDashboard)
		api.POST("/verify", s.handleVerify)
	}
}
