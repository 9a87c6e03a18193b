package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rayanlekkat/brio-lead-scraper/internal/config"
	"github.com/rayanlekkat/brio-lead-scraper/internal/logger"
)

// Server wraps the HTTP server hosting the API.
type Server struct {
	httpServer *http.Server
	log        logger.Interface
}

// NewServer builds the gin engine, registers routes and wraps it in an
// http.Server with the configured timeouts.
func NewServer(
	cfg config.ServerConfig,
	debug bool,
	log logger.Interface,
	campaigns *CampaignsHandler,
	dnc *DNCHandler,
	jobs *JobsHandler,
	pool *PoolHandler,
) *Server {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	SetupRoutes(router, campaigns, dnc, jobs, pool)

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Address,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		log: log.WithComponent("api"),
	}
}

// Start serves requests until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info("API server listening", "address", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down API server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
