// Package server hosts the HTTP transport: the streamable MCP endpoint
// plus health and metrics routes.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"snyk-mcp/internal/common"
	"snyk-mcp/internal/config"
)

// Server manages the HTTP server and routes.
type Server struct {
	router *chi.Mux
	server *http.Server
	logger *common.Logger
}

// New wires the MCP server into a chi router behind /mcp, stateless so each
// request stands alone, alongside /healthz and /metrics.
func New(cfg *config.Config, mcpSrv *mcpserver.MCPServer, logger *common.Logger) *Server {
	streamable := mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithStateLess(true),
	)

	s := &Server{
		router: chi.NewRouter(),
		logger: logger,
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Method(http.MethodGet, "/metrics", promhttp.Handler())
	s.router.Handle("/mcp", streamable)

	// No read or write timeouts: scans legitimately run for minutes and the
	// response must not be cut off mid-request.
	s.server = &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: s.router,
	}

	return s
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.logger.Info().
		Str("address", s.server.Addr).
		Str("endpoint", fmt.Sprintf("http://localhost%s/mcp", s.server.Addr)).
		Msg("HTTP server starting")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info().Msg("HTTP server stopped")
	return nil
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"version": common.GetVersion(),
	})
}
