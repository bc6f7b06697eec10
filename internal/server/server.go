// Package server implements the HTTP surface of the pipeline: a health
// check, an ingestion-trigger endpoint, and a RAG query endpoint.
// Adapted from sevigo-code-warden/internal/server/server.go's
// Server/NewServer/Start/Stop shape (http.Server wrapper with graceful
// shutdown); the webhook-receiver concern it originally wrapped has no
// analog here (the pipeline pulls from the forge on a schedule/command,
// it does not react to GitHub webhook deliveries), so the router
// underneath serves different endpoints entirely — see router.go.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sevigo/code-warden/internal/backend"
	"github.com/sevigo/code-warden/internal/collect"
	"github.com/sevigo/code-warden/internal/config"
	"github.com/sevigo/code-warden/internal/metadata"
	"github.com/sevigo/code-warden/internal/rag"
	"github.com/sevigo/code-warden/internal/vectorindex"
)

// Server wraps an HTTP server with graceful shutdown capabilities.
type Server struct {
	server *http.Server
	logger *slog.Logger
}

// NewServer creates a new HTTP server wired to the ingestion orchestrator,
// metadata generator, vector index manager, and LLM/query-recorder
// dependencies the RAG query endpoint needs to construct an Engine
// on-demand per request.
func NewServer(
	ctx context.Context,
	cfg *config.Config,
	orchestrator *collect.Orchestrator,
	metadataGen *metadata.Generator,
	indexMgr *vectorindex.Manager,
	llm backend.LLMBackend,
	recorder *rag.Recorder,
	logger *slog.Logger,
) *Server {
	router := NewRouter(ctx, cfg, orchestrator, metadataGen, indexMgr, llm, recorder, logger)

	return &Server{
		server: &http.Server{
			Addr:         ":" + cfg.Server.Port,
			Handler:      router,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		logger: logger,
	}
}

// Start starts the HTTP server and blocks until shutdown or error.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "address", s.server.Addr)

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed to start: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the server with a 30-second timeout.
func (s *Server) Stop() error {
	s.logger.Info("shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}
