package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sevigo/code-warden/internal/backend"
	"github.com/sevigo/code-warden/internal/collect"
	"github.com/sevigo/code-warden/internal/config"
	"github.com/sevigo/code-warden/internal/metadata"
	"github.com/sevigo/code-warden/internal/rag"
	"github.com/sevigo/code-warden/internal/server/handler"
	"github.com/sevigo/code-warden/internal/vectorindex"
)

// NewRouter creates and configures a new HTTP router with middleware and
// API routes, keeping the teacher's middleware stack
// (RequestID/RealIP/Logger/Recoverer/Timeout) verbatim.
func NewRouter(
	ctx context.Context,
	cfg *config.Config,
	orchestrator *collect.Orchestrator,
	metadataGen *metadata.Generator,
	indexMgr *vectorindex.Manager,
	llm backend.LLMBackend,
	recorder *rag.Recorder,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		ingestHandler := handler.NewIngestHandler(ctx, orchestrator, metadataGen, cfg.Chunking.DefaultTagsN, logger)
		r.Post("/ingest", ingestHandler.Handle)

		queryHandler := handler.NewQueryHandler(indexMgr, llm, recorder, cfg.RAG, logger)
		r.Post("/query", queryHandler.Handle)
	})

	return r
}
