// Package app initializes and orchestrates the main components of the
// ingestion-to-RAG pipeline. It wires together configuration, the
// document/blob stores, the collectors, metadata generator, vector index
// manager, RAG engine, and HTTP server — adapted from
// sevigo-code-warden/internal/app/app.go's NewApp/Start/Stop shape
// (dependency construction in one place, a cleanup closure returned
// alongside the App, Start/Stop driving the HTTP server).
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sevigo/code-warden/internal/backend"
	"github.com/sevigo/code-warden/internal/backend/keywordbleve"
	"github.com/sevigo/code-warden/internal/backend/ollamallm"
	"github.com/sevigo/code-warden/internal/blobstore"
	"github.com/sevigo/code-warden/internal/collect"
	"github.com/sevigo/code-warden/internal/config"
	"github.com/sevigo/code-warden/internal/db"
	"github.com/sevigo/code-warden/internal/docstore"
	"github.com/sevigo/code-warden/internal/forge"
	"github.com/sevigo/code-warden/internal/metadata"
	"github.com/sevigo/code-warden/internal/rag"
	"github.com/sevigo/code-warden/internal/server"
	"github.com/sevigo/code-warden/internal/vectorindex"
)

// App holds the fully-wired components of one running instance.
type App struct {
	GW            docstore.Gateway
	Blobs         *blobstore.Store
	Orchestrator  *collect.Orchestrator
	MetadataGen   *metadata.Generator
	IndexMgr      *vectorindex.Manager
	Recorder      *rag.Recorder
	Cfg           *config.Config

	logger *slog.Logger
	server *server.Server
}

// NewApp constructs every component and returns the App plus a cleanup
// closure (database connection, nothing else needs releasing).
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, func(), error) {
	logger.Info("initializing ragforge",
		"github_org", cfg.GitHub.Org,
		"embedding_model", cfg.Embedding.Model,
		"max_workers", cfg.Server.MaxWorkers,
	)

	dbConn, dbCleanup, err := initDatabase(&cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { dbCleanup() }

	gw := docstore.NewPostgresGateway(dbConn)

	blobs, err := blobstore.New(cfg.Blob.StorageRoot, cfg.Blob.BaseURL)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("create blob store: %w", err)
	}

	forgeClient := forge.NewPATClient(ctx, cfg.GitHub.Token, logger.With("component", "forge"))
	collector := collect.NewCollector(forgeClient, gw, blobs, logger.With("component", "collect"))
	orchestrator := collect.NewOrchestrator(collector, cfg.Server.MaxWorkers, logger.With("component", "collect"))

	ollamaClient, err := ollamallm.New(cfg.Embedding.OllamaHost, cfg.Embedding.Model, cfg.Embedding.Model, cfg.Embedding.Dimension)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("create ollama backend: %w", err)
	}
	var embedder backend.EmbeddingBackend = ollamaClient
	var llm backend.LLMBackend = ollamaClient
	summarizer := backend.NewSummarizerFromLLM(llm)
	keywords := keywordbleve.New()

	metadataGen := metadata.New(gw, blobs, embedder, summarizer, keywords, cfg.Chunking.DefaultTagsN, logger.With("component", "metadata"))

	indexMgr := vectorindex.NewManager(gw, embedder, cfg.Index.Root, logger.With("component", "vectorindex"))

	recorder, err := rag.NewRecorder(cfg.RAG.QueryLogPath)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("create query recorder: %w", err)
	}

	httpServer := server.NewServer(ctx, cfg, orchestrator, metadataGen, indexMgr, llm, recorder, logger.With("component", "server"))

	logger.Info("ragforge initialized successfully")
	return &App{
		GW:           gw,
		Blobs:        blobs,
		Orchestrator: orchestrator,
		MetadataGen:  metadataGen,
		IndexMgr:     indexMgr,
		Recorder:     recorder,
		Cfg:          cfg,
		logger:       logger,
		server:       httpServer,
	}, cleanup, nil
}

// Start runs the HTTP server, blocking until shutdown or error.
func (a *App) Start() error {
	a.logger.Info("starting ragforge", "server_port", a.Cfg.Server.Port)
	if err := a.server.Start(); err != nil {
		a.logger.Error("failed to start HTTP server", "error", err)
		return err
	}
	return nil
}

// Stop shuts down the HTTP server cleanly.
func (a *App) Stop() error {
	a.logger.Info("shutting down ragforge")
	if a.server == nil {
		return nil
	}
	if err := a.server.Stop(); err != nil {
		a.logger.Error("error during HTTP server shutdown", "error", err)
		return err
	}
	a.logger.Info("ragforge stopped successfully")
	return nil
}

// initDatabase connects to Postgres and runs migrations.
func initDatabase(cfg *config.DBConfig) (*db.DB, func(), error) {
	dbConn, cleanup, err := db.NewDatabase(cfg)
	if err != nil {
		return nil, func() {}, fmt.Errorf("connect to database: %w", err)
	}
	if err := dbConn.RunMigrations(); err != nil {
		cleanup()
		return nil, func() {}, fmt.Errorf("run database migrations: %w", err)
	}
	return dbConn, cleanup, nil
}
