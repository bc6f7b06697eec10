// Package handler provides HTTP handlers for the ragforge application,
// adapted from sevigo-code-warden/internal/server/handler/webhook.go's
// shape (a struct holding its dependencies, one Handle method, decode →
// validate → dispatch → respond). The GitHub webhook receiver itself has
// no analog in this pipeline (ingestion is triggered by schedule/command,
// not by webhook delivery), so the handlers below cover ingest-trigger
// and RAG-query instead.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sevigo/code-warden/internal/collect"
	"github.com/sevigo/code-warden/internal/metadata"
)

// sourceCollections lists every collection the metadata generator
// maintains, in the order an ingestion pass should refresh them.
var sourceCollections = []string{
	metadata.SourceCommits,
	metadata.SourceFiles,
	metadata.SourceMainFiles,
	metadata.SourceLastReleaseFiles,
	metadata.SourceIssues,
	metadata.SourcePullRequests,
}

// IngestRequest names the repositories to collect and generate metadata
// for.
type IngestRequest struct {
	Repos []string `json:"repos"`
}

// IngestHandler triggers a collection pass plus metadata generation for
// a set of repositories.
type IngestHandler struct {
	ctx          context.Context
	orchestrator *collect.Orchestrator
	metadataGen  *metadata.Generator
	defaultTagsN int
	logger       *slog.Logger
}

func NewIngestHandler(ctx context.Context, orchestrator *collect.Orchestrator, metadataGen *metadata.Generator, defaultTagsN int, logger *slog.Logger) *IngestHandler {
	return &IngestHandler{ctx: ctx, orchestrator: orchestrator, metadataGen: metadataGen, defaultTagsN: defaultTagsN, logger: logger}
}

// Handle decodes the request, kicks off collection + metadata generation
// in the background, and immediately returns 202 Accepted — ingestion
// runs can take arbitrarily long (paginated forge calls, chunking,
// embedding), so the HTTP request does not block on completion.
func (h *IngestHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Repos) == 0 {
		http.Error(w, "repos must not be empty", http.StatusBadRequest)
		return
	}

	go h.run(req.Repos)

	w.WriteHeader(http.StatusAccepted)
	_, _ = w.Write([]byte("ingestion started"))
}

func (h *IngestHandler) run(repos []string) {
	if err := h.orchestrator.Run(h.ctx, repos); err != nil {
		h.logger.ErrorContext(h.ctx, "collection pass failed", "repos", repos, "error", err)
		return
	}
	for _, repo := range repos {
		for _, src := range sourceCollections {
			if err := h.metadataGen.UpdateCollection(h.ctx, repo, src); err != nil {
				h.logger.ErrorContext(h.ctx, "metadata generation failed", "repo", repo, "collection", src, "error", err)
			}
		}
	}
	h.logger.InfoContext(h.ctx, "ingestion pass complete", "repos", repos)
}
