package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sevigo/code-warden/internal/backend"
	"github.com/sevigo/code-warden/internal/config"
	"github.com/sevigo/code-warden/internal/rag"
	"github.com/sevigo/code-warden/internal/vectorindex"
)

// QueryRequest asks a question of one repository's indexed collection.
type QueryRequest struct {
	Repo          string `json:"repo"`
	CollectionSrc string `json:"collection_src"`
	Question      string `json:"question"`
	TopK          int    `json:"top_k,omitempty"`
}

// QueryResponse carries the generated answer.
type QueryResponse struct {
	Answer string `json:"answer"`
}

// QueryHandler answers a question by constructing a RAG Engine bound to
// the requested (repo, collection_src) and calling Answer. A fresh
// Engine per request keeps this handler stateless; LoadIndex/BuildIndex
// inside rag.New are themselves cheap relative to the LLM round trip.
type QueryHandler struct {
	indexMgr *vectorindex.Manager
	llm      backend.LLMBackend
	recorder *rag.Recorder
	cfg      config.RAGConfig
	logger   *slog.Logger
}

func NewQueryHandler(indexMgr *vectorindex.Manager, llm backend.LLMBackend, recorder *rag.Recorder, cfg config.RAGConfig, logger *slog.Logger) *QueryHandler {
	return &QueryHandler{indexMgr: indexMgr, llm: llm, recorder: recorder, cfg: cfg, logger: logger}
}

func (h *QueryHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Repo == "" || req.CollectionSrc == "" || req.Question == "" {
		http.Error(w, "repo, collection_src, and question are required", http.StatusBadRequest)
		return
	}
	topK := req.TopK
	if topK <= 0 {
		topK = h.cfg.TopK
	}

	ctx := r.Context()
	engine, err := rag.New(ctx, h.indexMgr, h.llm, req.Repo, req.CollectionSrc, rag.WithMaxContextTokens(h.cfg.MaxContextTokens), rag.WithRecorder(h.recorder))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to construct rag engine", "repo", req.Repo, "collection", req.CollectionSrc, "error", err)
		http.Error(w, "failed to load index", http.StatusInternalServerError)
		return
	}

	answer, err := engine.Answer(ctx, req.Question, topK)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to answer query", "repo", req.Repo, "error", err)
		http.Error(w, "failed to answer query", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(QueryResponse{Answer: answer})
}
