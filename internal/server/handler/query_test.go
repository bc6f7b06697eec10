package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/code-warden/internal/backend"
	"github.com/sevigo/code-warden/internal/config"
	"github.com/sevigo/code-warden/internal/core"
	"github.com/sevigo/code-warden/internal/docstore"
	"github.com/sevigo/code-warden/internal/server/handler"
	"github.com/sevigo/code-warden/internal/vectorindex"
)

type fakeEmbedder struct{ dim int }

func (f *fakeEmbedder) Dimension() int { return f.dim }
func (f *fakeEmbedder) Encode(ctx context.Context, text string) ([]float32, error) {
	return []float32{float32(len(text)), 0}, nil
}

var _ backend.EmbeddingBackend = (*fakeEmbedder)(nil)

type fakeLLM struct{}

func (f *fakeLLM) Chat(ctx context.Context, prompt, context string) (string, error) {
	return "the answer", nil
}
func (f *fakeLLM) Summarize(ctx context.Context, text string) (string, error) { return text, nil }
func (f *fakeLLM) RunAgent(ctx context.Context, instructions string) (string, error) {
	return "", nil
}
func (f *fakeLLM) AnalyzeLogs(ctx context.Context, logs []string) (string, error) { return "", nil }

var _ backend.LLMBackend = (*fakeLLM)(nil)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedChunks(t *testing.T, gw docstore.Gateway) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, gw.InsertMany(ctx, "metadata", []any{
		&core.Metadata{ID: "meta_1", Repo: "acme/widgets", CollectionSrc: "files", MetadataVersion: 1},
	}))
	require.NoError(t, gw.InsertMany(ctx, "chunks", []any{
		&core.Chunk{ID: "meta_1_chunk_0", MetadataID: "meta_1", Index: 0, Text: "alpha content", Embedding: []float32{1, 0}},
	}))
}

func TestQueryHandler_Handle_ReturnsAnswer(t *testing.T) {
	gw := docstore.NewMemoryGateway()
	seedChunks(t, gw)
	mgr := vectorindex.NewManager(gw, &fakeEmbedder{dim: 2}, t.TempDir(), discardLogger())
	ragCfg := config.RAGConfig{MaxContextTokens: 2000, TopK: 5}

	h := handler.NewQueryHandler(mgr, &fakeLLM{}, nil, ragCfg, discardLogger())

	body, _ := json.Marshal(handler.QueryRequest{Repo: "acme/widgets", CollectionSrc: "files", Question: "what does alpha do?"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Handle(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp handler.QueryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "the answer", resp.Answer)
}

func TestQueryHandler_Handle_RejectsMissingFields(t *testing.T) {
	mgr := vectorindex.NewManager(docstore.NewMemoryGateway(), &fakeEmbedder{dim: 2}, t.TempDir(), discardLogger())
	h := handler.NewQueryHandler(mgr, &fakeLLM{}, nil, config.RAGConfig{TopK: 5}, discardLogger())

	body, _ := json.Marshal(handler.QueryRequest{Repo: "acme/widgets"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Handle(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueryHandler_Handle_RejectsInvalidJSON(t *testing.T) {
	mgr := vectorindex.NewManager(docstore.NewMemoryGateway(), &fakeEmbedder{dim: 2}, t.TempDir(), discardLogger())
	h := handler.NewQueryHandler(mgr, &fakeLLM{}, nil, config.RAGConfig{TopK: 5}, discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()

	h.Handle(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
