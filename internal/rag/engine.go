package rag

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sevigo/code-warden/internal/backend"
	"github.com/sevigo/code-warden/internal/vectorindex"
)

// noContextSentinel is the fixed string returned when retrieval yields no
// chunks at all, matching rag_engine.py's literal "I could not find
// relevant context in the knowledge base." string.
const noContextSentinel = "I could not find relevant context in the knowledge base."

// promptTemplate mirrors rag_engine.py's _DEFAULT_PROMPT dedent block
// field-for-field (system instruction, context, question, answer cue).
const promptTemplate = `### System
You are an expert assistant answering questions about the codebase. Use the
provided context strictly — do not invent information outside of it.

### Context
%s

### Question
%s

### Answer (concise and precise)
`

const defaultMaxContextTokens = 2000

// Engine answers questions against one (repo, collection_src)'s index,
// ground-truthed against rag_engine.py's RAGEngine.
type Engine struct {
	indexMgr         *vectorindex.Manager
	llm              backend.LLMBackend
	recorder         *Recorder
	repo             string
	collectionSrc    string
	maxContextTokens int
	loaded           *vectorindex.LoadedIndex
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithMaxContextTokens overrides the default 2000-token context budget.
func WithMaxContextTokens(n int) Option {
	return func(e *Engine) { e.maxContextTokens = n }
}

// WithRecorder attaches a Query Recorder; recording is skipped entirely
// if none is attached, matching rag_engine.py's Optional[RAGQueryRecorder].
func WithRecorder(r *Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// New binds an Engine to (repo, collectionSrc) and eagerly loads the
// index, building it on the fly if not found — mirroring
// RAGEngine.__init__'s _ensure_index call.
func New(ctx context.Context, indexMgr *vectorindex.Manager, llm backend.LLMBackend, repo, collectionSrc string, opts ...Option) (*Engine, error) {
	e := &Engine{
		indexMgr:         indexMgr,
		llm:              llm,
		repo:             repo,
		collectionSrc:    collectionSrc,
		maxContextTokens: defaultMaxContextTokens,
	}
	for _, opt := range opts {
		opt(e)
	}

	loaded, err := indexMgr.LoadIndex(repo, collectionSrc)
	if err != nil {
		if buildErr := indexMgr.BuildIndex(ctx, repo, collectionSrc, []string{collectionSrc}, false, false); buildErr != nil {
			return nil, fmt.Errorf("rag: build index for %q/%q: %w", repo, collectionSrc, buildErr)
		}
		loaded, err = indexMgr.LoadIndex(repo, collectionSrc)
		if errors.Is(err, os.ErrNotExist) {
			// No embedded chunks, so no artifacts were written; Answer
			// returns the no-context sentinel.
			return e, nil
		}
		if err != nil {
			return nil, fmt.Errorf("rag: load index for %q/%q after build: %w", repo, collectionSrc, err)
		}
	}
	e.loaded = loaded
	return e, nil
}

// Answer implements answer_query: retrieve top_k chunks, assemble a
// bounded context, prompt the LLM, and record the query.
func (e *Engine) Answer(ctx context.Context, question string, topK int) (string, error) {
	start := time.Now()

	if e.loaded == nil {
		return noContextSentinel, nil
	}

	_, _, chunkDocs, metaInfos, err := e.loaded.Query(ctx, question, topK)
	if err != nil {
		return "", fmt.Errorf("rag: retrieve chunks: %w", err)
	}
	if len(chunkDocs) == 0 {
		return noContextSentinel, nil
	}

	texts := make([]string, len(chunkDocs))
	for i, c := range chunkDocs {
		texts[i] = c.Text
	}
	contextText, included := e.buildContextText(texts)

	prompt := fmt.Sprintf(promptTemplate, contextText, question)
	answer, err := e.llm.Chat(ctx, prompt, contextText)
	if err != nil {
		return "", fmt.Errorf("rag: generate answer: %w", err)
	}

	elapsed := time.Since(start)
	if e.recorder != nil {
		used := make([]RecordedChunk, included)
		for i := 0; i < included; i++ {
			used[i] = RecordedChunk{
				ChunkID:         chunkDocs[i].ID,
				Text:            chunkDocs[i].Text,
				MetadataVersion: metaInfos[i].MetadataVersion,
			}
		}
		if err := e.recorder.Record(QueryLog{
			Question:    question,
			Repo:        e.repo,
			Collections: []string{e.collectionSrc},
			TopK:        topK,
			ChunksUsed:  used,
			Answer:      answer,
			DurationS:   elapsed.Seconds(),
		}); err != nil {
			return "", fmt.Errorf("rag: record query: %w", err)
		}
	}

	return answer, nil
}

// buildContextText concatenates chunk texts with the "\n---\n" separator,
// stopping once the running estimate (4 chars ≈ 1 token, len/4+1 per
// chunk) would exceed maxContextTokens, mirroring
// _build_context_text's naive token counting exactly. Returns the
// assembled text and how many leading chunks were included.
func (e *Engine) buildContextText(texts []string) (string, int) {
	budget := e.maxContextTokens
	var parts []string
	current := 0
	for _, txt := range texts {
		estTokens := len(txt)/4 + 1
		if current+estTokens > budget {
			break
		}
		parts = append(parts, txt)
		current += estTokens
	}
	return strings.Join(parts, "\n---\n"), len(parts)
}
