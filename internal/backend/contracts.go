// Package backend defines the capability-contract interfaces the rest of
// the pipeline (C7 metadata generator, C9 RAG engine) depends on, mirroring
// original_source/embeddings/embeddings.py, summarizers/summarizers.py,
// keywords_extractors/keywords_extractors.py, and LLMs/llm_interface.py's
// four-method ILLM shape. Concrete implementations live in sibling
// packages (internal/backend/ollamallm, internal/backend/keywordbleve);
// this package owns only the contracts themselves.
package backend

import "context"

// EmbeddingBackend turns text into a dense vector for the Vector Index
// Manager (C8).
type EmbeddingBackend interface {
	Encode(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// SummarizerBackend condenses text to a length between minLen and maxLen
// (best effort; backends may not honor the bounds exactly).
type SummarizerBackend interface {
	Summarize(ctx context.Context, text string, maxLen, minLen int) (string, error)
}

// KeywordBackend extracts up to n representative keywords/tags from text.
type KeywordBackend interface {
	Extract(ctx context.Context, text string, n int) ([]string, error)
}

// LLMBackend is the chat-completion-style capability the RAG Engine (C9)
// calls to answer a question given retrieved context, mirroring
// original_source/LLMs/llm_interface.py's ILLM: chat, summarize, run an
// instruction-only agent turn, and analyze log lines.
type LLMBackend interface {
	Chat(ctx context.Context, prompt, context string) (string, error)
	Summarize(ctx context.Context, text string) (string, error)
	RunAgent(ctx context.Context, instructions string) (string, error)
	AnalyzeLogs(ctx context.Context, logs []string) (string, error)
}
