// Package ollamallm implements EmbeddingBackend and LLMBackend against a
// local Ollama server. The teacher's own provider stack wraps
// sevigo/goframe around Ollama/Gemini (sevigo-code-warden/internal/llm/
// rag.go:1159's r.generatorLLM.Call(ctx, prompt) shape), but goframe has
// no independently-fetchable grounding anywhere in this pack; this
// package instead calls github.com/ollama/ollama's own API client
// package directly — a real transitive dependency already present in the
// teacher's go.mod, promoted here to direct.
package ollamallm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"

	"github.com/sevigo/code-warden/internal/backend"
)

var (
	_ backend.EmbeddingBackend = (*Client)(nil)
	_ backend.LLMBackend       = (*Client)(nil)
)

// Client wraps an *api.Client bound to one chat model and one embedding
// model, implementing both backend.EmbeddingBackend and backend.LLMBackend.
type Client struct {
	api            *api.Client
	chatModel      string
	embeddingModel string
	dimension      int
}

// New builds a Client targeting host (e.g. "http://localhost:11434").
func New(host, chatModel, embeddingModel string, dimension int) (*Client, error) {
	base, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("ollamallm: parse host: %w", err)
	}
	return &Client{
		api:            api.NewClient(base, http.DefaultClient),
		chatModel:      chatModel,
		embeddingModel: embeddingModel,
		dimension:      dimension,
	}, nil
}

// Dimension returns the configured embedding width (EMBEDDING_DIMENSION),
// matching spec.md §6's requirement that the dimension be known without
// calling the backend.
func (c *Client) Dimension() int {
	return c.dimension
}

// Encode embeds text via the Ollama embeddings endpoint, mirroring
// embeddings.py's AbstractEmbeddingModel.encode contract.
func (c *Client) Encode(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.api.Embeddings(ctx, &api.EmbeddingRequest{
		Model:  c.embeddingModel,
		Prompt: text,
	})
	if err != nil {
		return nil, fmt.Errorf("ollamallm: embeddings: %w", err)
	}
	vec := make([]float32, len(resp.Embedding))
	for i, v := range resp.Embedding {
		vec[i] = float32(v)
	}
	return vec, nil
}

// Chat sends a chat-completion turn with optional retrieved context
// prepended as a system message, mirroring llm_interface.py's
// ILLM.chat(user_input, context).
func (c *Client) Chat(ctx context.Context, prompt, context string) (string, error) {
	messages := []api.Message{}
	if context != "" {
		messages = append(messages, api.Message{Role: "system", Content: context})
	}
	messages = append(messages, api.Message{Role: "user", Content: prompt})
	return c.chat(ctx, messages)
}

// Summarize asks the chat model to condense text, implementing
// ILLM.summarize in terms of the same chat call (no separate
// summarization model is wired, matching SPEC_FULL.md §6's
// SummarizerBackend note).
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	prompt := fmt.Sprintf("Summarize the following text concisely:\n\n%s", text)
	return c.chat(ctx, []api.Message{{Role: "user", Content: prompt}})
}

// RunAgent sends a single instruction-only turn, mirroring
// ILLM.run_agent. This module does not implement multi-step tool use;
// the contract is satisfied with one chat completion per spec.md §1's
// scope (concrete backend behavior, not agent orchestration, is out of
// scope).
func (c *Client) RunAgent(ctx context.Context, instructions string) (string, error) {
	return c.chat(ctx, []api.Message{{Role: "user", Content: instructions}})
}

// AnalyzeLogs asks the chat model to analyze a batch of log lines,
// mirroring ILLM.analyze_logs.
func (c *Client) AnalyzeLogs(ctx context.Context, logs []string) (string, error) {
	prompt := fmt.Sprintf("Analyze the following log lines and propose improvements or insights:\n\n%s", strings.Join(logs, "\n"))
	return c.chat(ctx, []api.Message{{Role: "user", Content: prompt}})
}

func (c *Client) chat(ctx context.Context, messages []api.Message) (string, error) {
	stream := false
	var out strings.Builder
	err := c.api.Chat(ctx, &api.ChatRequest{
		Model:    c.chatModel,
		Messages: messages,
		Stream:   &stream,
	}, func(resp api.ChatResponse) error {
		out.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollamallm: chat: %w", err)
	}
	return out.String(), nil
}
