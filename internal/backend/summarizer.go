package backend

import "context"

// summarizerFromLLM implements SummarizerBackend in terms of an
// LLMBackend's own Summarize method, exactly as
// original_source/LLMs/llm_interface.py's ILLM unifies chat and
// summarization under one backend rather than a separate model.
type summarizerFromLLM struct {
	llm LLMBackend
}

// NewSummarizerFromLLM adapts an LLMBackend to the SummarizerBackend
// contract. maxLen/minLen are accepted for interface compatibility with
// summarizers.py's AbstractSummarizer but are advisory only: the
// underlying LLM call has no hard length control, mirroring the
// delegation note in SPEC_FULL.md §6.
func NewSummarizerFromLLM(llm LLMBackend) SummarizerBackend {
	return &summarizerFromLLM{llm: llm}
}

func (s *summarizerFromLLM) Summarize(ctx context.Context, text string, maxLen, minLen int) (string, error) {
	return s.llm.Summarize(ctx, text)
}
