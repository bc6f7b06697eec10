// Package keywordbleve implements backend.KeywordBackend on top of
// bleve's standard analyzer, replacing
// original_source/keywords_extractors/keywords_extractors.py's
// YakeKeywordExtractor. Rather than building a full on-disk index (the
// shape Aman-CERP-amanmcp/internal/store/bm25.go wraps for search), this
// package only needs the analysis pipeline bleve's analyzer stage
// exposes: tokenize, lowercase, strip stopwords, then rank surviving
// terms by frequency, mirroring the analyzer wiring in bm25.go without
// the index/search machinery that package uses for full-text lookup.
package keywordbleve

import (
	"context"
	"sort"

	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/registry"

	"github.com/sevigo/code-warden/internal/backend"
)

var _ backend.KeywordBackend = (*Extractor)(nil)

// Extractor extracts the n most frequent terms from text, using bleve's
// standard analyzer (Unicode tokenizer + lowercase filter + English
// stopword filter) for tokenization.
type Extractor struct {
	cache *registry.Cache
}

// New builds a bleve-backed KeywordBackend.
func New() *Extractor {
	return &Extractor{cache: registry.NewCache()}
}

// Extract tokenizes text with bleve's standard analyzer and returns the
// n terms with the highest frequency, ties broken by first occurrence.
func (e *Extractor) Extract(ctx context.Context, text string, n int) ([]string, error) {
	if n <= 0 || text == "" {
		return nil, nil
	}

	analyzer, err := standard.AnalyzerConstructor(nil, e.cache)
	if err != nil {
		return nil, err
	}

	tokens := analyzer.Analyze([]byte(text))

	order := make([]string, 0, len(tokens))
	counts := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		term := string(tok.Term)
		if term == "" {
			continue
		}
		if _, seen := counts[term]; !seen {
			order = append(order, term)
		}
		counts[term]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if n > len(order) {
		n = len(order)
	}
	return order[:n], nil
}
