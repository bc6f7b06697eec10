package keywordbleve_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sevigo/code-warden/internal/backend/keywordbleve"
)

func TestExtractor_RanksByFrequency(t *testing.T) {
	e := keywordbleve.New()
	text := "cache cache cache invalidation is hard invalidation naming is also hard"

	got, err := e.Extract(context.Background(), text, 2)
	assert.NoError(t, err)
	assert.Equal(t, []string{"cache", "invalidation"}, got[:2])
}

func TestExtractor_DropsStopwords(t *testing.T) {
	e := keywordbleve.New()
	text := "the quick brown fox and the lazy dog of the forest"

	got, err := e.Extract(context.Background(), text, 10)
	assert.NoError(t, err)
	for _, term := range got {
		assert.NotEqual(t, "the", term)
		assert.NotEqual(t, "and", term)
		assert.NotEqual(t, "of", term)
	}
}

func TestExtractor_NReturnsAtMostNTerms(t *testing.T) {
	e := keywordbleve.New()
	got, err := e.Extract(context.Background(), "alpha beta gamma delta", 2)
	assert.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestExtractor_EmptyInputYieldsNoKeywords(t *testing.T) {
	e := keywordbleve.New()
	got, err := e.Extract(context.Background(), "", 5)
	assert.NoError(t, err)
	assert.Empty(t, got)
}

func TestExtractor_ZeroNYieldsNoKeywords(t *testing.T) {
	e := keywordbleve.New()
	got, err := e.Extract(context.Background(), "alpha beta", 0)
	assert.NoError(t, err)
	assert.Empty(t, got)
}
