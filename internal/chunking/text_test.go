package chunking_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sevigo/code-warden/internal/chunking"
)

func TestTextChunkingStrategy_SlidingWindow(t *testing.T) {
	s := chunking.NewTextChunkingStrategy(chunking.Settings{ChunkSize: 10, Overlap: 2})
	chunks := s.Chunk("abcdefghijklmnopqrstuvwxyz")

	assert.Equal(t, "abcdefghij", chunks[0])
	assert.Equal(t, "ijklmnopqr", chunks[1])
}

func TestTextChunkingStrategy_Determinism(t *testing.T) {
	s := chunking.NewTextChunkingStrategy(chunking.Settings{ChunkSize: 7, Overlap: 1})
	text := "the quick brown fox jumps over the lazy dog, repeated many times over"

	first := s.Chunk(text)
	second := s.Chunk(text)
	assert.Equal(t, first, second)
}

func TestTextChunkingStrategy_DefaultsWhenUnset(t *testing.T) {
	s := chunking.NewTextChunkingStrategy(chunking.Settings{})
	chunks := s.Chunk("short text")
	assert.Len(t, chunks, 1)
}

func TestTextChunkingStrategy_EmptyInputYieldsNoChunks(t *testing.T) {
	s := chunking.NewTextChunkingStrategy(chunking.Settings{ChunkSize: 10, Overlap: 2})
	assert.Empty(t, s.Chunk(""))
}
