package chunking_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sevigo/code-warden/internal/chunking"
)

const pythonSample = `import os
from typing import List

def first_function():
    return 1


def second_function():
    return 2
`

func TestCodeChunkingStrategy_PythonKeepsImportsOnFirstChunk(t *testing.T) {
	s := chunking.NewCodeChunkingStrategy(chunking.Settings{Language: "python", MinChunkSize: 5})
	chunks := s.Chunk(pythonSample)

	require := assert.New(t)
	require.NotEmpty(chunks)
	require.True(strings.HasPrefix(chunks[0], "import os\nfrom typing import List\n"))
}

const goSample = `package foo

import "fmt"

func First() {
	fmt.Println("first")
}

func Second() {
	fmt.Println("second")
}
`

func TestCodeChunkingStrategy_GoKeepsPackageAndImportsOnFirstChunk(t *testing.T) {
	s := chunking.NewCodeChunkingStrategy(chunking.Settings{Language: "go", MinChunkSize: 1})
	chunks := s.Chunk(goSample)

	assert.NotEmpty(t, chunks)
	assert.True(t, strings.HasPrefix(chunks[0], "package foo\nimport \"fmt\"\n"))
}

func TestCodeChunkingStrategy_UnknownLanguageFallsBackToSlidingWindow(t *testing.T) {
	s := chunking.NewCodeChunkingStrategy(chunking.Settings{Language: "cobol", ChunkSize: 10, Overlap: 2})
	chunks := s.Chunk("0123456789ABCDEFGHIJ")
	assert.Equal(t, "0123456789", chunks[0])
}

func TestCodeChunkingStrategy_Determinism(t *testing.T) {
	s := chunking.NewCodeChunkingStrategy(chunking.Settings{Language: "ruby", MinChunkSize: 5})
	code := "require 'set'\n\nclass Widget\n  def initialize\n  end\nend\n"

	first := s.Chunk(code)
	second := s.Chunk(code)
	assert.Equal(t, first, second)
}

func TestNewStrategy_DispatchesOnCategory(t *testing.T) {
	codeStrategy := chunking.NewStrategy("code", chunking.Settings{Language: "go"})
	_, ok := codeStrategy.(*chunking.CodeChunkingStrategy)
	assert.True(t, ok)

	textStrategy := chunking.NewStrategy("doc", chunking.Settings{})
	_, ok = textStrategy.(*chunking.TextChunkingStrategy)
	assert.True(t, ok)
}
