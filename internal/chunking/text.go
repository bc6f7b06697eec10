package chunking

// TextChunkingStrategy splits text into overlapping fixed-size windows.
// Ported from TextChunkingStrategy.chunk: step = chunk_size - overlap,
// windows taken at i, i+step, i+2*step, ... until the text is exhausted.
//
// Indexing is byte-offset (Go string slicing), not grapheme-cluster based
// — see DESIGN.md's multibyte chunking determinism decision. A chunk
// boundary may fall inside a multi-byte UTF-8 rune for non-ASCII input;
// this is a documented tradeoff, not a bug.
type TextChunkingStrategy struct {
	chunkSize int
	overlap   int
}

// NewTextChunkingStrategy builds a TextChunkingStrategy from settings,
// defaulting ChunkSize to 500 and Overlap to 50 when unset (zero),
// matching the Python default settings dict.
func NewTextChunkingStrategy(settings Settings) *TextChunkingStrategy {
	chunkSize := settings.ChunkSize
	if chunkSize <= 0 {
		chunkSize = 500
	}
	overlap := settings.Overlap
	if overlap <= 0 {
		overlap = 50
	}
	return &TextChunkingStrategy{chunkSize: chunkSize, overlap: overlap}
}

func (s *TextChunkingStrategy) Chunk(content string) []string {
	return slidingWindowChunk(content, s.chunkSize, s.overlap)
}

// slidingWindowChunk is the shared windowing primitive both
// TextChunkingStrategy and CodeChunkingStrategy's language-less fallback
// use (chunk_text in the Python original).
func slidingWindowChunk(content string, chunkSize, overlap int) []string {
	if chunkSize <= 0 {
		return nil
	}
	step := chunkSize - overlap
	if step <= 0 {
		step = chunkSize
	}

	var chunks []string
	for i := 0; i < len(content); i += step {
		end := i + chunkSize
		if end > len(content) {
			end = len(content)
		}
		chunks = append(chunks, content[i:end])
	}
	return chunks
}
