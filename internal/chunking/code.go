package chunking

import (
	"regexp"
	"strings"
)

// CodeChunkingStrategy dispatches to a language-specific chunker that
// keeps leading import/package/require statements attached to the first
// chunk, falling back to the fixed-window strategy for an unrecognized
// language. Ported from CodeChunkingStrategy.
type CodeChunkingStrategy struct {
	extension    string
	language     string
	minChunkSize int
	chunkSize    int
	overlap      int
}

// NewCodeChunkingStrategy builds a CodeChunkingStrategy, defaulting
// MinChunkSize to 300, ChunkSize to 1000, and Overlap to 200 when unset,
// matching the Python default settings dict.
func NewCodeChunkingStrategy(settings Settings) *CodeChunkingStrategy {
	minChunkSize := settings.MinChunkSize
	if minChunkSize <= 0 {
		minChunkSize = 300
	}
	chunkSize := settings.ChunkSize
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	overlap := settings.Overlap
	if overlap <= 0 {
		overlap = 200
	}
	return &CodeChunkingStrategy{
		extension:    settings.Extension,
		language:     settings.Language,
		minChunkSize: minChunkSize,
		chunkSize:    chunkSize,
		overlap:      overlap,
	}
}

func (s *CodeChunkingStrategy) Chunk(content string) []string {
	switch s.language {
	case "python":
		return chunkPython(content, s.minChunkSize)
	case "typescript", "javascript", "nodejs":
		return chunkJavaScript(content, s.minChunkSize)
	case "dart":
		return chunkDart(content, s.minChunkSize)
	case "elixir":
		return chunkElixir(content, s.minChunkSize)
	case "html", "css":
		return chunkHTMLCSS(content, s.minChunkSize)
	case "go":
		return chunkGo(content, s.minChunkSize)
	case "c", "cpp":
		return chunkCCpp(content, s.minChunkSize)
	case "ruby":
		return chunkRuby(content, s.minChunkSize)
	default:
		return slidingWindowChunk(content, s.chunkSize, s.overlap)
	}
}

// flushChunk appends the accumulated lines to chunks when the
// accumulated text exceeds minChunkSize, clearing the accumulator — the
// shared "boundary hit" behavior every per-language chunker repeats.
func flushChunk(chunks []string, chunk []string, minChunkSize int) ([]string, []string) {
	if len(chunk) > 0 && len(strings.Join(chunk, "\n")) > minChunkSize {
		chunks = append(chunks, strings.Join(chunk, "\n"))
		chunk = nil
	}
	return chunks, chunk
}

// prependLeading joins leading (imports/package/etc.) lines onto the
// first chunk, matching every per-language chunker's final step.
func prependLeading(chunks []string, leading []string) []string {
	if len(chunks) > 0 && len(leading) > 0 {
		chunks[0] = strings.Join(leading, "\n") + "\n" + chunks[0]
	}
	return chunks
}

var (
	pythonBoundary     = regexp.MustCompile(`^(class |def )`)
	jsBoundary         = regexp.MustCompile(`^(export\s+)?(function|class)\s`)
	dartBoundary       = regexp.MustCompile(`^(class |void |final |Future<)`)
	cCppBoundary       = regexp.MustCompile(`^(void |int |char |float |double )`)
	rubyBoundary       = regexp.MustCompile(`^(class |module |def )`)
	jsLeadingStatement = regexp.MustCompile(`^(import |export |require\()`)
)

// chunkPython chunks Python code by function, class, and imports while
// keeping context. Ported from chunk_python.
func chunkPython(content string, minChunkSize int) []string {
	var chunks, chunk, imports []string
	for _, line := range strings.Split(content, "\n") {
		stripped := strings.TrimSpace(line)

		if strings.HasPrefix(stripped, "import ") || strings.HasPrefix(stripped, "from ") {
			imports = append(imports, line)
			continue
		}
		if pythonBoundary.MatchString(stripped) {
			chunks, chunk = flushChunk(chunks, chunk, minChunkSize)
		}
		chunk = append(chunk, line)
	}
	if len(chunk) > 0 {
		chunks = append(chunks, strings.Join(chunk, "\n"))
	}
	return prependLeading(chunks, imports)
}

// chunkJavaScript chunks JavaScript, TypeScript, and Node.js while
// keeping imports at the top. Ported from chunk_javascript.
func chunkJavaScript(content string, minChunkSize int) []string {
	var chunks, chunk, imports []string
	for _, line := range strings.Split(content, "\n") {
		stripped := strings.TrimSpace(line)

		if jsLeadingStatement.MatchString(stripped) {
			imports = append(imports, line)
			continue
		}
		if jsBoundary.MatchString(stripped) {
			chunks, chunk = flushChunk(chunks, chunk, minChunkSize)
		}
		chunk = append(chunk, line)
	}
	if len(chunk) > 0 {
		chunks = append(chunks, strings.Join(chunk, "\n"))
	}
	return prependLeading(chunks, imports)
}

// chunkDart chunks Dart code while keeping import statements at the top.
// Ported from chunk_dart.
func chunkDart(content string, minChunkSize int) []string {
	var chunks, chunk, imports []string
	for _, line := range strings.Split(content, "\n") {
		stripped := strings.TrimSpace(line)

		if strings.HasPrefix(stripped, "import ") {
			imports = append(imports, line)
			continue
		}
		if strings.HasPrefix(stripped, "@override") || dartBoundary.MatchString(stripped) {
			chunks, chunk = flushChunk(chunks, chunk, minChunkSize)
		}
		chunk = append(chunk, line)
	}
	if len(chunk) > 0 {
		chunks = append(chunks, strings.Join(chunk, "\n"))
	}
	return prependLeading(chunks, imports)
}

// chunkElixir chunks Elixir code by modules and functions. Ported from
// chunk_elixir. Unlike the other language chunkers, Elixir has no
// leading-statement extraction in the original.
func chunkElixir(content string, minChunkSize int) []string {
	var chunks, chunk []string
	for _, line := range strings.Split(content, "\n") {
		stripped := strings.TrimSpace(line)

		if strings.HasPrefix(stripped, "defmodule ") || strings.HasPrefix(stripped, "def ") || strings.HasPrefix(stripped, "defp ") {
			chunks, chunk = flushChunk(chunks, chunk, minChunkSize)
		}
		chunk = append(chunk, line)
	}
	if len(chunk) > 0 {
		chunks = append(chunks, strings.Join(chunk, "\n"))
	}
	return chunks
}

// chunkHTMLCSS chunks HTML and CSS files by sections and selectors.
// Ported from chunk_html_css.
func chunkHTMLCSS(content string, minChunkSize int) []string {
	var chunks, chunk []string
	for _, line := range strings.Split(content, "\n") {
		stripped := strings.TrimSpace(line)

		if strings.HasPrefix(stripped, "<") || strings.HasPrefix(stripped, "{") {
			chunks, chunk = flushChunk(chunks, chunk, minChunkSize)
		}
		chunk = append(chunk, line)
	}
	if len(chunk) > 0 {
		chunks = append(chunks, strings.Join(chunk, "\n"))
	}
	return chunks
}

// chunkGo chunks Go code while keeping package and import statements at
// the top. Ported from chunk_go.
func chunkGo(content string, minChunkSize int) []string {
	var chunks, chunk, leading []string
	for _, line := range strings.Split(content, "\n") {
		stripped := strings.TrimSpace(line)

		if strings.HasPrefix(stripped, "package ") || strings.HasPrefix(stripped, "import ") {
			leading = append(leading, line)
			continue
		}
		if strings.HasPrefix(stripped, "func ") {
			chunks, chunk = flushChunk(chunks, chunk, minChunkSize)
		}
		chunk = append(chunk, line)
	}
	if len(chunk) > 0 {
		chunks = append(chunks, strings.Join(chunk, "\n"))
	}
	return prependLeading(chunks, leading)
}

// chunkCCpp chunks C/C++ code while keeping #include statements at the
// top. Ported from chunk_c_cpp.
func chunkCCpp(content string, minChunkSize int) []string {
	var chunks, chunk, includes []string
	for _, line := range strings.Split(content, "\n") {
		stripped := strings.TrimSpace(line)

		if strings.HasPrefix(stripped, "#include") {
			includes = append(includes, line)
			continue
		}
		if cCppBoundary.MatchString(stripped) {
			chunks, chunk = flushChunk(chunks, chunk, minChunkSize)
		}
		chunk = append(chunk, line)
	}
	if len(chunk) > 0 {
		chunks = append(chunks, strings.Join(chunk, "\n"))
	}
	return prependLeading(chunks, includes)
}

// chunkRuby chunks Ruby code while keeping require statements at the
// top. Ported from chunk_ruby.
func chunkRuby(content string, minChunkSize int) []string {
	var chunks, chunk, requires []string
	for _, line := range strings.Split(content, "\n") {
		stripped := strings.TrimSpace(line)

		if strings.HasPrefix(stripped, "require ") {
			requires = append(requires, line)
			continue
		}
		if rubyBoundary.MatchString(stripped) {
			chunks, chunk = flushChunk(chunks, chunk, minChunkSize)
		}
		chunk = append(chunk, line)
	}
	if len(chunk) > 0 {
		chunks = append(chunks, strings.Join(chunk, "\n"))
	}
	return prependLeading(chunks, requires)
}
