package metadata

import (
	"strings"

	"github.com/sevigo/code-warden/internal/core"
)

// extensionCategories mirrors metadata_utils.py's detect_file_type
// extension_mapping table.
var extensionCategories = map[string]core.FileCategory{
	"py": core.CategoryCode, "js": core.CategoryCode, "ts": core.CategoryCode,
	"java": core.CategoryCode, "c": core.CategoryCode, "cpp": core.CategoryCode,
	"h": core.CategoryCode, "hpp": core.CategoryCode, "cs": core.CategoryCode,
	"go": core.CategoryCode, "rb": core.CategoryCode, "rs": core.CategoryCode,
	"php": core.CategoryCode, "swift": core.CategoryCode, "kt": core.CategoryCode,
	"ex": core.CategoryCode, "exs": core.CategoryCode,

	"md": core.CategoryDoc, "rst": core.CategoryDoc, "txt": core.CategoryDoc,
	"pdf": core.CategoryDoc, "doc": core.CategoryDoc, "docx": core.CategoryDoc,

	"json": core.CategoryConfig, "yaml": core.CategoryConfig, "yml": core.CategoryConfig,
	"toml": core.CategoryConfig, "ini": core.CategoryConfig, "xml": core.CategoryConfig,

	"log": core.CategoryLog, "csv": core.CategoryLog,

	"png": core.CategoryBinary, "jpg": core.CategoryBinary, "jpeg": core.CategoryBinary,
	"gif": core.CategoryBinary, "bmp": core.CategoryBinary, "svg": core.CategoryBinary,
	"mp3": core.CategoryBinary, "mp4": core.CategoryBinary, "mov": core.CategoryBinary,
	"avi": core.CategoryBinary, "zip": core.CategoryBinary, "tar": core.CategoryBinary,
	"gz": core.CategoryBinary, "7z": core.CategoryBinary, "rar": core.CategoryBinary,
	"mmdb": core.CategoryBinary,
}

// detectFileType returns the document category for filename's extension,
// ported from detect_file_type.
func detectFileType(filename string) core.FileCategory {
	ext := fileExtension(filename)
	if cat, ok := extensionCategories[ext]; ok {
		return cat
	}
	return core.CategoryUnknown
}

// languageByExtension mirrors detect_programming_language's
// language_mapping table.
var languageByExtension = map[string]string{
	"py": "python", "js": "javascript", "ts": "javascript", "sol": "solidity",
	"java": "java", "c": "c", "h": "c", "cpp": "cpp", "hpp": "cpp",
	"cs": "csharp", "go": "go", "rb": "ruby", "rs": "rust", "php": "php",
	"swift": "swift", "kt": "kotlin", "json": "json", "yaml": "yaml", "yml": "yaml",
	"toml": "toml", "xml": "xml", "md": "markdown", "rst": "markdown", "txt": "markdown",
	"exs": "elixir", "ex": "elixir",
}

// detectProgrammingLanguage ported from detect_programming_language.
func detectProgrammingLanguage(ext string) string {
	if lang, ok := languageByExtension[ext]; ok {
		return lang
	}
	return "unknown"
}

func fileExtension(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx == -1 {
		return filename
	}
	return strings.ToLower(filename[idx+1:])
}

// detectNaturalLanguage is a reduced stand-in for detect_natural_language's
// langdetect call: no pack example or reachable ecosystem library offers
// language identification (grep across every go.mod in _examples turned
// up nothing — see DESIGN.md), so this falls back to a conservative
// ASCII-ratio heuristic rather than fabricating a dependency. Non-ASCII
// heavy text is reported "unknown", matching langdetect's own
// except-clause fallback for input it cannot classify; everything else is
// reported "en", the overwhelming case in this pipeline's source text.
func detectNaturalLanguage(text string) string {
	if text == "" {
		return "unknown"
	}
	nonASCII := 0
	for _, r := range text {
		if r > 127 {
			nonASCII++
		}
	}
	if float64(nonASCII)/float64(len([]rune(text))) > 0.3 {
		return "unknown"
	}
	return "en"
}
