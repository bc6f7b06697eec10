// Package util holds small filesystem/identifier sanitization helpers
// shared across the pipeline's on-disk artifact layouts, adapted from
// sevigo-code-warden/internal/util/naming.go's GenerateCollectionName
// (a Qdrant collection-name sanitizer): same lowercase-then-strip-
// disallowed-characters idiom, generalized from "repo+embedder ->
// collection name" to "arbitrary path component -> filesystem-safe
// segment", since the vector index artifact path
// (internal/vectorindex/manager.go) needs the same guarantee the
// teacher needed for Qdrant collection names.
package util

import (
	"regexp"
	"strings"
)

var disallowedPathChars = regexp.MustCompile(`[^a-z0-9_-]+`)

// SanitizePathComponent lowercases s, replaces forward slashes with
// hyphens, and strips every remaining character outside [a-z0-9_-], so
// the result is safe to use as a single filesystem path segment.
func SanitizePathComponent(s string) string {
	safe := strings.ToLower(strings.ReplaceAll(s, "/", "-"))
	return disallowedPathChars.ReplaceAllString(safe, "")
}
