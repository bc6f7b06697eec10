// Package blobstore implements the Blob Store (C3): sanitized local
// filesystem persistence for large payloads kept out of the document
// store, plus external URL generation. Ported from
// original_source/core/file_storage_manager.py.
package blobstore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Store maps (repo, reference, filename) to an absolute path and an
// external URL. Concurrency: writes are not atomic across processes;
// callers must not depend on partial writes being invisible (spec.md
// §4.3).
type Store struct {
	root    string
	baseURL string
	client  *http.Client
}

// New creates a Store rooted at root, serving URLs under baseURL. The
// root directory is created if absent.
func New(root, baseURL string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("blobstore: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("blobstore: create root: %w", err)
	}
	return &Store{
		root:    abs,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// sanitizeRepo replaces forward slashes in repo names with underscores so
// storage stays a flat directory per repo.
func sanitizeRepo(repo string) string {
	return strings.ReplaceAll(repo, "/", "_")
}

// sanitizeFilename reduces filename to its basename, defeating path
// traversal (P9).
func sanitizeFilename(filename string) string {
	return filepath.Base(filename)
}

func (s *Store) localPath(repo, ref, filename string) string {
	return filepath.Join(s.root, sanitizeRepo(repo), ref, sanitizeFilename(filename))
}

// URLFor returns the accessible URL of a stored (repo, ref, filename)
// triple, per spec.md §6's "{BASE_URL}/{repo}/{ref}/{basename}" template.
func (s *Store) URLFor(repo, ref, filename string) string {
	relative := filepath.ToSlash(filepath.Join(sanitizeRepo(repo), ref, sanitizeFilename(filename)))
	return fmt.Sprintf("%s/%s", s.baseURL, relative)
}

// Store writes content to the sanitized local path and returns its
// external URL (write-through, creates parent directories).
func (s *Store) Store(_ context.Context, content, repo, ref, filename string) (string, error) {
	path := s.localPath(repo, ref, filename)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("blobstore: create parent dirs: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("blobstore: write %s: %w", path, err)
	}
	return s.URLFor(repo, ref, filename), nil
}

// Fetch reads content from a local path or URL. For URLs it issues an
// HTTP GET; for local paths it refuses to read outside the configured
// root (P9). Returns ("", false) on any failure, matching spec.md §7's
// "Storage" error class: logged elsewhere by the caller, degrade to
// empty/omitted rather than propagate.
func (s *Store) Fetch(ctx context.Context, pathOrURL string) (string, bool) {
	if strings.HasPrefix(pathOrURL, "http://") || strings.HasPrefix(pathOrURL, "https://") {
		return s.fetchRemote(ctx, pathOrURL)
	}
	return s.fetchLocal(pathOrURL)
}

func (s *Store) fetchRemote(ctx context.Context, url string) (string, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", false
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", false
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", false
	}
	return string(body), true
}

func (s *Store) fetchLocal(path string) (string, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	if rel, err := filepath.Rel(s.root, abs); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	content, err := os.ReadFile(abs)
	if err != nil {
		return "", false
	}
	return string(content), true
}

// Delete removes a stored file, returning whether it existed.
func (s *Store) Delete(_ context.Context, repo, ref, filename string) bool {
	path := s.localPath(repo, ref, filename)
	if _, err := os.Stat(path); err != nil {
		return false
	}
	return os.Remove(path) == nil
}
