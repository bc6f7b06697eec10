// Package collect implements the Collectors (C4) and Contributor
// Aggregator (C5): the per-repository ingestion operations that populate
// the Document Store (C2) and Blob Store (C3) from the Forge Client (C1).
// Ported line-for-line in semantics from
// original_source/collectors/github_commits.py, github_pull_requests.py,
// github_issues.py, and github_files.py.
package collect

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sevigo/code-warden/internal/blobstore"
	"github.com/sevigo/code-warden/internal/core"
	"github.com/sevigo/code-warden/internal/docstore"
	"github.com/sevigo/code-warden/internal/forge"
)

// Collector runs the collection operations for a single repository. It is
// constructed with the C1 forge client and C2 gateway injected, the same
// constructor-injection shape as sevigo-code-warden/internal/jobs.dispatcher
// taking a core.Job and *slog.Logger.
type Collector struct {
	forge  forge.Client
	gw     docstore.Gateway
	blobs  *blobstore.Store
	logger *slog.Logger
}

// NewCollector builds a Collector for the given repository's dependencies.
func NewCollector(client forge.Client, gw docstore.Gateway, blobs *blobstore.Store, logger *slog.Logger) *Collector {
	return &Collector{forge: client, gw: gw, blobs: blobs, logger: logger}
}

// CollectCommits fetches commits newest-first, stopping as soon as a
// commit's committer date is at or before the most recently stored commit
// date for repo (I1: monotone, never re-walks history already collected).
func (c *Collector) CollectCommits(ctx context.Context, owner, name string) error {
	repo := owner + "/" + name

	var latestRows []core.Commit
	if err := c.gw.Find(ctx, "commits", docstore.Filter{"repo": repo}, docstore.FindOptions{Sort: "timestamp DESC", Limit: 1}, &latestRows); err != nil {
		return fmt.Errorf("collect commits: find latest: %w", err)
	}
	found := len(latestRows) > 0
	var latest core.Commit
	if found {
		latest = latestRows[0]
	}

	page := 1
	for {
		commits, ok := c.forge.ListCommits(ctx, owner, name, page)
		if !ok || len(commits) == 0 {
			break
		}

		var batch []any
		stop := false
		for _, fc := range commits {
			if found && !fc.Date.After(latest.Timestamp) {
				stop = true
				break
			}

			commitID := fc.SHA
			var existing core.Commit
			exists, err := c.gw.FindOne(ctx, "commits", docstore.Filter{"id": commitID}, &existing)
			if err != nil {
				return fmt.Errorf("collect commits: check existing %s: %w", commitID, err)
			}
			if exists {
				continue
			}

			filesChanged, err := c.collectCommitFiles(ctx, owner, name, repo, commitID)
			if err != nil {
				return fmt.Errorf("collect commits: files for %s: %w", commitID, err)
			}
			if len(filesChanged) == 0 {
				// A commit with zero usable files is dropped (design choice).
				continue
			}

			batch = append(batch, &core.Commit{
				ID:           commitID,
				Repo:         repo,
				Message:      fc.Message,
				Author:       core.Person{Name: fc.Author.Name, Email: fc.Author.Email},
				Committer:    core.Person{Name: fc.Committer.Name, Email: fc.Committer.Email},
				Timestamp:    fc.Date,
				FilesChanged: filesChanged,
			})
		}

		if len(batch) > 0 {
			if err := c.gw.InsertMany(ctx, "commits", batch); err != nil {
				return fmt.Errorf("collect commits: insert batch: %w", err)
			}
			c.logger.InfoContext(ctx, "commits added", "repo", repo, "count", len(batch))
		}

		if stop {
			break
		}
		page++
	}
	return nil
}

// collectCommitFiles materializes the changed-file records for a single
// commit, fetching added-file content for LFS detection / blob storage.
// Ported from fetch_commit_files.
func (c *Collector) collectCommitFiles(ctx context.Context, owner, name, repo, sha string) ([]string, error) {
	commit, ok := c.forge.GetCommit(ctx, owner, name, sha)
	if !ok {
		return nil, nil
	}

	fileIDs := make([]string, 0, len(commit.Files))
	var toInsert []any

	for _, f := range commit.Files {
		fileID := fmt.Sprintf("%s_%s", sha, f.Filename)

		var existing core.ChangedFile
		exists, err := c.gw.FindOne(ctx, "files", docstore.Filter{"id": fileID}, &existing)
		if err != nil {
			return nil, err
		}
		if exists {
			fileIDs = append(fileIDs, fileID)
			continue
		}

		changed := &core.ChangedFile{
			ID:       fileID,
			CommitID: sha,
			Repo:     repo,
			Path:     f.Filename,
			Status:   core.FileStatus(f.Status),
			Patch:    f.Patch,
		}

		if f.Status == "added" && f.RawURL != "" {
			content, ok := c.forge.FetchRaw(ctx, f.RawURL)
			if ok {
				if ptr, isLFS := parseLFSPointer(content); isLFS {
					lfsID := fmt.Sprintf("%s_%s_lfs", sha, f.Filename)
					if err := c.gw.UpdateOne(ctx, "lfs_pointers", docstore.Filter{"id": lfsID}, &core.LFSPointer{
						ID:          lfsID,
						FileID:      fileID,
						OIDKind:     ptr.oidKind,
						OID:         ptr.oid,
						Size:        ptr.size,
						ExternalURL: f.RawURL,
					}, true); err != nil {
						return nil, err
					}
					changed.LFSPointerID = lfsID
				} else if content != "" {
					url, err := c.blobs.Store(ctx, content, repo, sha, f.Filename)
					if err != nil {
						c.logger.WarnContext(ctx, "failed to store commit file content", "file", f.Filename, "error", err)
					} else {
						changed.ExternalURL = url
					}
				}
			}
		}

		fileIDs = append(fileIDs, fileID)
		toInsert = append(toInsert, changed)
	}

	if len(toInsert) > 0 {
		if err := c.gw.InsertMany(ctx, "files", toInsert); err != nil {
			return nil, err
		}
	}
	return fileIDs, nil
}

type lfsPointer struct {
	oidKind string
	oid     string
	size    string
}

// parseLFSPointer recognizes and parses a Git LFS pointer file by its
// fixed prefix, matching fetch_large_file's pointer-info extraction.
func parseLFSPointer(content string) (lfsPointer, bool) {
	if !strings.HasPrefix(content, core.LFSPointerPrefix) {
		return lfsPointer{}, false
	}
	var ptr lfsPointer
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, "\r")
		switch {
		case strings.HasPrefix(line, "oid "):
			parts := strings.SplitN(strings.TrimSpace(strings.TrimPrefix(line, "oid ")), ":", 2)
			if len(parts) == 2 {
				ptr.oidKind = parts[0]
				ptr.oid = parts[1]
			}
		case strings.HasPrefix(line, "size "):
			ptr.size = strings.TrimSpace(strings.TrimPrefix(line, "size "))
		}
	}
	return ptr, true
}
