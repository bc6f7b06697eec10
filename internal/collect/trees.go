package collect

import (
	"context"
	"fmt"

	"github.com/sevigo/code-warden/internal/core"
	"github.com/sevigo/code-warden/internal/docstore"
	"github.com/sevigo/code-warden/internal/forge"
)

// CollectBranchFiles retrieves the default branch's recursive tree and
// reconciles it against the main_files collection (true reconciliation:
// new paths inserted, changed-SHA paths re-fetched and updated, paths
// absent from the new listing deleted). Ported from fetch_files_from_branch.
func (c *Collector) CollectBranchFiles(ctx context.Context, owner, name string) error {
	repo := owner + "/" + name

	branch, ok := c.forge.GetDefaultBranch(ctx, owner, name)
	if !ok {
		branch = "main"
	}

	tree, ok := c.forge.GetTree(ctx, owner, name, branch)
	if !ok {
		c.logger.ErrorContext(ctx, "failed to fetch branch tree", "repo", repo, "branch", branch)
		return nil
	}

	current, err := findBranchFiles(ctx, c.gw, repo)
	if err != nil {
		return fmt.Errorf("reconcile main_files: list current: %w", err)
	}

	toInsert, toUpdate, toDeleteIDs := reconcile(repo, "main", tree, current, func(f core.BranchFile) (string, string) {
		return f.Path, f.BlobSHA
	})

	for _, u := range toUpdate {
		record := &core.BranchFile{ID: u.id, Repo: repo, Path: u.path, BlobSHA: u.sha}
		c.fetchAndStoreBlob(ctx, repo, branch, u.path, &record.ExternalURL)
		if err := c.gw.UpdateOne(ctx, "main_files", docstore.Filter{"id": u.id}, record, false); err != nil {
			return fmt.Errorf("reconcile main_files: update %s: %w", u.id, err)
		}
	}

	var insertDocs []any
	for _, ins := range toInsert {
		record := &core.BranchFile{ID: ins.id, Repo: repo, Path: ins.path, BlobSHA: ins.sha}
		c.fetchAndStoreBlob(ctx, repo, branch, ins.path, &record.ExternalURL)
		insertDocs = append(insertDocs, record)
	}
	return c.applyReconciliation(ctx, "main_files", repo, insertDocs, toDeleteIDs)
}

// CollectLatestReleaseFiles retrieves the latest release tag's recursive
// tree and reconciles it against last_release_files. Ported from
// fetch_latest_release_files. See DESIGN.md Open Question #2 for the
// pre-release/draft selection decision.
func (c *Collector) CollectLatestReleaseFiles(ctx context.Context, owner, name string) error {
	repo := owner + "/" + name

	release, ok := c.forge.GetLatestRelease(ctx, owner, name)
	if !ok {
		c.logger.ErrorContext(ctx, "no release found", "repo", repo)
		return nil
	}

	tree, ok := c.forge.GetTree(ctx, owner, name, release.TagName)
	if !ok {
		c.logger.ErrorContext(ctx, "failed to fetch release tree", "repo", repo, "tag", release.TagName)
		return nil
	}

	current, err := findReleaseFiles(ctx, c.gw, repo)
	if err != nil {
		return fmt.Errorf("reconcile last_release_files: list current: %w", err)
	}

	toInsert, toUpdate, toDeleteIDs := reconcile(repo, "last_release", tree, current, func(f core.ReleaseFile) (string, string) {
		return f.Path, f.BlobSHA
	})

	for _, u := range toUpdate {
		record := &core.ReleaseFile{ID: u.id, Repo: repo, Path: u.path, BlobSHA: u.sha}
		c.fetchAndStoreBlob(ctx, repo, release.TagName, u.path, &record.ExternalURL)
		if err := c.gw.UpdateOne(ctx, "last_release_files", docstore.Filter{"id": u.id}, record, false); err != nil {
			return fmt.Errorf("reconcile last_release_files: update %s: %w", u.id, err)
		}
	}

	var insertDocs []any
	for _, ins := range toInsert {
		record := &core.ReleaseFile{ID: ins.id, Repo: repo, Path: ins.path, BlobSHA: ins.sha}
		c.fetchAndStoreBlob(ctx, repo, release.TagName, ins.path, &record.ExternalURL)
		insertDocs = append(insertDocs, record)
	}
	return c.applyReconciliation(ctx, "last_release_files", repo, insertDocs, toDeleteIDs)
}

func findBranchFiles(ctx context.Context, gw docstore.Gateway, repo string) ([]core.BranchFile, error) {
	var out []core.BranchFile
	err := gw.Find(ctx, "main_files", docstore.Filter{"repo": repo}, docstore.FindOptions{}, &out)
	return out, err
}

func findReleaseFiles(ctx context.Context, gw docstore.Gateway, repo string) ([]core.ReleaseFile, error) {
	var out []core.ReleaseFile
	err := gw.Find(ctx, "last_release_files", docstore.Filter{"repo": repo}, docstore.FindOptions{}, &out)
	return out, err
}

type reconcileEntry struct {
	id, path, sha string
}

// reconcile diffs a fresh tree listing against the stored snapshot,
// returning the blob entries to insert, the changed-SHA entries to
// update, and the ids of stored entries whose paths are absent from the
// new listing (true reconciliation, spec.md §4.4).
func reconcile[T any](repo, idScope string, tree *forge.Tree, current []T, fields func(T) (path, sha string)) (toInsert, toUpdate []reconcileEntry, toDeleteIDs []string) {
	byPath := make(map[string]string, len(current))
	stale := make(map[string]struct{}, len(current))
	for _, f := range current {
		path, sha := fields(f)
		byPath[path] = sha
		stale[path] = struct{}{}
	}

	for _, entry := range tree.Entries {
		if entry.Type != "blob" {
			continue
		}
		id := fmt.Sprintf("%s_%s_%s", repo, idScope, entry.Path)
		if existingSHA, had := byPath[entry.Path]; had {
			delete(stale, entry.Path)
			if existingSHA != entry.SHA {
				toUpdate = append(toUpdate, reconcileEntry{id: id, path: entry.Path, sha: entry.SHA})
			}
			continue
		}
		toInsert = append(toInsert, reconcileEntry{id: id, path: entry.Path, sha: entry.SHA})
	}

	for path := range stale {
		toDeleteIDs = append(toDeleteIDs, fmt.Sprintf("%s_%s_%s", repo, idScope, path))
	}
	return
}

func (c *Collector) applyReconciliation(ctx context.Context, collection, repo string, insertDocs []any, deleteIDs []string) error {
	if len(insertDocs) > 0 {
		if err := c.gw.InsertMany(ctx, collection, insertDocs); err != nil {
			return fmt.Errorf("reconcile %s: insert batch: %w", collection, err)
		}
		c.logger.InfoContext(ctx, "files added", "collection", collection, "repo", repo, "count", len(insertDocs))
	}
	if len(deleteIDs) > 0 {
		ids := make([]any, len(deleteIDs))
		for i, id := range deleteIDs {
			ids[i] = id
		}
		removed, err := c.gw.DeleteMany(ctx, collection, docstore.Filter{"id": docstore.In(ids)})
		if err != nil {
			return fmt.Errorf("reconcile %s: delete stale: %w", collection, err)
		}
		c.logger.InfoContext(ctx, "stale files removed", "collection", collection, "repo", repo, "count", removed)
	}
	return nil
}

func (c *Collector) fetchAndStoreBlob(ctx context.Context, repo, ref, path string, externalURL *string) {
	rawURL := fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/%s", repo, ref, path)
	content, ok := c.forge.FetchRaw(ctx, rawURL)
	if !ok || content == "" {
		return
	}
	url, err := c.blobs.Store(ctx, content, repo, ref, path)
	if err != nil {
		c.logger.WarnContext(ctx, "failed to store tree blob content", "path", path, "error", err)
		return
	}
	*externalURL = url
}
