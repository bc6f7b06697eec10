package collect

import (
	"context"
	"fmt"

	"github.com/sevigo/code-warden/internal/core"
	"github.com/sevigo/code-warden/internal/docstore"
)

// CollectPullRequests paginates a repository's pull requests, upserting by
// "<repo>_<number>", persisting non-empty bodies to the Blob Store,
// resolving the commits list (I2), and fetching comments when present.
// Ported from fetch_pull_requests.
func (c *Collector) CollectPullRequests(ctx context.Context, owner, name string) error {
	repo := owner + "/" + name

	page := 1
	for {
		prs, ok := c.forge.ListPullRequests(ctx, owner, name, page)
		if !ok || len(prs) == 0 {
			break
		}

		var toInsert []any
		for _, pr := range prs {
			id := fmt.Sprintf("%s_%d", repo, pr.Number)

			var existing core.PullRequest
			exists, err := c.gw.FindOne(ctx, "pull_requests", docstore.Filter{"id": id}, &existing)
			if err != nil {
				return fmt.Errorf("collect pull requests: find %s: %w", id, err)
			}

			var bodyURL string
			if pr.Body != "" {
				url, err := c.blobs.Store(ctx, pr.Body, repo, fmt.Sprintf("pr_%d", pr.Number), "_body.txt")
				if err != nil {
					c.logger.WarnContext(ctx, "failed to store pr body", "pr", pr.Number, "error", err)
				} else {
					bodyURL = url
				}
			}

			commits, err := c.resolvePRCommits(ctx, owner, name, pr.Number)
			if err != nil {
				return fmt.Errorf("collect pull requests: resolve commits for %d: %w", pr.Number, err)
			}

			doc := &core.PullRequest{
				ID:        id,
				Repo:      repo,
				Number:    pr.Number,
				Title:     pr.Title,
				State:     pr.State,
				Author:    pr.Author,
				Labels:    pr.Labels,
				HTMLURL:   pr.HTMLURL,
				CreatedAt: pr.CreatedAt,
				UpdatedAt: pr.UpdatedAt,
				MergedAt:  pr.MergedAt,
				Commits:   commits,
				BodyURL:   bodyURL,
			}

			if pr.Comments > 0 {
				if err := c.collectPullRequestComments(ctx, owner, name, repo, pr.Number); err != nil {
					return fmt.Errorf("collect pull requests: comments for %d: %w", pr.Number, err)
				}
			}

			switch {
			case !exists:
				toInsert = append(toInsert, doc)
			case existing.UpdatedAt != pr.UpdatedAt:
				if err := c.gw.UpdateOne(ctx, "pull_requests", docstore.Filter{"id": id}, doc, false); err != nil {
					return fmt.Errorf("collect pull requests: update %s: %w", id, err)
				}
			}
		}

		if len(toInsert) > 0 {
			if err := c.gw.InsertMany(ctx, "pull_requests", toInsert); err != nil {
				return fmt.Errorf("collect pull requests: insert batch: %w", err)
			}
		}

		c.logger.InfoContext(ctx, "pull requests collected", "repo", repo, "page", page)
		page++
	}
	return nil
}

// resolvePRCommits intersects the PR's reported commit SHAs with the
// Commit collection: a SHA not already stored is assumed not part of the
// default branch and is dropped (I2). Ported from fetch_pr_commits.
func (c *Collector) resolvePRCommits(ctx context.Context, owner, name string, number int) ([]string, error) {
	shas, ok := c.forge.ListPullRequestCommitSHAs(ctx, owner, name, number)
	if !ok || len(shas) == 0 {
		return nil, nil
	}

	ids := make([]any, len(shas))
	for i, s := range shas {
		ids[i] = s
	}

	var existing []core.Commit
	if err := c.gw.Find(ctx, "commits", docstore.Filter{"id": docstore.In(ids)}, docstore.FindOptions{}, &existing); err != nil {
		return nil, err
	}
	present := make(map[string]bool, len(existing))
	for _, e := range existing {
		present[e.ID] = true
	}

	valid := make([]string, 0, len(shas))
	for _, sha := range shas {
		if present[sha] {
			valid = append(valid, sha)
		}
	}
	return valid, nil
}

// collectPullRequestComments fetches and upserts-by-body-diff every
// comment on a pull request. Ported from fetch_pull_request_comments.
func (c *Collector) collectPullRequestComments(ctx context.Context, owner, name, repo string, number int) error {
	page := 1
	for {
		comments, ok := c.forge.ListPullRequestComments(ctx, owner, name, number, page)
		if !ok || len(comments) == 0 {
			break
		}

		var toInsert []any
		for _, cm := range comments {
			id := fmt.Sprintf("%s_%d_%d", repo, number, cm.ID)

			var existing core.PullRequestComment
			exists, err := c.gw.FindOne(ctx, "pull_request_comments", docstore.Filter{"id": id}, &existing)
			if err != nil {
				return err
			}

			if exists {
				if existing.Body != cm.Body {
					if err := c.gw.UpdateOne(ctx, "pull_request_comments", docstore.Filter{"id": id}, &core.PullRequestComment{
						ID: id, Repo: repo, ParentNumber: number, Body: cm.Body, Author: cm.Author,
						CreatedAt: cm.CreatedAt, UpdatedAt: cm.UpdatedAt,
					}, false); err != nil {
						return err
					}
				}
				continue
			}

			updatedAt := cm.UpdatedAt
			if updatedAt.IsZero() {
				updatedAt = cm.CreatedAt
			}
			toInsert = append(toInsert, &core.PullRequestComment{
				ID: id, Repo: repo, ParentNumber: number, Body: cm.Body, Author: cm.Author,
				CreatedAt: cm.CreatedAt, UpdatedAt: updatedAt,
			})
		}

		if len(toInsert) > 0 {
			if err := c.gw.InsertMany(ctx, "pull_request_comments", toInsert); err != nil {
				return err
			}
		}
		if len(comments) < perPageHint {
			break
		}
		page++
	}
	return nil
}

// perPageHint mirrors the forge client's page size; a short page ends
// pagination without requiring a dedicated "has more" signal.
const perPageHint = 100
