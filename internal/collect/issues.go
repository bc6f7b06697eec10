package collect

import (
	"context"
	"fmt"

	"github.com/sevigo/code-warden/internal/core"
	"github.com/sevigo/code-warden/internal/docstore"
)

// CollectIssues paginates a repository's issues, skipping entries that
// carry a pull-request linkage. Ported from fetch_issues; see DESIGN.md
// Open Question #1 for the set-vs-map discipline this uses for
// de-duplication within a page.
func (c *Collector) CollectIssues(ctx context.Context, owner, name string) error {
	repo := owner + "/" + name

	page := 1
	for {
		issues, ok := c.forge.ListIssues(ctx, owner, name, page)
		if !ok || len(issues) == 0 {
			break
		}

		var toInsert []any
		insertedThisPage := make(map[string]struct{})

		for _, is := range issues {
			if is.IsPullRequest {
				continue
			}

			id := fmt.Sprintf("%s_%d", repo, is.Number)

			var existing core.Issue
			exists, err := c.gw.FindOne(ctx, "issues", docstore.Filter{"id": id}, &existing)
			if err != nil {
				return fmt.Errorf("collect issues: find %s: %w", id, err)
			}

			doc := &core.Issue{
				ID:        id,
				Repo:      repo,
				Number:    is.Number,
				Title:     is.Title,
				State:     is.State,
				Author:    is.Author,
				Labels:    is.Labels,
				HTMLURL:   is.HTMLURL,
				CreatedAt: is.CreatedAt,
				UpdatedAt: is.UpdatedAt,
				Body:      is.Body,
			}

			_, alreadyInserted := insertedThisPage[id]
			switch {
			case !exists && !alreadyInserted:
				toInsert = append(toInsert, doc)
				insertedThisPage[id] = struct{}{}
			case exists && existing.UpdatedAt != is.UpdatedAt:
				if err := c.gw.UpdateOne(ctx, "issues", docstore.Filter{"id": id}, doc, false); err != nil {
					return fmt.Errorf("collect issues: update %s: %w", id, err)
				}
			case alreadyInserted:
				// A later entry for the same number on this page replaces
				// the pending insert.
				for i, pending := range toInsert {
					if pending.(*core.Issue).ID == id {
						toInsert[i] = doc
					}
				}
			}

			if is.Comments > 0 {
				if err := c.collectIssueComments(ctx, owner, name, repo, is.Number); err != nil {
					return fmt.Errorf("collect issues: comments for %d: %w", is.Number, err)
				}
			}
		}

		if len(toInsert) > 0 {
			if err := c.gw.InsertMany(ctx, "issues", toInsert); err != nil {
				return fmt.Errorf("collect issues: insert batch: %w", err)
			}
		}

		c.logger.InfoContext(ctx, "issues collected", "repo", repo, "page", page)
		page++
	}
	return nil
}

// collectIssueComments fetches and upserts-by-body-diff every comment on
// an issue. Ported from fetch_issue_comments.
func (c *Collector) collectIssueComments(ctx context.Context, owner, name, repo string, number int) error {
	page := 1
	for {
		comments, ok := c.forge.ListIssueComments(ctx, owner, name, number, page)
		if !ok || len(comments) == 0 {
			break
		}

		var toInsert []any
		for _, cm := range comments {
			id := fmt.Sprintf("%s_%d_%d", repo, number, cm.ID)

			var existing core.IssueComment
			exists, err := c.gw.FindOne(ctx, "issue_comments", docstore.Filter{"id": id}, &existing)
			if err != nil {
				return err
			}

			if exists {
				if existing.Body != cm.Body {
					if err := c.gw.UpdateOne(ctx, "issue_comments", docstore.Filter{"id": id}, &core.IssueComment{
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
			toInsert = append(toInsert, &core.IssueComment{
				ID: id, Repo: repo, ParentNumber: number, Body: cm.Body, Author: cm.Author,
				CreatedAt: cm.CreatedAt, UpdatedAt: updatedAt,
			})
		}

		if len(toInsert) > 0 {
			if err := c.gw.InsertMany(ctx, "issue_comments", toInsert); err != nil {
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
