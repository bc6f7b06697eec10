package metadata

import (
	"context"
	"strings"

	"github.com/sevigo/code-warden/internal/core"
	"github.com/sevigo/code-warden/internal/docstore"
)

// extractFileText implements _extract_text_from_files: prefer the blob at
// external_url, falling back to the stored patch text (only ChangedFile
// carries a patch; tree snapshots have no inline fallback).
func (g *Generator) extractFileText(ctx context.Context, externalURL, patch string) string {
	if externalURL != "" {
		if content, ok := g.blobs.Fetch(ctx, externalURL); ok {
			return content
		}
	}
	return strings.TrimSpace(patch)
}

// extractCommitText implements _extract_text_from_commits.
func extractCommitText(c *core.Commit) string {
	msg := strings.TrimSpace(c.Message)
	files := strings.Join(c.FilesChanged, "\n")
	return strings.TrimSpace("Commit Message:\n" + msg + "\n\nFiles Changed:\n" + files)
}

// extractIssueText implements _extract_text_from_issues: title, body,
// and every comment on the issue joined by newline.
func (g *Generator) extractIssueText(ctx context.Context, repo string, is *core.Issue) (string, error) {
	var comments []core.IssueComment
	if err := g.gw.Find(ctx, "issue_comments", docstore.Filter{"repo": repo, "parent_number": is.Number}, docstore.FindOptions{}, &comments); err != nil {
		return "", err
	}
	bodies := make([]string, len(comments))
	for i, c := range comments {
		bodies[i] = c.Body
	}
	text := strings.TrimSpace(is.Title) + "\n\n" + strings.TrimSpace(is.Body) + "\n\nComments:\n" + strings.Join(bodies, "\n")
	return strings.TrimSpace(text), nil
}

// extractPullRequestText implements _extract_text_from_pull_requests:
// title, body (resolved via body_url if present, else empty — PullRequest
// carries no inline body field, see core.PullRequest), and comments.
func (g *Generator) extractPullRequestText(ctx context.Context, repo string, pr *core.PullRequest) (string, error) {
	body := ""
	if pr.BodyURL != "" {
		if content, ok := g.blobs.Fetch(ctx, pr.BodyURL); ok {
			body = content
		}
	}

	var comments []core.PullRequestComment
	if err := g.gw.Find(ctx, "pull_request_comments", docstore.Filter{"repo": repo, "parent_number": pr.Number}, docstore.FindOptions{}, &comments); err != nil {
		return "", err
	}
	bodies := make([]string, len(comments))
	for i, c := range comments {
		bodies[i] = c.Body
	}
	text := strings.TrimSpace(pr.Title) + "\n\n" + strings.TrimSpace(body) + "\n\nComments:\n" + strings.Join(bodies, "\n")
	return strings.TrimSpace(text), nil
}
