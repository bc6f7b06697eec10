package collect_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/code-warden/internal/core"
	"github.com/sevigo/code-warden/internal/docstore"
	"github.com/sevigo/code-warden/internal/forge"
)

func TestCollectIssues_SkipsPullRequestLinkedEntries(t *testing.T) {
	f := newFakeForge()
	now := time.Now()
	f.issuePages = [][]*forge.Issue{
		{
			{Number: 1, Title: "real issue", State: "open", CreatedAt: now, UpdatedAt: now},
			{Number: 2, Title: "actually a pr", State: "open", CreatedAt: now, UpdatedAt: now, IsPullRequest: true},
		},
	}

	c, gw := newTestCollector(t, f)
	require.NoError(t, c.CollectIssues(context.Background(), "acme", "widgets"))

	var issues []core.Issue
	require.NoError(t, gw.Find(context.Background(), "issues", docstore.Filter{"repo": "acme/widgets"}, docstore.FindOptions{}, &issues))
	require.Len(t, issues, 1)
	assert.Equal(t, 1, issues[0].Number)
}

func TestCollectIssues_DedupsWithinPageBySetDiscipline(t *testing.T) {
	f := newFakeForge()
	now := time.Now()
	// The same issue number appears twice on one page (e.g. a duplicate
	// entry from the forge); the set-discipline de-dup (DESIGN.md Open
	// Question #1) must still leave exactly one stored issue.
	f.issuePages = [][]*forge.Issue{
		{
			{Number: 5, Title: "first pass", State: "open", CreatedAt: now, UpdatedAt: now},
			{Number: 5, Title: "second pass", State: "open", CreatedAt: now, UpdatedAt: now},
		},
	}

	c, gw := newTestCollector(t, f)
	require.NoError(t, c.CollectIssues(context.Background(), "acme", "widgets"))

	var issues []core.Issue
	require.NoError(t, gw.Find(context.Background(), "issues", docstore.Filter{"repo": "acme/widgets"}, docstore.FindOptions{}, &issues))
	require.Len(t, issues, 1)
	assert.Equal(t, "second pass", issues[0].Title)
}

func TestCollectIssues_FetchesCommentsPerIssueInsideLoop(t *testing.T) {
	f := newFakeForge()
	now := time.Now()
	f.issuePages = [][]*forge.Issue{
		{
			{Number: 10, Title: "first", State: "open", CreatedAt: now, UpdatedAt: now, Comments: 1},
			{Number: 11, Title: "second", State: "open", CreatedAt: now, UpdatedAt: now, Comments: 1},
		},
	}
	f.issueComments = map[int][]*forge.Comment{
		10: {{ID: 1, Body: "c10", CreatedAt: now}},
		11: {{ID: 2, Body: "c11", CreatedAt: now}},
	}

	c, gw := newTestCollector(t, f)
	require.NoError(t, c.CollectIssues(context.Background(), "acme", "widgets"))

	var comments []core.IssueComment
	require.NoError(t, gw.Find(context.Background(), "issue_comments", docstore.Filter{"repo": "acme/widgets"}, docstore.FindOptions{}, &comments))
	// Both issues' comments must be fetched, not just the page's last one.
	require.Len(t, comments, 2)
}
