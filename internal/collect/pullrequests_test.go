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

func TestCollectPullRequests_IntersectsCommitsWithStored(t *testing.T) {
	f := newFakeForge()
	now := time.Now()
	f.prPages = [][]*forge.PullRequest{
		{{Number: 7, Title: "Add feature", State: "open", Author: "alice", CreatedAt: now, UpdatedAt: now, Body: "does a thing"}},
	}
	f.prCommitSHAs = map[int][]string{7: {"known1", "unknown2"}}

	c, gw := newTestCollector(t, f)
	require.NoError(t, gw.InsertMany(context.Background(), "commits", []any{
		&core.Commit{ID: "known1", Repo: "acme/widgets"},
	}))

	require.NoError(t, c.CollectPullRequests(context.Background(), "acme", "widgets"))

	var prs []core.PullRequest
	require.NoError(t, gw.Find(context.Background(), "pull_requests", docstore.Filter{"repo": "acme/widgets"}, docstore.FindOptions{}, &prs))
	require.Len(t, prs, 1)
	assert.Equal(t, []string{"known1"}, prs[0].Commits)
	assert.NotEmpty(t, prs[0].BodyURL)
}

func TestCollectPullRequests_UpdatesOnlyWhenUpdatedAtChanges(t *testing.T) {
	f := newFakeForge()
	created := time.Now().Add(-time.Hour)
	updated := time.Now()
	f.prPages = [][]*forge.PullRequest{
		{{Number: 1, Title: "v2 title", State: "open", Author: "bob", CreatedAt: created, UpdatedAt: updated}},
	}

	c, gw := newTestCollector(t, f)
	require.NoError(t, gw.InsertMany(context.Background(), "pull_requests", []any{
		&core.PullRequest{ID: "acme/widgets_1", Repo: "acme/widgets", Number: 1, Title: "v1 title", UpdatedAt: created},
	}))

	require.NoError(t, c.CollectPullRequests(context.Background(), "acme", "widgets"))

	var prs []core.PullRequest
	require.NoError(t, gw.Find(context.Background(), "pull_requests", docstore.Filter{"id": "acme/widgets_1"}, docstore.FindOptions{}, &prs))
	require.Len(t, prs, 1)
	assert.Equal(t, "v2 title", prs[0].Title)
}

func TestCollectPullRequests_FetchesCommentsWhenPresent(t *testing.T) {
	f := newFakeForge()
	now := time.Now()
	f.prPages = [][]*forge.PullRequest{
		{{Number: 3, Title: "PR", State: "open", Author: "carol", CreatedAt: now, UpdatedAt: now, Comments: 2}},
	}
	f.prComments = map[int][]*forge.Comment{
		3: {{ID: 100, Body: "nice", Author: "dave", CreatedAt: now}},
	}

	c, gw := newTestCollector(t, f)
	require.NoError(t, c.CollectPullRequests(context.Background(), "acme", "widgets"))

	var comments []core.PullRequestComment
	require.NoError(t, gw.Find(context.Background(), "pull_request_comments", docstore.Filter{"repo": "acme/widgets"}, docstore.FindOptions{}, &comments))
	require.Len(t, comments, 1)
	assert.Equal(t, "nice", comments[0].Body)
}
