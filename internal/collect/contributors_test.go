package collect_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/code-warden/internal/core"
	"github.com/sevigo/code-warden/internal/docstore"
)

func TestUpdateContributors_AggregatesAcrossRepos(t *testing.T) {
	f := newFakeForge()
	c, gw := newTestCollector(t, f)

	require.NoError(t, gw.InsertMany(context.Background(), "commits", []any{
		&core.Commit{ID: "c1", Repo: "acme/widgets", Author: core.Person{Name: "Alice", Email: "alice@x.com"}},
		&core.Commit{ID: "c2", Repo: "acme/gadgets", Author: core.Person{Name: "Alice", Email: "alice@x.com"}},
		&core.Commit{ID: "c3", Repo: "acme/widgets", Author: core.Person{Name: "Bob", Email: "bob@x.com"}},
		&core.Commit{ID: "c4", Repo: "acme/widgets"}, // no author email: must be ignored
	}))

	require.NoError(t, c.UpdateContributors(context.Background()))

	var contributors []core.Contributor
	require.NoError(t, gw.Find(context.Background(), "contributors", docstore.Filter{}, docstore.FindOptions{}, &contributors))
	require.Len(t, contributors, 2)

	byEmail := make(map[string]core.Contributor, len(contributors))
	for _, ctr := range contributors {
		byEmail[ctr.Email] = ctr
	}

	alice := byEmail["alice@x.com"]
	assert.Equal(t, 2, alice.TotalCommits)
	assert.ElementsMatch(t, []string{"acme/widgets", "acme/gadgets"}, alice.Repos)

	bob := byEmail["bob@x.com"]
	assert.Equal(t, 1, bob.TotalCommits)
}

func TestUpdateContributors_KeepsOnlyLastTenCommitIDs(t *testing.T) {
	f := newFakeForge()
	c, gw := newTestCollector(t, f)

	var docs []any
	for i := 0; i < 15; i++ {
		docs = append(docs, &core.Commit{
			ID:     fmt.Sprintf("c%02d", i),
			Repo:   "acme/widgets",
			Author: core.Person{Name: "Alice", Email: "alice@x.com"},
		})
	}
	require.NoError(t, gw.InsertMany(context.Background(), "commits", docs))

	require.NoError(t, c.UpdateContributors(context.Background()))

	var contributors []core.Contributor
	require.NoError(t, gw.Find(context.Background(), "contributors", docstore.Filter{"id": "alice@x.com"}, docstore.FindOptions{}, &contributors))
	require.Len(t, contributors, 1)
	assert.Len(t, contributors[0].LastCommitIDs, 10)
	assert.Equal(t, 15, contributors[0].TotalCommits)
}
