package collect_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/code-warden/internal/collect"
	"github.com/sevigo/code-warden/internal/core"
	"github.com/sevigo/code-warden/internal/docstore"
	"github.com/sevigo/code-warden/internal/forge"
)

func TestOrchestrator_CollectsAllReposAndAggregatesContributors(t *testing.T) {
	f := newFakeForge()
	c, gw := newTestCollector(t, f)

	require.NoError(t, gw.InsertMany(context.Background(), "commits", []any{
		&core.Commit{ID: "seed1", Repo: "acme/widgets", Author: core.Person{Name: "Alice", Email: "alice@x.com"}},
	}))

	orch := collect.NewOrchestrator(c, 2, discardLogger())
	require.NoError(t, orch.Run(context.Background(), []string{"acme/widgets", "acme/gadgets"}))

	var contributors []core.Contributor
	require.NoError(t, gw.Find(context.Background(), "contributors", docstore.Filter{}, docstore.FindOptions{}, &contributors))
	require.Len(t, contributors, 1)
	assert.Equal(t, "alice@x.com", contributors[0].Email)
}

func TestOrchestrator_DefaultsZeroWorkersToOne(t *testing.T) {
	f := newFakeForge()
	f.tree = &forge.Tree{Entries: []forge.TreeEntry{{Path: "a.go", SHA: "s", Type: "blob"}}}
	c, gw := newTestCollector(t, f)

	orch := collect.NewOrchestrator(c, 0, discardLogger())
	require.NoError(t, orch.Run(context.Background(), []string{"acme/widgets"}))

	var files []core.BranchFile
	require.NoError(t, gw.Find(context.Background(), "main_files", docstore.Filter{"repo": "acme/widgets"}, docstore.FindOptions{}, &files))
	assert.Len(t, files, 1, "with zero workers requested, one worker still collects the repo")
}
