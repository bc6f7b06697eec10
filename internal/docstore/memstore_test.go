package docstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/code-warden/internal/core"
	"github.com/sevigo/code-warden/internal/docstore"
)

func TestMemoryGateway_UpsertAndFindOne(t *testing.T) {
	gw := docstore.NewMemoryGateway()
	ctx := context.Background()

	repo := &core.Repository{ID: "acme/widgets", Description: "widgets"}
	require.NoError(t, gw.InsertMany(ctx, "repositories", []any{repo}))

	var got core.Repository
	found, err := gw.FindOne(ctx, "repositories", docstore.Filter{"id": "acme/widgets"}, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "widgets", got.Description)

	_, err = gw.FindOne(ctx, "repositories", docstore.Filter{"id": "missing/repo"}, &core.Repository{})
	require.NoError(t, err)
}

func TestMemoryGateway_InsertIsIdempotent(t *testing.T) {
	gw := docstore.NewMemoryGateway()
	ctx := context.Background()

	c := &core.Commit{ID: "abc123", Repo: "acme/widgets", Message: "first"}
	require.NoError(t, gw.InsertMany(ctx, "commits", []any{c}))
	require.NoError(t, gw.InsertMany(ctx, "commits", []any{c}))

	var out []core.Commit
	require.NoError(t, gw.Find(ctx, "commits", docstore.Filter{"repo": "acme/widgets"}, docstore.FindOptions{}, &out))
	assert.Len(t, out, 1)
}

func TestMemoryGateway_BulkWriteAndDeleteMany(t *testing.T) {
	gw := docstore.NewMemoryGateway()
	ctx := context.Background()

	ops := []docstore.UpsertOp{
		{Doc: &core.BranchFile{ID: "r_branch_a.go", Repo: "acme/widgets", Path: "a.go", BlobSHA: "sha1"}},
		{Doc: &core.BranchFile{ID: "r_branch_b.go", Repo: "acme/widgets", Path: "b.go", BlobSHA: "sha2"}},
	}
	require.NoError(t, gw.BulkWrite(ctx, "main_files", ops))

	var files []core.BranchFile
	require.NoError(t, gw.Find(ctx, "main_files", docstore.Filter{"repo": "acme/widgets"}, docstore.FindOptions{}, &files))
	assert.Len(t, files, 2)

	removed, err := gw.DeleteMany(ctx, "main_files", docstore.Filter{"id": "r_branch_a.go"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	files = nil
	require.NoError(t, gw.Find(ctx, "main_files", docstore.Filter{"repo": "acme/widgets"}, docstore.FindOptions{}, &files))
	assert.Len(t, files, 1)
}

func TestMemoryGateway_InFilter(t *testing.T) {
	gw := docstore.NewMemoryGateway()
	ctx := context.Background()

	require.NoError(t, gw.InsertMany(ctx, "metadata", []any{
		&core.Metadata{ID: "meta_1", CollectionSrc: "commits"},
		&core.Metadata{ID: "meta_2", CollectionSrc: "issues"},
		&core.Metadata{ID: "meta_3", CollectionSrc: "files"},
	}))

	var out []core.Metadata
	require.NoError(t, gw.Find(ctx, "metadata", docstore.Filter{
		"collection_src": docstore.In{"commits", "issues"},
	}, docstore.FindOptions{}, &out))
	assert.Len(t, out, 2)
}
