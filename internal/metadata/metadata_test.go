package metadata_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/code-warden/internal/blobstore"
	"github.com/sevigo/code-warden/internal/core"
	"github.com/sevigo/code-warden/internal/docstore"
	"github.com/sevigo/code-warden/internal/metadata"
)

type fakeEmbedder struct{ dim int }

func (f *fakeEmbedder) Dimension() int { return f.dim }
func (f *fakeEmbedder) Encode(ctx context.Context, text string) ([]float32, error) {
	return []float32{float32(len(text)), 0, 0}, nil
}

type fakeSummarizer struct{ calls int }

func (f *fakeSummarizer) Summarize(ctx context.Context, text string, maxLen, minLen int) (string, error) {
	f.calls++
	return "summary:" + text[:min(len(text), 10)], nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

type fakeKeywords struct{}

func (fakeKeywords) Extract(ctx context.Context, text string, n int) ([]string, error) {
	return []string{"tag1", "tag2"}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestGenerator(t *testing.T) (*metadata.Generator, docstore.Gateway, *fakeSummarizer) {
	gen, gw, summ, _ := newTestGeneratorWithBlobs(t)
	return gen, gw, summ
}

func newTestGeneratorWithBlobs(t *testing.T) (*metadata.Generator, docstore.Gateway, *fakeSummarizer, *blobstore.Store) {
	t.Helper()
	gw := docstore.NewMemoryGateway()
	// baseURL == root so Store's returned "external_url" is itself a
	// local filesystem path Fetch can read back without a real HTTP
	// blob server (the separate process spec.md §5 describes).
	dir := t.TempDir()
	blobs, err := blobstore.New(dir, dir)
	require.NoError(t, err)
	summ := &fakeSummarizer{}
	gen := metadata.New(gw, blobs, &fakeEmbedder{dim: 3}, summ, fakeKeywords{}, 5, discardLogger())
	return gen, gw, summ, blobs
}

func TestUpdateCollection_CommitsCreatesMetadataAndChunks(t *testing.T) {
	gen, gw, _ := newTestGenerator(t)
	ctx := context.Background()

	require.NoError(t, gw.InsertMany(ctx, "commits", []any{&core.Commit{
		ID: "sha1", Repo: "acme/widgets", Message: "fix bug", FilesChanged: []string{"a.go", "b.go"},
	}}))

	require.NoError(t, gen.UpdateCollection(ctx, "acme/widgets", metadata.SourceCommits))

	metaID := fmt.Sprintf("meta_%s_%s_%s", "acme/widgets", "commits", "sha1")
	var meta core.Metadata
	found, err := gw.FindOne(ctx, "metadata", docstore.Filter{"id": metaID}, &meta)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "acme/widgets", meta.Repo)
	assert.NotEmpty(t, meta.ChunkIDs)
	assert.Equal(t, []string{"tag1", "tag2"}, meta.Tags)
	assert.NotEmpty(t, meta.Description)
	assert.NotEqual(t, "undefined", meta.Language, "commits have no filename but must still reach natural-language detection")

	var commits []core.Commit
	require.NoError(t, gw.Find(ctx, "commits", docstore.Filter{"id": "sha1"}, docstore.FindOptions{}, &commits))
	require.Len(t, commits, 1)
	assert.Equal(t, metaID, commits[0].MetadataID)
}

func TestUpdateCollection_SkipsWhenHashAndVersionUnchanged(t *testing.T) {
	gen, gw, summ := newTestGenerator(t)
	ctx := context.Background()

	require.NoError(t, gw.InsertMany(ctx, "commits", []any{&core.Commit{
		ID: "sha1", Repo: "acme/widgets", Message: "fix bug", FilesChanged: []string{"a.go"},
	}}))

	require.NoError(t, gen.UpdateCollection(ctx, "acme/widgets", metadata.SourceCommits))
	firstCalls := summ.calls

	require.NoError(t, gen.UpdateCollection(ctx, "acme/widgets", metadata.SourceCommits))
	assert.Equal(t, firstCalls, summ.calls, "unchanged content must not regenerate chunks/summary")
}

func TestUpdateCollection_RegeneratesWhenContentChanges(t *testing.T) {
	gen, gw, _ := newTestGenerator(t)
	ctx := context.Background()

	require.NoError(t, gw.InsertMany(ctx, "commits", []any{&core.Commit{
		ID: "sha1", Repo: "acme/widgets", Message: "v1", FilesChanged: []string{"a.go"},
	}}))
	require.NoError(t, gen.UpdateCollection(ctx, "acme/widgets", metadata.SourceCommits))

	metaID := fmt.Sprintf("meta_%s_%s_%s", "acme/widgets", "commits", "sha1")
	var firstMeta core.Metadata
	_, err := gw.FindOne(ctx, "metadata", docstore.Filter{"id": metaID}, &firstMeta)
	require.NoError(t, err)

	require.NoError(t, gw.UpdateOne(ctx, "commits", docstore.Filter{"id": "sha1"}, &core.Commit{
		ID: "sha1", Repo: "acme/widgets", Message: "v2 changed content here", FilesChanged: []string{"a.go", "c.go"},
	}, false))
	require.NoError(t, gen.UpdateCollection(ctx, "acme/widgets", metadata.SourceCommits))

	var secondMeta core.Metadata
	_, err = gw.FindOne(ctx, "metadata", docstore.Filter{"id": metaID}, &secondMeta)
	require.NoError(t, err)
	assert.NotEqual(t, firstMeta.FileHash, secondMeta.FileHash)

	var chunks []core.Chunk
	require.NoError(t, gw.Find(ctx, "chunks", docstore.Filter{"metadata_id": metaID}, docstore.FindOptions{}, &chunks))
	assert.NotEmpty(t, chunks)
}

func TestUpdateCollection_RefusesBinaryFiles(t *testing.T) {
	gen, gw, _, blobs := newTestGeneratorWithBlobs(t)
	ctx := context.Background()

	url, err := blobs.Store(ctx, "\x89PNG\r\n fake binary payload", "acme/widgets", "main", "logo.png")
	require.NoError(t, err)

	require.NoError(t, gw.InsertMany(ctx, "main_files", []any{&core.BranchFile{
		ID: "f1", Repo: "acme/widgets", Path: "logo.png", ExternalURL: url,
	}}))

	require.NoError(t, gen.UpdateCollection(ctx, "acme/widgets", metadata.SourceMainFiles))

	var metas []core.Metadata
	require.NoError(t, gw.Find(ctx, "metadata", docstore.Filter{"repo": "acme/widgets"}, docstore.FindOptions{}, &metas))
	assert.Empty(t, metas, "binary content must not produce a metadata document")
}

func TestUpdateCollection_IssuesJoinsCommentsAndTitleBody(t *testing.T) {
	gen, gw, _ := newTestGenerator(t)
	ctx := context.Background()

	require.NoError(t, gw.InsertMany(ctx, "issues", []any{&core.Issue{
		ID: "acme/widgets_1", Repo: "acme/widgets", Number: 1, Title: "bug report", Body: "steps to reproduce",
	}}))
	require.NoError(t, gw.InsertMany(ctx, "issue_comments", []any{&core.IssueComment{
		ID: "acme/widgets_1_1", Repo: "acme/widgets", ParentNumber: 1, Body: "confirmed",
	}}))

	require.NoError(t, gen.UpdateCollection(ctx, "acme/widgets", metadata.SourceIssues))

	metaID := "meta_acme/widgets_issues_acme/widgets_1"
	var meta core.Metadata
	found, err := gw.FindOne(ctx, "metadata", docstore.Filter{"id": metaID}, &meta)
	require.NoError(t, err)
	require.True(t, found)

	var chunks []core.Chunk
	require.NoError(t, gw.Find(ctx, "chunks", docstore.Filter{"metadata_id": metaID}, docstore.FindOptions{}, &chunks))
	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0].Text, "bug report")
	assert.Contains(t, chunks[0].Text, "steps to reproduce")
	assert.Contains(t, chunks[0].Text, "confirmed")
}

func TestUpdateCollection_EmptyTextIsSkipped(t *testing.T) {
	gen, gw, _ := newTestGenerator(t)
	ctx := context.Background()

	require.NoError(t, gw.InsertMany(ctx, "files", []any{&core.ChangedFile{
		ID: "f1", Repo: "acme/widgets", CommitID: "sha1", Path: "a.go",
	}}))

	require.NoError(t, gen.UpdateCollection(ctx, "acme/widgets", metadata.SourceFiles))

	var metas []core.Metadata
	require.NoError(t, gw.Find(ctx, "metadata", docstore.Filter{"repo": "acme/widgets"}, docstore.FindOptions{}, &metas))
	assert.Empty(t, metas, "a file with no external_url and no patch has no extractable text")
}
