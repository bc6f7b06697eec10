package blobstore_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/code-warden/internal/blobstore"
)

func TestStore_StoreAndURLFormat(t *testing.T) {
	store, err := blobstore.New(t.TempDir(), "http://localhost:8090")
	require.NoError(t, err)

	url, err := store.Store(context.Background(), "hello world", "acme/widgets", "main", "readme.md")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8090/acme_widgets/main/readme.md", url)
}

func TestStore_SanitizesRepoAndFilename(t *testing.T) {
	root := t.TempDir()
	store, err := blobstore.New(root, "http://localhost:8090")
	require.NoError(t, err)

	url, err := store.Store(context.Background(), "data", "acme/widgets/sub", "abc123", "../../etc/passwd")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8090/acme_widgets_sub/abc123/passwd", url)
}

func TestStore_FetchRejectsPathOutsideRoot(t *testing.T) {
	store, err := blobstore.New(t.TempDir(), "http://localhost:8090")
	require.NoError(t, err)

	_, ok := store.Fetch(context.Background(), "/etc/passwd")
	assert.False(t, ok)
}

func TestStore_FetchLocalRoundTrip(t *testing.T) {
	root := t.TempDir()
	store, err := blobstore.New(root, "http://localhost:8090")
	require.NoError(t, err)

	_, err = store.Store(context.Background(), "content-here", "acme/widgets", "main", "file.txt")
	require.NoError(t, err)

	local := filepath.Join(root, "acme_widgets", "main", "file.txt")
	content, ok := store.Fetch(context.Background(), local)
	require.True(t, ok)
	assert.Equal(t, "content-here", content)
}

func TestStore_DeleteReportsExistence(t *testing.T) {
	store, err := blobstore.New(t.TempDir(), "http://localhost:8090")
	require.NoError(t, err)

	_, err = store.Store(context.Background(), "x", "acme/widgets", "main", "a.txt")
	require.NoError(t, err)

	assert.True(t, store.Delete(context.Background(), "acme/widgets", "main", "a.txt"))
	assert.False(t, store.Delete(context.Background(), "acme/widgets", "main", "a.txt"))
}
