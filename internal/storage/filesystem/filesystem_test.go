package filesystem

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/lightbox/internal/storage"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	b, err := NewBackend(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	return b
}

func TestBackend_StoreAndRetrieve(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()
	content := []byte("fake image bytes")

	err := b.Store(ctx, "photo.jpg", bytes.NewReader(content), int64(len(content)))
	require.NoError(t, err)

	rc, err := b.Retrieve(ctx, "photo.jpg")
	require.NoError(t, err)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestBackend_RetrieveNotFound(t *testing.T) {
	b := newTestBackend(t)

	_, err := b.Retrieve(context.Background(), "missing.jpg")
	assert.ErrorIs(t, err, storage.ErrFileNotFound)
}

func TestBackend_StoreSizeMismatch(t *testing.T) {
	b := newTestBackend(t)
	content := []byte("short")

	err := b.Store(context.Background(), "photo.jpg", bytes.NewReader(content), 999)
	require.Error(t, err)

	// A failed store must not leave the final file behind.
	exists, err := b.Exists(context.Background(), "photo.jpg")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestBackend_Delete(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	require.NoError(t, b.Store(ctx, "photo.jpg", bytes.NewReader([]byte("data")), 4))
	require.NoError(t, b.Delete(ctx, "photo.jpg"))

	exists, err := b.Exists(ctx, "photo.jpg")
	require.NoError(t, err)
	assert.False(t, exists)

	assert.ErrorIs(t, b.Delete(ctx, "photo.jpg"), storage.ErrFileNotFound)
}

func TestBackend_RejectsPathTraversal(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	for _, name := range []string{"", ".", "..", "../etc/passwd", "a/b.jpg", `a\b.jpg`} {
		assert.Error(t, b.Store(ctx, name, bytes.NewReader(nil), 0), "name %q", name)
		_, err := b.Retrieve(ctx, name)
		assert.Error(t, err, "name %q", name)
	}
}

func TestBackend_StoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	b, err := NewBackend(dir, zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, b.Store(context.Background(), "photo.jpg", bytes.NewReader([]byte("data")), 4))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "photo.jpg", entries[0].Name())
}
