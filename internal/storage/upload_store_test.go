package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *UploadStore {
	t.Helper()
	store, err := NewUploadStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	return store
}

func TestUploadStore_SaveAndRemove(t *testing.T) {
	store := newTestStore(t)

	filename, err := store.Save([]byte("receipt bytes"), "pdf")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(filename, ".pdf"))

	path, err := store.Open(filename)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "receipt bytes", string(content))

	require.NoError(t, store.Remove(filename))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestUploadStore_SaveGeneratesUniqueNames(t *testing.T) {
	store := newTestStore(t)

	first, err := store.Save([]byte("a"), "png")
	require.NoError(t, err)
	second, err := store.Save([]byte("b"), "png")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestUploadStore_RejectsPathTraversal(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Open(filepath.Join("..", "escape.pdf"))
	assert.Error(t, err)

	err = store.Remove("../../etc/passwd")
	assert.Error(t, err)
}

func TestUploadStore_RemoveMissingFileIsNoop(t *testing.T) {
	store := newTestStore(t)

	assert.NoError(t, store.Remove("does-not-exist.pdf"))
}
