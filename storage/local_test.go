package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mikhus/wsgikit/storage"
)

func TestNewLocalStorage(t *testing.T) {
	t.Parallel()

	t.Run("empty base dir rejected", func(t *testing.T) {
		t.Parallel()

		_, err := storage.NewLocalStorage("", "/files/")
		assert.ErrorIs(t, err, storage.ErrInvalidConfig)
	})

	t.Run("creates base dir", func(t *testing.T) {
		t.Parallel()

		base := filepath.Join(t.TempDir(), "nested", "uploads")
		_, err := storage.NewLocalStorage(base, "")
		require.NoError(t, err)
		assert.DirExists(t, base)
	})
}

func TestLocalStorageSave(t *testing.T) {
	t.Parallel()

	t.Run("saves content and reports metadata", func(t *testing.T) {
		t.Parallel()

		base := t.TempDir()
		st, err := storage.NewLocalStorage(base, "/files/")
		require.NoError(t, err)

		obj, err := st.Save(context.Background(), strings.NewReader("hello"), "docs/a.txt")
		require.NoError(t, err)

		assert.Equal(t, filepath.Join("docs", "a.txt"), obj.Path)
		assert.Equal(t, int64(5), obj.Size)
		assert.Equal(t, filepath.Join(base, "docs", "a.txt"), obj.AbsolutePath)

		content, err := os.ReadFile(obj.AbsolutePath)
		require.NoError(t, err)
		assert.Equal(t, "hello", string(content))
	})

	t.Run("path traversal confined to base dir", func(t *testing.T) {
		t.Parallel()

		base := t.TempDir()
		st, err := storage.NewLocalStorage(base, "")
		require.NoError(t, err)

		obj, err := st.Save(context.Background(), strings.NewReader("x"), "../escape.txt")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(obj.AbsolutePath, base), "file must stay inside base dir")
	})

	t.Run("nul byte in path rejected", func(t *testing.T) {
		t.Parallel()

		st, err := storage.NewLocalStorage(t.TempDir(), "")
		require.NoError(t, err)

		_, err = st.Save(context.Background(), strings.NewReader("x"), "bad\x00.txt")
		assert.ErrorIs(t, err, storage.ErrInvalidPath)
	})

	t.Run("canceled context aborts and removes partial file", func(t *testing.T) {
		t.Parallel()

		base := t.TempDir()
		st, err := storage.NewLocalStorage(base, "")
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err = st.Save(ctx, strings.NewReader("x"), "a.txt")
		require.ErrorIs(t, err, context.Canceled)
		assert.NoFileExists(t, filepath.Join(base, "a.txt"))
	})
}

func TestLocalStorageDelete(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	st, err := storage.NewLocalStorage(base, "")
	require.NoError(t, err)

	_, err = st.Save(context.Background(), strings.NewReader("x"), "a.txt")
	require.NoError(t, err)

	require.NoError(t, st.Delete(context.Background(), "a.txt"))
	assert.NoFileExists(t, filepath.Join(base, "a.txt"))

	err = st.Delete(context.Background(), "a.txt")
	assert.ErrorIs(t, err, storage.ErrFileNotFound)
}

func TestLocalStorageExists(t *testing.T) {
	t.Parallel()

	st, err := storage.NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)

	assert.False(t, st.Exists(context.Background(), "a.txt"))

	_, err = st.Save(context.Background(), strings.NewReader("x"), "a.txt")
	require.NoError(t, err)
	assert.True(t, st.Exists(context.Background(), "a.txt"))
}

func TestLocalStorageURL(t *testing.T) {
	t.Parallel()

	st, err := storage.NewLocalStorage(t.TempDir(), "/files")
	require.NoError(t, err)

	assert.Equal(t, "/files/docs/a.txt", st.URL("docs/a.txt"))
	assert.Equal(t, "/files/docs/a.txt", st.URL("/docs/a.txt"))
}
