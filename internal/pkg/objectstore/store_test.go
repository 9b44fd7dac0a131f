package objectstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_PutDelete(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store, err := NewLocalStore(root)
	require.NoError(t, err)

	path := "user-1/64/diesel/1/1700000000000_abcdef_bill.pdf"
	require.NoError(t, store.Put(ctx, path, []byte("pdf"), "application/pdf"))

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(path)))
	require.NoError(t, err)
	assert.Equal(t, []byte("pdf"), data)

	require.NoError(t, store.Delete(ctx, path))
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(path)))
	assert.True(t, os.IsNotExist(err))

	// deleting twice is fine
	require.NoError(t, store.Delete(ctx, path))
}

func TestLocalStore_RejectsEscapingPaths(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	for _, p := range []string{"", "/etc/passwd", "a/../../b", "a//b"} {
		assert.ErrorIs(t, store.Put(context.Background(), p, []byte("x"), "text/plain"), ErrInvalidPath, p)
	}
}

func TestLocalStore_CanceledContext(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, store.Put(ctx, "a/b.txt", []byte("x"), "text/plain"), context.Canceled)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	data := []byte("abc")
	require.NoError(t, store.Put(ctx, "a/b.txt", data, "text/plain"))
	data[0] = 'z'

	obj, ok := store.Get("a/b.txt")
	require.True(t, ok)
	assert.Equal(t, []byte("abc"), obj.Data)
	assert.Equal(t, "text/plain", obj.ContentType)
	assert.Equal(t, 1, store.Len())

	require.NoError(t, store.Delete(ctx, "a/b.txt"))
	assert.Equal(t, 0, store.Len())
}

func TestNew_Drivers(t *testing.T) {
	s, err := New(&Config{Driver: DriverMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = New(&Config{Driver: DriverLocal, LocalRoot: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &LocalStore{}, s)

	_, err = New(&Config{Driver: "ftp"})
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", DriverLocal)
	t.Setenv("APP_ENV", "dev")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultBucket, cfg.BucketName)
	assert.True(t, cfg.CreateBucket)

	t.Setenv("APP_ENV", "prod")
	cfg, err = LoadConfig()
	require.NoError(t, err)
	assert.False(t, cfg.CreateBucket)

	t.Setenv("STORAGE_DRIVER", DriverS3)
	t.Setenv("S3_ACCESS_KEY_ID", "")
	_, err = LoadConfig()
	assert.ErrorContains(t, err, "S3_ACCESS_KEY_ID")
}
