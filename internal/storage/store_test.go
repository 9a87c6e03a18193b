package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rayanlekkat/brio-lead-scraper/internal/logger"
	"github.com/rayanlekkat/brio-lead-scraper/internal/storage"
)

type testDoc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestFileStore_RoundTrip(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir(), logger.NewNoop())
	require.NoError(t, err)

	ctx := context.Background()
	in := testDoc{Name: "dnc", Count: 3}
	require.NoError(t, store.Save(ctx, "dnc", in))

	var out testDoc
	require.NoError(t, store.Load(ctx, "dnc", &out))
	assert.Equal(t, in, out)
}

func TestFileStore_MissingKey(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir(), logger.NewNoop())
	require.NoError(t, err)

	var out testDoc
	loadErr := store.Load(context.Background(), "nothing", &out)
	assert.ErrorIs(t, loadErr, storage.ErrNotFound)
}

func TestFileStore_MalformedFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pool.json"), []byte("{not json"), 0o644))

	store, err := storage.NewFileStore(dir, logger.NewNoop())
	require.NoError(t, err)

	var out testDoc
	loadErr := store.Load(context.Background(), "pool", &out)
	assert.ErrorIs(t, loadErr, storage.ErrNotFound)
}

func TestFileStore_SaveOverwrites(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir(), logger.NewNoop())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "doc", testDoc{Name: "first"}))
	require.NoError(t, store.Save(ctx, "doc", testDoc{Name: "second"}))

	var out testDoc
	require.NoError(t, store.Load(ctx, "doc", &out))
	assert.Equal(t, "second", out.Name)
}

func TestFileStore_DeleteAndKeys(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir(), logger.NewNoop())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "a", testDoc{}))
	require.NoError(t, store.Save(ctx, "b", testDoc{}))

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, keys)

	require.NoError(t, store.Delete(ctx, "a"))
	require.NoError(t, store.Delete(ctx, "a")) // deleting a missing key is fine

	keys, err = store.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, keys)
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()

	in := testDoc{Name: "leads", Count: 12}
	require.NoError(t, store.Save(ctx, "leads", in))

	var out testDoc
	require.NoError(t, store.Load(ctx, "leads", &out))
	assert.Equal(t, in, out)

	assert.ErrorIs(t, store.Load(ctx, "missing", &out), storage.ErrNotFound)
}
