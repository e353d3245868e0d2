package objectstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSStore_PutGetDelete(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "graphs/metro/v1.bin", []byte("snapshot")))

	data, err := store.Get(ctx, "graphs/metro/v1.bin")
	require.NoError(t, err)
	assert.Equal(t, "snapshot", string(data))

	require.NoError(t, store.Delete(ctx, "graphs/metro/v1.bin"))

	_, err = store.Get(ctx, "graphs/metro/v1.bin")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFSStore_GetMissingReturnsNotFound(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Get(context.Background(), "does/not/exist")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFSStore_ListByPrefix(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "datasets/population/8a.parquet", []byte("a")))
	require.NoError(t, store.Put(ctx, "datasets/population/8b.parquet", []byte("b")))
	require.NoError(t, store.Put(ctx, "graphs/metro/v1.bin", []byte("c")))

	objs, err := store.List(ctx, "datasets/population/")
	require.NoError(t, err)
	assert.Len(t, objs, 2)
}

func TestFSStore_DeleteMissingIsNoop(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	assert.NoError(t, store.Delete(context.Background(), "nothing/here"))
}
