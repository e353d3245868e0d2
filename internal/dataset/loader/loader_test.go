package loader

import (
	"bytes"
	"context"
	"testing"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/ipc"
	"github.com/apache/arrow/go/v14/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"h3routeserv/internal/h3cell"
	"h3routeserv/internal/objectstore"
	"h3routeserv/pkg/cache"
	"h3routeserv/pkg/config"
)

// memStore is a minimal in-memory objectstore.Store used only by this test.
type memStore struct {
	data map[string][]byte
}

func newMemStore() *memStore { return &memStore{data: make(map[string][]byte)} }

func (m *memStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, ok := m.data[key]
	if !ok {
		return nil, objectstore.ErrNotFound
	}
	return v, nil
}
func (m *memStore) Put(ctx context.Context, key string, value []byte) error {
	m.data[key] = value
	return nil
}
func (m *memStore) List(ctx context.Context, prefix string) ([]objectstore.ObjectInfo, error) {
	return nil, nil
}
func (m *memStore) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}
func (m *memStore) Close() error { return nil }

func buildArrowFile(t *testing.T, h3Col string, cells []uint64, weights []float64) []byte {
	t.Helper()

	schema := arrow.NewSchema([]arrow.Field{
		{Name: h3Col, Type: arrow.PrimitiveTypes.Uint64},
		{Name: "weight", Type: arrow.PrimitiveTypes.Float64},
	}, nil)

	mem := memory.NewGoAllocator()
	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	b.Field(0).(*array.Uint64Builder).AppendValues(cells, nil)
	b.Field(1).(*array.Float64Builder).AppendValues(weights, nil)

	rec := b.NewRecord()
	defer rec.Release()

	var buf bytes.Buffer
	w, err := ipc.NewFileWriter(&buf, ipc.WithSchema(schema), ipc.WithAllocator(mem))
	require.NoError(t, err)
	require.NoError(t, w.Write(rec))
	require.NoError(t, w.Close())

	return buf.Bytes()
}

func TestLoad_DecodesArrowPartitionsAndMerges(t *testing.T) {
	store := newMemStore()
	cfg := config.DatasetConfig{
		Bucket:            "datasets",
		KeyPattern:        "population/r{file_h3_resolution}/{h3cell}.arrow",
		Resolutions:       []int{7, 9},
		H3IndexColumnName: "h3index",
	}

	fileCell := h3cell.Cell(0x89283082003ffff)
	key := ResolveKey(cfg.KeyPattern, cfg.FileResolution(), cfg.DataResolution(), fileCell)
	store.Put(context.Background(), key, buildArrowFile(t, "h3index", []uint64{10, 20}, []float64{1.5, 2.5}))

	ds, err := Load(context.Background(), store, nil, "population", cfg, []h3cell.Cell{fileCell})
	require.NoError(t, err)

	assert.Equal(t, 2, ds.Len())
	rec, ok := ds.Get(h3cell.Cell(10))
	require.True(t, ok)
	assert.Equal(t, 1.5, rec.Fields["weight"])
}

func TestLoad_MissingPartitionIsSkipped(t *testing.T) {
	store := newMemStore()
	cfg := config.DatasetConfig{
		KeyPattern:        "population/r{file_h3_resolution}/{h3cell}.arrow",
		Resolutions:       []int{7, 9},
		H3IndexColumnName: "h3index",
	}

	ds, err := Load(context.Background(), store, nil, "population", cfg, []h3cell.Cell{h3cell.Cell(123)})
	require.NoError(t, err)
	assert.Equal(t, 0, ds.Len())
}

func TestLoad_UsesBlobCacheBeforeStore(t *testing.T) {
	store := newMemStore()
	blobCache := cache.NewMemoryCache(cache.DefaultOptions())
	t.Cleanup(func() { blobCache.Close() })

	cfg := config.DatasetConfig{
		KeyPattern:        "population/r{file_h3_resolution}/{h3cell}.arrow",
		Resolutions:       []int{7, 9},
		H3IndexColumnName: "h3index",
	}
	fileCell := h3cell.Cell(0x89283082003ffff)
	key := ResolveKey(cfg.KeyPattern, cfg.FileResolution(), cfg.DataResolution(), fileCell)
	store.Put(context.Background(), key, buildArrowFile(t, "h3index", []uint64{10}, []float64{3.0}))

	ds, err := Load(context.Background(), store, blobCache, "population", cfg, []h3cell.Cell{fileCell})
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Len())

	// Subsequent loads must be served from blobCache even if the backing
	// store is emptied out from under it.
	store.data = map[string][]byte{}
	ds2, err := Load(context.Background(), store, blobCache, "population", cfg, []h3cell.Cell{fileCell})
	require.NoError(t, err)
	assert.Equal(t, 1, ds2.Len())
}

func TestResolveKey_SubstitutesAllPlaceholders(t *testing.T) {
	cell := h3cell.Cell(0x89283082003ffff)
	key := ResolveKey("{file_h3_resolution}/{data_h3_resolution}/{h3cell}.arrow", 7, 9, cell)
	assert.Equal(t, "7/9/"+h3cell.String(cell)+".arrow", key)
}
