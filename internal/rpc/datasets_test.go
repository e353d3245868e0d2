package rpc

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

	h3routingv1 "h3routeserv/gen/go/h3routing/v1"
	"h3routeserv/internal/dataset/loader"
	"h3routeserv/internal/h3cell"
	"h3routeserv/pkg/config"
)

func buildPartitionFile(t *testing.T, h3Col string, cells []uint64) []byte {
	t.Helper()

	schema := arrow.NewSchema([]arrow.Field{
		{Name: h3Col, Type: arrow.PrimitiveTypes.Uint64},
		{Name: "weight", Type: arrow.PrimitiveTypes.Float64},
	}, nil)

	mem := memory.NewGoAllocator()
	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	b.Field(0).(*array.Uint64Builder).AppendValues(cells, nil)
	weights := make([]float64, len(cells))
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

func TestServer_ResolveSelection_NoDatasetPassesThrough(t *testing.T) {
	s := newTestServer(testCfg(), newMemStore())

	cellA, err := h3cell.FromLatLng(37.7749, -122.4194, 9)
	require.NoError(t, err)

	cells, err := s.resolveSelection(context.Background(), h3routingv1.CellSelection{Cells: []uint64{uint64(cellA)}})
	require.NoError(t, err)
	assert.Equal(t, []h3cell.Cell{cellA}, cells)
}

func TestServer_ResolveSelection_IntersectsNamedDataset(t *testing.T) {
	cfg := testCfg()
	store := newMemStore()

	cellA, err := h3cell.FromLatLng(37.7749, -122.4194, 9)
	require.NoError(t, err)
	ring, err := h3cell.Ring(cellA, 1)
	require.NoError(t, err)
	cellB := ring[0]

	dsCfg := config.DatasetConfig{
		KeyPattern:        "population/r{file_h3_resolution}/{h3cell}.arrow",
		Resolutions:       []int{7, 9},
		H3IndexColumnName: "h3cell",
	}
	cfg.Datasets = map[string]config.DatasetConfig{"population": dsCfg}

	fileCell, err := h3cell.Parent(cellA, dsCfg.FileResolution())
	require.NoError(t, err)
	key := loader.ResolveKey(dsCfg.KeyPattern, dsCfg.FileResolution(), dsCfg.DataResolution(), fileCell)
	require.NoError(t, store.Put(context.Background(), key, buildPartitionFile(t, "h3cell", []uint64{uint64(cellA)})))

	s := newTestServer(cfg, store)

	cells, err := s.resolveSelection(context.Background(), h3routingv1.CellSelection{
		Cells:       []uint64{uint64(cellA), uint64(cellB)},
		DatasetName: "population",
	})
	require.NoError(t, err)
	assert.Equal(t, []h3cell.Cell{cellA}, cells)
}

func TestServer_ResolveSelection_UnknownDataset(t *testing.T) {
	s := newTestServer(testCfg(), newMemStore())
	_, err := s.resolveSelection(context.Background(), h3routingv1.CellSelection{Cells: []uint64{1}, DatasetName: "nope"})
	assert.Error(t, err)
}
