package graphfile

import (
	"bytes"
	"testing"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/ipc"
	"github.com/apache/arrow/go/v14/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"h3routeserv/internal/graph"
	"h3routeserv/internal/h3cell"
	"h3routeserv/pkg/apperror"
)

func buildTestGraph() *graph.Graph {
	b := graph.NewBuilder("sf", 9)
	b.AddNode(h3cell.Cell(1))
	b.AddEdge(h3cell.Cell(1), h3cell.Cell(2), 10, 1.0)
	b.AddEdge(h3cell.Cell(2), h3cell.Cell(3), 5, 0.5)
	return b.Build()
}

func TestEncodeDecode_Plain_RoundTrips(t *testing.T) {
	g := buildTestGraph()

	data, err := Encode(g, ExtPlain)
	require.NoError(t, err)

	decoded, err := Decode(data, ExtPlain)
	require.NoError(t, err)

	assert.Equal(t, g.Name, decoded.Name)
	assert.Equal(t, g.Resolution, decoded.Resolution)
	assert.Equal(t, g.Nodes(), decoded.Nodes())
	assert.Equal(t, g.Neighbors(h3cell.Cell(1)), decoded.Neighbors(h3cell.Cell(1)))
}

func TestEncodeDecode_Zstd_RoundTrips(t *testing.T) {
	g := buildTestGraph()

	data, err := Encode(g, ExtZstd)
	require.NoError(t, err)

	decoded, err := Decode(data, ExtZstd)
	require.NoError(t, err)
	assert.Equal(t, g.Neighbors(h3cell.Cell(2)), decoded.Neighbors(h3cell.Cell(2)))
}

func TestDecode_PreservesIsolatedNode(t *testing.T) {
	b := graph.NewBuilder("iso", 9)
	b.AddNode(h3cell.Cell(99))
	g := b.Build()

	data, err := Encode(g, ExtPlain)
	require.NoError(t, err)

	decoded, err := Decode(data, ExtPlain)
	require.NoError(t, err)
	assert.True(t, decoded.HasNode(h3cell.Cell(99)))
	assert.Empty(t, decoded.Neighbors(h3cell.Cell(99)))
}

func TestDecode_VersionMismatchIsGraphVersionSkew(t *testing.T) {
	mem := memory.NewGoAllocator()
	sc := schema.WithMetadata(arrow.NewMetadata(
		[]string{metaName, metaResolution, metaVersion},
		[]string{"sf", "9", "99-bogus"},
	))

	b := array.NewRecordBuilder(mem, sc)
	b.Field(0).(*array.Uint64Builder).Append(1)
	b.Field(1).(*array.Uint64Builder).AppendNull()
	b.Field(2).(*array.Float64Builder).AppendNull()
	b.Field(3).(*array.Float64Builder).AppendNull()
	rec := b.NewRecord()
	b.Release()

	var buf bytes.Buffer
	w, err := ipc.NewFileWriter(&buf, ipc.WithSchema(sc), ipc.WithAllocator(mem))
	require.NoError(t, err)
	require.NoError(t, w.Write(rec))
	require.NoError(t, w.Close())
	rec.Release()

	_, err = Decode(buf.Bytes(), ExtPlain)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeGraphVersionSkew, apperror.Code(err))
}

func TestDecode_CorruptBytesIsCorruptGraph(t *testing.T) {
	_, err := Decode([]byte("not an arrow file"), ExtPlain)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeCorruptGraph, apperror.Code(err))
}

func TestKey_RendersExpectedFormat(t *testing.T) {
	assert.Equal(t, "graphs/sf_r9.arrow.zst", Key("graphs/", "sf", 9, ExtZstd))
}
