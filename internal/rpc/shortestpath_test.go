package rpc

import (
	"bytes"
	"context"
	"testing"

	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/ipc"
	"github.com/apache/arrow/go/v14/arrow/memory"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	h3routingv1 "h3routeserv/gen/go/h3routing/v1"
	"h3routeserv/internal/graph/graphfile"
)

func setupShortestPathServer(t *testing.T) (*Server, map[string]uint64) {
	t.Helper()

	cfg := testCfg()
	store := newMemStore()

	g, cells, err := buildLineGraph(9)
	require.NoError(t, err)
	g.Name = "line"

	body, err := graphfile.Encode(g, graphfile.ExtPlain)
	require.NoError(t, err)
	require.NoError(t, store.Put(context.Background(), graphfile.Key(cfg.Graphs.Prefix, "line", 9, graphfile.ExtPlain), body))

	s := newTestServer(cfg, store)

	ids := make(map[string]uint64, len(cells))
	for name, c := range cells {
		ids[name] = uint64(c)
	}
	return s, ids
}

func TestServer_H3ShortestPath_StreamsOneRow(t *testing.T) {
	s, ids := setupShortestPathServer(t)

	req := &h3routingv1.H3ShortestPathRequest{
		GraphName:       "line",
		GraphResolution: 9,
		Origins:         h3routingv1.CellSelection{Cells: []uint64{ids["A"]}},
		Destinations:    h3routingv1.CellSelection{Cells: []uint64{ids["D"]}},
	}
	stream := &fakeStream[h3routingv1.ArrowIPCChunk]{ctx: context.Background()}

	err := s.H3ShortestPath(req, stream)
	require.NoError(t, err)
	require.Len(t, stream.sent, 1)
	assert.True(t, stream.sent[0].Final)

	reader, err := ipc.NewFileReader(bytes.NewReader(stream.sent[0].Data), ipc.WithAllocator(memory.NewGoAllocator()))
	require.NoError(t, err)
	defer reader.Close()
	rec, err := reader.Record(0)
	require.NoError(t, err)
	require.EqualValues(t, 1, rec.NumRows())

	durations := rec.Column(2).(*array.Float64)
	assert.Equal(t, 30.0, durations.Value(0))
}

func TestServer_H3ShortestPathRoutes_EncodesWKB(t *testing.T) {
	s, ids := setupShortestPathServer(t)

	req := &h3routingv1.H3ShortestPathRequest{
		GraphName:       "line",
		GraphResolution: 9,
		Origins:         h3routingv1.CellSelection{Cells: []uint64{ids["A"]}},
		Destinations:    h3routingv1.CellSelection{Cells: []uint64{ids["D"]}},
	}
	stream := &fakeStream[h3routingv1.RouteWKB]{ctx: context.Background()}

	err := s.H3ShortestPathRoutes(req, stream)
	require.NoError(t, err)
	require.Len(t, stream.sent, 1)

	geom, err := wkb.Unmarshal(stream.sent[0].Wkb)
	require.NoError(t, err)
	assert.NotNil(t, geom)
	assert.Equal(t, ids["A"], stream.sent[0].Origin)
	assert.Equal(t, ids["D"], stream.sent[0].Destination)
}

func TestServer_H3ShortestPathCells_ReturnsFullPath(t *testing.T) {
	s, ids := setupShortestPathServer(t)

	req := &h3routingv1.H3ShortestPathRequest{
		GraphName:       "line",
		GraphResolution: 9,
		Origins:         h3routingv1.CellSelection{Cells: []uint64{ids["A"]}},
		Destinations:    h3routingv1.CellSelection{Cells: []uint64{ids["D"]}},
	}
	stream := &fakeStream[h3routingv1.RouteH3Indexes]{ctx: context.Background()}

	err := s.H3ShortestPathCells(req, stream)
	require.NoError(t, err)
	require.Len(t, stream.sent, 1)
	assert.Equal(t, []uint64{ids["A"], ids["B"], ids["C"], ids["D"]}, stream.sent[0].Cells)
}

func TestServer_H3ShortestPathEdges_ReturnsConsecutiveCellPairs(t *testing.T) {
	s, ids := setupShortestPathServer(t)

	req := &h3routingv1.H3ShortestPathRequest{
		GraphName:       "line",
		GraphResolution: 9,
		Origins:         h3routingv1.CellSelection{Cells: []uint64{ids["A"]}},
		Destinations:    h3routingv1.CellSelection{Cells: []uint64{ids["D"]}},
	}
	stream := &fakeStream[h3routingv1.RouteH3Indexes]{ctx: context.Background()}

	err := s.H3ShortestPathEdges(req, stream)
	require.NoError(t, err)
	require.Len(t, stream.sent, 1)

	// A->B, B->C, C->D expanded into consecutive (from, to) pairs.
	assert.Equal(t, []uint64{
		ids["A"], ids["B"],
		ids["B"], ids["C"],
		ids["C"], ids["D"],
	}, stream.sent[0].Cells)
	assert.Equal(t, ids["A"], stream.sent[0].Origin)
	assert.Equal(t, ids["D"], stream.sent[0].Destination)
}

func TestServer_H3ShortestPath_EmptySelectionFails(t *testing.T) {
	s, _ := setupShortestPathServer(t)

	req := &h3routingv1.H3ShortestPathRequest{GraphName: "line", GraphResolution: 9}
	stream := &fakeStream[h3routingv1.ArrowIPCChunk]{ctx: context.Background()}

	err := s.H3ShortestPath(req, stream)
	assert.Error(t, err)
}
