package rpc

import (
	"bytes"
	"context"
	"testing"

	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/ipc"
	"github.com/apache/arrow/go/v14/arrow/memory"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	h3routingv1 "h3routeserv/gen/go/h3routing/v1"
	"h3routeserv/internal/h3cell"
)

func boundaryPolygonWKB(t *testing.T, cell h3cell.Cell) []byte {
	t.Helper()
	boundary := h3cell.Boundary(cell)
	ring := make(orb.Ring, 0, len(boundary))
	for _, ll := range boundary {
		ring = append(ring, orb.Point{ll.Lng, ll.Lat})
	}
	data, err := wkb.Marshal(orb.Polygon{ring})
	require.NoError(t, err)
	return data
}

func TestServer_DifferentialShortestPath_PersistsAndStreams(t *testing.T) {
	s, ids := setupShortestPathServer(t)
	cellC := h3cell.Cell(ids["C"])

	req := &h3routingv1.DifferentialShortestPathRequest{
		GraphName:       "line",
		GraphResolution: 9,
		DisturbanceWKB:  boundaryPolygonWKB(t, cellC),
		Destinations:    h3routingv1.CellSelection{Cells: []uint64{ids["D"]}},
	}
	stream := &fakeStream[h3routingv1.ArrowIPCChunk]{ctx: context.Background()}

	err := s.DifferentialShortestPath(req, stream)
	require.NoError(t, err)
	require.Len(t, stream.sent, 1)
	require.True(t, stream.sent[0].Final)
	require.NotEmpty(t, stream.sent[0].PersistedId)

	reader, err := ipc.NewFileReader(bytes.NewReader(stream.sent[0].Data), ipc.WithAllocator(memory.NewGoAllocator()))
	require.NoError(t, err)
	defer reader.Close()
	rec, err := reader.Record(0)
	require.NoError(t, err)
	require.EqualValues(t, 1, rec.NumRows())

	origins := rec.Column(0).(*array.Uint64)
	assert.Equal(t, ids["C"], origins.Value(0))

	// C's own edge to D is removed by the mask, so it cannot reach D anymore.
	hasWith := rec.Column(5)
	assert.True(t, hasWith.IsNull(0))

	id := stream.sent[0].PersistedId

	getStream := &fakeStream[h3routingv1.ArrowIPCChunk]{ctx: context.Background()}
	require.NoError(t, s.GetDifferentialShortestPath(&h3routingv1.IdRef{Id: id}, getStream))
	require.Len(t, getStream.sent, 1)

	routesStream := &fakeStream[h3routingv1.DifferentialShortestPathRoutes]{ctx: context.Background()}
	require.NoError(t, s.GetDifferentialShortestPathRoutes(&h3routingv1.DifferentialShortestPathRoutesRequest{Id: id}, routesStream))
	require.Len(t, routesStream.sent, 1)
	assert.Equal(t, ids["C"], routesStream.sent[0].Origin)
	assert.NotEmpty(t, routesStream.sent[0].RoutesWithout)
	assert.Empty(t, routesStream.sent[0].RoutesWith)
}

func TestServer_GetDifferentialShortestPath_UnknownId(t *testing.T) {
	s := newTestServer(testCfg(), newMemStore())
	stream := &fakeStream[h3routingv1.ArrowIPCChunk]{ctx: context.Background()}
	err := s.GetDifferentialShortestPath(&h3routingv1.IdRef{Id: "nope"}, stream)
	assert.Error(t, err)
}
