package routeencode

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"h3routeserv/internal/h3cell"
)

func buildPath(t *testing.T) []h3cell.Cell {
	t.Helper()
	center, err := h3cell.FromLatLng(37.77, -122.41, 9)
	require.NoError(t, err)
	ring, err := h3cell.Ring(center, 1)
	require.NoError(t, err)
	h3cell.SortCells(ring)
	return append([]h3cell.Cell{center}, ring[:3]...)
}

func TestEncodeWKB_RoundTripsAsLineString(t *testing.T) {
	path := buildPath(t)

	row, err := EncodeWKB(path[0], path[len(path)-1], path, 0)
	require.NoError(t, err)

	geom, err := wkb.Unmarshal(row.WKB)
	require.NoError(t, err)

	line, ok := geom.(orb.LineString)
	require.True(t, ok)
	assert.Len(t, line, len(path))
}

func TestEncodeWKB_SmoothingPreservesEndpointsAndAddsPoints(t *testing.T) {
	path := buildPath(t)

	plain, err := EncodeWKB(path[0], path[len(path)-1], path, 0)
	require.NoError(t, err)
	smoothed, err := EncodeWKB(path[0], path[len(path)-1], path, 1)
	require.NoError(t, err)

	plainLine, err := wkb.Unmarshal(plain.WKB)
	require.NoError(t, err)
	smoothedLine, err := wkb.Unmarshal(smoothed.WKB)
	require.NoError(t, err)

	pl := plainLine.(orb.LineString)
	sl := smoothedLine.(orb.LineString)

	assert.Greater(t, len(sl), len(pl))
	assert.Equal(t, pl[0], sl[0])
	assert.Equal(t, pl[len(pl)-1], sl[len(sl)-1])
}

func TestEncodeCells_PreservesOrderAndEndpoints(t *testing.T) {
	path := buildPath(t)

	row := EncodeCells(path[0], path[len(path)-1], path)

	require.Len(t, row.Cells, len(path))
	assert.Equal(t, uint64(path[0]), row.Cells[0])
	assert.Equal(t, uint64(path[len(path)-1]), row.Cells[len(row.Cells)-1])
	assert.Equal(t, uint64(path[0]), row.Origin)
	assert.Equal(t, uint64(path[len(path)-1]), row.Destination)
}
