// Package routeencode turns a routed cell sequence into the two per-route
// wire records spec.md §4.8 names: a WKB line string reconstructed from
// cell boundary centers, or the raw ordered cell sequence.
package routeencode

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"

	"h3routeserv/internal/encode/chaikin"
	"h3routeserv/internal/h3cell"
)

// RouteWKB is the encoded form of one route as a WGS84 line string.
type RouteWKB struct {
	Origin      uint64
	Destination uint64
	WKB         []byte
}

// RouteH3Indexes is the encoded form of one route as its raw cell sequence.
type RouteH3Indexes struct {
	Origin      uint64
	Destination uint64
	Cells       []uint64
}

// cellCenterLine converts an ordered cell path into a line string through
// each cell's center coordinate.
func cellCenterLine(path []h3cell.Cell) orb.LineString {
	line := make(orb.LineString, 0, len(path))
	for _, cell := range path {
		ll := h3cell.ToLatLng(cell)
		line = append(line, orb.Point{ll.Lng, ll.Lat})
	}
	return line
}

// EncodeWKB builds a RouteWKB from an ordered cell path, optionally
// smoothing the reconstructed line with chaikinIterations corner-cutting
// passes before encoding (0 disables smoothing).
func EncodeWKB(origin, destination h3cell.Cell, path []h3cell.Cell, chaikinIterations int) (RouteWKB, error) {
	line := cellCenterLine(path)
	if chaikinIterations > 0 {
		line = chaikin.Smooth(line, chaikinIterations)
	}

	data, err := wkb.Marshal(line)
	if err != nil {
		return RouteWKB{}, err
	}

	return RouteWKB{
		Origin:      uint64(origin),
		Destination: uint64(destination),
		WKB:         data,
	}, nil
}

// EncodeCells builds a RouteH3Indexes from an ordered cell path.
func EncodeCells(origin, destination h3cell.Cell, path []h3cell.Cell) RouteH3Indexes {
	cells := make([]uint64, len(path))
	for i, c := range path {
		cells[i] = uint64(c)
	}
	return RouteH3Indexes{
		Origin:      uint64(origin),
		Destination: uint64(destination),
		Cells:       cells,
	}
}

// EncodeEdges builds a RouteH3Indexes from an ordered cell path, but with
// the cell sequence expanded into consecutive (from, to) pairs — one pair
// per traversed edge, rather than the deduplicated path EncodeCells
// produces. A 4-cell path [a b c d] yields [a b b c c d].
func EncodeEdges(origin, destination h3cell.Cell, path []h3cell.Cell) RouteH3Indexes {
	var cells []uint64
	if len(path) >= 2 {
		cells = make([]uint64, 0, 2*(len(path)-1))
		for i := 0; i < len(path)-1; i++ {
			cells = append(cells, uint64(path[i]), uint64(path[i+1]))
		}
	}
	return RouteH3Indexes{
		Origin:      uint64(origin),
		Destination: uint64(destination),
		Cells:       cells,
	}
}
