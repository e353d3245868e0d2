package h3cell

import (
	"github.com/paulmach/orb"
	h3 "github.com/uber/h3-go/v4"
)

// CoverPolygon returns the set of cells at resolution whose centers fall
// within polygon (h3-go's standard polyfill), used to turn a disturbance
// geometry into a candidate cell set (spec.md §4.3 step 1).
func CoverPolygon(polygon orb.Polygon, resolution int) ([]Cell, error) {
	if len(polygon) == 0 {
		return nil, nil
	}

	loop := ringToLatLngs(polygon[0])
	holes := make([]h3.LatLngs, 0, len(polygon)-1)
	for _, ring := range polygon[1:] {
		holes = append(holes, ringToLatLngs(ring))
	}

	geo := h3.GeoPolygon{
		GeoLoop: loop,
		Holes:   holes,
	}

	cells := h3.PolygonToCells(geo, resolution)
	SortCells(cells)
	return cells, nil
}

// CoverMultiPolygon covers every ring of every polygon in mp.
func CoverMultiPolygon(mp orb.MultiPolygon, resolution int) ([]Cell, error) {
	seen := make(map[Cell]bool)
	var out []Cell
	for _, poly := range mp {
		cells, err := CoverPolygon(poly, resolution)
		if err != nil {
			return nil, err
		}
		for _, c := range cells {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	SortCells(out)
	return out, nil
}

func ringToLatLngs(ring orb.Ring) h3.LatLngs {
	out := make(h3.LatLngs, 0, len(ring))
	for _, pt := range ring {
		out = append(out, h3.LatLng{Lat: pt[1], Lng: pt[0]})
	}
	return out
}

// averageEdgeLengthMeters is H3's published average hexagon edge length per
// resolution, used to translate a metric buffer radius into a grid ring
// count for buffering.
var averageEdgeLengthMeters = [MaxResolution + 1]float64{
	1107712.591, 418676.0055, 158244.6558, 59810.85794,
	22606.3794, 8544.408276, 3229.482772, 1220.629759,
	461.354684, 174.375668, 65.907807, 24.910561,
	9.415526, 3.559893, 1.348575, 0.509713,
}

// RingCountForMeters returns the minimum grid distance k such that k hex
// edges at resolution cover at least radiusMeters, rounding up and always
// returning at least 1 for a positive radius.
func RingCountForMeters(resolution int, radiusMeters float64) int {
	if radiusMeters <= 0 {
		return 0
	}
	if resolution < 0 || resolution > MaxResolution {
		resolution = MaxResolution
	}
	edge := averageEdgeLengthMeters[resolution]
	if edge <= 0 {
		return 0
	}
	k := int(radiusMeters / edge)
	if float64(k)*edge < radiusMeters {
		k++
	}
	if k < 1 {
		k = 1
	}
	return k
}
