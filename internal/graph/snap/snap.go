// Package snap maps an off-graph cell to the nearest on-graph cell within a
// bounded hop radius, per spec.md §4.1.
package snap

import (
	"h3routeserv/internal/graph"
	"h3routeserv/internal/h3cell"
)

// Result describes the outcome of snapping a single cell.
type Result struct {
	Requested h3cell.Cell
	Snapped   h3cell.Cell
	Ring      int  // ring radius at which Snapped was found
	Found     bool // false if no on-graph cell exists within maxRing
}

// Snap maps q to the nearest cell in g by expanding a ring search at radii
// 0, 1, ..., maxRing. The first ring containing any node wins; ties within
// that ring break on the lexicographically (numerically) smallest cell
// identifier for deterministic output.
func Snap(g *graph.Graph, q h3cell.Cell, maxRing int) Result {
	if g.HasNode(q) {
		return Result{Requested: q, Snapped: q, Ring: 0, Found: true}
	}

	for k := 1; k <= maxRing; k++ {
		ring, err := h3cell.Ring(q, k)
		if err != nil {
			continue
		}

		var best h3cell.Cell
		found := false
		for _, c := range ring {
			if g.HasNode(c) {
				if !found || c < best {
					best = c
					found = true
				}
			}
		}
		if found {
			return Result{Requested: q, Snapped: best, Ring: k, Found: true}
		}
	}

	return Result{Requested: q, Found: false}
}

// SnapAll snaps every cell in cells, returning results in the same order.
func SnapAll(g *graph.Graph, cells []h3cell.Cell, maxRing int) []Result {
	results := make([]Result, len(cells))
	for i, c := range cells {
		results[i] = Snap(g, c, maxRing)
	}
	return results
}
