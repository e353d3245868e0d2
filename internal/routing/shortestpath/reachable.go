package shortestpath

import (
	"context"

	"h3routeserv/internal/graph"
	"h3routeserv/internal/h3cell"
)

// Reachable is one cell reached from a single-source search within a cost
// ceiling, together with the cost to reach it.
type Reachable struct {
	Cell h3cell.Cell
	Cost float64
}

// WithinCeiling runs Dijkstra from origin over g under mode, visiting every
// node whose cost does not exceed ceiling, and returns the reached set. Used
// by internal/routing/threshold (spec.md §4.4) and by the differential
// engine's downsampled pre-routing pass.
func WithinCeiling(ctx context.Context, g *graph.Graph, mode graph.RoutingMode, origin h3cell.Cell, ceiling float64) []Reachable {
	search := runDijkstra(ctx, g, mode, origin, nil, 0, ceiling)

	out := make([]Reachable, 0, len(search.dist))
	for cell, cost := range search.dist {
		if ceiling > 0 && cost > ceiling+graph.Epsilon {
			continue
		}
		out = append(out, Reachable{Cell: cell, Cost: cost})
	}
	return out
}
