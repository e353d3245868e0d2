package shortestpath

import (
	"context"
	"sync"

	"h3routeserv/internal/graph"
	"h3routeserv/internal/h3cell"
	"h3routeserv/internal/routing"
)

// Options configures a many-to-many query.
type Options struct {
	Mode graph.RoutingMode

	// MaxDestinations is k_dest (spec.md §4.2): the number of destinations to
	// reach per origin before stopping early. 0 means unlimited.
	MaxDestinations int

	// CostCeiling stops the search once the frontier's minimum cost exceeds
	// it. 0 means unlimited; used by the threshold engine, not shortest-path
	// RPCs (spec.md §4.2).
	CostCeiling float64
}

// ManyToMany runs Dijkstra from every origin in parallel (one goroutine per
// origin, no shared mutable state) and returns up to opts.MaxDestinations
// routes per origin, restricted to destinations. Unreachable origins
// produce zero rows; the engine never raises a query-level error for
// connectivity issues (spec.md §4.2 "Failure semantics").
func ManyToMany(ctx context.Context, g *graph.Graph, origins, destinations []h3cell.Cell, opts Options) []routing.RouteResult {
	destSet := make(map[h3cell.Cell]bool, len(destinations))
	for _, d := range destinations {
		destSet[d] = true
	}

	perOrigin := make([][]routing.RouteResult, len(origins))

	var wg sync.WaitGroup
	wg.Add(len(origins))
	for i, origin := range origins {
		i, origin := i, origin
		go func() {
			defer wg.Done()
			perOrigin[i] = routeFromOrigin(ctx, g, origin, destSet, destinations, opts)
		}()
	}
	wg.Wait()

	var results []routing.RouteResult
	for _, rs := range perOrigin {
		results = append(results, rs...)
	}
	return results
}

// routeFromOrigin runs a single-origin search and reconstructs routing
// results for every destination reached, in the order destinations were
// popped off the frontier.
func routeFromOrigin(
	ctx context.Context,
	g *graph.Graph,
	origin h3cell.Cell,
	destSet map[h3cell.Cell]bool,
	destinations []h3cell.Cell,
	opts Options,
) []routing.RouteResult {
	search := runDijkstra(ctx, g, opts.Mode, origin, destSet, opts.MaxDestinations, opts.CostCeiling)

	var out []routing.RouteResult
	for _, dest := range search.reached {
		path := reconstructPath(origin, dest, search.parent, search.hasParent)
		if path == nil {
			continue
		}
		out = append(out, routing.RouteResult{
			Origin:        origin,
			Destination:   dest,
			DurationSecs:  search.dist[dest],
			PreferenceAvg: preferenceAvg(g, path),
			LengthMeters:  h3cell.PathLengthMeters(path),
			Path:          path,
		})
	}
	return out
}
