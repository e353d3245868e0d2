// Package threshold implements the within-threshold reachability query
// (spec.md §4.4): for every cell reachable from some origin within a
// duration threshold, report the minimum cost and the origin achieving it.
package threshold

import (
	"context"
	"sync"

	"h3routeserv/internal/graph"
	"h3routeserv/internal/h3cell"
	"h3routeserv/internal/routing"
	"h3routeserv/internal/routing/shortestpath"
)

// WithinThreshold runs Dijkstra from each origin, stopping each search once
// its frontier's minimum cost exceeds thresholdSecs, then merges the
// per-origin reachable sets by taking the minimum cost per cell (ties
// broken by the smallest origin identifier for determinism).
func WithinThreshold(ctx context.Context, g *graph.Graph, mode graph.RoutingMode, origins []h3cell.Cell, thresholdSecs float64) []routing.ThresholdResult {
	type perOrigin struct {
		origin  h3cell.Cell
		reached []shortestpath.Reachable
	}

	results := make([]perOrigin, len(origins))
	var wg sync.WaitGroup
	wg.Add(len(origins))
	for i, origin := range origins {
		i, origin := i, origin
		go func() {
			defer wg.Done()
			results[i] = perOrigin{
				origin:  origin,
				reached: shortestpath.WithinCeiling(ctx, g, mode, origin, thresholdSecs),
			}
		}()
	}
	wg.Wait()

	best := make(map[h3cell.Cell]routing.ThresholdResult)
	for _, po := range results {
		for _, r := range po.reached {
			existing, ok := best[r.Cell]
			if !ok || r.Cost < existing.DurationSecs-graph.Epsilon ||
				(r.Cost < existing.DurationSecs+graph.Epsilon && po.origin < existing.Origin) {
				best[r.Cell] = routing.ThresholdResult{
					Cell:         r.Cell,
					DurationSecs: r.Cost,
					Origin:       po.origin,
				}
			}
		}
	}

	out := make([]routing.ThresholdResult, 0, len(best))
	for _, v := range best {
		out = append(out, v)
	}
	return out
}
