// Package differential implements the differential shortest-path analysis
// (spec.md §4.3): comparing baseline routing against routing on a graph
// with a disturbance region masked out, for a set of candidate origins
// derived from the disturbance geometry itself.
package differential

import (
	"context"
	"fmt"

	"github.com/paulmach/orb"

	"h3routeserv/internal/graph"
	"h3routeserv/internal/h3cell"
	"h3routeserv/internal/routing"
	"h3routeserv/internal/routing/shortestpath"
	"h3routeserv/pkg/logger"
)

// Request is the input to Run.
type Request struct {
	Graph *graph.Graph

	// Disturbance is the geometry (polygon or multipolygon) the affected
	// region is derived from.
	Disturbance orb.Geometry

	// BufferMeters extends the disturbance's covering cell set before it
	// becomes the candidate origin set A (spec.md §4.3 step 1).
	BufferMeters float64

	Destinations []h3cell.Cell
	Mode         graph.RoutingMode
	Options      shortestpath.Options

	// ReferenceDataset restricts candidate origins to ds.Keys() ∩ A, if
	// non-nil (spec.md §4.3: "restrict to A ∩ keys(reference_dataset)").
	ReferenceDataset MembershipFilter

	// DownsampledPrerouting, when true, runs a coarse-resolution pass first
	// to prune origins that cannot possibly reach any destination, before
	// paying for full-resolution routing (spec.md §4.3 step 2).
	DownsampledPrerouting bool
	CoarseResolution      int
}

// MembershipFilter abstracts a dataset's cell membership test without this
// package importing internal/dataset directly.
type MembershipFilter interface {
	Contains(cell h3cell.Cell) bool
}

// Result is the full output of a differential run.
type Result struct {
	Origins []routing.DifferentialResult
}

// Run computes the candidate origin set, the masked (disturbed) graph, and
// baseline/disturbed routing for every surviving origin, aggregating into
// one routing.DifferentialResult per origin.
func Run(ctx context.Context, req Request) (Result, error) {
	innerCells, err := coveringCells(req.Disturbance, req.Graph.Resolution)
	if err != nil {
		return Result{}, fmt.Errorf("differential: cover disturbance geometry: %w", err)
	}

	excluded := make(map[h3cell.Cell]bool, len(innerCells))
	for _, c := range innerCells {
		excluded[c] = true
	}

	candidateSet := bufferedCandidates(innerCells, req.Graph.Resolution, req.BufferMeters)
	origins := filterCandidates(candidateSet, req.Graph, req.ReferenceDataset)

	if req.DownsampledPrerouting && req.CoarseResolution > 0 {
		origins = pruneByCoarsePass(ctx, req, origins)
	}

	disturbed := req.Graph.Mask(excluded)

	out := make([]routing.DifferentialResult, 0, len(origins))
	for _, origin := range origins {
		without := shortestpath.ManyToMany(ctx, req.Graph, []h3cell.Cell{origin}, req.Destinations, Options(req))
		with := shortestpath.ManyToMany(ctx, disturbed, []h3cell.Cell{origin}, req.Destinations, Options(req))

		result := routing.DifferentialResult{Origin: origin, RoutesWithout: without, RoutesWith: with}
		aggregate(&result, without, &result.AvgDurationWithout, &result.NumReachedWithout, &result.PreferredDestWithout, &result.AvgPreferenceWithout, &result.HasWithout)
		aggregate(&result, with, &result.AvgDurationWith, &result.NumReachedWith, &result.PreferredDestWith, &result.AvgPreferenceWith, &result.HasWith)

		// spec.md §4.3 step 6: rows where the baseline reached zero
		// destinations are dropped.
		if !result.HasWithout {
			continue
		}

		out = append(out, result)
	}

	return Result{Origins: out}, nil
}

// Options converts a Request into shortestpath.Options, carrying its mode
// through.
func Options(req Request) shortestpath.Options {
	opts := req.Options
	opts.Mode = req.Mode
	return opts
}

func coveringCells(geom orb.Geometry, resolution int) ([]h3cell.Cell, error) {
	switch g := geom.(type) {
	case orb.Polygon:
		return h3cell.CoverPolygon(g, resolution)
	case orb.MultiPolygon:
		return h3cell.CoverMultiPolygon(g, resolution)
	default:
		return nil, fmt.Errorf("unsupported disturbance geometry type %T", geom)
	}
}

func bufferedCandidates(inner []h3cell.Cell, resolution int, bufferMeters float64) []h3cell.Cell {
	k := h3cell.RingCountForMeters(resolution, bufferMeters)

	seen := make(map[h3cell.Cell]bool)
	var out []h3cell.Cell
	for _, c := range inner {
		disk, err := h3cell.Disk(c, k)
		if err != nil {
			continue
		}
		for _, d := range disk {
			if !seen[d] {
				seen[d] = true
				out = append(out, d)
			}
		}
	}
	h3cell.SortCells(out)
	return out
}

func filterCandidates(candidates []h3cell.Cell, g *graph.Graph, ds MembershipFilter) []h3cell.Cell {
	var out []h3cell.Cell
	for _, c := range candidates {
		if !g.HasNode(c) {
			continue
		}
		if ds != nil && !ds.Contains(c) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// pruneByCoarsePass runs a cheap coarse-resolution search from every
// candidate origin and drops those that reach zero coarse destinations,
// since they cannot reach any fine-resolution destination either.
func pruneByCoarsePass(ctx context.Context, req Request, origins []h3cell.Cell) []h3cell.Cell {
	coarse := graph.CoalesceToResolution(req.Graph, req.CoarseResolution)
	if coarse == nil || coarse.EdgeCount() == 0 {
		logger.Log.Warn("differential: downsampled pre-routing requested but the coarse graph is unavailable or has no edges, skipping prune",
			"graph_resolution", req.Graph.Resolution, "coarse_resolution", req.CoarseResolution)
		return origins
	}

	coarseDestSet := make(map[h3cell.Cell]bool, len(req.Destinations))
	for _, d := range req.Destinations {
		if p, err := h3cell.Parent(d, req.CoarseResolution); err == nil {
			coarseDestSet[p] = true
		}
	}

	var survivors []h3cell.Cell
	for _, origin := range origins {
		coarseOrigin, err := h3cell.Parent(origin, req.CoarseResolution)
		if err != nil {
			continue
		}
		reached := shortestpath.WithinCeiling(ctx, coarse, req.Mode, coarseOrigin, req.Options.CostCeiling)
		if coarseReachesAny(reached, coarseDestSet) {
			survivors = append(survivors, origin)
		}
	}
	return survivors
}

func coarseReachesAny(reached []shortestpath.Reachable, destSet map[h3cell.Cell]bool) bool {
	if len(destSet) == 0 {
		return len(reached) > 0
	}
	for _, r := range reached {
		if destSet[r.Cell] {
			return true
		}
	}
	return false
}

func aggregate(result *routing.DifferentialResult, routes []routing.RouteResult, avgDuration *float64, numReached *int, preferredDest *h3cell.Cell, avgPreference *float64, has *bool) {
	if len(routes) == 0 {
		return
	}

	*has = true
	*numReached = len(routes)

	var totalDuration, totalPreference float64
	best := routes[0]
	for _, r := range routes {
		totalDuration += r.DurationSecs
		totalPreference += r.PreferenceAvg
		if r.DurationSecs < best.DurationSecs {
			best = r
		}
	}

	*avgDuration = totalDuration / float64(len(routes))
	*avgPreference = totalPreference / float64(len(routes))
	*preferredDest = best.Destination
}
