package rpc

import (
	"context"
	"fmt"
	"time"

	h3routingv1 "h3routeserv/gen/go/h3routing/v1"
	"h3routeserv/internal/encode/arrowbatch"
	"h3routeserv/internal/encode/routeencode"
	"h3routeserv/internal/graph"
	"h3routeserv/internal/graph/snap"
	"h3routeserv/internal/h3cell"
	"h3routeserv/internal/routing"
	"h3routeserv/internal/routing/shortestpath"
	"h3routeserv/pkg/apperror"
	"h3routeserv/pkg/metrics"
)

// resolveShortestPath validates req, loads the named graph, resolves the
// origin/destination cell selections, snaps them onto the graph, and runs
// the many-to-many search. The returned release func must be called
// exactly once when the caller is done reading g/results.
func (s *Server) resolveShortestPath(ctx context.Context, req *h3routingv1.H3ShortestPathRequest) (g *graph.Graph, release func(), results []routing.RouteResult, err error) {
	if err := requireNonEmpty(req.GraphName, "graph_name"); err != nil {
		return nil, nil, nil, err
	}

	gh, err := s.loadGraph(ctx, req.GraphName, int(req.GraphResolution))
	if err != nil {
		return nil, nil, nil, err
	}
	g = gh.Value()

	mode, ok := s.modes.Resolve(req.RoutingMode)
	if !ok {
		gh.Release()
		return nil, nil, nil, apperror.New(apperror.CodeUnknownMode,
			fmt.Sprintf("routing mode %q is not configured", req.RoutingMode))
	}

	origins, err := s.resolveSelection(ctx, req.Origins)
	if err != nil {
		gh.Release()
		return nil, nil, nil, err
	}
	destinations, err := s.resolveSelection(ctx, req.Destinations)
	if err != nil {
		gh.Release()
		return nil, nil, nil, err
	}
	if len(origins) == 0 || len(destinations) == 0 {
		gh.Release()
		return nil, nil, nil, apperror.New(apperror.CodeEmptySelection,
			"origins and destinations must each resolve to at least one cell")
	}

	ringRadius := int(req.NumGapCellsToGraph)
	if ringRadius <= 0 {
		ringRadius = defaultSnapRingRadius
	}
	snappedOrigins := snapReachable(g, origins, ringRadius)
	snappedDestinations := snapReachable(g, destinations, ringRadius)
	if len(snappedOrigins) == 0 || len(snappedDestinations) == 0 {
		gh.Release()
		return nil, nil, nil, apperror.New(apperror.CodeUnreachable,
			"no requested cell could be snapped onto the graph")
	}

	opts := shortestpath.Options{Mode: mode, MaxDestinations: int(req.MaxDestinations)}
	start := time.Now()
	results = shortestpath.ManyToMany(ctx, g, snappedOrigins, snappedDestinations, opts)
	metrics.Get().RecordShortestPath(mode.Name, true, time.Since(start), len(results))

	return g, gh.Release, results, nil
}

// snapReachable snaps every cell in cells onto g within ringRadius hops,
// dropping cells that could not be snapped and deduplicating the result.
func snapReachable(g *graph.Graph, cells []h3cell.Cell, ringRadius int) []h3cell.Cell {
	snapped := snap.SnapAll(g, cells, ringRadius)
	seen := make(map[h3cell.Cell]bool, len(snapped))
	var out []h3cell.Cell
	for _, r := range snapped {
		if !r.Found || seen[r.Snapped] {
			continue
		}
		seen[r.Snapped] = true
		out = append(out, r.Snapped)
	}
	h3cell.SortCells(out)
	return out
}

// H3ShortestPath streams the O×D result rows as Arrow IPC chunks.
func (s *Server) H3ShortestPath(req *h3routingv1.H3ShortestPathRequest, stream h3routingv1.H3RoutingService_H3ShortestPathServer) error {
	_, release, results, err := s.resolveShortestPath(stream.Context(), req)
	if err != nil {
		return apperror.ToGRPC(err)
	}
	defer release()

	rows := make([]arrowbatch.ShortestPathRow, len(results))
	for i, r := range results {
		rows[i] = arrowbatch.ShortestPathRow{
			OriginCell:    uint64(r.Origin),
			DestCell:      uint64(r.Destination),
			DurationSecs:  r.DurationSecs,
			LengthMeters:  r.LengthMeters,
			PreferenceAvg: r.PreferenceAvg,
			Found:         true,
		}
	}

	return streamArrowChunks(stream.Context(), rows, arrowbatch.EncodeShortestPathRows, stream.Send)
}

// H3ShortestPathRoutes streams one WKB line string per found route.
func (s *Server) H3ShortestPathRoutes(req *h3routingv1.H3ShortestPathRequest, stream h3routingv1.H3RoutingService_H3ShortestPathRoutesServer) error {
	_, release, results, err := s.resolveShortestPath(stream.Context(), req)
	if err != nil {
		return apperror.ToGRPC(err)
	}
	defer release()

	for _, r := range results {
		if err := stream.Context().Err(); err != nil {
			return err
		}

		encoded, err := routeencode.EncodeWKB(r.Origin, r.Destination, r.Path, int(req.ChaikinIterations))
		if err != nil {
			return apperror.ToGRPC(apperror.Wrap(err, apperror.CodeAlgorithmInternal, "encode route WKB"))
		}
		if err := stream.Send(&h3routingv1.RouteWKB{
			Origin:      uint64(encoded.Origin),
			Destination: uint64(encoded.Destination),
			Wkb:         encoded.WKB,
		}); err != nil {
			return err
		}
	}
	return nil
}

// H3ShortestPathCells streams one raw cell sequence per found route.
func (s *Server) H3ShortestPathCells(req *h3routingv1.H3ShortestPathRequest, stream h3routingv1.H3RoutingService_H3ShortestPathCellsServer) error {
	_, release, results, err := s.resolveShortestPath(stream.Context(), req)
	if err != nil {
		return apperror.ToGRPC(err)
	}
	defer release()

	for _, r := range results {
		if err := stream.Context().Err(); err != nil {
			return err
		}

		encoded := routeencode.EncodeCells(r.Origin, r.Destination, r.Path)
		cells := make([]uint64, len(encoded.Cells))
		for i, c := range encoded.Cells {
			cells[i] = uint64(c)
		}
		if err := stream.Send(&h3routingv1.RouteH3Indexes{
			Origin:      uint64(encoded.Origin),
			Destination: uint64(encoded.Destination),
			Cells:       cells,
		}); err != nil {
			return err
		}
	}
	return nil
}

// H3ShortestPathEdges streams one RouteH3Indexes per found route, the same
// message shape H3ShortestPathCells uses but with the cell sequence
// expanded into consecutive (from, to) pairs per traversed edge.
func (s *Server) H3ShortestPathEdges(req *h3routingv1.H3ShortestPathRequest, stream h3routingv1.H3RoutingService_H3ShortestPathEdgesServer) error {
	_, release, results, err := s.resolveShortestPath(stream.Context(), req)
	if err != nil {
		return apperror.ToGRPC(err)
	}
	defer release()

	for _, r := range results {
		if err := stream.Context().Err(); err != nil {
			return err
		}

		encoded := routeencode.EncodeEdges(r.Origin, r.Destination, r.Path)
		if err := stream.Send(&h3routingv1.RouteH3Indexes{
			Origin:      encoded.Origin,
			Destination: encoded.Destination,
			Cells:       encoded.Cells,
		}); err != nil {
			return err
		}
	}
	return nil
}
