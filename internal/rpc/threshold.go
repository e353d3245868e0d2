package rpc

import (
	"fmt"

	h3routingv1 "h3routeserv/gen/go/h3routing/v1"
	"h3routeserv/internal/encode/arrowbatch"
	"h3routeserv/internal/routing/threshold"
	"h3routeserv/pkg/apperror"
)

// H3CellsWithinThreshold streams every cell reachable from some origin
// within the requested duration threshold, as Arrow IPC chunks.
func (s *Server) H3CellsWithinThreshold(req *h3routingv1.H3WithinThresholdRequest, stream h3routingv1.H3RoutingService_H3CellsWithinThresholdServer) error {
	ctx := stream.Context()

	if err := requireNonEmpty(req.GraphName, "graph_name"); err != nil {
		return apperror.ToGRPC(err)
	}
	if req.TravelDurationSecsThreshold <= 0 {
		return apperror.ToGRPC(apperror.NewWithField(apperror.CodeInvalidArgument,
			"travel_duration_secs_threshold must be positive", "travel_duration_secs_threshold"))
	}

	gh, err := s.loadGraph(ctx, req.GraphName, int(req.GraphResolution))
	if err != nil {
		return apperror.ToGRPC(err)
	}
	defer gh.Release()
	g := gh.Value()

	mode, ok := s.modes.Resolve(req.RoutingMode)
	if !ok {
		return apperror.ToGRPC(apperror.New(apperror.CodeUnknownMode,
			fmt.Sprintf("routing mode %q is not configured", req.RoutingMode)))
	}

	origins, err := s.resolveSelection(ctx, req.Origins)
	if err != nil {
		return apperror.ToGRPC(err)
	}
	if len(origins) == 0 {
		return apperror.ToGRPC(apperror.New(apperror.CodeEmptySelection, "origins must resolve to at least one cell"))
	}
	snappedOrigins := snapReachable(g, origins, defaultSnapRingRadius)
	if len(snappedOrigins) == 0 {
		return apperror.ToGRPC(apperror.New(apperror.CodeUnreachable, "no requested origin could be snapped onto the graph"))
	}

	results := threshold.WithinThreshold(ctx, g, mode, snappedOrigins, req.TravelDurationSecsThreshold)

	rows := make([]arrowbatch.ThresholdRow, len(results))
	for i, r := range results {
		rows[i] = arrowbatch.ThresholdRow{
			Cell:         uint64(r.Cell),
			DurationSecs: r.DurationSecs,
			OriginCell:   uint64(r.Origin),
		}
	}

	return streamArrowChunks(ctx, rows, arrowbatch.EncodeThresholdRows, stream.Send)
}
