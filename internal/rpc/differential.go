package rpc

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb/encoding/wkb"

	h3routingv1 "h3routeserv/gen/go/h3routing/v1"
	"h3routeserv/internal/encode/arrowbatch"
	"h3routeserv/internal/encode/routeencode"
	"h3routeserv/internal/graph"
	"h3routeserv/internal/h3cell"
	"h3routeserv/internal/routing"
	"h3routeserv/internal/routing/differential"
	"h3routeserv/pkg/apperror"
	"h3routeserv/pkg/metrics"
)

// persistedDifferential is the gob-encoded envelope written to the object
// store under outputs.key_prefix so GetDifferentialShortestPath and
// GetDifferentialShortestPathRoutes can re-serve a prior run without
// re-computing it (spec.md §4.7 "Persistence").
type persistedDifferential struct {
	Origins []routing.DifferentialResult
}

func (s *Server) persistedKey(id string) string {
	return s.cfg.Outputs.KeyPrefix + id
}

// putPersistedDifferential gob-encodes result and stores it under a freshly
// generated id, returning that id.
func (s *Server) putPersistedDifferential(ctx context.Context, result differential.Result) (string, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(persistedDifferential{Origins: result.Origins}); err != nil {
		return "", apperror.Wrap(err, apperror.CodeAlgorithmInternal, "encode persisted differential result")
	}

	id := uuid.New().String()
	if err := s.store.Put(ctx, s.persistedKey(id), buf.Bytes()); err != nil {
		return "", apperror.Wrap(err, apperror.CodeStoreUnavailable, "persist differential result")
	}
	return id, nil
}

func (s *Server) getPersistedDifferential(ctx context.Context, id string) (persistedDifferential, error) {
	data, err := s.store.Get(ctx, s.persistedKey(id))
	if err != nil {
		return persistedDifferential{}, apperror.Wrap(err, apperror.CodeNotFound,
			fmt.Sprintf("persisted result %q not found", id))
	}

	var out persistedDifferential
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&out); err != nil {
		return persistedDifferential{}, apperror.Wrap(err, apperror.CodeAlgorithmInternal, "decode persisted differential result")
	}
	return out, nil
}

func differentialRows(origins []routing.DifferentialResult) []arrowbatch.DifferentialRow {
	rows := make([]arrowbatch.DifferentialRow, len(origins))
	for i, o := range origins {
		rows[i] = arrowbatch.DifferentialRow{
			OriginCell:           uint64(o.Origin),
			AvgDurationWithout:   o.AvgDurationWithout,
			NumReachedWithout:    int64(o.NumReachedWithout),
			PreferredDestWithout: uint64(o.PreferredDestWithout),
			AvgPreferenceWithout: o.AvgPreferenceWithout,
			HasWithout:           o.HasWithout,
			AvgDurationWith:      o.AvgDurationWith,
			NumReachedWith:       int64(o.NumReachedWith),
			PreferredDestWith:    uint64(o.PreferredDestWith),
			AvgPreferenceWith:    o.AvgPreferenceWith,
			HasWith:              o.HasWith,
		}
	}
	return rows
}

// DifferentialShortestPath decodes the disturbance geometry, runs the
// baseline-vs-disturbed analysis, persists the full result, and streams the
// per-origin summary rows as Arrow IPC chunks. The terminal chunk carries
// the persisted id so callers can later fetch full route detail via
// GetDifferentialShortestPathRoutes.
func (s *Server) DifferentialShortestPath(req *h3routingv1.DifferentialShortestPathRequest, stream h3routingv1.H3RoutingService_DifferentialShortestPathServer) error {
	ctx := stream.Context()

	if err := requireNonEmpty(req.GraphName, "graph_name"); err != nil {
		return apperror.ToGRPC(err)
	}
	if len(req.DisturbanceWKB) == 0 {
		return apperror.ToGRPC(apperror.NewWithField(apperror.CodeInvalidArgument, "disturbance_wkb is required", "disturbance_wkb"))
	}

	geom, err := wkb.Unmarshal(req.DisturbanceWKB)
	if err != nil {
		return apperror.ToGRPC(apperror.Wrap(err, apperror.CodeMalformedWKB, "decode disturbance geometry"))
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

	destinations, err := s.resolveSelection(ctx, req.Destinations)
	if err != nil {
		return apperror.ToGRPC(err)
	}
	if len(destinations) == 0 {
		return apperror.ToGRPC(apperror.New(apperror.CodeEmptySelection, "destinations must resolve to at least one cell"))
	}

	runReq := differential.Request{
		Graph:                 g,
		Disturbance:           geom,
		BufferMeters:          req.BufferMeters,
		Destinations:          destinations,
		Mode:                  mode,
		DownsampledPrerouting: req.DownsampledPrerouting,
		CoarseResolution:      int(req.CoarseResolution),
	}
	runReq.Options.MaxDestinations = int(req.MaxDestinations)

	if req.ReferenceDatasetName != "" {
		filter, err := s.referenceDatasetFilter(ctx, req.ReferenceDatasetName, g)
		if err != nil {
			return apperror.ToGRPC(err)
		}
		defer filter.release()
		runReq.ReferenceDataset = filter.ds
	}

	start := time.Now()
	result, err := differential.Run(ctx, runReq)
	metrics.Get().RecordDifferential(err == nil, req.DownsampledPrerouting, time.Since(start))
	if err != nil {
		return apperror.ToGRPC(apperror.Wrap(err, apperror.CodeAlgorithmInternal, "run differential analysis"))
	}

	id, err := s.putPersistedDifferential(ctx, result)
	if err != nil {
		return apperror.ToGRPC(err)
	}

	rows := differentialRows(result.Origins)
	return streamPersistedArrowChunks(ctx, rows, arrowbatch.EncodeDifferentialRows, id, stream.Send)
}

// GetDifferentialShortestPath re-streams a previously persisted result's
// summary rows by id, without recomputing anything.
func (s *Server) GetDifferentialShortestPath(req *h3routingv1.IdRef, stream h3routingv1.H3RoutingService_GetDifferentialShortestPathServer) error {
	if err := requireNonEmpty(req.Id, "id"); err != nil {
		return apperror.ToGRPC(err)
	}

	persisted, err := s.getPersistedDifferential(stream.Context(), req.Id)
	if err != nil {
		return apperror.ToGRPC(err)
	}

	rows := differentialRows(persisted.Origins)
	return streamArrowChunks(stream.Context(), rows, arrowbatch.EncodeDifferentialRows, stream.Send)
}

// GetDifferentialShortestPathRoutes re-streams the retained per-destination
// route detail for a persisted result, restricted to the origins named in
// req.Cells (all origins, if empty).
func (s *Server) GetDifferentialShortestPathRoutes(req *h3routingv1.DifferentialShortestPathRoutesRequest, stream h3routingv1.H3RoutingService_GetDifferentialShortestPathRoutesServer) error {
	ctx := stream.Context()

	if err := requireNonEmpty(req.Id, "id"); err != nil {
		return apperror.ToGRPC(err)
	}

	persisted, err := s.getPersistedDifferential(ctx, req.Id)
	if err != nil {
		return apperror.ToGRPC(err)
	}

	var want map[h3cell.Cell]bool
	if len(req.Cells) > 0 {
		want = make(map[h3cell.Cell]bool, len(req.Cells))
		for _, c := range req.Cells {
			want[h3cell.Cell(c)] = true
		}
	}

	for _, o := range persisted.Origins {
		if want != nil && !want[o.Origin] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		without, err := encodeRouteWKBs(o.RoutesWithout)
		if err != nil {
			return apperror.ToGRPC(err)
		}
		with, err := encodeRouteWKBs(o.RoutesWith)
		if err != nil {
			return apperror.ToGRPC(err)
		}

		if err := stream.Send(&h3routingv1.DifferentialShortestPathRoutes{
			Origin:        uint64(o.Origin),
			RoutesWithout: without,
			RoutesWith:    with,
		}); err != nil {
			return err
		}
	}
	return nil
}

func encodeRouteWKBs(routes []routing.RouteResult) ([]h3routingv1.RouteWKB, error) {
	out := make([]h3routingv1.RouteWKB, len(routes))
	for i, r := range routes {
		encoded, err := routeencode.EncodeWKB(r.Origin, r.Destination, r.Path, 0)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.CodeAlgorithmInternal, "encode retained route WKB")
		}
		out[i] = h3routingv1.RouteWKB{
			Origin:      uint64(encoded.Origin),
			Destination: uint64(encoded.Destination),
			Wkb:         encoded.WKB,
		}
	}
	return out, nil
}

// referencedDatasetFilter pins the dataset handle backing a
// differential.MembershipFilter so it can be released once the run using it
// completes.
type referencedDatasetFilter struct {
	ds      differential.MembershipFilter
	release func()
}

// referenceDatasetFilter loads the file-cell partitions of name covering
// every node of g, returning a membership filter
// over that dataset (spec.md §4.3: "restrict to A ∩ keys(reference_dataset)").
func (s *Server) referenceDatasetFilter(ctx context.Context, name string, g *graph.Graph) (referencedDatasetFilter, error) {
	dsCfg, ok := s.cfg.Datasets[name]
	if !ok {
		return referencedDatasetFilter{}, apperror.New(apperror.CodeUnknownDataset,
			fmt.Sprintf("dataset %q is not configured", name))
	}

	// The candidate footprint is bounded by the graph's own coverage: loading
	// every file-cell partition the graph spans is always sufficient, since
	// differential.Run never proposes an origin outside the graph.
	fileCells := fileCellsFor(g.Nodes(), dsCfg.FileResolution())

	handle, err := s.loadDataset(ctx, name, fileCells)
	if err != nil {
		return referencedDatasetFilter{}, err
	}
	return referencedDatasetFilter{ds: handle.Value(), release: handle.Release}, nil
}

// streamPersistedArrowChunks is streamArrowChunks, additionally stamping
// persistedID onto the terminal chunk so the caller can later re-fetch the
// full result (spec.md §4.7 "Persistence").
func streamPersistedArrowChunks[T any](ctx context.Context, rows []T, encode func([]T) ([]byte, error), persistedID string, send func(*h3routingv1.ArrowIPCChunk) error) error {
	wrapped := func(chunk *h3routingv1.ArrowIPCChunk) error {
		if chunk.Final {
			chunk.PersistedId = persistedID
		}
		return send(chunk)
	}
	return streamArrowChunks(ctx, rows, encode, wrapped)
}
