// Package rpc implements h3routingv1.H3RoutingServiceServer: request
// validation, cell-selection resolution, graph/dataset cache orchestration,
// and dispatch into internal/routing/* and internal/encode/*, per the RPC
// surface table in spec.md §6.
package rpc

import (
	"context"
	"runtime"

	h3routingv1 "h3routeserv/gen/go/h3routing/v1"
	"h3routeserv/internal/cachestore"
	"h3routeserv/internal/dataset"
	"h3routeserv/internal/graph"
	"h3routeserv/internal/objectstore"
	"h3routeserv/pkg/cache"
	"h3routeserv/pkg/config"
)

// datasetCacheCapacity bounds the total resident byte size of distinct
// (dataset, file-cell footprint) combinations at once; unlike graphs,
// datasets are loaded per query footprint rather than as one whole-dataset
// artifact, so this is sized generously rather than tied to len(cfg.Datasets).
const datasetCacheCapacity = 256 * 1024 * 1024

// defaultSnapRingRadius is the ring search radius used to connect an
// off-graph cell to the nearest graph node when a request leaves
// NumGapCellsToGraph unset (spec.md §4.1).
const defaultSnapRingRadius = 2

// Server implements h3routingv1.H3RoutingServiceServer.
type Server struct {
	cfg *config.Config

	store     objectstore.Store
	blobCache cache.Cache

	graphs   *cachestore.TypedCache[*graph.Graph]
	datasets *cachestore.TypedCache[*dataset.Dataset]
	modes    *graph.Registry

	buildCommit string
}

// New builds a Server wired against store. blobCache is the optional
// second-tier cache in front of store for dataset partitions (nil disables
// it). buildCommit is surfaced verbatim by Version.
func New(cfg *config.Config, store objectstore.Store, blobCache cache.Cache, buildCommit string) *Server {
	return &Server{
		cfg:         cfg,
		store:       store,
		blobCache:   blobCache,
		graphs:      cachestore.New[*graph.Graph](cfg.Graphs.CacheSize, "graph", (*graph.Graph).ByteSize),
		datasets:    cachestore.New[*dataset.Dataset](datasetCacheCapacity, "dataset", (*dataset.Dataset).ByteSize),
		modes:       graph.NewRegistry(modeFactors(cfg)),
		buildCommit: buildCommit,
	}
}

func modeFactors(cfg *config.Config) map[string]float64 {
	out := make(map[string]float64, len(cfg.RoutingModes))
	for name, mode := range cfg.RoutingModes {
		out[name] = mode.EdgePreferenceFactor
	}
	return out
}

var _ h3routingv1.H3RoutingServiceServer = (*Server)(nil)

// Version reports the running build's identity.
func (s *Server) Version(_ context.Context, _ *h3routingv1.Empty) (*h3routingv1.VersionResponse, error) {
	return &h3routingv1.VersionResponse{
		Version:     s.cfg.App.Version,
		BuildCommit: s.buildCommit,
		GoVersion:   runtime.Version(),
	}, nil
}
