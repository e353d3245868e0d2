package rpc

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	h3routingv1 "h3routeserv/gen/go/h3routing/v1"
	"h3routeserv/internal/cachestore"
	"h3routeserv/internal/graph"
	"h3routeserv/internal/graph/graphfile"
	"h3routeserv/internal/objectstore"
	"h3routeserv/pkg/apperror"
	"h3routeserv/pkg/metrics"
)

func graphCacheKey(name string, resolution int) string {
	return fmt.Sprintf("%s_r%d", name, resolution)
}

// parseGraphKey extracts (name, resolution) from an object store key shaped
// "<prefix><name>_r<resolution>.<ext>" (spec.md §6 "Graph file layout").
func parseGraphKey(prefix, key string) (name string, resolution int, ok bool) {
	rest := strings.TrimPrefix(key, prefix)
	if rest == key && prefix != "" {
		return "", 0, false
	}
	dot := strings.Index(rest, ".")
	if dot < 0 {
		return "", 0, false
	}
	stem := rest[:dot]
	idx := strings.LastIndex(stem, "_r")
	if idx < 0 {
		return "", 0, false
	}
	resolution, err := strconv.Atoi(stem[idx+2:])
	if err != nil {
		return "", 0, false
	}
	return stem[:idx], resolution, true
}

type graphKey struct {
	name       string
	resolution int
}

// ListGraphs reports every graph snapshot discovered under graphs.prefix,
// noting which are currently resident in the cache.
func (s *Server) ListGraphs(ctx context.Context, _ *h3routingv1.Empty) (*h3routingv1.ListGraphsResponse, error) {
	objs, err := s.store.List(ctx, s.cfg.Graphs.Prefix)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeStoreUnavailable, "list graph snapshots")
	}

	loaded := make(map[string]bool)
	for _, k := range s.graphs.ListKeys() {
		loaded[k] = true
	}

	seen := make(map[graphKey]bool)
	var infos []h3routingv1.GraphInfo
	for _, obj := range objs {
		name, resolution, ok := parseGraphKey(s.cfg.Graphs.Prefix, obj.Key)
		if !ok {
			continue
		}
		k := graphKey{name, resolution}
		if seen[k] {
			continue
		}
		seen[k] = true
		infos = append(infos, h3routingv1.GraphInfo{
			Name:       name,
			Resolution: int32(resolution),
			Loaded:     loaded[graphCacheKey(name, resolution)],
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Name != infos[j].Name {
			return infos[i].Name < infos[j].Name
		}
		return infos[i].Resolution < infos[j].Resolution
	})

	return &h3routingv1.ListGraphsResponse{Graphs: infos}, nil
}

// loadGraph resolves and returns a pinned handle to the named graph at
// resolution, decoding it from the object store on a cache miss. Callers
// must Release the handle when done with it.
func (s *Server) loadGraph(ctx context.Context, name string, resolution int) (*cachestore.Handle[*graph.Graph], error) {
	key := graphCacheKey(name, resolution)
	h, err := s.graphs.Get(ctx, key, func(ctx context.Context, _ string) (*graph.Graph, error) {
		return s.fetchGraph(ctx, name, resolution)
	})
	if err != nil {
		metrics.Get().RecordGraphLoad(name, false)
		return nil, err
	}
	metrics.Get().RecordGraphLoad(name, true)
	metrics.Get().RecordGraphSize(name, h.Value().NodeCount(), h.Value().EdgeCount())
	return h, nil
}

// fetchGraph reads and decodes a graph snapshot, preferring the compressed
// form since it is the expected common case for stored artifacts.
func (s *Server) fetchGraph(ctx context.Context, name string, resolution int) (*graph.Graph, error) {
	for _, ext := range []graphfile.Ext{graphfile.ExtZstd, graphfile.ExtPlain} {
		objKey := graphfile.Key(s.cfg.Graphs.Prefix, name, resolution, ext)
		data, err := s.store.Get(ctx, objKey)
		if err != nil {
			if errors.Is(err, objectstore.ErrNotFound) {
				continue
			}
			return nil, apperror.Wrap(err, apperror.CodeStoreUnavailable, "fetch graph snapshot")
		}
		return graphfile.Decode(data, ext)
	}
	return nil, apperror.New(apperror.CodeUnknownGraph,
		fmt.Sprintf("graph %q at resolution %d not found", name, resolution))
}
