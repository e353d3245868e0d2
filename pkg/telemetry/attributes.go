package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Standard attribute keys used across spans.
const (
	// Graph
	AttrGraphNodes   = "graph.nodes"
	AttrGraphEdges   = "graph.edges"
	AttrGraphDataset = "graph.dataset"

	// Routing
	AttrRoutingMode   = "routing.mode"
	AttrOriginsCount  = "routing.origins_count"
	AttrDestCount     = "routing.destinations_count"
	AttrPathsFound    = "routing.paths_found"
	AttrSnapRadius    = "routing.snap_radius_cells"
	AttrCostThreshold = "routing.cost_threshold"

	// Dataset / cache
	AttrCacheHit    = "cache.hit"
	AttrDatasetName = "dataset.name"

	// Differential
	AttrDownsampled = "differential.downsampled"
)

// GraphAttributes returns the standard attribute set for a loaded graph.
func GraphAttributes(dataset string, nodes, edges int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrGraphDataset, dataset),
		attribute.Int(AttrGraphNodes, nodes),
		attribute.Int(AttrGraphEdges, edges),
	}
}

// RoutingAttributes returns the standard attribute set for a shortest-path
// operation.
func RoutingAttributes(mode string, origins, destinations, pathsFound int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrRoutingMode, mode),
		attribute.Int(AttrOriginsCount, origins),
		attribute.Int(AttrDestCount, destinations),
		attribute.Int(AttrPathsFound, pathsFound),
	}
}

// CacheAttributes returns the standard attribute set for a graph cache
// lookup.
func CacheAttributes(dataset string, hit bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrDatasetName, dataset),
		attribute.Bool(AttrCacheHit, hit),
	}
}
