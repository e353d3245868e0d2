package cachestore

import (
	"h3routeserv/internal/dataset"
	"h3routeserv/internal/graph"
)

// ArtifactKind tags which branch of CachedArtifact is populated.
type ArtifactKind int

const (
	ArtifactGraph ArtifactKind = iota
	ArtifactDataset
)

// CachedArtifact is the closed tagged union over the two kinds of object
// this service ever caches (spec.md §3: "Tagged union over {Graph,
// Dataset}"). Exactly one of Graph/Dataset is non-nil, selected by Kind —
// deliberately not an interface with a shared capability method, since the
// set of kinds is closed and will not grow.
type CachedArtifact struct {
	Kind    ArtifactKind
	Graph   *graph.Graph
	Dataset *dataset.Dataset
}

// GraphArtifact wraps g as a CachedArtifact.
func GraphArtifact(g *graph.Graph) CachedArtifact {
	return CachedArtifact{Kind: ArtifactGraph, Graph: g}
}

// DatasetArtifact wraps d as a CachedArtifact.
func DatasetArtifact(d *dataset.Dataset) CachedArtifact {
	return CachedArtifact{Kind: ArtifactDataset, Dataset: d}
}
