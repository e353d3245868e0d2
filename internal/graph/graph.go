// Package graph implements the road-network graph model: nodes are H3 cells
// at a fixed resolution, edges carry a raw traversal cost and a road-class
// preference that a RoutingMode turns into an effective cost at query time.
package graph

import (
	"sort"
	"sync"

	"github.com/paulmach/orb"

	"h3routeserv/internal/h3cell"
)

// Epsilon is the tolerance used for floating point cost comparisons,
// mirroring the teacher solver's use of an epsilon guard against
// numerical noise in heap comparisons.
const Epsilon = 1e-9

// Edge is a directed edge (u, v, w, p): w is the raw traversal cost in
// seconds, p is the road-class preference in (0, 1], 1.0 meaning preferred.
type Edge struct {
	To         h3cell.Cell
	Cost       float64
	Preference float64
}

// EffectiveCost returns w · (1 + f · (1 − p)) for preference factor f.
func (e Edge) EffectiveCost(preferenceFactor float64) float64 {
	return e.Cost * (1 + preferenceFactor*(1-e.Preference))
}

// Graph is the compact adjacency-list representation of a RoadGraph: for
// each node cell, a deterministically ordered outgoing edge list.
//
// Graph is read-only once built (via Builder); concurrent readers need no
// locking, matching the "shared read-only across requests" discipline the
// cache relies on.
type Graph struct {
	Name       string
	Resolution int

	nodes    map[h3cell.Cell]bool
	edges    map[h3cell.Cell][]Edge
	sorted   []h3cell.Cell
	covering orb.Polygon
}

// Builder accumulates nodes and edges before Graph is frozen.
type Builder struct {
	name       string
	resolution int
	nodes      map[h3cell.Cell]bool
	edges      map[h3cell.Cell]map[h3cell.Cell]Edge // keeps only the lowest-cost parallel edge
}

// NewBuilder starts a graph build for the given identity pair (name, resolution).
func NewBuilder(name string, resolution int) *Builder {
	return &Builder{
		name:       name,
		resolution: resolution,
		nodes:      make(map[h3cell.Cell]bool),
		edges:      make(map[h3cell.Cell]map[h3cell.Cell]Edge),
	}
}

// AddNode registers a node cell with no outgoing edges yet.
func (b *Builder) AddNode(cell h3cell.Cell) {
	b.nodes[cell] = true
}

// AddEdge adds a directed edge u→v. Self-loops are rejected silently (graph
// invariant: no self-loops). Parallel edges keep only the lowest cost.
func (b *Builder) AddEdge(u, v h3cell.Cell, cost, preference float64) {
	if u == v {
		return
	}
	b.nodes[u] = true
	b.nodes[v] = true

	if b.edges[u] == nil {
		b.edges[u] = make(map[h3cell.Cell]Edge)
	}
	if existing, ok := b.edges[u][v]; !ok || cost < existing.Cost {
		b.edges[u][v] = Edge{To: v, Cost: cost, Preference: preference}
	}
}

// Build freezes the accumulated nodes/edges into an immutable Graph with a
// deterministic edge order and a covering polygon derived from the node
// cells' boundaries.
func (b *Builder) Build() *Graph {
	g := &Graph{
		Name:       b.name,
		Resolution: b.resolution,
		nodes:      make(map[h3cell.Cell]bool, len(b.nodes)),
		edges:      make(map[h3cell.Cell][]Edge, len(b.edges)),
	}

	for n := range b.nodes {
		g.nodes[n] = true
		g.sorted = append(g.sorted, n)
	}
	sort.Slice(g.sorted, func(i, j int) bool { return g.sorted[i] < g.sorted[j] })

	for u, targets := range b.edges {
		list := make([]Edge, 0, len(targets))
		for _, e := range targets {
			list = append(list, e)
		}
		sort.Slice(list, func(i, j int) bool { return list[i].To < list[j].To })
		g.edges[u] = list
	}

	g.covering = computeCoveringPolygon(g.sorted)
	return g
}

// HasNode reports whether cell is a node of the graph.
func (g *Graph) HasNode(cell h3cell.Cell) bool {
	return g.nodes[cell]
}

// Neighbors returns the deterministically ordered outgoing edges of cell.
func (g *Graph) Neighbors(cell h3cell.Cell) []Edge {
	return g.edges[cell]
}

// Nodes returns all node cells in ascending order.
func (g *Graph) Nodes() []h3cell.Cell {
	return g.sorted
}

// NodeCount returns the number of node cells.
func (g *Graph) NodeCount() int {
	return len(g.sorted)
}

// EdgeCount returns the total number of directed edges.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, list := range g.edges {
		count += len(list)
	}
	return count
}

// nodeByteEstimate and edgeByteEstimate approximate the resident memory a
// node/edge occupies (cell index plus map/slice bookkeeping overhead), used
// only to size the artifact for cache capacity accounting.
const (
	nodeByteEstimate = 48
	edgeByteEstimate = 40
)

// ByteSize estimates the graph's resident memory footprint, for the
// artifact cache's size-based capacity accounting (spec.md §3 "Cache total
// size (sum of artifact sizes) ≤ capacity").
func (g *Graph) ByteSize() int64 {
	return int64(g.NodeCount())*nodeByteEstimate + int64(g.EdgeCount())*edgeByteEstimate
}

// CoveringPolygon returns a coarse polygon covering all node cells, for
// coarse rejection of points outside graph coverage. The RPC handlers do
// not call it; they go straight to the snapping ring search.
func (g *Graph) CoveringPolygon() orb.Polygon {
	return g.covering
}

// Contains reports whether point falls within the graph's covering polygon.
// A coarse rejection only: it does not imply the nearest cell is within any
// particular ring radius.
func (g *Graph) Contains(point orb.Point) bool {
	if len(g.covering) == 0 {
		return false
	}
	return polygonContains(g.covering[0], point)
}

// computeCoveringPolygon builds a convex-hull-free coarse cover: the union
// of node cell boundaries is approximated by its lat/lng bounding box,
// which is sufficient for fast rejection without a full hull computation.
func computeCoveringPolygon(nodes []h3cell.Cell) orb.Polygon {
	if len(nodes) == 0 {
		return nil
	}

	minLat, minLng := 90.0, 180.0
	maxLat, maxLng := -90.0, -180.0

	for _, cell := range nodes {
		for _, ll := range h3cell.Boundary(cell) {
			if ll.Lat < minLat {
				minLat = ll.Lat
			}
			if ll.Lat > maxLat {
				maxLat = ll.Lat
			}
			if ll.Lng < minLng {
				minLng = ll.Lng
			}
			if ll.Lng > maxLng {
				maxLng = ll.Lng
			}
		}
	}

	ring := orb.Ring{
		{minLng, minLat},
		{maxLng, minLat},
		{maxLng, maxLat},
		{minLng, maxLat},
		{minLng, minLat},
	}
	return orb.Polygon{ring}
}

// polygonContains is a standard ray-casting point-in-polygon test.
func polygonContains(ring orb.Ring, point orb.Point) bool {
	inside := false
	n := len(ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := ring[i], ring[j]
		if (pi[1] > point[1]) != (pj[1] > point[1]) &&
			point[0] < (pj[0]-pi[0])*(point[1]-pi[1])/(pj[1]-pi[1])+pi[0] {
			inside = !inside
		}
	}
	return inside
}

// maskMu serializes construction of derived masked graphs (e.g. the
// disturbed graph in differential routing). It does not deduplicate: two
// callers masking the same base graph each build their own copy.
var maskMu sync.Mutex

// Mask returns a new Graph with all edges incident to any cell in excluded
// removed (spec.md §3: "all edges incident to any cell inside the
// disturbance geometry ... are removed"). The base graph is never mutated.
func (g *Graph) Mask(excluded map[h3cell.Cell]bool) *Graph {
	maskMu.Lock()
	defer maskMu.Unlock()

	masked := &Graph{
		Name:       g.Name,
		Resolution: g.Resolution,
		nodes:      g.nodes,
		sorted:     g.sorted,
		covering:   g.covering,
		edges:      make(map[h3cell.Cell][]Edge, len(g.edges)),
	}

	for u, list := range g.edges {
		if excluded[u] {
			continue
		}
		filtered := make([]Edge, 0, len(list))
		for _, e := range list {
			if excluded[e.To] {
				continue
			}
			filtered = append(filtered, e)
		}
		if len(filtered) > 0 {
			masked.edges[u] = filtered
		}
	}

	return masked
}
