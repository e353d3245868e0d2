package graph

import (
	"h3routeserv/internal/h3cell"
)

// CoalesceToResolution builds a coarser graph at coarseRes (< g.Resolution)
// by grouping every node under its ancestor cell at coarseRes: two coarse
// cells share an edge with the minimum cost among all fine edges crossing
// between their descendant sets (spec.md §4.3 downsampled pre-routing pass).
// Fine edges whose endpoints coalesce to the same coarse cell are dropped as
// self-loops. Returns nil if coarseRes is not strictly coarser than g.
func CoalesceToResolution(g *Graph, coarseRes int) *Graph {
	if coarseRes >= g.Resolution || coarseRes < h3cell.MinResolution {
		return nil
	}

	b := NewBuilder(g.Name+"#coarse", coarseRes)

	for _, u := range g.sorted {
		pu, err := h3cell.Parent(u, coarseRes)
		if err != nil {
			continue
		}
		b.AddNode(pu)

		for _, e := range g.edges[u] {
			pv, err := h3cell.Parent(e.To, coarseRes)
			if err != nil || pu == pv {
				continue
			}
			b.AddEdge(pu, pv, e.Cost, e.Preference)
		}
	}

	return b.Build()
}
