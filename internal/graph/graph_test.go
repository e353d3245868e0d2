package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"h3routeserv/internal/h3cell"
)

// tinyGraph builds spec.md S1: nodes {A,B,C,D}, edges A→B (10s,1.0),
// B→C (5s,0.5), A→C (20s,1.0).
func tinyGraph(t *testing.T) (*Graph, map[string]h3cell.Cell) {
	t.Helper()

	cells := map[string]h3cell.Cell{
		"A": h3cell.Cell(1),
		"B": h3cell.Cell(2),
		"C": h3cell.Cell(3),
		"D": h3cell.Cell(4),
	}

	b := NewBuilder("tiny", 10)
	b.AddNode(cells["D"])
	b.AddEdge(cells["A"], cells["B"], 10, 1.0)
	b.AddEdge(cells["B"], cells["C"], 5, 0.5)
	b.AddEdge(cells["A"], cells["C"], 20, 1.0)

	return b.Build(), cells
}

func TestBuilder_NoSelfLoops(t *testing.T) {
	b := NewBuilder("g", 9)
	b.AddEdge(h3cell.Cell(1), h3cell.Cell(1), 5, 1.0)
	g := b.Build()

	assert.Empty(t, g.Neighbors(h3cell.Cell(1)))
}

func TestBuilder_ParallelEdgesKeepLowestCost(t *testing.T) {
	b := NewBuilder("g", 9)
	b.AddEdge(h3cell.Cell(1), h3cell.Cell(2), 10, 1.0)
	b.AddEdge(h3cell.Cell(1), h3cell.Cell(2), 3, 0.5)
	g := b.Build()

	edges := g.Neighbors(h3cell.Cell(1))
	require.Len(t, edges, 1)
	assert.Equal(t, 3.0, edges[0].Cost)
}

func TestGraph_S1EffectiveCosts(t *testing.T) {
	g, c := tinyGraph(t)

	require.True(t, g.HasNode(c["A"]))
	require.True(t, g.HasNode(c["D"]))

	ab := findEdge(t, g, c["A"], c["B"])
	bc := findEdge(t, g, c["B"], c["C"])

	exact := RoutingMode{PreferenceFactor: 0}
	assert.Equal(t, 10.0, exact.EffectiveCost(ab))
	assert.Equal(t, 5.0, exact.EffectiveCost(bc))

	preferBetterRoads := RoutingMode{PreferenceFactor: 0.8}
	assert.InDelta(t, 10.0, preferBetterRoads.EffectiveCost(ab), 1e-9)
	assert.InDelta(t, 7.0, preferBetterRoads.EffectiveCost(bc), 1e-9)
}

func TestGraph_Mask(t *testing.T) {
	g, c := tinyGraph(t)

	masked := g.Mask(map[h3cell.Cell]bool{c["B"]: true})

	assert.Empty(t, masked.Neighbors(c["A"]), "edge into masked cell B must be removed")
	assert.Empty(t, masked.Neighbors(c["B"]), "edges out of masked cell B must be removed")
	assert.NotEmpty(t, g.Neighbors(c["A"]), "original graph must be unmodified")
}

func TestRegistry_ResolveDefault(t *testing.T) {
	reg := NewRegistry(map[string]float64{"prefer-better-roads": 0.8})

	mode, ok := reg.Resolve("")
	require.True(t, ok)
	assert.Equal(t, 0.0, mode.PreferenceFactor)

	mode, ok = reg.Resolve("prefer-better-roads")
	require.True(t, ok)
	assert.Equal(t, 0.8, mode.PreferenceFactor)

	_, ok = reg.Resolve("unknown")
	assert.False(t, ok)
}

func findEdge(t *testing.T, g *Graph, u, v h3cell.Cell) Edge {
	t.Helper()
	for _, e := range g.Neighbors(u) {
		if e.To == v {
			return e
		}
	}
	t.Fatalf("no edge %v -> %v", u, v)
	return Edge{}
}
