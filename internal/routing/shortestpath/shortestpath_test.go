package shortestpath

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"h3routeserv/internal/graph"
	"h3routeserv/internal/h3cell"
)

// s1Graph builds spec.md scenario S1: A→B (10s,1.0), B→C (5s,0.5), A→C (20s,1.0).
func s1Graph() (*graph.Graph, map[string]h3cell.Cell) {
	cells := map[string]h3cell.Cell{
		"A": h3cell.Cell(1),
		"B": h3cell.Cell(2),
		"C": h3cell.Cell(3),
		"D": h3cell.Cell(4),
	}
	b := graph.NewBuilder("s1", 10)
	b.AddEdge(cells["A"], cells["B"], 10, 1.0)
	b.AddEdge(cells["B"], cells["C"], 5, 0.5)
	b.AddEdge(cells["A"], cells["C"], 20, 1.0)
	return b.Build(), cells
}

func TestManyToMany_S1_ExactMode(t *testing.T) {
	g, c := s1Graph()

	results := ManyToMany(context.Background(), g, []h3cell.Cell{c["A"]}, []h3cell.Cell{c["C"]}, Options{
		Mode: graph.RoutingMode{PreferenceFactor: 0},
	})

	require.Len(t, results, 1)
	r := results[0]
	assert.Equal(t, c["A"], r.Origin)
	assert.Equal(t, c["C"], r.Destination)
	assert.InDelta(t, 15.0, r.DurationSecs, 1e-9)
	assert.Equal(t, []h3cell.Cell{c["A"], c["B"], c["C"]}, r.Path)
}

func TestManyToMany_S1_PreferBetterRoadsStillPicksABC(t *testing.T) {
	g, c := s1Graph()

	results := ManyToMany(context.Background(), g, []h3cell.Cell{c["A"]}, []h3cell.Cell{c["C"]}, Options{
		Mode: graph.RoutingMode{PreferenceFactor: 0.8},
	})

	require.Len(t, results, 1)
	assert.InDelta(t, 17.0, results[0].DurationSecs, 1e-9)
	assert.Equal(t, []h3cell.Cell{c["A"], c["B"], c["C"]}, results[0].Path)
}

func TestManyToMany_UnreachableOriginProducesZeroRows(t *testing.T) {
	g, c := s1Graph()

	results := ManyToMany(context.Background(), g, []h3cell.Cell{c["D"]}, []h3cell.Cell{c["C"]}, Options{})
	assert.Empty(t, results)
}

func TestManyToMany_MaxDestinationsStopsEarly(t *testing.T) {
	g, c := s1Graph()

	results := ManyToMany(context.Background(), g, []h3cell.Cell{c["A"]}, []h3cell.Cell{c["B"], c["C"]}, Options{
		MaxDestinations: 1,
	})

	assert.Len(t, results, 1)
}

func TestManyToMany_RoutingModeMonotonicity(t *testing.T) {
	g, c := s1Graph()

	exact := ManyToMany(context.Background(), g, []h3cell.Cell{c["A"]}, []h3cell.Cell{c["C"]}, Options{
		Mode: graph.RoutingMode{PreferenceFactor: 0},
	})
	preferred := ManyToMany(context.Background(), g, []h3cell.Cell{c["A"]}, []h3cell.Cell{c["C"]}, Options{
		Mode: graph.RoutingMode{PreferenceFactor: 0.8},
	})

	require.Len(t, exact, 1)
	require.Len(t, preferred, 1)
	assert.GreaterOrEqual(t, preferred[0].PreferenceAvg, exact[0].PreferenceAvg)
}
