package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"h3routeserv/internal/h3cell"
)

func TestCellSelection_ResolveWithoutDataset(t *testing.T) {
	sel := CellSelection{Cells: []h3cell.Cell{3, 1, 2}}
	assert.Equal(t, []h3cell.Cell{1, 2, 3}, sel.Resolve(nil))
}

func TestCellSelection_ResolveIntersectsDataset(t *testing.T) {
	ds := New("population", 7, 9, "h3index", []Record{
		{Cell: h3cell.Cell(1), Fields: map[string]float64{"weight": 10}},
		{Cell: h3cell.Cell(2), Fields: map[string]float64{"weight": 20}},
	})

	sel := CellSelection{Cells: []h3cell.Cell{1, 2, 3}, DatasetName: "population"}
	got := sel.Resolve(ds)

	assert.Equal(t, []h3cell.Cell{1, 2}, got)
}

func TestDataset_GetAndContains(t *testing.T) {
	ds := New("population", 7, 9, "h3index", []Record{
		{Cell: h3cell.Cell(5), Fields: map[string]float64{"weight": 42}},
	})

	assert.True(t, ds.Contains(h3cell.Cell(5)))
	assert.False(t, ds.Contains(h3cell.Cell(6)))

	rec, ok := ds.Get(h3cell.Cell(5))
	assert.True(t, ok)
	assert.Equal(t, 42.0, rec.Fields["weight"])
}
