// Package h3cell wraps the hierarchical hexagonal spatial index (h3-go) with
// the small set of operations the routing engine needs: lat/lon conversion,
// boundary polygons, parent/child relations, and ring neighbors.
package h3cell

import (
	"fmt"
	"sort"

	h3 "github.com/uber/h3-go/v4"
)

// Cell is a 64-bit hexagonal cell identifier.
type Cell = h3.Cell

// LatLng is a WGS84 coordinate pair.
type LatLng = h3.LatLng

// MinResolution and MaxResolution bound the hierarchy's valid resolutions.
const (
	MinResolution = 0
	MaxResolution = 15
)

// FromLatLng returns the cell containing (lat, lng) at the given resolution.
func FromLatLng(lat, lng float64, resolution int) (Cell, error) {
	if resolution < MinResolution || resolution > MaxResolution {
		return 0, fmt.Errorf("h3cell: resolution %d out of range [%d,%d]", resolution, MinResolution, MaxResolution)
	}
	cell := h3.LatLngToCell(LatLng{Lat: lat, Lng: lng}, resolution)
	return cell, nil
}

// ToLatLng returns the center coordinate of cell.
func ToLatLng(cell Cell) LatLng {
	return cell.LatLng()
}

// Boundary returns the polygon boundary of cell in WGS84, vertices in
// counter-clockwise order as h3-go produces them.
func Boundary(cell Cell) []LatLng {
	boundary := cell.Boundary()
	out := make([]LatLng, len(boundary))
	copy(out, boundary[:])
	return out
}

// Resolution returns the resolution of cell.
func Resolution(cell Cell) int {
	return cell.Resolution()
}

// IsValid reports whether cell is a valid H3 index.
func IsValid(cell Cell) bool {
	return cell.IsValid()
}

// Parent returns the ancestor of cell at the given coarser resolution.
func Parent(cell Cell, resolution int) (Cell, error) {
	return cell.Parent(resolution)
}

// Children returns the descendants of cell at the given finer resolution.
func Children(cell Cell, resolution int) ([]Cell, error) {
	return cell.Children(resolution)
}

// Ring returns the cells at exact grid distance k from cell ("hollow ring").
// k=0 returns just cell itself.
func Ring(cell Cell, k int) ([]Cell, error) {
	if k == 0 {
		return []Cell{cell}, nil
	}
	ring, err := cell.GridRing(k)
	if err != nil {
		return nil, fmt.Errorf("h3cell: grid ring k=%d: %w", k, err)
	}
	return ring, nil
}

// Disk returns all cells within grid distance k from cell (a "filled disk",
// k=0 inclusive), deterministically sorted ascending by cell identifier.
func Disk(cell Cell, k int) ([]Cell, error) {
	disk, err := cell.GridDisk(k)
	if err != nil {
		return nil, fmt.Errorf("h3cell: grid disk k=%d: %w", k, err)
	}
	SortCells(disk)
	return disk, nil
}

// SortCells sorts cells ascending by their 64-bit identifier, the tie-break
// rule the engine uses everywhere determinism across equal-cost candidates
// matters (spec: "ties broken by the lexicographically smallest cell
// identifier").
func SortCells(cells []Cell) {
	sort.Slice(cells, func(i, j int) bool { return cells[i] < cells[j] })
}

// ParseString parses a cell from its canonical hex string form.
func ParseString(s string) (Cell, error) {
	var cell Cell
	if err := cell.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("h3cell: parse %q: %w", s, err)
	}
	if !cell.IsValid() {
		return 0, fmt.Errorf("h3cell: %q is not a valid cell", s)
	}
	return cell, nil
}

// String renders cell in its canonical hex form.
func String(cell Cell) string {
	return cell.String()
}
