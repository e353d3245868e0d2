// Package dataset models a named collection of per-cell records backed by
// object-store files keyed by a coarser "file cell" (spec.md §3: Dataset).
package dataset

import (
	"sort"

	"h3routeserv/internal/h3cell"
)

// Record is one row of a dataset: the data-resolution cell it describes,
// plus whatever named numeric fields the source columns carried (e.g. a
// population weight).
type Record struct {
	Cell   h3cell.Cell
	Fields map[string]float64
}

// Dataset is a named, fully materialized cell-keyed collection. FileResolution
// (Rf) is the resolution the backing files are partitioned at; DataResolution
// (Rd) is the resolution individual records are recorded at (Rd >= Rf).
type Dataset struct {
	Name              string
	FileResolution    int
	DataResolution    int
	H3IndexColumnName string

	records map[h3cell.Cell]Record
	sorted  []h3cell.Cell
}

// New builds a Dataset from its decoded records.
func New(name string, fileRes, dataRes int, h3col string, records []Record) *Dataset {
	d := &Dataset{
		Name:              name,
		FileResolution:    fileRes,
		DataResolution:    dataRes,
		H3IndexColumnName: h3col,
		records:           make(map[h3cell.Cell]Record, len(records)),
	}
	for _, r := range records {
		d.records[r.Cell] = r
		d.sorted = append(d.sorted, r.Cell)
	}
	h3cell.SortCells(d.sorted)
	return d
}

// Contains reports whether cell is a member of the dataset.
func (d *Dataset) Contains(cell h3cell.Cell) bool {
	_, ok := d.records[cell]
	return ok
}

// Get returns the record for cell, if present.
func (d *Dataset) Get(cell h3cell.Cell) (Record, bool) {
	r, ok := d.records[cell]
	return r, ok
}

// Keys returns every cell the dataset has a record for, ascending.
func (d *Dataset) Keys() []h3cell.Cell {
	return d.sorted
}

// Len returns the number of records in the dataset.
func (d *Dataset) Len() int {
	return len(d.records)
}

// recordByteEstimate approximates a Record's resident memory: the cell
// index plus its Fields map bookkeeping and entries, used only to size the
// artifact for cache capacity accounting.
const recordByteEstimate = 64

// ByteSize estimates the dataset's resident memory footprint, for the
// artifact cache's size-based capacity accounting (spec.md §3 "Cache total
// size (sum of artifact sizes) ≤ capacity").
func (d *Dataset) ByteSize() int64 {
	total := int64(0)
	for _, r := range d.records {
		total += recordByteEstimate + int64(len(r.Fields))*16
	}
	return total
}

// CellSelection pairs a requested cell set with an optional dataset filter
// (spec.md §3: "If the dataset is set, the effective selection is
// cells ∩ keys(dataset)").
type CellSelection struct {
	Cells       []h3cell.Cell
	DatasetName string
}

// Resolve computes the effective cell set: cells as-is if ds is nil,
// otherwise cells intersected with ds's membership.
func (sel CellSelection) Resolve(ds *Dataset) []h3cell.Cell {
	if ds == nil {
		out := make([]h3cell.Cell, len(sel.Cells))
		copy(out, sel.Cells)
		h3cell.SortCells(out)
		return out
	}

	var out []h3cell.Cell
	for _, c := range sel.Cells {
		if ds.Contains(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
