package rpc

import (
	"context"
	"fmt"
	"sort"
	"strings"

	h3routingv1 "h3routeserv/gen/go/h3routing/v1"
	"h3routeserv/internal/cachestore"
	"h3routeserv/internal/dataset"
	"h3routeserv/internal/dataset/loader"
	"h3routeserv/internal/h3cell"
	"h3routeserv/pkg/apperror"
)

// ListDatasets reports every dataset named in configuration.
func (s *Server) ListDatasets(_ context.Context, _ *h3routingv1.Empty) (*h3routingv1.ListDatasetsResponse, error) {
	names := make([]string, 0, len(s.cfg.Datasets))
	for name := range s.cfg.Datasets {
		names = append(names, name)
	}
	sort.Strings(names)

	infos := make([]h3routingv1.DatasetInfo, 0, len(names))
	for _, name := range names {
		cfg := s.cfg.Datasets[name]
		infos = append(infos, h3routingv1.DatasetInfo{
			Name:              name,
			FileResolution:    int32(cfg.FileResolution()),
			DataResolution:    int32(cfg.DataResolution()),
			H3IndexColumnName: cfg.H3IndexColumnName,
		})
	}
	return &h3routingv1.ListDatasetsResponse{Datasets: infos}, nil
}

// fileCellsFor derives the distinct file-resolution ancestor cells covering
// cells, the partition keys loader.Load needs (spec.md §6 key_pattern
// placeholders).
func fileCellsFor(cells []h3cell.Cell, fileResolution int) []h3cell.Cell {
	seen := make(map[h3cell.Cell]bool)
	var out []h3cell.Cell
	for _, c := range cells {
		fc, err := h3cell.Parent(c, fileResolution)
		if err != nil {
			continue
		}
		if !seen[fc] {
			seen[fc] = true
			out = append(out, fc)
		}
	}
	h3cell.SortCells(out)
	return out
}

func datasetCacheKey(name string, fileCells []h3cell.Cell) string {
	var b strings.Builder
	b.WriteString(name)
	for _, c := range fileCells {
		b.WriteByte(',')
		b.WriteString(h3cell.String(c))
	}
	return b.String()
}

// loadDataset resolves and returns a pinned handle to name, decoding only
// the partitions covering fileCells on a cache miss. Callers must Release
// the handle when done with it.
func (s *Server) loadDataset(ctx context.Context, name string, fileCells []h3cell.Cell) (*cachestore.Handle[*dataset.Dataset], error) {
	dsCfg, ok := s.cfg.Datasets[name]
	if !ok {
		return nil, apperror.New(apperror.CodeUnknownDataset, fmt.Sprintf("dataset %q is not configured", name))
	}

	key := datasetCacheKey(name, fileCells)
	return s.datasets.Get(ctx, key, func(ctx context.Context, _ string) (*dataset.Dataset, error) {
		return loader.Load(ctx, s.store, s.blobCache, name, dsCfg, fileCells)
	})
}

// resolveSelection converts a wire CellSelection into its effective cell
// set: the requested cells as-is, or intersected with the named dataset's
// membership when DatasetName is set (spec.md §3 CellSelection.Resolve).
func (s *Server) resolveSelection(ctx context.Context, sel h3routingv1.CellSelection) ([]h3cell.Cell, error) {
	cells := make([]h3cell.Cell, len(sel.Cells))
	for i, c := range sel.Cells {
		cells[i] = h3cell.Cell(c)
	}

	if sel.DatasetName == "" {
		h3cell.SortCells(cells)
		return cells, nil
	}

	dsCfg, ok := s.cfg.Datasets[sel.DatasetName]
	if !ok {
		return nil, apperror.New(apperror.CodeUnknownDataset, fmt.Sprintf("dataset %q is not configured", sel.DatasetName))
	}

	fileCells := fileCellsFor(cells, dsCfg.FileResolution())
	handle, err := s.loadDataset(ctx, sel.DatasetName, fileCells)
	if err != nil {
		return nil, err
	}
	defer handle.Release()

	dsSel := dataset.CellSelection{Cells: cells, DatasetName: sel.DatasetName}
	return dsSel.Resolve(handle.Value()), nil
}
