// Package loader resolves dataset file keys via the configured key_pattern
// placeholders and decodes the self-describing Arrow IPC record-batch files
// they point to (spec.md §1: "the specific columnar serialization library
// [is] treated as a black-box encoder producing self-describing
// record-batch files" — we reuse the Arrow dependency already wired for
// output encoding rather than hand-roll a second columnar format).
package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/ipc"
	"github.com/apache/arrow/go/v14/arrow/memory"

	"h3routeserv/internal/dataset"
	"h3routeserv/internal/h3cell"
	"h3routeserv/internal/objectstore"
	"h3routeserv/pkg/cache"
	"h3routeserv/pkg/config"
)

// ResolveKey substitutes the key_pattern placeholders documented in
// spec.md §6: {file_h3_resolution}, {data_h3_resolution}, {h3cell}.
func ResolveKey(pattern string, fileRes, dataRes int, fileCell h3cell.Cell) string {
	key := strings.ReplaceAll(pattern, "{file_h3_resolution}", strconv.Itoa(fileRes))
	key = strings.ReplaceAll(key, "{data_h3_resolution}", strconv.Itoa(dataRes))
	key = strings.ReplaceAll(key, "{h3cell}", h3cell.String(fileCell))
	return key
}

// Load fetches and decodes the partition files covering fileCells, merging
// their rows into one Dataset. Missing partitions (no data for that file
// cell) are skipped rather than treated as an error.
//
// blobCache, if non-nil, is consulted for the raw partition bytes before
// falling back to store — the optional second-tier cache described in
// pkg/cache, shared by replicas when backed by Redis so one instance's
// fetch warms its peers. Decoding still happens on every call.
// A nil blobCache skips straight to store on every call.
func Load(ctx context.Context, store objectstore.Store, blobCache cache.Cache, name string, cfg config.DatasetConfig, fileCells []h3cell.Cell) (*dataset.Dataset, error) {
	fileRes, dataRes := cfg.FileResolution(), cfg.DataResolution()

	var records []dataset.Record
	for _, fc := range fileCells {
		key := ResolveKey(cfg.KeyPattern, fileRes, dataRes, fc)

		data, err := fetchPartition(ctx, store, blobCache, key)
		if err != nil {
			if errors.Is(err, objectstore.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("dataset %s: fetch %s: %w", name, key, err)
		}

		rows, err := decodeRecordBatches(data, cfg.H3IndexColumnName)
		if err != nil {
			return nil, fmt.Errorf("dataset %s: decode %s: %w", name, key, err)
		}
		records = append(records, rows...)
	}

	return dataset.New(name, fileRes, dataRes, cfg.H3IndexColumnName, records), nil
}

// fetchPartition reads key's raw bytes from blobCache when present,
// falling back to store on a miss and then populating blobCache.
func fetchPartition(ctx context.Context, store objectstore.Store, blobCache cache.Cache, key string) ([]byte, error) {
	if blobCache != nil {
		if data, err := blobCache.Get(ctx, key); err == nil {
			return data, nil
		}
	}

	data, err := store.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	if blobCache != nil {
		_ = blobCache.Set(ctx, key, data, 0)
	}
	return data, nil
}

func decodeRecordBatches(data []byte, h3col string) ([]dataset.Record, error) {
	reader, err := ipc.NewFileReader(bytes.NewReader(data), ipc.WithAllocator(memory.DefaultAllocator))
	if err != nil {
		return nil, fmt.Errorf("open arrow IPC file: %w", err)
	}
	defer reader.Close()

	schema := reader.Schema()
	h3FieldIdx := -1
	for i, f := range schema.Fields() {
		if f.Name == h3col {
			h3FieldIdx = i
			break
		}
	}
	if h3FieldIdx == -1 {
		return nil, fmt.Errorf("h3 index column %q not present in schema", h3col)
	}

	var out []dataset.Record
	for i := 0; i < reader.NumRecords(); i++ {
		rec, err := reader.Record(i)
		if err != nil {
			return nil, fmt.Errorf("read record batch %d: %w", i, err)
		}

		h3Col, ok := rec.Column(h3FieldIdx).(*array.Uint64)
		if !ok {
			return nil, fmt.Errorf("h3 index column %q is not uint64", h3col)
		}

		fieldNames := schema.Fields()
		for row := 0; row < int(rec.NumRows()); row++ {
			fields := make(map[string]float64, len(fieldNames)-1)
			for col := 0; col < len(fieldNames); col++ {
				if col == h3FieldIdx {
					continue
				}
				name := fieldNames[col].Name
				switch arr := rec.Column(col).(type) {
				case *array.Float64:
					fields[name] = arr.Value(row)
				case *array.Int64:
					fields[name] = float64(arr.Value(row))
				case *array.Uint64:
					fields[name] = float64(arr.Value(row))
				}
			}
			out = append(out, dataset.Record{
				Cell:   h3cell.Cell(h3Col.Value(row)),
				Fields: fields,
			})
		}
	}

	return out, nil
}
