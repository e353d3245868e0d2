// Package graphfile encodes and decodes a Graph snapshot as the binary
// artifact body described in spec.md §6's "Graph file layout": a
// versioned, optionally compressed encoding keyed by
// "<graphs.prefix><name>_r<resolution>.<ext>".
//
// The body reuses the same Arrow IPC record-batch container already wired
// for dataset partitions and RPC output (internal/dataset/loader,
// internal/encode/arrowbatch) rather than inventing a third columnar
// format: one row per node, with a null target cell representing a node
// with no outgoing edges and one row per (node, edge) pair otherwise.
package graphfile

import (
	"bytes"
	"fmt"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/ipc"
	"github.com/apache/arrow/go/v14/arrow/memory"
	"github.com/klauspost/compress/zstd"

	"h3routeserv/internal/graph"
	"h3routeserv/internal/h3cell"
	"h3routeserv/pkg/apperror"
)

// FormatVersion is embedded in every encoded file's schema metadata; a
// mismatch on decode is a fatal, non-retriable load error (spec.md §6).
const FormatVersion = "1"

const (
	metaName       = "graph_name"
	metaResolution = "graph_resolution"
	metaVersion    = "format_version"
)

var schema = arrow.NewSchema([]arrow.Field{
	{Name: "node", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "to", Type: arrow.PrimitiveTypes.Uint64, Nullable: true},
	{Name: "cost", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	{Name: "preference", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
}, nil)

// Ext selects the compression codec applied to an encoded file's bytes.
type Ext string

const (
	// ExtPlain stores the Arrow IPC bytes uncompressed.
	ExtPlain Ext = "arrow"
	// ExtZstd compresses the Arrow IPC bytes with zstd.
	ExtZstd Ext = "arrow.zst"
)

// Key renders the graph file object key for name at resolution with ext.
func Key(prefix, name string, resolution int, ext Ext) string {
	return fmt.Sprintf("%s%s_r%d.%s", prefix, name, resolution, ext)
}

// Encode serializes g into a versioned Arrow IPC file, compressed per ext.
func Encode(g *graph.Graph, ext Ext) ([]byte, error) {
	mem := memory.NewGoAllocator()
	sc := schema.WithMetadata(arrow.NewMetadata(
		[]string{metaName, metaResolution, metaVersion},
		[]string{g.Name, fmt.Sprintf("%d", g.Resolution), FormatVersion},
	))

	b := array.NewRecordBuilder(mem, sc)
	defer b.Release()

	nodeB := b.Field(0).(*array.Uint64Builder)
	toB := b.Field(1).(*array.Uint64Builder)
	costB := b.Field(2).(*array.Float64Builder)
	prefB := b.Field(3).(*array.Float64Builder)

	for _, n := range g.Nodes() {
		edges := g.Neighbors(n)
		if len(edges) == 0 {
			nodeB.Append(uint64(n))
			toB.AppendNull()
			costB.AppendNull()
			prefB.AppendNull()
			continue
		}
		for _, e := range edges {
			nodeB.Append(uint64(n))
			toB.Append(uint64(e.To))
			costB.Append(e.Cost)
			prefB.Append(e.Preference)
		}
	}

	rec := b.NewRecord()
	defer rec.Release()

	var buf bytes.Buffer
	w, err := ipc.NewFileWriter(&buf, ipc.WithSchema(sc), ipc.WithAllocator(mem))
	if err != nil {
		return nil, fmt.Errorf("graphfile: open writer: %w", err)
	}
	if err := w.Write(rec); err != nil {
		return nil, fmt.Errorf("graphfile: write record: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("graphfile: close writer: %w", err)
	}

	if ext == ExtZstd {
		return compress(buf.Bytes())
	}
	return buf.Bytes(), nil
}

// Decode rebuilds a Graph from its encoded bytes, inferring compression
// from ext. A format_version mismatch against FormatVersion is reported as
// apperror.CodeGraphVersionSkew, per spec.md §6's "version mismatch is
// reported as a fatal load error".
func Decode(data []byte, ext Ext) (*graph.Graph, error) {
	if ext == ExtZstd {
		var err error
		data, err = decompress(data)
		if err != nil {
			return nil, fmt.Errorf("graphfile: decompress: %w", err)
		}
	}

	reader, err := ipc.NewFileReader(bytes.NewReader(data), ipc.WithAllocator(memory.DefaultAllocator))
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeCorruptGraph, "open graph file")
	}
	defer reader.Close()

	sc := reader.Schema()
	md := sc.Metadata()
	version, ok := lookupMeta(md, metaVersion)
	if !ok || version != FormatVersion {
		return nil, apperror.New(apperror.CodeGraphVersionSkew,
			fmt.Sprintf("graph file format version %q unsupported (expected %q)", version, FormatVersion))
	}

	name, _ := lookupMeta(md, metaName)
	resolutionStr, _ := lookupMeta(md, metaResolution)
	resolution := 0
	fmt.Sscanf(resolutionStr, "%d", &resolution)

	builder := graph.NewBuilder(name, resolution)

	for i := 0; i < reader.NumRecords(); i++ {
		rec, err := reader.Record(i)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.CodeCorruptGraph, "read graph record batch")
		}

		nodeCol, ok := rec.Column(0).(*array.Uint64)
		if !ok {
			return nil, apperror.New(apperror.CodeCorruptGraph, "graph file node column is not uint64")
		}
		toCol, ok := rec.Column(1).(*array.Uint64)
		if !ok {
			return nil, apperror.New(apperror.CodeCorruptGraph, "graph file to column is not uint64")
		}
		costCol, ok := rec.Column(2).(*array.Float64)
		if !ok {
			return nil, apperror.New(apperror.CodeCorruptGraph, "graph file cost column is not float64")
		}
		prefCol, ok := rec.Column(3).(*array.Float64)
		if !ok {
			return nil, apperror.New(apperror.CodeCorruptGraph, "graph file preference column is not float64")
		}

		for row := 0; row < int(rec.NumRows()); row++ {
			node := h3cell.Cell(nodeCol.Value(row))
			builder.AddNode(node)
			if toCol.IsNull(row) {
				continue
			}
			builder.AddEdge(node, h3cell.Cell(toCol.Value(row)), costCol.Value(row), prefCol.Value(row))
		}
	}

	return builder.Build(), nil
}

func lookupMeta(md arrow.Metadata, key string) (string, bool) {
	for i, k := range md.Keys() {
		if k == key {
			return md.Values()[i], true
		}
	}
	return "", false
}

func compress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

func decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}
