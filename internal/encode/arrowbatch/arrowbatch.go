// Package arrowbatch encodes result rows as self-describing Arrow IPC
// record-batch chunks (spec.md §4.8 "Row→batch"), the wire format for
// ArrowIPCChunk streaming responses.
package arrowbatch

import (
	"bytes"
	"fmt"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/ipc"
	"github.com/apache/arrow/go/v14/arrow/memory"
)

// ShortestPathRow is one O×D result row for H3ShortestPath.
type ShortestPathRow struct {
	OriginCell    uint64
	DestCell      uint64
	DurationSecs  float64
	LengthMeters  float64
	PreferenceAvg float64
	Found         bool
}

var shortestPathSchema = arrow.NewSchema([]arrow.Field{
	{Name: "origin_cell", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "dest_cell", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "duration_secs", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	{Name: "length_meters", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	{Name: "preference_avg", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	{Name: "found", Type: arrow.FixedWidthTypes.Boolean},
}, nil)

// EncodeShortestPathRows produces one self-describing Arrow IPC file
// containing rows as a single record batch.
func EncodeShortestPathRows(rows []ShortestPathRow) ([]byte, error) {
	mem := memory.NewGoAllocator()
	b := array.NewRecordBuilder(mem, shortestPathSchema)
	defer b.Release()

	originB := b.Field(0).(*array.Uint64Builder)
	destB := b.Field(1).(*array.Uint64Builder)
	durB := b.Field(2).(*array.Float64Builder)
	lenB := b.Field(3).(*array.Float64Builder)
	prefB := b.Field(4).(*array.Float64Builder)
	foundB := b.Field(5).(*array.BooleanBuilder)

	for _, r := range rows {
		originB.Append(r.OriginCell)
		destB.Append(r.DestCell)
		if r.Found {
			durB.Append(r.DurationSecs)
			lenB.Append(r.LengthMeters)
			prefB.Append(r.PreferenceAvg)
		} else {
			durB.AppendNull()
			lenB.AppendNull()
			prefB.AppendNull()
		}
		foundB.Append(r.Found)
	}

	return writeRecord(b.NewRecord(), shortestPathSchema)
}

// DifferentialRow is one origin's aggregated baseline/disturbed result
// (spec.md §4.3 step 6, §8 scenario S4).
type DifferentialRow struct {
	OriginCell uint64

	AvgDurationWithout   float64
	NumReachedWithout    int64
	PreferredDestWithout uint64
	AvgPreferenceWithout float64
	HasWithout           bool

	AvgDurationWith   float64
	NumReachedWith    int64
	PreferredDestWith uint64
	AvgPreferenceWith float64
	HasWith           bool
}

var differentialSchema = arrow.NewSchema([]arrow.Field{
	{Name: "origin_cell", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "avg_duration_without_disturbance", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	{Name: "num_reached_without_disturbance", Type: arrow.PrimitiveTypes.Int64},
	{Name: "preferred_dest_without_disturbance", Type: arrow.PrimitiveTypes.Uint64, Nullable: true},
	{Name: "avg_preference_without_disturbance", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	{Name: "avg_duration_with_disturbance", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	{Name: "num_reached_with_disturbance", Type: arrow.PrimitiveTypes.Int64},
	{Name: "preferred_dest_with_disturbance", Type: arrow.PrimitiveTypes.Uint64, Nullable: true},
	{Name: "avg_preference_with_disturbance", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
}, nil)

// EncodeDifferentialRows produces one self-describing Arrow IPC file for a
// batch of per-origin differential results.
func EncodeDifferentialRows(rows []DifferentialRow) ([]byte, error) {
	mem := memory.NewGoAllocator()
	b := array.NewRecordBuilder(mem, differentialSchema)
	defer b.Release()

	originB := b.Field(0).(*array.Uint64Builder)
	avgWoB := b.Field(1).(*array.Float64Builder)
	numWoB := b.Field(2).(*array.Int64Builder)
	destWoB := b.Field(3).(*array.Uint64Builder)
	prefWoB := b.Field(4).(*array.Float64Builder)
	avgWB := b.Field(5).(*array.Float64Builder)
	numWB := b.Field(6).(*array.Int64Builder)
	destWB := b.Field(7).(*array.Uint64Builder)
	prefWB := b.Field(8).(*array.Float64Builder)

	for _, r := range rows {
		originB.Append(r.OriginCell)
		numWoB.Append(r.NumReachedWithout)
		numWB.Append(r.NumReachedWith)

		if r.HasWithout {
			avgWoB.Append(r.AvgDurationWithout)
			destWoB.Append(r.PreferredDestWithout)
			prefWoB.Append(r.AvgPreferenceWithout)
		} else {
			avgWoB.AppendNull()
			destWoB.AppendNull()
			prefWoB.AppendNull()
		}

		if r.HasWith {
			avgWB.Append(r.AvgDurationWith)
			destWB.Append(r.PreferredDestWith)
			prefWB.Append(r.AvgPreferenceWith)
		} else {
			avgWB.AppendNull()
			destWB.AppendNull()
			prefWB.AppendNull()
		}
	}

	return writeRecord(b.NewRecord(), differentialSchema)
}

// ThresholdRow is one reachable cell from H3CellsWithinThreshold.
type ThresholdRow struct {
	Cell         uint64
	DurationSecs float64
	OriginCell   uint64
}

var thresholdSchema = arrow.NewSchema([]arrow.Field{
	{Name: "cell", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "duration_secs", Type: arrow.PrimitiveTypes.Float64},
	{Name: "origin_cell", Type: arrow.PrimitiveTypes.Uint64},
}, nil)

// EncodeThresholdRows produces one self-describing Arrow IPC file for a
// batch of within-threshold reachability rows.
func EncodeThresholdRows(rows []ThresholdRow) ([]byte, error) {
	mem := memory.NewGoAllocator()
	b := array.NewRecordBuilder(mem, thresholdSchema)
	defer b.Release()

	cellB := b.Field(0).(*array.Uint64Builder)
	durB := b.Field(1).(*array.Float64Builder)
	originB := b.Field(2).(*array.Uint64Builder)

	for _, r := range rows {
		cellB.Append(r.Cell)
		durB.Append(r.DurationSecs)
		originB.Append(r.OriginCell)
	}

	return writeRecord(b.NewRecord(), thresholdSchema)
}

func writeRecord(rec arrow.Record, schema *arrow.Schema) ([]byte, error) {
	defer rec.Release()

	var buf bytes.Buffer
	w, err := ipc.NewFileWriter(&buf, ipc.WithSchema(schema), ipc.WithAllocator(memory.NewGoAllocator()))
	if err != nil {
		return nil, fmt.Errorf("arrowbatch: open writer: %w", err)
	}
	if err := w.Write(rec); err != nil {
		return nil, fmt.Errorf("arrowbatch: write record: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("arrowbatch: close writer: %w", err)
	}
	return buf.Bytes(), nil
}

// ChunkRowCount bounds how many rows each encoded chunk carries; the
// dispatcher splits a larger row slice into ceil(len(rows)/ChunkRowCount)
// calls to the Encode* functions above so no single gRPC message exceeds
// the configured target byte size (approximated by row count rather than a
// post-hoc byte measurement, since row width is fixed per schema).
const ChunkRowCount = 4096
