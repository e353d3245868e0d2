package arrowbatch

import (
	"bytes"
	"testing"

	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/ipc"
	"github.com/apache/arrow/go/v14/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeShortestPathRows_RoundTrips(t *testing.T) {
	data, err := EncodeShortestPathRows([]ShortestPathRow{
		{OriginCell: 1, DestCell: 2, DurationSecs: 15, LengthMeters: 500, PreferenceAvg: 0.9, Found: true},
		{OriginCell: 1, DestCell: 3, Found: false},
	})
	require.NoError(t, err)

	reader, err := ipc.NewFileReader(bytes.NewReader(data), ipc.WithAllocator(memory.NewGoAllocator()))
	require.NoError(t, err)
	defer reader.Close()

	require.Equal(t, 1, reader.NumRecords())
	rec, err := reader.Record(0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, rec.NumRows())

	found := rec.Column(5).(*array.Boolean)
	assert.True(t, found.Value(0))
	assert.False(t, found.Value(1))

	dur := rec.Column(2).(*array.Float64)
	assert.False(t, dur.IsNull(0))
	assert.True(t, dur.IsNull(1))
	assert.Equal(t, 15.0, dur.Value(0))
}

func TestEncodeDifferentialRows_NullsWhenUnreachable(t *testing.T) {
	data, err := EncodeDifferentialRows([]DifferentialRow{
		{
			OriginCell:           1,
			AvgDurationWithout:   15,
			NumReachedWithout:    1,
			PreferredDestWithout: 2,
			HasWithout:           true,
			NumReachedWith:       0,
			HasWith:              false,
		},
	})
	require.NoError(t, err)

	reader, err := ipc.NewFileReader(bytes.NewReader(data), ipc.WithAllocator(memory.NewGoAllocator()))
	require.NoError(t, err)
	defer reader.Close()

	rec, err := reader.Record(0)
	require.NoError(t, err)

	avgWith := rec.Column(5).(*array.Float64)
	assert.True(t, avgWith.IsNull(0))

	avgWithout := rec.Column(1).(*array.Float64)
	assert.False(t, avgWithout.IsNull(0))
	assert.Equal(t, 15.0, avgWithout.Value(0))
}

func TestEncodeThresholdRows(t *testing.T) {
	data, err := EncodeThresholdRows([]ThresholdRow{
		{Cell: 10, DurationSecs: 42.5, OriginCell: 1},
	})
	require.NoError(t, err)

	reader, err := ipc.NewFileReader(bytes.NewReader(data), ipc.WithAllocator(memory.NewGoAllocator()))
	require.NoError(t, err)
	defer reader.Close()

	rec, err := reader.Record(0)
	require.NoError(t, err)
	cellCol := rec.Column(0).(*array.Uint64)
	assert.EqualValues(t, 10, cellCol.Value(0))
}
