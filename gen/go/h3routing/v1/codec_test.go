package h3routingv1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGobCodec_RoundTripsRequestMessage(t *testing.T) {
	c := gobCodec{}
	req := &H3ShortestPathRequest{
		GraphName:       "sf",
		GraphResolution: 9,
		Origins:         CellSelection{Cells: []uint64{1, 2, 3}},
		Destinations:    CellSelection{DatasetName: "population"},
		RoutingMode:     "fastest",
		MaxDestinations: 5,
	}

	data, err := c.Marshal(req)
	require.NoError(t, err)

	var out H3ShortestPathRequest
	require.NoError(t, c.Unmarshal(data, &out))
	assert.Equal(t, *req, out)
}

func TestGobCodec_RoundTripsStreamChunk(t *testing.T) {
	c := gobCodec{}
	chunk := &ArrowIPCChunk{Data: []byte{1, 2, 3}, PersistedId: "abc", Final: true}

	data, err := c.Marshal(chunk)
	require.NoError(t, err)

	var out ArrowIPCChunk
	require.NoError(t, c.Unmarshal(data, &out))
	assert.Equal(t, *chunk, out)
}

func TestGobCodec_Name(t *testing.T) {
	assert.Equal(t, "proto", gobCodec{}.Name())
}
