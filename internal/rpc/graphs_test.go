package rpc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	h3routingv1 "h3routeserv/gen/go/h3routing/v1"
	"h3routeserv/internal/graph/graphfile"
)

func TestParseGraphKey(t *testing.T) {
	name, resolution, ok := parseGraphKey("graphs/", "graphs/bayarea_r9.arrow.zst")
	require.True(t, ok)
	assert.Equal(t, "bayarea", name)
	assert.Equal(t, 9, resolution)
}

func TestParseGraphKey_RejectsWrongPrefix(t *testing.T) {
	_, _, ok := parseGraphKey("graphs/", "other/bayarea_r9.arrow")
	assert.False(t, ok)
}

func TestServer_ListGraphsAndLoadGraph_PrefersZstd(t *testing.T) {
	cfg := testCfg()
	store := newMemStore()
	s := newTestServer(cfg, store)

	g, _, err := buildLineGraph(9)
	require.NoError(t, err)
	g.Name = "bayarea"

	zstdBody, err := graphfile.Encode(g, graphfile.ExtZstd)
	require.NoError(t, err)
	require.NoError(t, store.Put(context.Background(), graphfile.Key(cfg.Graphs.Prefix, "bayarea", 9, graphfile.ExtZstd), zstdBody))

	// Also write a plain copy under a different name to confirm fetchGraph
	// falls back to it when no zstd copy exists.
	plainBody, err := graphfile.Encode(g, graphfile.ExtPlain)
	require.NoError(t, err)
	require.NoError(t, store.Put(context.Background(), graphfile.Key(cfg.Graphs.Prefix, "plainonly", 9, graphfile.ExtPlain), plainBody))

	listResp, err := s.ListGraphs(context.Background(), &h3routingv1.Empty{})
	require.NoError(t, err)
	require.Len(t, listResp.Graphs, 2)
	assert.False(t, listResp.Graphs[0].Loaded)

	handle, err := s.loadGraph(context.Background(), "bayarea", 9)
	require.NoError(t, err)
	defer handle.Release()
	assert.Equal(t, 4, handle.Value().NodeCount())

	plainHandle, err := s.loadGraph(context.Background(), "plainonly", 9)
	require.NoError(t, err)
	defer plainHandle.Release()
	assert.Equal(t, 4, plainHandle.Value().NodeCount())
}

func TestServer_LoadGraph_UnknownGraph(t *testing.T) {
	s := newTestServer(testCfg(), newMemStore())
	_, err := s.loadGraph(context.Background(), "missing", 9)
	assert.Error(t, err)
}
