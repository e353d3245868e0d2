package rpc

import (
	"context"

	"google.golang.org/grpc"

	"h3routeserv/internal/graph"
	"h3routeserv/internal/h3cell"
	"h3routeserv/internal/objectstore"
	"h3routeserv/pkg/config"
)

// memStore is a minimal in-memory objectstore.Store used only by this
// package's tests.
type memStore struct {
	data map[string][]byte
}

func newMemStore() *memStore { return &memStore{data: make(map[string][]byte)} }

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.data[key]
	if !ok {
		return nil, objectstore.ErrNotFound
	}
	return v, nil
}

func (m *memStore) Put(_ context.Context, key string, value []byte) error {
	m.data[key] = value
	return nil
}

func (m *memStore) List(_ context.Context, prefix string) ([]objectstore.ObjectInfo, error) {
	var out []objectstore.ObjectInfo
	for k, v := range m.data {
		if len(prefix) == 0 || (len(k) >= len(prefix) && k[:len(prefix)] == prefix) {
			out = append(out, objectstore.ObjectInfo{Key: k, Size: int64(len(v))})
		}
	}
	return out, nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *memStore) Close() error { return nil }

// testCfg returns a minimal valid configuration for constructing a Server.
func testCfg() *config.Config {
	return &config.Config{
		App:          config.AppConfig{Name: "h3routeserv-test", Version: "test"},
		BindTo:       "127.0.0.1:0",
		Graphs:       config.GraphsConfig{Prefix: "graphs/", CacheSize: 1 << 20},
		Outputs:      config.OutputsConfig{KeyPrefix: "results/"},
		Datasets:     map[string]config.DatasetConfig{},
		RoutingModes: map[string]config.RoutingModeConfig{},
	}
}

// newTestServer builds a Server wired against an in-memory object store.
func newTestServer(cfg *config.Config, store objectstore.Store) *Server {
	return New(cfg, store, nil, "test-commit")
}

// buildLineGraph builds a 4-node straight-line graph over real H3 grid
// neighbors (A-B-C-D, each hop cost 10, preference 1.0), mirroring the
// fixture internal/routing/differential uses.
func buildLineGraph(resolution int) (g *graph.Graph, cells map[string]h3cell.Cell, err error) {
	center, err := h3cell.FromLatLng(37.7749, -122.4194, resolution)
	if err != nil {
		return nil, nil, err
	}
	ring1, err := h3cell.Ring(center, 1)
	if err != nil {
		return nil, nil, err
	}
	ring2, err := h3cell.Ring(center, 2)
	if err != nil {
		return nil, nil, err
	}

	cells = map[string]h3cell.Cell{
		"A": ring2[0],
		"B": ring1[0],
		"C": center,
		"D": ring1[1],
	}

	b := graph.NewBuilder("line", resolution)
	b.AddEdge(cells["A"], cells["B"], 10, 1.0)
	b.AddEdge(cells["B"], cells["C"], 10, 1.0)
	b.AddEdge(cells["C"], cells["D"], 10, 1.0)

	return b.Build(), cells, nil
}

// fakeStream is a minimal grpc.ServerStream double: it embeds the nil
// interface so only the methods a handler actually calls (Context, Send)
// need overriding.
type fakeStream[T any] struct {
	grpc.ServerStream
	ctx  context.Context
	sent []*T
}

func (s *fakeStream[T]) Context() context.Context { return s.ctx }

func (s *fakeStream[T]) Send(m *T) error {
	s.sent = append(s.sent, m)
	return nil
}
