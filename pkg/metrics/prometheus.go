package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the process-wide metrics container.
type Metrics struct {
	// gRPC metrics
	GRPCRequestsTotal    *prometheus.CounterVec
	GRPCRequestDuration  *prometheus.HistogramVec
	GRPCRequestsInFlight prometheus.Gauge

	// Routing metrics
	ShortestPathTotal    *prometheus.CounterVec
	ShortestPathDuration *prometheus.HistogramVec
	PathsFound           *prometheus.HistogramVec
	DifferentialRunTotal *prometheus.CounterVec
	DifferentialDuration *prometheus.HistogramVec

	// Graph / dataset metrics
	GraphNodesTotal  *prometheus.HistogramVec
	GraphEdgesTotal  *prometheus.HistogramVec
	GraphLoadTotal   *prometheus.CounterVec
	GraphCacheHits   *prometheus.CounterVec
	GraphCacheMisses *prometheus.CounterVec

	// Object store metrics
	ObjectStoreOpsTotal    *prometheus.CounterVec
	ObjectStoreOpsDuration *prometheus.HistogramVec

	// System metrics
	MemoryUsage *prometheus.GaugeVec
	Goroutines  prometheus.Gauge

	// Service info
	ServiceInfo *prometheus.GaugeVec
}

var defaultMetrics *Metrics

// InitMetrics creates and registers the metric set under the given
// namespace/subsystem.
func InitMetrics(namespace, subsystem string) *Metrics {
	m := &Metrics{
		GRPCRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "grpc_requests_total",
				Help:      "Total number of gRPC requests",
			},
			[]string{"method", "status"},
		),

		GRPCRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "grpc_request_duration_seconds",
				Help:      "Duration of gRPC requests",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method"},
		),

		GRPCRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "grpc_requests_in_flight",
				Help:      "Current number of gRPC requests being processed",
			},
		),

		ShortestPathTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "shortest_path_operations_total",
				Help:      "Total number of shortest-path operations",
			},
			[]string{"mode", "status"},
		),

		ShortestPathDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "shortest_path_duration_seconds",
				Help:      "Duration of shortest-path operations",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"mode"},
		),

		PathsFound: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "paths_found",
				Help:      "Number of reachable destinations per many-to-many request",
				Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 500},
			},
			[]string{"mode"},
		),

		DifferentialRunTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "differential_runs_total",
				Help:      "Total number of differential routing analyses",
			},
			[]string{"status"},
		),

		DifferentialDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "differential_duration_seconds",
				Help:      "Duration of differential routing analyses",
				Buckets:   []float64{.05, .1, .5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"downsampled"},
		),

		GraphNodesTotal: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "graph_nodes_total",
				Help:      "Number of nodes in loaded graphs",
				Buckets:   []float64{10, 50, 100, 500, 1000, 5000, 10000, 50000, 500000},
			},
			[]string{"dataset"},
		),

		GraphEdgesTotal: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "graph_edges_total",
				Help:      "Number of edges in loaded graphs",
				Buckets:   []float64{20, 100, 500, 1000, 5000, 10000, 50000, 100000, 1000000},
			},
			[]string{"dataset"},
		),

		GraphLoadTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "graph_loads_total",
				Help:      "Total number of graph build/load operations",
			},
			[]string{"dataset", "status"},
		),

		GraphCacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "graph_cache_hits_total",
				Help:      "Graph cache hits",
			},
			[]string{"dataset"},
		),

		GraphCacheMisses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "graph_cache_misses_total",
				Help:      "Graph cache misses",
			},
			[]string{"dataset"},
		),

		ObjectStoreOpsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "objectstore_operations_total",
				Help:      "Total number of object store operations",
			},
			[]string{"op", "status"},
		),

		ObjectStoreOpsDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "objectstore_operation_duration_seconds",
				Help:      "Duration of object store operations",
				Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
			},
			[]string{"op"},
		),

		MemoryUsage: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "memory_usage_bytes",
				Help:      "Current memory usage",
			},
			[]string{"type"},
		),

		Goroutines: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "goroutines",
				Help:      "Current number of goroutines",
			},
		),

		ServiceInfo: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "service_info",
				Help:      "Service information",
			},
			[]string{"version", "environment"},
		),
	}

	defaultMetrics = m
	return m
}

// Get returns the process-wide metrics, initializing a default set under
// the "h3routeserv" namespace if InitMetrics has not yet been called.
func Get() *Metrics {
	if defaultMetrics == nil {
		return InitMetrics("h3routeserv", "")
	}
	return defaultMetrics
}

// RecordGRPCRequest records one completed gRPC call.
func (m *Metrics) RecordGRPCRequest(method string, status string, duration time.Duration) {
	m.GRPCRequestsTotal.WithLabelValues(method, status).Inc()
	m.GRPCRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordShortestPath records one many-to-many shortest-path operation.
func (m *Metrics) RecordShortestPath(mode string, success bool, duration time.Duration, pathsFound int) {
	status := "success"
	if !success {
		status = "error"
	}

	m.ShortestPathTotal.WithLabelValues(mode, status).Inc()
	m.ShortestPathDuration.WithLabelValues(mode).Observe(duration.Seconds())
	m.PathsFound.WithLabelValues(mode).Observe(float64(pathsFound))
}

// RecordDifferential records one differential routing analysis.
func (m *Metrics) RecordDifferential(success, downsampled bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	m.DifferentialRunTotal.WithLabelValues(status).Inc()
	m.DifferentialDuration.WithLabelValues(strconv.FormatBool(downsampled)).Observe(duration.Seconds())
}

// RecordGraphSize records the node/edge count of a loaded graph.
func (m *Metrics) RecordGraphSize(dataset string, nodes, edges int) {
	m.GraphNodesTotal.WithLabelValues(dataset).Observe(float64(nodes))
	m.GraphEdgesTotal.WithLabelValues(dataset).Observe(float64(edges))
}

// RecordGraphLoad records a graph build/load attempt.
func (m *Metrics) RecordGraphLoad(dataset string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.GraphLoadTotal.WithLabelValues(dataset, status).Inc()
}

// RecordCacheHit records a graph cache hit for a dataset.
func (m *Metrics) RecordCacheHit(dataset string) {
	m.GraphCacheHits.WithLabelValues(dataset).Inc()
}

// RecordCacheMiss records a graph cache miss for a dataset.
func (m *Metrics) RecordCacheMiss(dataset string) {
	m.GraphCacheMisses.WithLabelValues(dataset).Inc()
}

// RecordObjectStoreOp records one object store operation.
func (m *Metrics) RecordObjectStoreOp(op string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	m.ObjectStoreOpsTotal.WithLabelValues(op, status).Inc()
	m.ObjectStoreOpsDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// SetServiceInfo publishes version/environment as a constant gauge.
func (m *Metrics) SetServiceInfo(version, environment string) {
	m.ServiceInfo.WithLabelValues(version, environment).Set(1)
}

// Handler returns the HTTP handler serving /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// StartMetricsServer runs a blocking HTTP server exposing /metrics and
// /health on the given port.
func StartMetricsServer(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK")) //nolint:errcheck // health endpoint, write failure is not actionable
	})

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return server.ListenAndServe()
}
