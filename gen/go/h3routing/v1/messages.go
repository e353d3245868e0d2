// Package h3routingv1 holds the request/response message types and service
// registration for the H3 routing RPC surface (spec.md §6). These are
// hand-maintained plain Go structs rather than protoc output — see
// DESIGN.md's "Custom gRPC codec decision" for why.
package h3routingv1

// Empty is the request for parameterless unary calls.
type Empty struct{}

// VersionResponse answers the Version RPC.
type VersionResponse struct {
	Version     string
	BuildCommit string
	GoVersion   string
}

// GraphInfo describes one entry in the graph cache index.
type GraphInfo struct {
	Name       string
	Resolution int32
	Loaded     bool
}

// ListGraphsResponse answers the ListGraphs RPC.
type ListGraphsResponse struct {
	Graphs []GraphInfo
}

// DatasetInfo describes one configured dataset.
type DatasetInfo struct {
	Name              string
	FileResolution    int32
	DataResolution    int32
	H3IndexColumnName string
}

// ListDatasetsResponse answers the ListDatasets RPC.
type ListDatasetsResponse struct {
	Datasets []DatasetInfo
}

// CellSelection is the wire form of spec.md §3's CellSelection: a cell set
// optionally intersected with a named dataset's keys.
type CellSelection struct {
	Cells       []uint64
	DatasetName string
}

// H3ShortestPathRequest drives H3ShortestPath, H3ShortestPathRoutes,
// H3ShortestPathCells, and H3ShortestPathEdges — the schemas are identical
// across all four per spec.md §9's open-question note; only the method
// routing (and therefore the streamed response type) differs.
type H3ShortestPathRequest struct {
	GraphName          string
	GraphResolution    int32
	Origins            CellSelection
	Destinations       CellSelection
	RoutingMode        string
	MaxDestinations    int32
	NumGapCellsToGraph int32
	ChaikinIterations  int32 // spec.md §9: smoothing iteration count, exposed per request
}

// ArrowIPCChunk carries one self-describing Arrow IPC record-batch chunk.
// PersistedId and Final are set only on the terminal chunk of a persisting
// stream (spec.md §4.7 "Chunking"/"Persistence").
type ArrowIPCChunk struct {
	Data        []byte
	PersistedId string
	Final       bool
}

// RouteWKB is one route encoded as a WGS84 WKB line string.
type RouteWKB struct {
	Origin      uint64
	Destination uint64
	Wkb         []byte
}

// RouteH3Indexes is one route encoded as a cell sequence: the raw ordered
// path for H3ShortestPathCells, or consecutive (from, to) pairs per
// traversed edge for H3ShortestPathEdges.
type RouteH3Indexes struct {
	Origin      uint64
	Destination uint64
	Cells       []uint64
}

// DifferentialShortestPathRequest drives DifferentialShortestPath.
type DifferentialShortestPathRequest struct {
	GraphName             string
	GraphResolution       int32
	DisturbanceWKB        []byte
	BufferMeters          float64
	Destinations          CellSelection
	ReferenceDatasetName  string
	RoutingMode           string
	MaxDestinations       int32
	DownsampledPrerouting bool
	CoarseResolution      int32
	ChaikinIterations     int32
}

// IdRef names a persisted result by its generated identifier.
type IdRef struct {
	Id string
}

// DifferentialShortestPathRoutesRequest drives
// GetDifferentialShortestPathRoutes: the persisted result id plus the
// subset of origin cells whose route sets should be decoded.
type DifferentialShortestPathRoutesRequest struct {
	Id    string
	Cells []uint64
}

// DifferentialShortestPathRoutes carries one origin's retained baseline and
// disturbed route sets (spec.md §4.3 step 7 "per-origin route pairs").
type DifferentialShortestPathRoutes struct {
	Origin        uint64
	RoutesWithout []RouteWKB
	RoutesWith    []RouteWKB
}

// H3WithinThresholdRequest drives H3CellsWithinThreshold.
type H3WithinThresholdRequest struct {
	GraphName               string
	GraphResolution         int32
	Origins                 CellSelection
	RoutingMode             string
	TravelDurationSecsThreshold float64
}
