// Package routing holds the result types shared by the shortest-path,
// differential, and threshold routing engines (spec.md §3).
package routing

import "h3routeserv/internal/h3cell"

// RouteResult is a single found path between an origin and a destination.
type RouteResult struct {
	Origin        h3cell.Cell
	Destination   h3cell.Cell
	DurationSecs  float64
	PreferenceAvg float64 // average edge preference over edges traversed
	LengthMeters  float64
	Path          []h3cell.Cell // ordered sequence of cells crossed
}

// DifferentialResult aggregates the baseline and disturbed routing outcome
// for one origin cell (spec.md §4.3 step 6).
type DifferentialResult struct {
	Origin h3cell.Cell

	AvgDurationWithout   float64
	NumReachedWithout    int
	PreferredDestWithout h3cell.Cell
	AvgPreferenceWithout float64
	HasWithout           bool

	AvgDurationWith   float64
	NumReachedWith    int
	PreferredDestWith h3cell.Cell
	AvgPreferenceWith float64
	HasWith           bool

	// RoutesWithout/RoutesWith retain the per-destination routes for this
	// origin so they can be persisted and later re-streamed by
	// GetDifferentialShortestPathRoutes.
	RoutesWithout []RouteResult
	RoutesWith    []RouteResult
}

// ThresholdResult is a single cell reachable within a duration threshold.
type ThresholdResult struct {
	Cell         h3cell.Cell
	DurationSecs float64
	Origin       h3cell.Cell // argmin origin that achieved DurationSecs
}
