// Package shortestpath implements the many-to-many weighted shortest-path
// engine (spec.md §4.2): per-origin Dijkstra over effective costs with a
// binary-heap frontier, early termination, and deterministic tie-breaking.
package shortestpath

import (
	"container/heap"
	"context"

	"h3routeserv/internal/graph"
	"h3routeserv/internal/h3cell"
	"h3routeserv/internal/routing"
)

// frontierItem is one entry in the priority queue.
type frontierItem struct {
	node     h3cell.Cell
	cost     float64
	pred     h3cell.Cell // predecessor, used for tie-breaking on equal cost
	hasPred  bool
	index    int
}

// frontier implements heap.Interface as a min-heap on cost, with ties broken
// by the smaller predecessor cell identifier for deterministic results
// (mirrors the teacher dijkstra.go's node-ID tie-break, adapted to spec.md's
// "prefer the candidate whose predecessor cell identifier is smaller").
type frontier []*frontierItem

func (f frontier) Len() int { return len(f) }

func (f frontier) Less(i, j int) bool {
	if f[i].cost != f[j].cost {
		return f[i].cost < f[j].cost
	}
	if f[i].hasPred != f[j].hasPred {
		return f[j].hasPred // item without a predecessor (the source) sorts first
	}
	if f[i].pred != f[j].pred {
		return f[i].pred < f[j].pred
	}
	return f[i].node < f[j].node
}

func (f frontier) Swap(i, j int) {
	f[i], f[j] = f[j], f[i]
	f[i].index = i
	f[j].index = j
}

func (f *frontier) Push(x any) {
	item := x.(*frontierItem)
	item.index = len(*f)
	*f = append(*f, item)
}

func (f *frontier) Pop() any {
	old := *f
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*f = old[:n-1]
	return item
}

// singleOriginResult is the raw output of one origin's search before it is
// assembled into routing.RouteResult values.
type singleOriginResult struct {
	dist      map[h3cell.Cell]float64
	parent    map[h3cell.Cell]h3cell.Cell
	hasParent map[h3cell.Cell]bool
	reached   []h3cell.Cell // destinations popped, in pop order
}

// runDijkstra runs a single-source search from origin over g under mode,
// stopping early once destinations contains enough reached members
// (maxDestinations, 0 = unlimited) or the frontier's minimum cost exceeds
// costCeiling (0 = unlimited). destinations may be nil, in which case the
// search runs to exhaustion (used by the threshold engine).
func runDijkstra(
	ctx context.Context,
	g *graph.Graph,
	mode graph.RoutingMode,
	origin h3cell.Cell,
	destinations map[h3cell.Cell]bool,
	maxDestinations int,
	costCeiling float64,
) singleOriginResult {
	result := singleOriginResult{
		dist:      make(map[h3cell.Cell]float64),
		parent:    make(map[h3cell.Cell]h3cell.Cell),
		hasParent: make(map[h3cell.Cell]bool),
	}

	result.dist[origin] = 0

	pq := make(frontier, 0, g.NodeCount())
	heap.Init(&pq)
	heap.Push(&pq, &frontierItem{node: origin, cost: 0})

	const checkInterval = 100
	iterations := 0
	reachedCount := 0

	for pq.Len() > 0 {
		if iterations%checkInterval == 0 {
			select {
			case <-ctx.Done():
				return result
			default:
			}
		}
		iterations++

		current := heap.Pop(&pq).(*frontierItem)
		u := current.node

		if current.cost > costCeiling && costCeiling > 0 {
			break
		}

		if d, ok := result.dist[u]; ok && current.cost > d+graph.Epsilon {
			continue // stale entry
		}

		if destinations != nil && destinations[u] {
			result.reached = append(result.reached, u)
			reachedCount++
			if maxDestinations > 0 && reachedCount >= maxDestinations {
				break
			}
		}

		for _, edge := range g.Neighbors(u) {
			v := edge.To
			effective := mode.EffectiveCost(edge)
			newCost := current.cost + effective

			existing, ok := result.dist[v]
			if !ok || newCost < existing-graph.Epsilon {
				result.dist[v] = newCost
				result.parent[v] = u
				result.hasParent[v] = true
				heap.Push(&pq, &frontierItem{node: v, cost: newCost, pred: u, hasPred: true})
			}
		}
	}

	return result
}

// reconstructPath walks parent back-pointers from dest to origin.
func reconstructPath(origin, dest h3cell.Cell, parent map[h3cell.Cell]h3cell.Cell, hasParent map[h3cell.Cell]bool) []h3cell.Cell {
	if dest == origin {
		return []h3cell.Cell{origin}
	}
	var reversed []h3cell.Cell
	cur := dest
	for {
		reversed = append(reversed, cur)
		if cur == origin {
			break
		}
		next, ok := hasParent[cur]
		if !ok || !next {
			return nil // disconnected, should not happen if dest was reached
		}
		cur = parent[cur]
	}
	path := make([]h3cell.Cell, len(reversed))
	for i, c := range reversed {
		path[len(reversed)-1-i] = c
	}
	return path
}

// preferenceAvg computes the average edge preference over the edges
// traversed in path, per the "average over edges traversed" open-question
// decision (SPEC_FULL.md).
func preferenceAvg(g *graph.Graph, path []h3cell.Cell) float64 {
	if len(path) < 2 {
		return 0
	}
	total := 0.0
	count := 0
	for i := 0; i < len(path)-1; i++ {
		for _, e := range g.Neighbors(path[i]) {
			if e.To == path[i+1] {
				total += e.Preference
				count++
				break
			}
		}
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}
