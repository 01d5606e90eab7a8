// Package algo implements grid path planning and trajectory auditing for the AGV port.
package algo

import (
	"container/heap"

	"github.com/elektrokombinacija/agv-port/internal/core"
)

// searchNode lives in the search arena; parent is an arena index (-1 for the root).
type searchNode struct {
	cell   core.Cell
	parent int
	g      float64 // Cost so far
	h      float64 // Euclidean distance to goal
	f      float64 // g + h
}

// openEntry is a heap item. seq breaks f ties by insertion order.
type openEntry struct {
	f    float64
	seq  int
	node int
}

// openHeap implements heap.Interface.
type openHeap []openEntry

func (h openHeap) Len() int { return len(h) }
func (h openHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	return h[i].seq < h[j].seq
}
func (h openHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *openHeap) Push(x any)   { *h = append(*h, x.(openEntry)) }
func (h *openHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

// Stats summarizes one search call.
type Stats struct {
	Expanded int // Nodes moved to the closed set
	Pushed   int // Entries pushed onto the open heap
}

// Planner runs best-first searches over a grid snapshot.
type Planner struct {
	// OnExpand, if set, is called for every node moved to the closed set.
	OnExpand func(core.Cell)

	last Stats
}

// LastStats returns the statistics of the most recent Search.
func (p *Planner) LastStats() Stats {
	return p.last
}

// Search finds a least-cost 8-connected path from start to end.
// It returns (nil, false) when no route exists in the snapshot.
func Search(grid core.Grid, start, end core.Cell) (core.Path, bool) {
	var p Planner
	return p.Search(grid, start, end)
}

// Search finds a least-cost 8-connected path from start to end.
//
// The start cell is never checked for walkability, since it is normally held
// by the planning agent itself. Every other cell on the path must be free.
func (p *Planner) Search(grid core.Grid, start, end core.Cell) (core.Path, bool) {
	p.last = Stats{}

	arena := []searchNode{{cell: start, parent: -1, h: core.Dist(start, end)}}
	arena[0].f = arena[0].h

	open := &openHeap{}
	heap.Init(open)
	seq := 0
	heap.Push(open, openEntry{f: arena[0].f, seq: seq, node: 0})
	p.last.Pushed++

	// Best g among open entries per cell; lazy update, worse entries stay queued.
	openBest := map[core.Cell]float64{start: 0}
	closed := make(map[core.Cell]bool)

	for open.Len() > 0 {
		entry := heap.Pop(open).(openEntry)
		current := arena[entry.node]

		// Stale duplicate of a cell already expanded
		if closed[current.cell] {
			continue
		}
		closed[current.cell] = true
		delete(openBest, current.cell)
		p.last.Expanded++
		if p.OnExpand != nil {
			p.OnExpand(current.cell)
		}

		if current.cell == end {
			return reconstructPath(arena, entry.node), true
		}

		for _, move := range core.Moves {
			next := current.cell.Add(move)
			if !grid.InBounds(next) || grid.IsBlocked(next) {
				continue
			}
			if closed[next] {
				continue
			}

			g := current.g + core.Dist(current.cell, next)
			if best, ok := openBest[next]; ok && best <= g {
				continue
			}

			h := core.Dist(next, end)
			arena = append(arena, searchNode{
				cell:   next,
				parent: entry.node,
				g:      g,
				h:      h,
				f:      g + h,
			})
			openBest[next] = g
			seq++
			heap.Push(open, openEntry{f: g + h, seq: seq, node: len(arena) - 1})
			p.last.Pushed++
		}
	}

	return nil, false
}

func reconstructPath(arena []searchNode, idx int) core.Path {
	var path core.Path
	for i := idx; i >= 0; i = arena[i].parent {
		path = append(path, arena[i].cell)
	}
	for l, r := 0, len(path)-1; l < r; l, r = l+1, r-1 {
		path[l], path[r] = path[r], path[l]
	}
	return path
}

// PlanRoute chains searches through every target in order, starting at start.
// Junction cells are not repeated. It returns the index of the first
// unreachable target when planning fails.
func PlanRoute(grid core.Grid, start core.Cell, targets []core.Cell) (core.Path, int) {
	route := core.Path{start}
	current := start
	for i, target := range targets {
		snapshot := grid.Clone()
		snapshot.Clear(target)
		segment, ok := Search(snapshot, current, target)
		if !ok {
			return route, i
		}
		route = append(route, segment[1:]...)
		current = target
	}
	return route, -1
}
