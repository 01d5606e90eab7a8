package algo

import (
	"math"
	"math/rand"
	"testing"

	"github.com/elektrokombinacija/agv-port/internal/core"
)

// bruteForceDistance runs a plain O(V^2) Dijkstra over the free cells.
func bruteForceDistance(g core.Grid, start, end core.Cell) (float64, bool) {
	dist := map[core.Cell]float64{start: 0}
	done := map[core.Cell]bool{}

	for {
		best := core.Cell{}
		bestD := math.Inf(1)
		for c, d := range dist {
			if !done[c] && d < bestD {
				best, bestD = c, d
			}
		}
		if math.IsInf(bestD, 1) {
			return 0, false
		}
		if best == end {
			return bestD, true
		}
		done[best] = true
		for _, m := range core.Moves {
			n := best.Add(m)
			if g.IsBlocked(n) {
				continue
			}
			nd := bestD + core.Dist(best, n)
			if old, ok := dist[n]; !ok || nd < old {
				dist[n] = nd
			}
		}
	}
}

func randomGrid(rng *rand.Rand, rows, cols int, density float64) core.Grid {
	g := core.NewGrid(rows, cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if rng.Float64() < density {
				g.Block(core.C(r, c))
			}
		}
	}
	return g
}

func TestSearchEndToEndScenario(t *testing.T) {
	grid := core.NewGrid(5, 10)
	start, end := core.C(2, 5), core.C(0, 1)

	path, ok := Search(grid, start, end)
	if !ok {
		t.Fatal("Expected path, got NotFound")
	}
	if path[0] != start {
		t.Errorf("path starts at %v, want %v", path[0], start)
	}
	if path.Last() != end {
		t.Errorf("path ends at %v, want %v", path.Last(), end)
	}
	if !path.Valid() {
		t.Errorf("path has a non 8-connected step: %v", path)
	}

	want := 2*math.Sqrt2 + 2
	if math.Abs(path.Length()-want) > 1e-9 {
		t.Errorf("path length %.4f, want %.4f", path.Length(), want)
	}
}

func TestSearchStartIsGoal(t *testing.T) {
	path, ok := Search(core.NewGrid(3, 3), core.C(1, 1), core.C(1, 1))
	if !ok || len(path) != 1 || path[0] != core.C(1, 1) {
		t.Errorf("Search(start==end) = %v, %v; want [(1,1)], true", path, ok)
	}
}

func TestSearchNoPath(t *testing.T) {
	// Middle row fully blocked; diagonals through it are blocked too.
	grid, err := core.ParseGrid([]string{
		"...",
		"###",
		"...",
	})
	if err != nil {
		t.Fatal(err)
	}

	path, ok := Search(grid, core.C(0, 0), core.C(2, 2))
	if ok || path != nil {
		t.Errorf("Expected NotFound, got %v", path)
	}
}

func TestSearchBlockedGoal(t *testing.T) {
	grid := core.NewGrid(3, 3)
	grid.Block(core.C(2, 2))

	if _, ok := Search(grid, core.C(0, 0), core.C(2, 2)); ok {
		t.Error("Expected NotFound for a blocked goal")
	}
}

func TestSearchOptimalAgainstBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 200; trial++ {
		rows, cols := 3+rng.Intn(5), 3+rng.Intn(5)
		grid := randomGrid(rng, rows, cols, 0.3)
		start := core.C(rng.Intn(rows), rng.Intn(cols))
		end := core.C(rng.Intn(rows), rng.Intn(cols))
		grid.Clear(start)
		grid.Clear(end)

		wantD, wantOK := bruteForceDistance(grid, start, end)
		path, ok := Search(grid, start, end)

		if ok != wantOK {
			t.Fatalf("trial %d: found=%v, brute force found=%v\n%s", trial, ok, wantOK, grid)
		}
		if !ok {
			continue
		}
		if !path.Valid() || path[0] != start || path.Last() != end {
			t.Fatalf("trial %d: malformed path %v", trial, path)
		}
		for _, c := range path {
			if grid.IsBlocked(c) {
				t.Fatalf("trial %d: path crosses blocked cell %v", trial, c)
			}
		}
		if math.Abs(path.Length()-wantD) > 1e-9 {
			t.Fatalf("trial %d: length %.6f, optimal %.6f\n%s", trial, path.Length(), wantD, grid)
		}
	}
}

func TestSearchNeverExpandsTwice(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	for trial := 0; trial < 50; trial++ {
		grid := randomGrid(rng, 8, 8, 0.25)
		start, end := core.C(0, 0), core.C(7, 7)
		grid.Clear(start)
		grid.Clear(end)

		seen := make(map[core.Cell]bool)
		p := &Planner{OnExpand: func(c core.Cell) {
			if seen[c] {
				t.Fatalf("trial %d: cell %v expanded twice", trial, c)
			}
			seen[c] = true
		}}
		p.Search(grid, start, end)

		if p.LastStats().Expanded != len(seen) {
			t.Errorf("Stats.Expanded = %d, observed %d", p.LastStats().Expanded, len(seen))
		}
	}
}

func TestSearchTieBreakIsDeterministic(t *testing.T) {
	grid := core.NewGrid(6, 6)
	first, _ := Search(grid, core.C(0, 0), core.C(5, 3))
	for i := 0; i < 10; i++ {
		again, _ := Search(grid, core.C(0, 0), core.C(5, 3))
		if len(again) != len(first) {
			t.Fatalf("path length changed between runs")
		}
		for j := range first {
			if again[j] != first[j] {
				t.Fatalf("run %d differs at %d: %v vs %v", i, j, again[j], first[j])
			}
		}
	}
}

func TestPlanRoute(t *testing.T) {
	grid := core.NewGrid(5, 5)
	targets := []core.Cell{core.C(0, 4), core.C(4, 0), core.C(2, 2)}

	route, failed := PlanRoute(grid, core.C(0, 0), targets)
	if failed != -1 {
		t.Fatalf("PlanRoute failed at target %d", failed)
	}
	if !route.Valid() {
		t.Fatalf("route is not 8-connected: %v", route)
	}

	// Verify all targets are visited in order
	next := 0
	for _, c := range route {
		if next < len(targets) && c == targets[next] {
			next++
		}
	}
	if next != len(targets) {
		t.Errorf("visited %d of %d targets", next, len(targets))
	}

	walled, _ := core.ParseGrid([]string{
		".#.",
		"##.",
		"...",
	})
	if _, failed := PlanRoute(walled, core.C(2, 2), []core.Cell{core.C(0, 2), core.C(0, 0)}); failed != 1 {
		t.Errorf("PlanRoute failed index = %d, want 1", failed)
	}
}
