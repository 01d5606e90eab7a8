package core

import (
	"math"
	"math/rand"
	"testing"
)

func TestAdjacent(t *testing.T) {
	tests := []struct {
		a, b Cell
		want bool
	}{
		{C(0, 0), C(0, 1), true},
		{C(0, 0), C(1, 1), true},
		{C(2, 2), C(1, 3), true},
		{C(0, 0), C(0, 0), false},
		{C(0, 0), C(0, 2), false},
		{C(0, 0), C(2, 1), false},
	}

	for _, tt := range tests {
		if got := Adjacent(tt.a, tt.b); got != tt.want {
			t.Errorf("Adjacent(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestCrossDot(t *testing.T) {
	right := C(0, 1)
	left := C(0, -1)
	down := C(1, 0)

	if right.Cross(left) != 0 || right.Dot(left) >= 0 {
		t.Errorf("right/left should be collinear and opposite")
	}
	if right.Cross(down) == 0 {
		t.Errorf("right/down should not be collinear")
	}
	if right.Dot(right) <= 0 {
		t.Errorf("right/right should point the same way")
	}
}

func TestPathLengthAndValid(t *testing.T) {
	p := Path{C(2, 5), C(1, 4), C(0, 3), C(0, 2), C(0, 1)}
	want := 2*math.Sqrt2 + 2
	if math.Abs(p.Length()-want) > 1e-9 {
		t.Errorf("Length() = %f, want %f", p.Length(), want)
	}
	if !p.Valid() {
		t.Errorf("expected valid path")
	}

	broken := Path{C(0, 0), C(0, 2)}
	if broken.Valid() {
		t.Errorf("expected jump to be invalid")
	}
	if (Path{}).Valid() {
		t.Errorf("empty path should not be valid")
	}
}

func TestPathSplice(t *testing.T) {
	p := Path{C(0, 0), C(0, 1), C(0, 2), C(0, 3)}
	got := p.Splice(1, Path{C(0, 1), C(1, 2), C(0, 3)})
	want := Path{C(0, 0), C(0, 1), C(1, 2), C(0, 3)}

	if len(got) != len(want) {
		t.Fatalf("Splice len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Splice[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if p[2] != C(0, 2) {
		t.Errorf("Splice must not modify the receiver")
	}
}

func TestParseGrid(t *testing.T) {
	g, err := ParseGrid([]string{
		"..#",
		"###",
		"...",
	})
	if err != nil {
		t.Fatalf("ParseGrid: %v", err)
	}
	if g.Rows != 3 || g.Cols != 3 {
		t.Fatalf("shape = %dx%d, want 3x3", g.Rows, g.Cols)
	}
	if !g.IsBlocked(C(0, 2)) || g.IsBlocked(C(0, 0)) {
		t.Errorf("unexpected cell states:\n%s", g)
	}
	if !g.IsBlocked(C(-1, 0)) || !g.IsBlocked(C(0, 3)) {
		t.Errorf("out-of-bounds cells must read as blocked")
	}
	if g.FreeCells() != 5 {
		t.Errorf("FreeCells() = %d, want 5", g.FreeCells())
	}

	if _, err := ParseGrid([]string{"..", "."}); err == nil {
		t.Errorf("expected ragged rows to fail")
	}
	if _, err := ParseGrid([]string{".x"}); err == nil {
		t.Errorf("expected unknown rune to fail")
	}
}

func TestGridCloneIsIndependent(t *testing.T) {
	g := NewGrid(2, 2)
	c := g.Clone()
	c.Block(C(1, 1))
	if g.IsBlocked(C(1, 1)) {
		t.Errorf("clone shares storage with original")
	}
}

func TestInitialCell(t *testing.T) {
	// 5x10 port with 5 agents: cols 1..5 on row 2.
	for i := 0; i < 5; i++ {
		got := InitialCell(5, 10, i, 5)
		want := C(2, i+1)
		if got != want {
			t.Errorf("InitialCell(%d) = %v, want %v", i, got, want)
		}
	}
}

func TestAssignTargetsDeterministic(t *testing.T) {
	starts := []Cell{C(2, 1), C(2, 2)}
	pool := []Cell{C(0, 1), C(0, 3), C(4, 2), C(4, 4)}

	a, err := AssignTargets(starts, pool, 4, 42)
	if err != nil {
		t.Fatalf("AssignTargets: %v", err)
	}
	b, _ := AssignTargets(starts, pool, 4, 42)

	for i := range a {
		if len(a[i]) != 3 {
			t.Fatalf("agent %d queue len = %d, want 3", i, len(a[i]))
		}
		if a[i][len(a[i])-1] != starts[i] {
			t.Errorf("agent %d queue must end at start", i)
		}
		if a[i][0] == a[i][1] {
			t.Errorf("agent %d sampled a duplicate target", i)
		}
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				t.Errorf("same seed gave different queues")
			}
		}
	}

	if _, err := SampleTargets(rand.New(rand.NewSource(1)), pool, 5); err == nil {
		t.Errorf("expected oversampling to fail")
	}
}

func TestScenarioValidate(t *testing.T) {
	s := NewScenario(3, 3)
	s.Terrain.Block(C(0, 0))
	s.Agents = []*Agent{NewAgent(1, C(1, 1), []Cell{C(2, 2)})}
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	s.Agents = append(s.Agents, NewAgent(2, C(1, 1), nil))
	if err := s.Validate(); err == nil {
		t.Errorf("expected shared start to fail")
	}

	s.Agents = []*Agent{NewAgent(1, C(1, 1), []Cell{C(0, 0)})}
	if err := s.Validate(); err == nil {
		t.Errorf("expected blocked target to fail")
	}

	s.Agents = []*Agent{{ID: 1, Start: C(1, 1), Speed: 0}}
	if err := s.Validate(); err == nil {
		t.Errorf("expected zero speed to fail")
	}
}

func TestBuildScenarioAgentParameters(t *testing.T) {
	base := Layout{
		Terrain: NewGrid(5, 10),
		Targets: []Cell{C(0, 1), C(4, 8)},
		Agents:  2,
		Tasks:   2,
		Seed:    1,
	}

	// Zero speed falls back to the default; zero load time is kept.
	s, err := BuildScenario(base)
	if err != nil {
		t.Fatalf("BuildScenario: %v", err)
	}
	for _, a := range s.Agents {
		if a.Speed != DefaultSpeed {
			t.Errorf("agent %d speed = %g, want %g", a.ID, a.Speed, DefaultSpeed)
		}
		if a.LoadDuration != 0 {
			t.Errorf("agent %d load = %g, want 0", a.ID, a.LoadDuration)
		}
	}

	custom := base
	custom.Speed = 2
	custom.LoadDuration = 1.5
	s, err = BuildScenario(custom)
	if err != nil {
		t.Fatalf("BuildScenario: %v", err)
	}
	for _, a := range s.Agents {
		if a.Speed != 2 || a.LoadDuration != 1.5 {
			t.Errorf("agent %d speed, load = %g, %g; want 2, 1.5", a.ID, a.Speed, a.LoadDuration)
		}
	}

	negative := base
	negative.LoadDuration = -1
	if _, err := BuildScenario(negative); err == nil {
		t.Error("expected negative load time to fail")
	}
}
