package solver

import (
	"testing"

	"github.com/mapf-sim/engine/internal/core"
)

type fakeHighway map[[2]core.VertexID]float64

func (f fakeHighway) Weight(u, v core.VertexID) float64 {
	if w, ok := f[[2]core.VertexID{u, v}]; ok {
		return w
	}
	return 1.0
}

func TestIECBSWithoutHighwayMatchesECBS(t *testing.T) {
	g := createGrid(3)
	inst := &Instance{
		Graph:  g,
		Starts: []core.VertexID{0, 2},
		Goals:  []core.VertexID{2, 0},
	}
	s := NewIECBS(nil, 1.0, nil)
	paths, ok := s.Solve(inst)
	if !ok {
		t.Fatalf("expected iECBS to find a solution")
	}
	if _, found := FindFirstConflict(paths); found {
		t.Fatalf("iECBS result should be conflict-free, got paths %v", paths)
	}
}

func TestIECBSPrefersHighwayOnTies(t *testing.T) {
	g := createGrid(3)
	hw := fakeHighway{
		{0, 1}: 0.1, {1, 2}: 0.1, {2, 5}: 0.1,
	}
	inst := &Instance{
		Graph:  g,
		Starts: []core.VertexID{0},
		Goals:  []core.VertexID{5},
	}
	s := NewIECBS(nil, 1.0, hw)
	paths, ok := s.Solve(inst)
	if !ok {
		t.Fatalf("expected iECBS to find a solution")
	}
	p := paths[0]
	if len(p) == 0 || p[len(p)-1] != 5 {
		t.Fatalf("expected path to reach goal 5, got %v", p)
	}
	want := []core.VertexID{0, 1, 2, 5}
	if len(p) != len(want) {
		t.Fatalf("expected the highway route %v, got %v", want, p)
	}
	for i := range want {
		if p[i] != want[i] {
			t.Fatalf("expected the highway route %v, got %v", want, p)
		}
	}
}
