package solver

import (
	"testing"

	"github.com/mapf-sim/engine/internal/core"
)

func TestECBSSolvesWithinBound(t *testing.T) {
	g := createGrid(3)
	inst := &Instance{
		Graph:  g,
		Starts: []core.VertexID{0, 2},
		Goals:  []core.VertexID{2, 0},
	}
	e := NewECBS(nil, 1.5)
	paths, ok := e.Solve(inst)
	if !ok {
		t.Fatalf("expected ECBS to find a solution")
	}
	if _, found := FindFirstConflict(paths); found {
		t.Fatalf("ECBS result should be conflict-free, got paths %v", paths)
	}
}

func TestECBSDegeneratesToOptimalAtBoundOne(t *testing.T) {
	g := createGrid(3)
	inst := &Instance{
		Graph:  g,
		Starts: []core.VertexID{0, 2},
		Goals:  []core.VertexID{2, 0},
	}
	e := NewECBS(nil, 1.0)
	paths, ok := e.Solve(inst)
	if !ok {
		t.Fatalf("expected ECBS with w=1 to find a solution")
	}
	c := NewCBS(nil)
	optimal, ok := c.Solve(inst)
	if !ok {
		t.Fatalf("expected CBS to find a solution")
	}
	if sumCost(paths) != sumCost(optimal) {
		t.Fatalf("ECBS with w=1 should match CBS cost: got %d want %d", sumCost(paths), sumCost(optimal))
	}
}
