package solver

import (
	"testing"

	"github.com/mapf-sim/engine/internal/core"
)

func TestCBSResolvesHeadOnConflict(t *testing.T) {
	g := createGrid(3)
	inst := &Instance{
		Graph:  g,
		Starts: []core.VertexID{0, 2},
		Goals:  []core.VertexID{2, 0},
	}
	c := NewCBS(nil)
	paths, ok := c.Solve(inst)
	if !ok {
		t.Fatalf("expected CBS to find a solution")
	}
	if _, found := FindFirstConflict(paths); found {
		t.Fatalf("CBS result should be conflict-free, got paths %v", paths)
	}
	for i, p := range paths {
		if p[len(p)-1] != inst.Goals[i] {
			t.Fatalf("agent %d did not reach its goal: %v", i, p)
		}
	}
}

func TestCBSWithIDSolvesIndependentAgents(t *testing.T) {
	g := createGrid(4)
	inst := &Instance{
		Graph:  g,
		Starts: []core.VertexID{0, 15},
		Goals:  []core.VertexID{3, 12},
	}
	c := NewCBS(nil)
	c.UseID = true
	paths, ok := c.Solve(inst)
	if !ok {
		t.Fatalf("expected CBS+ID to find a solution")
	}
	if _, found := FindFirstConflict(paths); found {
		t.Fatalf("CBS+ID result should be conflict-free, got paths %v", paths)
	}
}
