package solver

import (
	"testing"

	"github.com/mapf-sim/engine/internal/core"
)

func TestWHCAResolvesSwapConflict(t *testing.T) {
	g := createGrid(3)
	inst := &Instance{
		Graph:  g,
		Starts: []core.VertexID{0, 2},
		Goals:  []core.VertexID{2, 0},
	}
	w := NewWHCA(nil, 20)
	paths, ok := w.Solve(inst)
	if !ok {
		t.Fatalf("expected WHCA to find a solution")
	}
	if _, found := FindFirstConflict(paths); found {
		t.Fatalf("WHCA result should be conflict-free, got paths %v", paths)
	}
}

func TestHCAParksGoalPermanently(t *testing.T) {
	g := createGrid(3)
	// Agent 0 parks at node 1; agent 1 must route around it rather than
	// ever pass through node 1 after agent 0 arrives.
	inst := &Instance{
		Graph:  g,
		Starts: []core.VertexID{0, 4},
		Goals:  []core.VertexID{1, 2},
	}
	h := NewHCA(nil)
	if h.Name() != "HCA" {
		t.Fatalf("expected Name() HCA for an infinite window, got %s", h.Name())
	}
	paths, ok := h.Solve(inst)
	if !ok {
		t.Fatalf("expected HCA to find a solution")
	}
	parkTime := len(paths[0]) - 1
	for t2 := parkTime; t2 < len(paths[1]); t2++ {
		if paths[1][t2] == 1 {
			t.Fatalf("agent 1 occupied agent 0's parked goal at t=%d", t2)
		}
	}
}
