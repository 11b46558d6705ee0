package solver

import (
	"testing"

	"github.com/mapf-sim/engine/internal/core"
)

// TestPPSPushesBlockerOutOfTheWay: agent 1 sits on agent 0's only shortest
// route and has a goal of its own elsewhere. Agents nearer their goal act
// first, so agent 1 steps off toward its goal and agent 0 follows into the
// freed cell; the blocker clears out permanently rather than needing to
// swap back. The evacuation branch (findEvacuation) is not reached here.
func TestPPSPushesBlockerOutOfTheWay(t *testing.T) {
	g := createGrid(3)
	inst := &Instance{
		Graph:  g,
		Starts: []core.VertexID{0, 1},
		Goals:  []core.VertexID{2, 4},
	}
	s := NewPPS(nil, 3)
	paths, ok := s.Solve(inst)
	if !ok {
		t.Fatalf("expected PPS to route agent 0 past agent 1")
	}
	for i, path := range paths {
		if path[len(path)-1] != inst.Goals[i] {
			t.Fatalf("agent %d did not reach its goal: %v", i, path)
		}
	}
}

func TestPPSSingleAgentAlreadyAtGoalHolds(t *testing.T) {
	g := createGrid(3)
	inst := &Instance{
		Graph:  g,
		Starts: []core.VertexID{4},
		Goals:  []core.VertexID{4},
	}
	s := NewPPS(nil, 5)
	paths, ok := s.Solve(inst)
	if !ok {
		t.Fatalf("expected PPS to find a trivial solution")
	}
	if paths[0][0] != 4 || paths[0][len(paths[0])-1] != 4 {
		t.Fatalf("agent already at goal should stay there: %v", paths[0])
	}
}
