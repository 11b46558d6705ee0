package problem

import (
	"testing"

	"github.com/mapf-sim/engine/internal/core"
	"github.com/mapf-sim/engine/internal/solver"
)

func createGrid(n int) *core.Graph {
	g := core.NewGraph(false)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			g.AddNode(&core.Node{ID: core.VertexID(y*n + x), Pos: core.Pos{X: x, Y: y}})
		}
	}
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			id := core.VertexID(y*n + x)
			if x+1 < n {
				g.AddEdge(id, core.VertexID(y*n+x+1))
			}
			if y+1 < n {
				g.AddEdge(id, core.VertexID((y+1)*n+x))
			}
		}
	}
	return g
}

func TestMAPFTicksUntilSolved(t *testing.T) {
	g := createGrid(3)
	agents := []*core.Agent{core.NewAgent(0, g, 0), core.NewAgent(1, g, 2)}
	goals := []core.VertexID{2, 0}
	sv := solver.NewCBS(nil)
	mf := NewMAPF(g, agents, goals, sv, 50, 1, nil)

	for i := 0; i < 50 && !mf.IsSolved(); i++ {
		if err := mf.Tick(); err != nil {
			t.Fatalf("Tick: %v", err)
		}
	}
	if !mf.IsSolved() {
		t.Fatalf("expected MAPF to converge within the timestep limit")
	}
	if mf.TimedOut() {
		t.Fatalf("should not have timed out while solving a 2-agent swap")
	}
}

func TestMAPFReportsInfeasibleInstance(t *testing.T) {
	g := core.NewGraph(false)
	g.AddNode(&core.Node{ID: 0, Pos: core.Pos{X: 0, Y: 0}})
	g.AddNode(&core.Node{ID: 1, Pos: core.Pos{X: 5, Y: 5}}) // disconnected
	agents := []*core.Agent{core.NewAgent(0, g, 0)}
	goals := []core.VertexID{1}
	sv := solver.NewCBS(nil)
	mf := NewMAPF(g, agents, goals, sv, 10, 1, nil)

	if err := mf.Tick(); err == nil {
		t.Fatalf("expected an error for an unreachable goal")
	}
}
