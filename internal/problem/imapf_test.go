package problem

import (
	"testing"

	"github.com/mapf-sim/engine/internal/core"
	"github.com/mapf-sim/engine/internal/solver"
)

func TestIMAPFCompletesGoalsAndReassigns(t *testing.T) {
	g := createGrid(3)
	agents := []*core.Agent{core.NewAgent(0, g, 0)}
	sv := solver.NewWHCA(nil, 10)
	im := NewIMAPF(g, agents, sv, false, false, 0, 3, 200, 1, nil)

	for i := 0; i < 200 && !im.IsSolved(); i++ {
		if err := im.Tick(); err != nil {
			t.Fatalf("Tick: %v", err)
		}
	}
	if !im.IsSolved() {
		t.Fatalf("expected IMAPF to reach its task limit within the timestep budget")
	}
	if im.Completions()[0] < 3 {
		t.Fatalf("expected at least 3 completions, got %d", im.Completions()[0])
	}
}

func TestIMAPFFairRequiresEveryAgentToMeetMinimum(t *testing.T) {
	g := createGrid(3)
	agents := []*core.Agent{core.NewAgent(0, g, 0), core.NewAgent(1, g, 8)}
	sv := solver.NewWHCA(nil, 10)
	im := NewIMAPF(g, agents, sv, false, true, 2, 0, 300, 2, nil)

	for i := 0; i < 300 && !im.IsSolved(); i++ {
		if err := im.Tick(); err != nil {
			t.Fatalf("Tick: %v", err)
		}
	}
	if !im.IsSolved() {
		t.Fatalf("expected fair IMAPF to converge once every agent hits the minimum")
	}
	for i, c := range im.Completions() {
		if c < 2 {
			t.Fatalf("agent %d completed only %d goals, below the fairness minimum", i, c)
		}
	}
}

func TestIMAPFStationOnlyRestrictsGoalsToStations(t *testing.T) {
	g := createGrid(3)
	g.SetStation(8, 1)
	agents := []*core.Agent{core.NewAgent(0, g, 0)}
	sv := solver.NewWHCA(nil, 10)
	im := NewIMAPF(g, agents, sv, true, false, 0, 2, 200, 3, nil)

	for i := 0; i < 200 && !im.IsSolved(); i++ {
		if err := im.Tick(); err != nil {
			t.Fatalf("Tick: %v", err)
		}
	}
	if !im.IsSolved() {
		t.Fatalf("expected station-restricted IMAPF to converge")
	}
}
