package solver

import (
	"testing"

	"github.com/mapf-sim/engine/internal/core"
)

func createGridWithEndpoints(n int, endpoints ...core.VertexID) *core.Graph {
	g := createGrid(n)
	for _, ep := range endpoints {
		g.MarkEndpoint(ep)
	}
	return g
}

func TestTPSelectTaskPicksNearest(t *testing.T) {
	g := createGrid(3)
	tp := NewTP(nil, g)

	near := core.NewTask(1, []core.VertexID{2, 8}, 0)
	far := core.NewTask(2, []core.VertexID{8, 2}, 0)
	open := []*core.Task{far, near}

	task, ok := tp.SelectTask(0, open, map[core.TaskID]bool{})
	if !ok {
		t.Fatalf("expected a selectable task")
	}
	if task.ID != near.ID {
		t.Fatalf("expected nearest task %d selected, got %d", near.ID, task.ID)
	}
}

func TestTPSelectTaskSkipsClaimed(t *testing.T) {
	g := createGrid(3)
	tp := NewTP(nil, g)

	near := core.NewTask(1, []core.VertexID{2, 8}, 0)
	open := []*core.Task{near}

	_, ok := tp.SelectTask(0, open, map[core.TaskID]bool{near.ID: true})
	if ok {
		t.Fatalf("expected no selectable task once the only one is claimed")
	}
}

func TestTPSelectEndpointExcludesOwnPositionAndDeliveries(t *testing.T) {
	g := createGridWithEndpoints(3, 0, 2, 8)
	tp := NewTP(nil, g)

	task := core.NewTask(1, []core.VertexID{4, 2}, 0)
	ep, ok := tp.SelectEndpoint(0, []*core.Task{task}, map[core.VertexID]bool{})
	if !ok {
		t.Fatalf("expected a selectable endpoint")
	}
	if ep == 0 {
		t.Fatalf("should not select the agent's own position as an endpoint")
	}
	if ep == 2 {
		t.Fatalf("should not select a vertex that is an open task's delivery target")
	}
}

func TestTPPlanBatchAvoidsParkedTail(t *testing.T) {
	g := createGrid(3)
	tp := NewTP(nil, g)

	reqs := []Request{{Agent: 0, Start: 0, Goal: 8}}
	otherTails := map[core.AgentID]core.VertexID{1: 4}

	paths := tp.PlanBatch(reqs, otherTails)
	path, ok := paths[0]
	if !ok {
		t.Fatalf("expected agent 0 to be routed")
	}
	for _, v := range path {
		if v == 4 {
			t.Fatalf("agent 0's path should avoid the parked tail at node 4: %v", path)
		}
	}
}
