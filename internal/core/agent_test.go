package core

import "testing"

func TestAgentSetNodeIllegalMovePanics(t *testing.T) {
	g := createGrid(3)
	a := NewAgent(0, g, 0)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected SetNode to panic on a non-adjacent move")
		}
	}()
	a.SetNode(8) // not a neighbor of 0
}

func TestAgentSetNodeAdvancesPrev(t *testing.T) {
	g := createGrid(3)
	a := NewAgent(0, g, 0)
	a.SetNode(1)
	if a.Node() != 1 || a.Prev() != 0 {
		t.Fatalf("expected node=1 prev=0, got node=%d prev=%d", a.Node(), a.Prev())
	}
}

func TestAgentGoalUpdatedFlagResetsOnHistory(t *testing.T) {
	g := createGrid(2)
	a := NewAgent(0, g, 0)
	a.SetGoal(3)
	if !a.IsUpdated() {
		t.Fatalf("expected IsUpdated true right after SetGoal")
	}
	a.UpdateHistory()
	if a.IsUpdated() {
		t.Fatalf("expected IsUpdated false after UpdateHistory")
	}
	if len(a.History()) != 1 {
		t.Fatalf("expected one history snapshot, got %d", len(a.History()))
	}
}

func TestAgentTaskLifecycle(t *testing.T) {
	g := createGrid(2)
	a := NewAgent(0, g, 0)
	if a.HasTask() {
		t.Fatalf("new agent should have no task")
	}
	a.SetTask(7)
	if !a.HasTask() || a.Task() != 7 {
		t.Fatalf("expected task 7 assigned")
	}
	a.ReleaseTask()
	if a.HasTask() {
		t.Fatalf("expected task released")
	}
}
