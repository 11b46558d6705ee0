package core

import "testing"

func TestTaskAdvanceAndComplete(t *testing.T) {
	task := NewTask(0, []VertexID{5, 9}, 0)
	if task.Completed() {
		t.Fatalf("fresh task should not be complete")
	}
	next, ok := task.NextSubGoal()
	if !ok || next != 5 {
		t.Fatalf("expected first sub-goal 5, got %d ok=%v", next, ok)
	}

	task.Advance(1) // not at sub-goal yet, no-op
	if next, _ := task.NextSubGoal(); next != 5 {
		t.Fatalf("Advance at the wrong node should not progress")
	}

	task.Advance(5)
	next, ok = task.NextSubGoal()
	if !ok || next != 9 {
		t.Fatalf("expected second sub-goal 9 after reaching 5, got %d ok=%v", next, ok)
	}

	task.Advance(9)
	if !task.Completed() {
		t.Fatalf("expected task complete after reaching final sub-goal")
	}
	if task.FinalGoal() != 9 {
		t.Fatalf("expected FinalGoal 9, got %d", task.FinalGoal())
	}
}

func TestTaskSetEndTimeClosesTask(t *testing.T) {
	task := NewTask(1, []VertexID{2}, 0)
	if task.HasEndTime() {
		t.Fatalf("fresh task should have no end time")
	}
	task.SetEndTime(10)
	if !task.HasEndTime() || task.EndTime != 10 {
		t.Fatalf("expected end time 10 recorded")
	}
	if task.Open {
		t.Fatalf("expected task closed after SetEndTime")
	}
}
