package resultlog

import (
	"strings"
	"testing"
	"time"

	"github.com/mapf-sim/engine/internal/core"
	"github.com/mapf-sim/engine/internal/mapio"
)

func TestWriteRendersBracketedSections(t *testing.T) {
	g := core.NewGraph(false)
	g.AddNode(&core.Node{ID: 0, Pos: core.Pos{X: 0, Y: 0}})
	g.AddNode(&core.Node{ID: 1, Pos: core.Pos{X: 1, Y: 0}})
	g.AddEdge(0, 1)

	a := core.NewAgent(0, g, 0)
	a.SetNode(1)
	a.UpdateHistory()

	task := core.NewTask(1, []core.VertexID{1}, 0)
	task.SetEndTime(3)

	var buf strings.Builder
	r := Report{
		RunID:      "run-1",
		Config:     mapio.DefaultConfig(),
		Graph:      g,
		Agents:     []*core.Agent{a},
		Tasks:      []*core.Task{task},
		SolverName: "CBS",
		Timestep:   3,
		Solved:     true,
		Elapsed:    2 * time.Second,
	}
	if err := Write(&buf, r); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()

	for _, section := range []string{"[setting]", "[solver]", "[problem]", "[graph]", "[task]", "[agent]"} {
		if !strings.Contains(out, section) {
			t.Fatalf("expected output to contain section %s, got:\n%s", section, out)
		}
	}
	if !strings.Contains(out, "name=CBS") {
		t.Fatalf("expected solver name CBS in output")
	}
	if !strings.Contains(out, "solved=true") {
		t.Fatalf("expected solved=true in output")
	}
	if !strings.Contains(out, "end_time=3") {
		t.Fatalf("expected end_time=3 for the completed task")
	}
}
