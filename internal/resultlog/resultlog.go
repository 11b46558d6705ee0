// Package resultlog renders a finished run into the bracketed-section text
// format named in spec §6: [setting], [solver], [problem], [graph], then one
// multi-line [task] block per task and one [agent] block per agent. Grounded on original_source's result
// log writer (no Go analogue in the teacher, so the section/field naming
// follows the C++ reference exactly).
package resultlog

import (
	"fmt"
	"io"
	"time"

	"github.com/mapf-sim/engine/internal/core"
	"github.com/mapf-sim/engine/internal/mapio"
)

// Report is everything one completed run needs to render a result log.
type Report struct {
	RunID         string
	Config        mapio.Config
	Graph         *core.Graph
	Agents        []*core.Agent
	Tasks         []*core.Task
	SolverName    string
	Timestep      int
	Solved        bool
	Elapsed       time.Duration
}

// Write renders r to w in the bracketed-section format.
func Write(w io.Writer, r Report) error {
	fmt.Fprintf(w, "[setting]\n")
	fmt.Fprintf(w, "run_id=%s\n", r.RunID)
	fmt.Fprintf(w, "seed=%d\n", r.Config.Seed)
	fmt.Fprintf(w, "timesteplimit=%d\n", r.Config.TimestepLimit)
	fmt.Fprintf(w, "\n")

	fmt.Fprintf(w, "[solver]\n")
	fmt.Fprintf(w, "name=%s\n", r.SolverName)
	fmt.Fprintf(w, "elapsed_ms=%d\n", r.Elapsed.Milliseconds())
	fmt.Fprintf(w, "\n")

	fmt.Fprintf(w, "[problem]\n")
	fmt.Fprintf(w, "type=%s\n", r.Config.ProblemType)
	fmt.Fprintf(w, "solved=%v\n", r.Solved)
	fmt.Fprintf(w, "timestep=%d\n", r.Timestep)
	fmt.Fprintf(w, "agentnum=%d\n", len(r.Agents))
	fmt.Fprintf(w, "\n")

	fmt.Fprintf(w, "[graph]\n")
	fmt.Fprintf(w, "nodes=%d\n", r.Graph.NumNodes())
	fmt.Fprintf(w, "pickups=%d\n", len(r.Graph.Pickups()))
	fmt.Fprintf(w, "deliveries=%d\n", len(r.Graph.Deliveries()))
	fmt.Fprintf(w, "endpoints=%d\n", len(r.Graph.Endpoints()))
	fmt.Fprintf(w, "stations=%d\n", r.Graph.NumStations())
	fmt.Fprintf(w, "\n")

	for _, t := range r.Tasks {
		fmt.Fprintf(w, "[task]\nid=%d\nstart_time=%d\n", t.ID, t.StartTime)
		if t.HasEndTime() {
			fmt.Fprintf(w, "end_time=%d\n", t.EndTime)
		}
		fmt.Fprintf(w, "\n")
	}

	for _, a := range r.Agents {
		fmt.Fprintf(w, "[agent]\nid=%d\nnode=%d\nhistory=", a.ID, a.Node())
		for i, snap := range a.History() {
			if i > 0 {
				fmt.Fprintf(w, ",")
			}
			fmt.Fprintf(w, "%d", snap.V)
		}
		fmt.Fprintf(w, "\n\n")
	}
	return nil
}
