package problem

import (
	"github.com/mapf-sim/engine/internal/core"
	"github.com/mapf-sim/engine/internal/solver"
	"go.uber.org/zap"
)

// IMAPF is the iterative re-goaling variant: whenever an agent reaches its
// current goal it is immediately handed a new random one, so the instance
// never naturally settles (spec §4.2, original_source's problem/imapf.h).
//
// StationOnly restricts goal draws to registered station nodes
// (IMAPF_STATION, supplemented from the station/.st overlay). Fair enables
// IMAPF_FAIR: the run isn't considered solved until every agent has
// completed at least FairMinimum goals each, preventing a solver from
// looking good by racking up completions for a favored subset of agents
// while starving the rest (supplemented from original_source; spec §9
// leaves the exact fairness rule open, resolved here as a per-agent floor).
type IMAPF struct {
	base

	Solver      solver.Solver
	StationOnly bool
	Fair        bool
	FairMinimum int
	TaskLimit   int // 0 = unbounded; run ends only via TimedOut

	goals             []core.VertexID
	completions       []int
	totalCompletions  int
}

func NewIMAPF(g *core.Graph, agents []*core.Agent, sv solver.Solver, stationOnly, fair bool, fairMinimum, taskLimit, timestepLimit int, seed int64, log *zap.SugaredLogger) *IMAPF {
	b := newBase(g, agents, timestepLimit, seed, log)
	goals := make([]core.VertexID, len(agents))
	for i, a := range agents {
		goals[i] = g.RandomNewGoal(a.Node(), stationOnly, b.rng)
		a.SetGoal(goals[i])
	}
	return &IMAPF{
		base:        b,
		Solver:      sv,
		StationOnly: stationOnly,
		Fair:        fair,
		FairMinimum: fairMinimum,
		TaskLimit:   taskLimit,
		goals:       goals,
		completions: make([]int, len(agents)),
	}
}

func (im *IMAPF) Tick() error {
	inst := &solver.Instance{Graph: im.graph, Starts: make([]core.VertexID, len(im.agents)), Goals: im.goals}
	for i, a := range im.agents {
		inst.Starts[i] = a.Node()
	}
	paths, ok := im.Solver.Solve(inst)
	if !ok {
		return errInfeasible(im.Solver.Name(), im.timestep)
	}
	advanceAgents(im.agents, paths, 0)
	im.timestep++

	for i, a := range im.agents {
		if a.Node() != im.goals[i] {
			continue
		}
		im.completions[i]++
		im.totalCompletions++
		if im.TaskLimit <= 0 || im.totalCompletions < im.TaskLimit {
			newGoal := im.graph.RandomNewGoal(a.Node(), im.StationOnly, im.rng)
			im.goals[i] = newGoal
			a.SetGoal(newGoal)
		}
	}
	return nil
}

func (im *IMAPF) IsSolved() bool {
	if im.Fair {
		for _, c := range im.completions {
			if c < im.FairMinimum {
				return false
			}
		}
		return true
	}
	if im.TaskLimit > 0 {
		return im.totalCompletions >= im.TaskLimit
	}
	return false
}

// Completions returns each agent's goal-completion count so far.
func (im *IMAPF) Completions() []int { return append([]int(nil), im.completions...) }
