package problem

import (
	"github.com/mapf-sim/engine/internal/core"
	"github.com/mapf-sim/engine/internal/solver"
	"go.uber.org/zap"
)

// MAPF is the static one-shot variant: every agent has a single fixed goal
// for the lifetime of the run, and the whole instance is solved once up
// front (spec §4.2).
type MAPF struct {
	base

	Solver solver.Solver
	goals  []core.VertexID
	paths  core.Paths
	solved bool
}

// NewMAPF builds a static MAPF driver. len(goals) must equal len(agents).
func NewMAPF(g *core.Graph, agents []*core.Agent, goals []core.VertexID, sv solver.Solver, timestepLimit int, seed int64, log *zap.SugaredLogger) *MAPF {
	for i, a := range agents {
		a.SetGoal(goals[i])
	}
	return &MAPF{
		base:   newBase(g, agents, timestepLimit, seed, log),
		Solver: sv,
		goals:  goals,
	}
}

func (m *MAPF) plan() error {
	inst := &solver.Instance{Graph: m.graph, Starts: make([]core.VertexID, len(m.agents)), Goals: m.goals}
	for i, a := range m.agents {
		inst.Starts[i] = a.Node()
	}
	paths, ok := m.Solver.Solve(inst)
	if !ok {
		return errInfeasible(m.Solver.Name(), m.timestep)
	}
	m.paths = paths
	return nil
}

func (m *MAPF) Tick() error {
	if m.paths == nil {
		if err := m.plan(); err != nil {
			return err
		}
	}
	advanceAgents(m.agents, m.paths, m.timestep)
	m.timestep++
	return nil
}

func (m *MAPF) IsSolved() bool {
	for i, a := range m.agents {
		if a.Node() != m.goals[i] {
			return false
		}
	}
	return true
}
