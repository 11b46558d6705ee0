// Package problem implements the tick-driven instance generators named in
// spec §4.2-4.3: static MAPF, continuously-arriving MAPD, and goal-churning
// IMAPF (plus their station-restricted and fairness variants). Every
// driver advances exactly one simulated timestep per Tick call and hands
// the routing problem it produces to a solver.Solver (or, for MAPD's
// token-passing mode, directly to solver.TP).
package problem

import (
	"fmt"
	"math/rand"

	"github.com/mapf-sim/engine/internal/core"
	"go.uber.org/zap"
)

// Problem is the shared contract every driver satisfies (original_source's
// problem/problem.h base class, generalized to Go's error-return idiom).
type Problem interface {
	Tick() error
	IsSolved() bool
	TimedOut() bool
	Timestep() int
	Agents() []*core.Agent
}

// base holds the fields every driver needs: the graph, its agent roster,
// the simulated clock, and the problem's own seeded random source (spec
// §5 — the problem's own task/goal churn must never be perturbed by
// swapping in a different solver, so it never shares the solver's rng;
// solvers that need randomness seed their own).
type base struct {
	graph         *core.Graph
	agents        []*core.Agent
	timestep      int
	timestepLimit int
	log           *zap.SugaredLogger
	rng           *rand.Rand
}

func newBase(g *core.Graph, agents []*core.Agent, timestepLimit int, seed int64, log *zap.SugaredLogger) base {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return base{
		graph:         g,
		agents:        agents,
		timestepLimit: timestepLimit,
		log:           log,
		rng:           rand.New(rand.NewSource(seed)),
	}
}

func (b *base) Timestep() int        { return b.timestep }
func (b *base) TimedOut() bool       { return b.timestep >= b.timestepLimit }
func (b *base) Agents() []*core.Agent { return b.agents }

// advanceAgents moves every agent to paths[i]'s entry at the next tick and
// appends its history snapshot; an agent with a nil path stays put.
func advanceAgents(agents []*core.Agent, paths core.Paths, t int) {
	for i, a := range agents {
		if paths[i] == nil {
			a.UpdateHistory()
			continue
		}
		next := paths.At(i, t+1)
		if next != a.Node() {
			a.SetNode(next)
		}
		a.UpdateHistory()
	}
}

// errInfeasible is returned by a driver's Tick when its solver could not
// find any plan at all for the current instance — a config/workspace
// defect (e.g. a disconnected graph), not a normal algorithmic outcome, so
// it is surfaced as an error rather than swallowed (spec §7.2).
func errInfeasible(kind string, timestep int) error {
	return fmt.Errorf("problem: %s solve failed at timestep %d: no feasible plan", kind, timestep)
}
