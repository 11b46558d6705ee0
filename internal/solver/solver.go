// Package solver implements the nine coordination algorithms named in
// spec §4: CBS, ECBS, iECBS, WHCA*, HCA*, PIBT, winPIBT, PPS, and TP. Every
// solver shares the same Instance/Paths contract so a problem driver can
// swap one for another without change (grounded on the teacher's
// internal/algo.Solver interface).
package solver

import (
	"math/rand"

	"github.com/mapf-sim/engine/internal/core"
	"go.uber.org/zap"
)

// Instance is one coordination problem: a graph plus one start and one goal
// per agent. MAPD/IMAPF drivers build and solve a fresh Instance every tick
// and advance agents by one step of the result (spec §4.3).
type Instance struct {
	Graph  *core.Graph
	Starts []core.VertexID
	Goals  []core.VertexID
}

// NumAgents returns len(Starts).
func (inst *Instance) NumAgents() int { return len(inst.Starts) }

// Solver plans one synchronized path per agent for an Instance.
//
// A false return means the instance is infeasible (or the solver gave up
// under its own bound/time limit) — never an error, per spec §7.2: running
// out of options is a normal algorithmic outcome, not a fault.
type Solver interface {
	Solve(inst *Instance) (core.Paths, bool)
	Name() string
}

// HighwayWeight reports the traversal weight of a directed edge, used by
// iECBS's highway heuristic (spec §4.6). mapio.Highway satisfies this
// without solver importing the mapio package.
type HighwayWeight interface {
	Weight(u, v core.VertexID) float64
}

// Constraint forbids one agent from being at V at Time (vertex constraint)
// or from traversing U->V during the tick starting at Time (edge
// constraint), per CBS's constraint-tree branching rule (spec §4.5).
type Constraint struct {
	Agent core.AgentID
	Time  int
	U, V  core.VertexID
	Edge  bool
}

// Conflict is a pair of agents occupying the same vertex at the same time,
// or swapping positions across one tick (spec §4.5).
type Conflict struct {
	Agent1, Agent2 core.AgentID
	Time           int
	V1, V2         core.VertexID
	Edge           bool
}

// FindFirstConflict scans paths for the earliest conflict, matching the
// reference CBS::invoke scan order (time-major, then agent-pair order).
func FindFirstConflict(paths core.Paths) (Conflict, bool) {
	n := core.MaxLen(paths)
	for t := 0; t < n; t++ {
		for i := 0; i < len(paths); i++ {
			for j := i + 1; j < len(paths); j++ {
				vi, vj := paths.At(i, t), paths.At(j, t)
				if vi == vj {
					return Conflict{Agent1: core.AgentID(i), Agent2: core.AgentID(j), Time: t, V1: vi, V2: vj}, true
				}
				if t > 0 {
					pi, pj := paths.At(i, t-1), paths.At(j, t-1)
					if pi == vj && pj == vi && vi != vj {
						return Conflict{Agent1: core.AgentID(i), Agent2: core.AgentID(j), Time: t, V1: vi, V2: vj, Edge: true}, true
					}
				}
			}
		}
	}
	return Conflict{}, false
}

// FindAllConflicts returns every conflict in paths, used by ECBS's
// collision-count tie-break (spec §4.6).
func FindAllConflicts(paths core.Paths) []Conflict {
	var out []Conflict
	n := core.MaxLen(paths)
	for t := 0; t < n; t++ {
		for i := 0; i < len(paths); i++ {
			for j := i + 1; j < len(paths); j++ {
				vi, vj := paths.At(i, t), paths.At(j, t)
				if vi == vj {
					out = append(out, Conflict{Agent1: core.AgentID(i), Agent2: core.AgentID(j), Time: t, V1: vi, V2: vj})
					continue
				}
				if t > 0 {
					pi, pj := paths.At(i, t-1), paths.At(j, t-1)
					if pi == vj && pj == vi && vi != vj {
						out = append(out, Conflict{Agent1: core.AgentID(i), Agent2: core.AgentID(j), Time: t, V1: vi, V2: vj, Edge: true})
					}
				}
			}
		}
	}
	return out
}

// countCollisions is a CAT-style tie-break helper: how many conflicts a
// single-agent path would add against the rest of the current solution.
// No solver in this package calls it; ECBS counts conflicts with
// FindAllConflicts.
func countCollisions(agent core.AgentID, path []core.VertexID, others core.Paths) int {
	count := 0
	n := len(path)
	for t := 0; t < n; t++ {
		for j, op := range others {
			if core.AgentID(j) == agent || op == nil {
				continue
			}
			if path[t] == others.At(j, t) {
				count++
			}
			if t > 0 && path[t] == others.At(j, t-1) && path[t-1] == others.At(j, t) {
				count++
			}
		}
	}
	return count
}

// newRand gives each solver its own generator, created once in the solver's
// constructor from the solver-side seed (spec §5: problem and solver randomness are kept
// independent so replaying a scenario with a different solver seed cannot
// perturb task generation).
func newRand(seed int64) *rand.Rand { return rand.New(rand.NewSource(seed)) }

// nopLogger is used by solver constructors that are built without an
// explicit logger (e.g. in unit tests).
func nopLogger() *zap.SugaredLogger { return zap.NewNop().Sugar() }
