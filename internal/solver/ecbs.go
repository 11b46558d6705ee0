package solver

import (
	"github.com/mapf-sim/engine/internal/core"
	"go.uber.org/zap"
)

// ECBS is the bounded-suboptimal variant of CBS: the high-level search
// keeps a FOCAL set of constraint-tree nodes whose cost is within
// Suboptimal times the cheapest open node, and expands whichever FOCAL
// member has the fewest pairwise conflicts rather than strictly the
// cheapest one (spec §4.6).
type ECBS struct {
	Log           *zap.SugaredLogger
	Suboptimal    float64 // w >= 1; 1 degenerates to plain CBS
	MaxExpansions int
}

// NewECBS builds an ECBS solver with bound w.
func NewECBS(log *zap.SugaredLogger, w float64) *ECBS {
	if log == nil {
		log = nopLogger()
	}
	return &ECBS{Log: log, Suboptimal: w}
}

func (e *ECBS) Name() string { return "ECBS" }

func (e *ECBS) Solve(inst *Instance) (core.Paths, bool) {
	n := inst.NumAgents()
	horizon := inst.Graph.NumNodes()*2 + 10
	w := e.Suboptimal
	if w < 1 {
		w = 1
	}

	root := &ctNode{paths: make(core.Paths, n)}
	for i := 0; i < n; i++ {
		p, ok := SpaceTimeAStar(inst.Graph, core.AgentID(i), inst.Starts[i], inst.Goals[i], nil, horizon)
		if !ok {
			return nil, false
		}
		root.paths[i] = p
	}
	root.cost = sumCost(root.paths)

	open := []*ctNode{root}
	expansions := 0
	for len(open) > 0 {
		if e.MaxExpansions > 0 && expansions >= e.MaxExpansions {
			return nil, false
		}
		expansions++

		minCost := open[0].cost
		for _, nd := range open {
			if nd.cost < minCost {
				minCost = nd.cost
			}
		}
		bound := float64(minCost) * w

		best := -1
		bestConflicts := -1
		for i, nd := range open {
			if float64(nd.cost) > bound {
				continue
			}
			nc := len(FindAllConflicts(nd.paths))
			if bestConflicts == -1 || nc < bestConflicts {
				bestConflicts = nc
				best = i
			}
		}
		node := open[best]
		open = append(open[:best], open[best+1:]...)

		conflict, found := FindFirstConflict(node.paths)
		if !found {
			return node.paths, true
		}

		for _, ag := range [2]core.AgentID{conflict.Agent1, conflict.Agent2} {
			nc := branchConstraint(conflict, ag)
			childConstraints := append(append([]Constraint{}, node.constraints...), nc)
			newPath, ok := SpaceTimeAStar(inst.Graph, ag, inst.Starts[ag], inst.Goals[ag], childConstraints, horizon)
			if !ok {
				continue
			}
			childPaths := append(core.Paths{}, node.paths...)
			childPaths[ag] = newPath
			open = append(open, &ctNode{
				constraints: childConstraints,
				paths:       childPaths,
				cost:        sumCost(childPaths),
			})
		}
	}
	return nil, false
}
