package solver

import (
	"container/heap"

	"github.com/mapf-sim/engine/internal/core"
	"go.uber.org/zap"
)

// ctNode is one node of CBS's constraint tree: a full path assignment plus
// the constraints that produced it (spec §4.5).
type ctNode struct {
	constraints []Constraint
	paths       core.Paths
	cost        int
}

type ctHeap []*ctNode

func (h ctHeap) Len() int            { return len(h) }
func (h ctHeap) Less(i, j int) bool  { return h[i].cost < h[j].cost }
func (h ctHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *ctHeap) Push(x interface{}) { *h = append(*h, x.(*ctNode)) }
func (h *ctHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// CBS is the optimal Conflict-Based Search solver (spec §4.5): a high-level
// best-first search over a constraint tree, each node resolved at the low
// level by SpaceTimeAStar.
type CBS struct {
	Log *zap.SugaredLogger

	// UseID enables the Independent Detection wrapper: agents are first
	// planned in singleton groups, and only groups whose plans actually
	// conflict are merged and replanned jointly (supplemented from
	// original_source/solver/cbs.cpp's ID class).
	UseID bool

	// MaxExpansions bounds high-level node expansions; 0 means unbounded.
	MaxExpansions int
}

// NewCBS builds a CBS solver; a nil logger is replaced with a no-op one.
func NewCBS(log *zap.SugaredLogger) *CBS {
	if log == nil {
		log = nopLogger()
	}
	return &CBS{Log: log}
}

func (c *CBS) Name() string {
	if c.UseID {
		return "CBS+ID"
	}
	return "CBS"
}

func (c *CBS) Solve(inst *Instance) (core.Paths, bool) {
	if c.UseID {
		return c.solveID(inst)
	}
	return c.solveGroup(inst)
}

// solveID implements the Independent Detection wrapper: start every agent
// in its own group, merge any two groups whose committed plans collide,
// and repeat until the merged solution is conflict-free.
func (c *CBS) solveID(inst *Instance) (core.Paths, bool) {
	n := inst.NumAgents()
	groups := make([][]int, n)
	for i := range groups {
		groups[i] = []int{i}
	}
	solved := make(map[int]core.Paths, n)

	for gi, members := range groups {
		sub := subInstance(inst, members)
		p, ok := c.solveGroup(sub)
		if !ok {
			return nil, false
		}
		solved[gi] = p
	}

	for {
		full := assembleFull(n, groups, solved)
		conflict, found := FindFirstConflict(full)
		if !found {
			return full, true
		}
		gi1 := groupIndexOf(groups, int(conflict.Agent1))
		gi2 := groupIndexOf(groups, int(conflict.Agent2))
		if gi1 == gi2 || gi1 < 0 || gi2 < 0 {
			return nil, false
		}
		merged := append(append([]int{}, groups[gi1]...), groups[gi2]...)
		sub := subInstance(inst, merged)
		p, ok := c.solveGroup(sub)
		if !ok {
			return nil, false
		}
		groups[gi1] = merged
		groups[gi2] = nil
		delete(solved, gi2)
		solved[gi1] = p
	}
}

// solveGroup runs plain CBS over every agent named in inst.
func (c *CBS) solveGroup(inst *Instance) (core.Paths, bool) {
	n := inst.NumAgents()
	horizon := inst.Graph.NumNodes()*2 + 10

	root := &ctNode{paths: make(core.Paths, n)}
	for i := 0; i < n; i++ {
		p, ok := SpaceTimeAStar(inst.Graph, core.AgentID(i), inst.Starts[i], inst.Goals[i], nil, horizon)
		if !ok {
			return nil, false
		}
		root.paths[i] = p
	}
	root.cost = sumCost(root.paths)

	open := &ctHeap{}
	heap.Init(open)
	heap.Push(open, root)

	expansions := 0
	for open.Len() > 0 {
		if c.MaxExpansions > 0 && expansions >= c.MaxExpansions {
			return nil, false
		}
		expansions++

		node := heap.Pop(open).(*ctNode)
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
			heap.Push(open, &ctNode{
				constraints: childConstraints,
				paths:       childPaths,
				cost:        sumCost(childPaths),
			})
		}
	}
	return nil, false
}

// branchConstraint derives the new constraint one branch of the conflict
// tree adds for agent ag, per the reference CBS::invoke split rule.
func branchConstraint(conflict Conflict, ag core.AgentID) Constraint {
	if !conflict.Edge {
		return Constraint{Agent: ag, Time: conflict.Time, V: conflict.V1}
	}
	if ag == conflict.Agent1 {
		return Constraint{Agent: ag, Time: conflict.Time - 1, U: conflict.V2, V: conflict.V1, Edge: true}
	}
	return Constraint{Agent: ag, Time: conflict.Time - 1, U: conflict.V1, V: conflict.V2, Edge: true}
}

func sumCost(paths core.Paths) int {
	total := 0
	for _, p := range paths {
		total += len(p)
	}
	return total
}

func subInstance(inst *Instance, members []int) *Instance {
	sub := &Instance{Graph: inst.Graph}
	for _, m := range members {
		sub.Starts = append(sub.Starts, inst.Starts[m])
		sub.Goals = append(sub.Goals, inst.Goals[m])
	}
	return sub
}

func assembleFull(n int, groups [][]int, solved map[int]core.Paths) core.Paths {
	full := make(core.Paths, n)
	for gi, members := range groups {
		if members == nil {
			continue
		}
		gp := solved[gi]
		for i, agentIdx := range members {
			full[agentIdx] = gp[i]
		}
	}
	return full
}

func groupIndexOf(groups [][]int, agent int) int {
	for gi, members := range groups {
		for _, m := range members {
			if m == agent {
				return gi
			}
		}
	}
	return -1
}
