package solver

import (
	"container/heap"

	"github.com/mapf-sim/engine/internal/core"
	"go.uber.org/zap"
)

// IECBS is ECBS with a highway-aware low-level search: among paths tied on
// hop count, it prefers ones that stay on marked preferred-flow edges
// (spec §4.6, "highway heuristic"). Highway may be nil, in which case it
// behaves exactly like ECBS.
type IECBS struct {
	Log           *zap.SugaredLogger
	Suboptimal    float64
	Highway       HighwayWeight
	MaxExpansions int
}

func NewIECBS(log *zap.SugaredLogger, w float64, hw HighwayWeight) *IECBS {
	if log == nil {
		log = nopLogger()
	}
	return &IECBS{Log: log, Suboptimal: w, Highway: hw}
}

func (s *IECBS) Name() string { return "iECBS" }

func (s *IECBS) Solve(inst *Instance) (core.Paths, bool) {
	n := inst.NumAgents()
	horizon := inst.Graph.NumNodes()*2 + 10
	w := s.Suboptimal
	if w < 1 {
		w = 1
	}

	lowLevel := func(agent core.AgentID, start, goal core.VertexID, cs []Constraint) ([]core.VertexID, bool) {
		if s.Highway == nil {
			return SpaceTimeAStar(inst.Graph, agent, start, goal, cs, horizon)
		}
		return highwayAStar(inst.Graph, agent, start, goal, cs, horizon, s.Highway)
	}

	root := &ctNode{paths: make(core.Paths, n)}
	for i := 0; i < n; i++ {
		p, ok := lowLevel(core.AgentID(i), inst.Starts[i], inst.Goals[i], nil)
		if !ok {
			return nil, false
		}
		root.paths[i] = p
	}
	root.cost = sumCost(root.paths)

	open := []*ctNode{root}
	expansions := 0
	for len(open) > 0 {
		if s.MaxExpansions > 0 && expansions >= s.MaxExpansions {
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
			newPath, ok := lowLevel(ag, inst.Starts[ag], inst.Goals[ag], childConstraints)
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

// hwNode is a time-expanded search node carrying a highway tie-break cost
// alongside the primary hop count, so equally-short paths are ranked by
// how much they stay on preferred-flow edges.
type hwNode struct {
	v       core.VertexID
	t       int
	g       int
	hwCost  float64
	f       int
	hwF     float64
	parent  *hwNode
	index   int
}

type hwHeap []*hwNode

func (h hwHeap) Len() int { return len(h) }
func (h hwHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	return h[i].hwF < h[j].hwF
}
func (h hwHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *hwHeap) Push(x interface{}) { n := x.(*hwNode); n.index = len(*h); *h = append(*h, n) }
func (h *hwHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// highwayAStar is SpaceTimeAStar's sibling: same admissible hop-count
// search, but breaks ties between equal-length paths in favor of lower
// cumulative highway weight.
func highwayAStar(g *core.Graph, agent core.AgentID, start, goal core.VertexID, constraints []Constraint, maxTime int, hw HighwayWeight) ([]core.VertexID, bool) {
	cs := buildConstraintSet(agent, constraints)
	if maxTime < cs.maxT+g.NumNodes() {
		maxTime = cs.maxT + g.NumNodes()
	}

	open := &hwHeap{}
	heap.Init(open)
	heap.Push(open, &hwNode{v: start, t: 0, g: 0, f: g.Dist(start, goal)})

	visited := map[[2]int]bool{}

	for open.Len() > 0 {
		cur := heap.Pop(open).(*hwNode)
		key := [2]int{int(cur.v), cur.t}
		if visited[key] {
			continue
		}
		visited[key] = true

		if cur.v == goal && !cs.goalBlockedAfter(cur.t, goal) {
			return reconstructHwPath(cur), true
		}
		if cur.t >= maxTime {
			continue
		}

		candidates := append([]core.VertexID{cur.v}, g.Neighbors(cur.v)...)
		for _, nb := range candidates {
			nt := cur.t + 1
			if cs.vertexForbidden(nt, nb) {
				continue
			}
			if nb != cur.v && (cs.edgeForbidden(cur.t, cur.v, nb) || cs.edgeForbidden(cur.t, nb, cur.v)) {
				continue
			}
			ng := cur.g + 1
			step := 1.0
			if nb != cur.v {
				step = hw.Weight(cur.v, nb)
			}
			nhw := cur.hwCost + step
			nk := [2]int{int(nb), nt}
			if visited[nk] {
				continue
			}
			heap.Push(open, &hwNode{
				v: nb, t: nt, g: ng, hwCost: nhw,
				f: ng + g.Dist(nb, goal), hwF: nhw,
				parent: cur,
			})
		}
	}
	return nil, false
}

func reconstructHwPath(n *hwNode) []core.VertexID {
	var rev []core.VertexID
	for cur := n; cur != nil; cur = cur.parent {
		rev = append(rev, cur.v)
	}
	out := make([]core.VertexID, len(rev))
	for i, v := range rev {
		out[len(rev)-1-i] = v
	}
	return out
}
