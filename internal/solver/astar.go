package solver

import (
	"container/heap"

	"github.com/mapf-sim/engine/internal/core"
)

// timeNode is one (vertex, time) expansion in the time-expanded search
// space CBS's low-level planner works over (spec §4.4).
type timeNode struct {
	v        core.VertexID
	t        int
	g        int
	f        int
	parent   *timeNode
	index    int
}

type timeHeap []*timeNode

func (h timeHeap) Len() int           { return len(h) }
func (h timeHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	return h[i].g > h[j].g // prefer deeper (closer to goal) on ties, matches reference tie-break
}
func (h timeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *timeHeap) Push(x interface{}) { n := x.(*timeNode); n.index = len(*h); *h = append(*h, n) }
func (h *timeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// constraintSet indexes one agent's constraints for O(1) lookup during
// search.
type constraintSet struct {
	vertex map[int]map[core.VertexID]bool
	edge   map[int]map[[2]core.VertexID]bool
	maxT   int
}

func buildConstraintSet(agent core.AgentID, cs []Constraint) *constraintSet {
	out := &constraintSet{
		vertex: make(map[int]map[core.VertexID]bool),
		edge:   make(map[int]map[[2]core.VertexID]bool),
	}
	for _, c := range cs {
		if c.Agent != agent {
			continue
		}
		if c.Time > out.maxT {
			out.maxT = c.Time
		}
		if c.Edge {
			if out.edge[c.Time] == nil {
				out.edge[c.Time] = make(map[[2]core.VertexID]bool)
			}
			out.edge[c.Time][[2]core.VertexID{c.U, c.V}] = true
			continue
		}
		if out.vertex[c.Time] == nil {
			out.vertex[c.Time] = make(map[core.VertexID]bool)
		}
		out.vertex[c.Time][c.V] = true
	}
	return out
}

func (cs *constraintSet) vertexForbidden(t int, v core.VertexID) bool {
	m := cs.vertex[t]
	return m != nil && m[v]
}

func (cs *constraintSet) edgeForbidden(t int, u, v core.VertexID) bool {
	m := cs.edge[t]
	return m != nil && m[[2]core.VertexID{u, v}]
}

// goalBlockedAfter reports whether any future vertex constraint pins the
// agent off its goal, which would make stopping there at arrival time t
// unsafe (the reference AstarSearch "goal acceptance" rule).
func (cs *constraintSet) goalBlockedAfter(t int, goal core.VertexID) bool {
	for ct, m := range cs.vertex {
		if ct >= t && m[goal] {
			return true
		}
	}
	return false
}

// SpaceTimeAStar finds a shortest path from start to goal that respects
// constraints, waiting in place where needed. maxTime bounds the search
// horizon (spec §4.4); it is raised to at least the last constraint time
// plus the node count, and no state past that horizon is expanded.
func SpaceTimeAStar(g *core.Graph, agent core.AgentID, start, goal core.VertexID, constraints []Constraint, maxTime int) ([]core.VertexID, bool) {
	cs := buildConstraintSet(agent, constraints)
	if maxTime < cs.maxT+g.NumNodes() {
		maxTime = cs.maxT + g.NumNodes()
	}

	open := &timeHeap{}
	heap.Init(open)
	startNode := &timeNode{v: start, t: 0, g: 0, f: g.Dist(start, goal)}
	heap.Push(open, startNode)

	visited := map[[2]int]bool{}

	for open.Len() > 0 {
		cur := heap.Pop(open).(*timeNode)
		key := [2]int{int(cur.v), cur.t}
		if visited[key] {
			continue
		}
		visited[key] = true

		if cur.v == goal && !cs.goalBlockedAfter(cur.t, goal) {
			return reconstructTimePath(cur), true
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
			if nb != cur.v && cs.edgeForbidden(cur.t, cur.v, nb) {
				continue
			}
			ng := cur.g + 1
			nk := [2]int{int(nb), nt}
			if visited[nk] {
				continue
			}
			heap.Push(open, &timeNode{v: nb, t: nt, g: ng, f: ng + g.Dist(nb, goal), parent: cur})
		}
	}
	return nil, false
}

func reconstructTimePath(n *timeNode) []core.VertexID {
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
