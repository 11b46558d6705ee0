package core

import (
	"container/heap"
	"math"
	"math/rand"
	"sort"
)

// astarPQ is a binary min-heap over f-score, matching the teacher's
// astarHeap (internal/algo/astar.go) and the DESIGN NOTES guidance to avoid
// a linear argmin scan in the hot path.
type pqEntry struct {
	v     VertexID
	g, f  int
	index int
}

type astarPQ []*pqEntry

func (h astarPQ) Len() int            { return len(h) }
func (h astarPQ) Less(i, j int) bool  { return h[i].f < h[j].f }
func (h astarPQ) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *astarPQ) Push(x interface{}) { e := x.(*pqEntry); e.index = len(*h); *h = append(*h, e) }
func (h *astarPQ) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// heuristic returns an admissible lower bound from v to goal: Manhattan
// distance when positions are meaningful, else 0 (always admissible on
// unit-cost edges, per spec §4.4).
func (g *Graph) heuristic(v, goal VertexID) int {
	nv, ng := g.nodes[v], g.nodes[goal]
	if nv == nil || ng == nil {
		return 0
	}
	dx := nv.Pos.X - ng.Pos.X
	if dx < 0 {
		dx = -dx
	}
	dy := nv.Pos.Y - ng.Pos.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// Path returns one shortest node sequence from u to v (inclusive of both
// ends), memoizing both the path and its length under (u,v). Returns
// (nil, false) if no path exists.
func (g *Graph) Path(u, v VertexID) ([]VertexID, bool) {
	g.mu.Lock()
	if cached, ok := g.pathCache[pathKey{u, v}]; ok {
		g.mu.Unlock()
		if !cached.ok {
			return nil, false
		}
		return append([]VertexID(nil), cached.nodes...), true
	}
	g.mu.Unlock()

	path, ok := g.astarPath(u, v)

	g.mu.Lock()
	g.pathCache[pathKey{u, v}] = cachedPath{nodes: path, ok: ok}
	g.mu.Unlock()

	if !ok {
		return nil, false
	}
	return append([]VertexID(nil), path...), true
}

// Dist returns the hop distance between u and v (len(Path)-1), or -1 if
// unreachable. Hits the dense Warshall-Floyd table in O(1) once built.
func (g *Graph) Dist(u, v VertexID) int {
	if u == v {
		return 0
	}
	if g.distAll != nil {
		iu, okU := g.indexOf[u]
		iv, okV := g.indexOf[v]
		if okU && okV {
			d := g.distAll[iu][iv]
			if d == math.MaxInt32 {
				return -1
			}
			return d
		}
	}
	path, ok := g.Path(u, v)
	if !ok {
		return -1
	}
	return len(path) - 1
}

func (g *Graph) astarPath(start, goal VertexID) ([]VertexID, bool) {
	if g.nodes[start] == nil || g.nodes[goal] == nil {
		return nil, false
	}
	if start == goal {
		return []VertexID{start}, true
	}

	gScore := map[VertexID]int{start: 0}
	parent := map[VertexID]VertexID{}
	closed := map[VertexID]bool{}

	pq := &astarPQ{}
	heap.Init(pq)
	heap.Push(pq, &pqEntry{v: start, g: 0, f: g.heuristic(start, goal)})

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(*pqEntry)
		if closed[cur.v] {
			continue
		}
		closed[cur.v] = true

		if cur.v == goal {
			path := []VertexID{goal}
			for path[len(path)-1] != start {
				p := parent[path[len(path)-1]]
				path = append(path, p)
			}
			reverse(path)
			return path, true
		}

		for _, nb := range g.Neighbors(cur.v) {
			if closed[nb] {
				continue
			}
			tentative := cur.g + 1
			if best, ok := gScore[nb]; ok && best <= tentative {
				continue
			}
			gScore[nb] = tentative
			parent[nb] = cur.v
			heap.Push(pq, &pqEntry{v: nb, g: tentative, f: tentative + g.heuristic(nb, goal)})
		}
	}
	return nil, false
}

func reverse(xs []VertexID) {
	for i, j := 0, len(xs)-1; i < j; i, j = i+1, j-1 {
		xs[i], xs[j] = xs[j], xs[i]
	}
}

// WarshallFloyd materializes a dense all-pairs hop-distance table so that
// every later Dist call is O(1) (spec §4.1, DESIGN NOTES "highway matrix"
// monotone-fill guidance applies equally here: once built, the table is
// never invalidated).
func (g *Graph) WarshallFloyd() {
	n := len(g.order)
	g.indexOf = make(map[VertexID]int, n)
	for i, id := range g.order {
		g.indexOf[id] = i
	}

	dist := make([][]int, n)
	for i := range dist {
		dist[i] = make([]int, n)
		for j := range dist[i] {
			if i == j {
				dist[i][j] = 0
			} else {
				dist[i][j] = math.MaxInt32
			}
		}
	}
	for i, id := range g.order {
		for _, nb := range g.Neighbors(id) {
			j := g.indexOf[nb]
			dist[i][j] = 1
		}
	}
	for k := 0; k < n; k++ {
		dk := dist[k]
		for i := 0; i < n; i++ {
			dik := dist[i][k]
			if dik == math.MaxInt32 {
				continue
			}
			di := dist[i]
			for j := 0; j < n; j++ {
				if dk[j] == math.MaxInt32 {
					continue
				}
				if nd := dik + dk[j]; nd < di[j] {
					di[j] = nd
				}
			}
		}
	}
	g.distAll = dist
}

// RandomNewGoal picks a uniformly random node other than from. When
// stationOnly is true the draw is restricted to registered station nodes
// (supplements spec: MAPF_STATION/IMAPF_STATION variants, see SPEC_FULL.md).
func (g *Graph) RandomNewGoal(from VertexID, stationOnly bool, rng *rand.Rand) VertexID {
	pool := g.order
	if stationOnly {
		pool = nil
		nums := make([]int, 0, len(g.station))
		for n := range g.station {
			nums = append(nums, n)
		}
		sort.Ints(nums)
		for _, n := range nums {
			pool = append(pool, g.station[n]...)
		}
		if len(pool) == 0 {
			pool = g.order
		}
	}
	if len(pool) == 0 {
		return from
	}
	for {
		cand := pool[rng.Intn(len(pool))]
		if cand != from || len(pool) == 1 {
			return cand
		}
	}
}
