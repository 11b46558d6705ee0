package solver

import (
	"container/heap"

	"github.com/mapf-sim/engine/internal/core"
	"go.uber.org/zap"
)

// infiniteWindow marks a WHCA* window as unbounded, i.e. plain HCA*
// (spec §4.4 / original_source/solver/hca.h: HCA is WHCA with window=∞).
const infiniteWindow = 1 << 30

// WHCA is windowed (or, with an infinite window, unwindowed) prioritized
// cooperative A*: agents are planned one at a time, in instance order,
// each avoiding the reservation table left by every agent planned before
// it, including a permanent reservation of each agent's parked goal
// (original_source/solver/whca.cpp's CG constraint).
type WHCA struct {
	Log    *zap.SugaredLogger
	Window int
}

// NewWHCA builds a windowed solver.
func NewWHCA(log *zap.SugaredLogger, window int) *WHCA {
	if log == nil {
		log = nopLogger()
	}
	if window <= 0 {
		window = infiniteWindow
	}
	return &WHCA{Log: log, Window: window}
}

// NewHCA builds the unwindowed special case.
func NewHCA(log *zap.SugaredLogger) *WHCA {
	return NewWHCA(log, infiniteWindow)
}

func (w *WHCA) Name() string {
	if w.Window >= infiniteWindow {
		return "HCA"
	}
	return "WHCA"
}

// Solve plans in rolling windows: every round, each not-yet-arrived agent
// gets a fresh reservation table scoped to that round and a search capped
// at w.Window ticks (spec §4.6's `g >= start_time + window` truncation). An
// agent that can't reach its goal within the window commits the truncated
// path and replans from wherever it ends up next round; one that does reach
// its goal parks there for the rest of the run. With an infinite window
// (HCA*) a single round always suffices, since every agent is solved clear
// to its goal in its first search.
func (w *WHCA) Solve(inst *Instance) (core.Paths, bool) {
	n := inst.NumAgents()
	window := w.Window

	maxRounds := 1
	if window < infiniteWindow {
		horizon := inst.Graph.NumNodes()*4 + n*4 + 32
		maxRounds = horizon/window + 4
	}

	cur := append([]core.VertexID(nil), inst.Starts...)
	paths := make(core.Paths, n)
	for i, s := range cur {
		paths[i] = []core.VertexID{s}
	}
	done := make([]bool, n)
	parked := map[core.VertexID]int{} // vertex -> absolute time from which it is permanently occupied

	roundStart := 0
	for round := 0; round < maxRounds; round++ {
		allDone := true
		for _, d := range done {
			if !d {
				allDone = false
				break
			}
		}
		if allDone {
			return paths, true
		}

		rv := reservationTable{vertex: map[int]map[core.VertexID]bool{}, edge: map[int]map[[2]core.VertexID]bool{}}
		for i := 0; i < n; i++ {
			if done[i] {
				stay := make([]core.VertexID, window+1)
				for t := range stay {
					stay[t] = cur[i]
				}
				rv.reserve(stay, roundStart)
				continue
			}
			path, ok := reservedAStar(inst.Graph, cur[i], inst.Goals[i], rv, parked, window, roundStart)
			if !ok {
				return nil, false
			}
			rv.reserve(path, roundStart)
			paths[i] = append(paths[i], path[1:]...)
			cur[i] = path[len(path)-1]
			if cur[i] == inst.Goals[i] {
				done[i] = true
				parked[inst.Goals[i]] = roundStart + len(path) - 1
			}
		}
		roundStart += window
	}

	for i := range cur {
		if cur[i] != inst.Goals[i] {
			return nil, false
		}
	}
	return paths, true
}

type reservationTable struct {
	vertex map[int]map[core.VertexID]bool
	edge   map[int]map[[2]core.VertexID]bool
}

// reserve claims path into rv, treating path[i] as occupied at absolute
// time startTime+i. Every call site knows exactly when its path's first
// step actually happens, which matters once WHCA plans in rolling windows
// and TP plans a delivery leg that starts mid-route (not at tick 0).
func (rv reservationTable) reserve(path []core.VertexID, startTime int) {
	for i, v := range path {
		t := startTime + i
		if rv.vertex[t] == nil {
			rv.vertex[t] = map[core.VertexID]bool{}
		}
		rv.vertex[t][v] = true
		if i > 0 {
			if rv.edge[t-1] == nil {
				rv.edge[t-1] = map[[2]core.VertexID]bool{}
			}
			rv.edge[t-1][[2]core.VertexID{path[i-1], path[i]}] = true
		}
	}
}

func (rv reservationTable) vertexTaken(t int, v core.VertexID) bool {
	m := rv.vertex[t]
	return m != nil && m[v]
}

func (rv reservationTable) edgeTaken(t int, u, v core.VertexID) bool {
	m := rv.edge[t]
	if m == nil {
		return false
	}
	return m[[2]core.VertexID{u, v}] || m[[2]core.VertexID{v, u}]
}

// reservedAStar is the WHCA/HCA/TP low-level planner for one leg of one
// agent's route: a time-expanded search against a shared reservation
// table, clocked in absolute ticks starting at roundStart (the time the
// agent is actually at start, not necessarily 0 — a delivery leg that
// begins once the agent reaches a pickup partway through its route needs
// its search clock seeded there, not reset to zero). It returns as soon as
// it either reaches goal (permanently, per goalSafe) or its elapsed cost
// since roundStart hits window — the windowed truncation spec §4.6 calls
// for, infiniteWindow for legs that must run to completion in one shot.
// With infiniteWindow it returns false once the search passes the last
// reserved or parked time plus the node count, since no later state can
// reach a goal that is not reachable by then.
func reservedAStar(g *core.Graph, start, goal core.VertexID, rv reservationTable, parked map[core.VertexID]int, window, roundStart int) ([]core.VertexID, bool) {
	horizon := infiniteWindow
	if window >= infiniteWindow {
		horizon = roundStart
		for t := range rv.vertex {
			horizon = max(horizon, t)
		}
		for _, pt := range parked {
			horizon = max(horizon, pt)
		}
		horizon += g.NumNodes()
	}

	open := &timeHeap{}
	heap.Init(open)
	heap.Push(open, &timeNode{v: start, t: roundStart, g: 0, f: g.Dist(start, goal)})

	visited := map[[2]int]bool{}

	for open.Len() > 0 {
		cur := heap.Pop(open).(*timeNode)
		key := [2]int{int(cur.v), cur.t}
		if visited[key] {
			continue
		}
		visited[key] = true

		if cur.v == goal && goalSafe(rv, parked, goal, cur.t) {
			return reconstructTimePath(cur), true
		}
		if cur.t-roundStart >= window {
			return reconstructTimePath(cur), true
		}
		if cur.t >= horizon {
			continue
		}

		candidates := append([]core.VertexID{cur.v}, g.Neighbors(cur.v)...)
		for _, nb := range candidates {
			nt := cur.t + 1
			if pt, ok := parked[nb]; ok && nt >= pt {
				continue
			}
			if rv.vertexTaken(nt, nb) {
				continue
			}
			if nb != cur.v && rv.edgeTaken(cur.t, cur.v, nb) {
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

// goalSafe reports whether it's safe to park permanently at goal starting
// at time t: no later reservation already claims it, and no other agent
// is already permanently parked there.
func goalSafe(rv reservationTable, parked map[core.VertexID]int, goal core.VertexID, t int) bool {
	if _, taken := parked[goal]; taken {
		return false
	}
	for tt, m := range rv.vertex {
		if tt >= t && m[goal] {
			return false
		}
	}
	return true
}
