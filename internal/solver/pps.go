package solver

import (
	"math/rand"
	"sort"

	"github.com/mapf-sim/engine/internal/core"
	"go.uber.org/zap"
)

// PPS is Parallel Push & Swap: each tick, every agent not yet at its goal
// tries to step onto its shortest-path successor; an agent blocking that
// cell is displaced into a free neighboring "evacuation" slot so the two
// can swap places in the same tick (spec §4.8). Complex multi-agent
// evacuation chains from the original push-and-swap algorithm are not
// attempted — only a single-blocker swap — see DESIGN.md.
type PPS struct {
	Log      *zap.SugaredLogger
	Rng      *rand.Rand
	MaxTicks int
}

func NewPPS(log *zap.SugaredLogger, seed int64) *PPS {
	if log == nil {
		log = nopLogger()
	}
	return &PPS{Log: log, Rng: newRand(seed)}
}

func (s *PPS) Name() string { return "PPS" }

func (s *PPS) Solve(inst *Instance) (core.Paths, bool) {
	n := inst.NumAgents()
	cur := append([]core.VertexID(nil), inst.Starts...)
	goal := inst.Goals

	paths := make(core.Paths, n)
	for i := range paths {
		paths[i] = []core.VertexID{cur[i]}
	}

	maxTicks := s.MaxTicks
	if maxTicks == 0 {
		maxTicks = inst.Graph.NumNodes()*4 + n*4 + 16
	}

	for tick := 0; tick < maxTicks; tick++ {
		allArrived := true
		for i := range cur {
			if cur[i] != goal[i] {
				allArrived = false
				break
			}
		}
		if allArrived {
			return paths, true
		}

		next := s.step(inst.Graph, cur, goal)
		for i := range cur {
			cur[i] = next[i]
			paths[i] = append(paths[i], cur[i])
		}
	}

	for i := range cur {
		if cur[i] != goal[i] {
			return nil, false
		}
	}
	return paths, true
}

func (s *PPS) step(g *core.Graph, cur, goal []core.VertexID) []core.VertexID {
	n := len(cur)
	next := append([]core.VertexID(nil), cur...)
	reserved := make(map[core.VertexID]bool, n)
	occ := make(map[core.VertexID]int, n)
	for i, v := range cur {
		occ[v] = i
	}
	moved := make([]bool, n)

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return g.Dist(cur[order[a]], goal[order[a]]) < g.Dist(cur[order[b]], goal[order[b]])
	})

	settle := func(agent int, v core.VertexID) {
		delete(occ, cur[agent])
		next[agent] = v
		reserved[v] = true
		moved[agent] = true
		occ[v] = agent
	}

	for _, a := range order {
		if moved[a] {
			continue
		}
		if cur[a] == goal[a] {
			reserved[cur[a]] = true
			moved[a] = true
			continue
		}
		path, ok := g.Path(cur[a], goal[a])
		if !ok || len(path) < 2 {
			reserved[cur[a]] = true
			moved[a] = true
			continue
		}
		target := path[1]

		if holder, taken := occ[target]; !taken || holder == a {
			if !reserved[target] {
				settle(a, target)
				continue
			}
		}

		if holder, taken := occ[target]; taken && !moved[holder] {
			if evac, ok := findEvacuation(g, target, holder, occ, reserved); ok {
				settle(holder, evac)
				settle(a, target)
				continue
			}
		}

		reserved[cur[a]] = true
		moved[a] = true
	}
	return next
}

// findEvacuation looks for a free neighboring cell the blocking agent can
// step into so the pusher can take its place this same tick.
func findEvacuation(g *core.Graph, from core.VertexID, agent int, occ map[core.VertexID]int, reserved map[core.VertexID]bool) (core.VertexID, bool) {
	for _, nb := range g.Neighbors(from) {
		if reserved[nb] {
			continue
		}
		if holder, taken := occ[nb]; taken && holder != agent {
			continue
		}
		return nb, true
	}
	return 0, false
}
