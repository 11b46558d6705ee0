package solver

import (
	"math/rand"
	"sort"

	"github.com/mapf-sim/engine/internal/core"
	"go.uber.org/zap"
)

// PIBT is priority inheritance with backtracking: a decentralized one-step
// planner run repeatedly until every agent reaches its goal. Priority starts
// at the agent's hop distance to its goal, grows by one for every tick the
// agent holds position short of its goal, and drops to zero whenever it
// moves, so long-waiting agents eventually win contested cells (spec §4.7).
// Goals are fixed for the whole Solve call; a goal change made by a problem
// driver between calls does not reset the priority.
type PIBT struct {
	Log      *zap.SugaredLogger
	Rng      *rand.Rand
	MaxTicks int

	// SoftMode enables winPIBT's relaxed acceptance check: when the agent
	// occupying a candidate cell fails to find a move of its own, the
	// candidate is still taken as long as no agent has claimed it for this
	// step (strict mode skips such a candidate). Planning stays one step at
	// a time in both modes; no multi-step window is kept.
	SoftMode bool
}

// NewPIBT builds a solver seeded from seed (kept independent of the
// problem driver's own seed stream, per spec §5).
func NewPIBT(log *zap.SugaredLogger, seed int64) *PIBT {
	if log == nil {
		log = nopLogger()
	}
	return &PIBT{Log: log, Rng: newRand(seed)}
}

func (p *PIBT) Name() string {
	if p.SoftMode {
		return "winPIBT"
	}
	return "PIBT"
}

func (p *PIBT) Solve(inst *Instance) (core.Paths, bool) {
	n := inst.NumAgents()
	cur := append([]core.VertexID(nil), inst.Starts...)
	goal := inst.Goals

	priority := make([]float64, n)
	eps := make([]float64, n)
	for i := range eps {
		eps[i] = p.Rng.Float64()
		priority[i] = float64(inst.Graph.Dist(cur[i], goal[i]))
	}

	paths := make(core.Paths, n)
	for i := range paths {
		paths[i] = []core.VertexID{cur[i]}
	}

	maxTicks := p.MaxTicks
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

		next := p.step(inst.Graph, cur, goal, priority, eps)
		for i := range cur {
			if next[i] != cur[i] {
				priority[i] = 0
			} else if cur[i] != goal[i] {
				priority[i]++
			}
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

// step runs one priority-inheritance round: every agent either moves one
// hop or holds, and the result is a collision-free simultaneous move set.
func (p *PIBT) step(g *core.Graph, cur []core.VertexID, goal []core.VertexID, priority, eps []float64) []core.VertexID {
	n := len(cur)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		ia, ib := order[a], order[b]
		if priority[ia] != priority[ib] {
			return priority[ia] > priority[ib]
		}
		return eps[ia] > eps[ib]
	})

	next := append([]core.VertexID(nil), cur...)
	decided := make([]bool, n)
	occupied := make(map[core.VertexID]int, n)

	var inherit func(agent int, came core.VertexID, hasCame bool) bool
	inherit = func(agent int, came core.VertexID, hasCame bool) bool {
		if decided[agent] {
			return true
		}
		decided[agent] = true

		cands := candidateNodes(g, cur[agent], came, hasCame)
		scored := scoreCandidates(g, cands, goal[agent], p.Rng)

		for _, c := range scored {
			if holder, taken := occupied[c]; taken && holder != agent {
				continue
			}
			if other, isOther := currentOccupant(cur, c); isOther && other != agent {
				if !inherit(other, cur[agent], true) && !p.SoftMode {
					continue
				}
				if holder, taken := occupied[c]; taken && holder != agent {
					continue
				}
			}
			occupied[c] = agent
			next[agent] = c
			return true
		}

		if holder, taken := occupied[cur[agent]]; taken && holder != agent {
			return false
		}
		occupied[cur[agent]] = agent
		next[agent] = cur[agent]
		return false
	}

	for _, a := range order {
		if !decided[a] {
			inherit(a, 0, false)
		}
	}
	return next
}

func candidateNodes(g *core.Graph, from, came core.VertexID, hasCame bool) []core.VertexID {
	out := []core.VertexID{from}
	for _, nb := range g.Neighbors(from) {
		if hasCame && nb == came {
			continue
		}
		out = append(out, nb)
	}
	return out
}

func scoreCandidates(g *core.Graph, cands []core.VertexID, goal core.VertexID, rng *rand.Rand) []core.VertexID {
	type scored struct {
		v    core.VertexID
		dist int
		tie  float64
	}
	ss := make([]scored, len(cands))
	for i, c := range cands {
		ss[i] = scored{v: c, dist: g.Dist(c, goal), tie: rng.Float64()}
	}
	sort.Slice(ss, func(i, j int) bool {
		if ss[i].dist != ss[j].dist {
			return ss[i].dist < ss[j].dist
		}
		return ss[i].tie < ss[j].tie
	})
	out := make([]core.VertexID, len(ss))
	for i, s := range ss {
		out[i] = s.v
	}
	return out
}

func currentOccupant(cur []core.VertexID, v core.VertexID) (int, bool) {
	for i, c := range cur {
		if c == v {
			return i, true
		}
	}
	return 0, false
}
