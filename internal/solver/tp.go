package solver

import (
	"github.com/mapf-sim/engine/internal/core"
	"go.uber.org/zap"
)

// TP is Token Passing for MAPD: unlike the other solvers it is not handed
// a fixed Instance of start/goal pairs, since which tasks exist and which
// agent should take which one changes every tick. The MAPD problem driver
// calls SelectTask/SelectEndpoint to decide what each idle agent should do
// this tick, then PlanBatch to route every agent that needs a new path
// around the others' committed tails (spec §4.9, original_source's
// solver/tp.cpp).
type TP struct {
	Log       *zap.SugaredLogger
	Graph     *core.Graph
	Endpoints []core.VertexID
}

func NewTP(log *zap.SugaredLogger, g *core.Graph) *TP {
	if log == nil {
		log = nopLogger()
	}
	return &TP{Log: log, Graph: g, Endpoints: g.Endpoints()}
}

func (t *TP) Name() string { return "TP" }

// SelectTask picks the nearest claimable open task for an agent at `at`,
// matching the reference getExecutableTask/getNearestTask pair: only tasks
// not already claimed by another agent this tick are considered.
func (t *TP) SelectTask(at core.VertexID, openTasks []*core.Task, claimed map[core.TaskID]bool) (*core.Task, bool) {
	var best *core.Task
	bestDist := -1
	for _, task := range openTasks {
		if claimed[task.ID] {
			continue
		}
		pick, ok := task.NextSubGoal()
		if !ok {
			continue
		}
		d := t.Graph.Dist(at, pick)
		if d < 0 {
			continue
		}
		if best == nil || d < bestDist {
			best = task
			bestDist = d
		}
	}
	return best, best != nil
}

// SelectEndpoint picks a fallback parking endpoint for an agent that has
// no assignable task: the nearest endpoint that is neither the agent's own
// current node, some other open task's delivery vertex, nor already
// claimed by another idle agent this tick (original_source's
// updatePath2/shouldAvoid; spec §9 resolves the ambiguity there by never
// treating an agent's own tail as something it must avoid).
func (t *TP) SelectEndpoint(at core.VertexID, openTasks []*core.Task, claimedEndpoints map[core.VertexID]bool) (core.VertexID, bool) {
	deliveryTargets := make(map[core.VertexID]bool, len(openTasks))
	for _, task := range openTasks {
		deliveryTargets[task.FinalGoal()] = true
	}

	best := core.VertexID(-1)
	bestDist := -1
	for _, ep := range t.Endpoints {
		if ep == at || claimedEndpoints[ep] || deliveryTargets[ep] {
			continue
		}
		d := t.Graph.Dist(at, ep)
		if d < 0 {
			continue
		}
		if bestDist == -1 || d < bestDist {
			best = ep
			bestDist = d
		}
	}
	return best, best != -1
}

// Request is one agent's routing need for this tick: either a direct path
// to Goal, or (PickupThenDeliver) a path via Pickup first.
type Request struct {
	Agent             core.AgentID
	Start             core.VertexID
	Goal              core.VertexID
	Pickup            core.VertexID
	PickupThenDeliver bool
}

// PlanBatch routes every request in priority (slice) order, each one
// avoiding every path planned earlier in the same call plus every fixed
// tail in otherTails (agents not replanned this tick, treated as
// permanently parked where they stand — original_source's `pathends`).
// A request absent from the result could not be routed this tick.
func (t *TP) PlanBatch(reqs []Request, otherTails map[core.AgentID]core.VertexID) map[core.AgentID][]core.VertexID {
	rv := reservationTable{vertex: map[int]map[core.VertexID]bool{}, edge: map[int]map[[2]core.VertexID]bool{}}
	parked := make(map[core.VertexID]int, len(otherTails))
	for _, v := range otherTails {
		parked[v] = 0
	}

	out := make(map[core.AgentID][]core.VertexID, len(reqs))
	for _, r := range reqs {
		var path []core.VertexID
		if r.PickupThenDeliver {
			leg1, ok := reservedAStar(t.Graph, r.Start, r.Pickup, rv, parked, infiniteWindow, 0)
			if !ok {
				continue
			}
			rv.reserve(leg1, 0)
			// The agent is actually at the pickup at tick len(leg1)-1, not
			// tick 0 — seed leg2's search clock there so it reserves and
			// checks against the right absolute ticks, not leg1's.
			leg2, ok := reservedAStar(t.Graph, r.Pickup, r.Goal, rv, parked, infiniteWindow, len(leg1)-1)
			if !ok {
				continue
			}
			path = append(leg1, leg2[1:]...)
		} else {
			p, ok := reservedAStar(t.Graph, r.Start, r.Goal, rv, parked, infiniteWindow, 0)
			if !ok {
				continue
			}
			path = p
		}
		rv.reserve(path, 0)
		parked[path[len(path)-1]] = len(path) - 1
		out[r.Agent] = path
	}
	return out
}
