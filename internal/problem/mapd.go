package problem

import (
	"math"

	"github.com/mapf-sim/engine/internal/core"
	"github.com/mapf-sim/engine/internal/solver"
	"go.uber.org/zap"
)

// MAPD is the pickup-and-delivery variant: tasks arrive over time (at a
// configured frequency, capped at a total count) and idle agents are
// auto-assigned the nearest unclaimed one (spec §4.3,
// original_source's problem/mapd.cpp).
//
// Two routing modes are supported: a generic one that re-solves a
// one-tick Instance through any solver.Solver every tick (the rolling
// horizon every other driver in this package uses), and a dedicated
// token-passing mode that commits each agent to a full pickup-then-deliver
// path via solver.TP and only replans when that commitment finishes
// (original_source's tp.cpp update loop).
type MAPD struct {
	base

	Solver solver.Solver
	TP     *solver.TP

	PickupNodes   []core.VertexID
	DeliveryNodes []core.VertexID
	TaskNum       int
	TaskFrequency float64

	nextTaskID  core.TaskID
	taskSpawned int
	spawnAccum  float64

	openTasks []*core.Task
	task      map[core.AgentID]*core.Task

	committed    map[core.AgentID][]core.VertexID
	committedIdx map[core.AgentID]int
}

// NewMAPD builds a generic-solver MAPD driver.
func NewMAPD(g *core.Graph, agents []*core.Agent, sv solver.Solver, pickups, deliveries []core.VertexID, taskNum int, taskFrequency float64, timestepLimit int, seed int64, log *zap.SugaredLogger) *MAPD {
	return &MAPD{
		base:          newBase(g, agents, timestepLimit, seed, log),
		Solver:        sv,
		PickupNodes:   pickups,
		DeliveryNodes: deliveries,
		TaskNum:       taskNum,
		TaskFrequency: taskFrequency,
		task:          make(map[core.AgentID]*core.Task),
	}
}

// NewMAPDTokenPassing builds a token-passing MAPD driver.
func NewMAPDTokenPassing(g *core.Graph, agents []*core.Agent, tp *solver.TP, pickups, deliveries []core.VertexID, taskNum int, taskFrequency float64, timestepLimit int, seed int64, log *zap.SugaredLogger) *MAPD {
	d := NewMAPD(g, agents, nil, pickups, deliveries, taskNum, taskFrequency, timestepLimit, seed, log)
	d.TP = tp
	d.committed = make(map[core.AgentID][]core.VertexID)
	d.committedIdx = make(map[core.AgentID]int)
	return d
}

func (d *MAPD) spawnTasks() {
	if d.taskSpawned >= d.TaskNum || len(d.PickupNodes) == 0 || len(d.DeliveryNodes) == 0 {
		return
	}
	toSpawn := 0
	if d.TaskFrequency >= 1 {
		toSpawn = int(math.Floor(d.TaskFrequency))
	} else if d.TaskFrequency > 0 {
		d.spawnAccum += d.TaskFrequency
		if d.spawnAccum >= 1 {
			toSpawn = 1
			d.spawnAccum -= 1
		}
	}
	for i := 0; i < toSpawn && d.taskSpawned < d.TaskNum; i++ {
		pick := d.PickupNodes[d.rng.Intn(len(d.PickupNodes))]
		deliv := d.DeliveryNodes[d.rng.Intn(len(d.DeliveryNodes))]
		t := core.NewTask(d.nextTaskID, []core.VertexID{pick, deliv}, d.timestep)
		d.nextTaskID++
		d.openTasks = append(d.openTasks, t)
		d.taskSpawned++
	}
}

func (d *MAPD) removeOpenTask(id core.TaskID) {
	for i, t := range d.openTasks {
		if t.ID == id {
			d.openTasks = append(d.openTasks[:i], d.openTasks[i+1:]...)
			return
		}
	}
}

func (d *MAPD) Tick() error {
	d.spawnTasks()
	if d.TP != nil {
		return d.tickTokenPassing()
	}
	return d.tickGeneric()
}

func (d *MAPD) tickGeneric() error {
	claimed := make(map[core.TaskID]bool, len(d.task))
	for _, t := range d.task {
		claimed[t.ID] = true
	}
	for i, a := range d.agents {
		if a.HasTask() {
			continue
		}
		best, ok := (&selectHelper{d}).nearestOpenTask(a.Node(), claimed)
		if !ok {
			continue
		}
		claimed[best.ID] = true
		d.task[core.AgentID(i)] = best
		a.SetTask(best.ID)
	}

	inst := &solver.Instance{Graph: d.graph, Starts: make([]core.VertexID, len(d.agents)), Goals: make([]core.VertexID, len(d.agents))}
	for i, a := range d.agents {
		inst.Starts[i] = a.Node()
		inst.Goals[i] = d.nextGoal(core.AgentID(i), a)
	}
	paths, ok := d.Solver.Solve(inst)
	if !ok {
		return errInfeasible(d.Solver.Name(), d.timestep)
	}
	advanceAgents(d.agents, paths, 0)
	d.timestep++
	d.settleTasks()
	return nil
}

// nextGoal returns the node an idle/busy agent should currently be routed
// toward: its task's next sub-goal if it has one, else its own current
// node (idle agents hold position rather than wander).
func (d *MAPD) nextGoal(id core.AgentID, a *core.Agent) core.VertexID {
	t, ok := d.task[id]
	if !ok {
		return a.Node()
	}
	if sg, ok := t.NextSubGoal(); ok {
		return sg
	}
	return a.Node()
}

// settleTasks advances each assigned task's progress against its agent's
// new position and releases/closes any that just completed.
func (d *MAPD) settleTasks() {
	for id, t := range d.task {
		a := d.agents[id]
		t.Advance(a.Node())
		if t.Completed() {
			t.SetEndTime(d.timestep)
			d.removeOpenTask(t.ID)
			a.ReleaseTask()
			delete(d.task, id)
		}
	}
}

// tickTokenPassing commits each idle agent to a full routed path via TP
// and advances every agent one step along its current commitment,
// replanning only agents whose commitment just ran out.
func (d *MAPD) tickTokenPassing() error {
	claimed := make(map[core.TaskID]bool, len(d.task))
	for _, t := range d.task {
		claimed[t.ID] = true
	}
	claimedEndpoints := make(map[core.VertexID]bool)

	var reqs []solver.Request
	for i, a := range d.agents {
		id := core.AgentID(i)
		if _, has := d.committed[id]; has && d.committedIdx[id] < len(d.committed[id])-1 {
			continue // still mid-commitment
		}
		if t, ok := d.task[id]; ok && !t.Completed() {
			continue // mid-task but path exhausted early shouldn't happen; be defensive
		}
		if task, ok := d.TP.SelectTask(a.Node(), d.openTasks, claimed); ok {
			claimed[task.ID] = true
			d.task[id] = task
			a.SetTask(task.ID)
			pick, _ := task.NextSubGoal()
			reqs = append(reqs, solver.Request{Agent: id, Start: a.Node(), Pickup: pick, Goal: task.FinalGoal(), PickupThenDeliver: true})
			continue
		}
		if ep, ok := d.TP.SelectEndpoint(a.Node(), d.openTasks, claimedEndpoints); ok {
			claimedEndpoints[ep] = true
			reqs = append(reqs, solver.Request{Agent: id, Start: a.Node(), Goal: ep})
		}
	}

	otherTails := make(map[core.AgentID]core.VertexID, len(d.agents))
	for i, a := range d.agents {
		otherTails[core.AgentID(i)] = a.Node()
	}
	planned := d.TP.PlanBatch(reqs, otherTails)
	for id, path := range planned {
		d.committed[id] = path
		d.committedIdx[id] = 0
	}

	for i, a := range d.agents {
		id := core.AgentID(i)
		path := d.committed[id]
		idx := d.committedIdx[id]
		if path == nil || idx >= len(path)-1 {
			a.UpdateHistory()
			continue
		}
		idx++
		a.SetNode(path[idx])
		d.committedIdx[id] = idx
		a.UpdateHistory()
	}
	d.timestep++
	d.settleTasks()
	return nil
}

func (d *MAPD) IsSolved() bool {
	return d.taskSpawned >= d.TaskNum && len(d.openTasks) == 0 && len(d.task) == 0
}

// selectHelper adapts MAPD's open-task bookkeeping to a simple nearest-task
// query, mirroring TP.SelectTask for the generic (non-token-passing) mode.
type selectHelper struct{ d *MAPD }

func (s *selectHelper) nearestOpenTask(at core.VertexID, claimed map[core.TaskID]bool) (*core.Task, bool) {
	var best *core.Task
	bestDist := -1
	for _, t := range s.d.openTasks {
		if claimed[t.ID] {
			continue
		}
		pick, ok := t.NextSubGoal()
		if !ok {
			continue
		}
		dist := s.d.graph.Dist(at, pick)
		if dist < 0 {
			continue
		}
		if best == nil || dist < bestDist {
			best = t
			bestDist = dist
		}
	}
	return best, best != nil
}
