package core

import "fmt"

// AgentID uniquely identifies an agent for the lifetime of a Problem.
type AgentID int

// Snapshot is one entry in an Agent's history: its state at a single
// simulated time step (Data Model §3).
type Snapshot struct {
	V    VertexID
	Goal *VertexID
	Task *TaskID
}

// Agent is a single mobile entity on the Graph. Between successive
// snapshots v_{t+1} must equal v_t or be a neighbor of v_t (Data Model §3
// invariant) — Agent itself enforces this in SetNode.
type Agent struct {
	ID   AgentID
	v    VertexID
	prev VertexID

	hasGoal bool
	goal    VertexID

	hasTask bool
	task    TaskID

	goalJustUpdated bool

	history []Snapshot

	graph *Graph
}

// NewAgent creates an agent positioned at start on g.
func NewAgent(id AgentID, g *Graph, start VertexID) *Agent {
	return &Agent{ID: id, v: start, prev: start, graph: g}
}

// Node returns the agent's current position.
func (a *Agent) Node() VertexID { return a.v }

// Prev returns the agent's previous position (same as Node before any move).
func (a *Agent) Prev() VertexID { return a.prev }

// SetNode moves the agent. It panics if target is neither the current node
// nor a neighbor of it — an invariant breach per spec §7.4, a programming
// error, not a recoverable one.
func (a *Agent) SetNode(target VertexID) {
	if target == a.v {
		return
	}
	if a.graph != nil && !a.graph.HasEdge(a.v, target) {
		panic(fmt.Sprintf("agent %d: illegal move %d -> %d (not a neighbor)", a.ID, a.v, target))
	}
	a.prev = a.v
	a.v = target
}

// HasGoal reports whether the agent currently has an assigned goal node.
func (a *Agent) HasGoal() bool { return a.hasGoal }

// Goal returns the agent's current goal node. Only valid when HasGoal.
func (a *Agent) Goal() VertexID { return a.goal }

// SetGoal assigns a new goal and marks the agent as freshly re-goaled (see
// IsUpdated).
func (a *Agent) SetGoal(v VertexID) {
	a.goal = v
	a.hasGoal = true
	a.goalJustUpdated = true
}

// HasTask reports whether the agent currently holds a task.
func (a *Agent) HasTask() bool { return a.hasTask }

// Task returns the agent's current task id. Only valid when HasTask.
func (a *Agent) Task() TaskID { return a.task }

// SetTask assigns a task to the agent.
func (a *Agent) SetTask(id TaskID) {
	a.task = id
	a.hasTask = true
}

// ReleaseTask clears the agent's task without touching its goal.
func (a *Agent) ReleaseTask() {
	a.hasTask = false
}

// ReleaseGoalOnly clears the agent's goal without touching its task.
func (a *Agent) ReleaseGoalOnly() {
	a.hasGoal = false
}

// IsUpdated reports whether the goal was (re)assigned this tick; it is
// cleared by UpdateHistory at the end of the tick. No solver reads it: PIBT
// keeps its own per-agent priority inside Solve and does not see goal
// changes made between Solve calls.
func (a *Agent) IsUpdated() bool { return a.goalJustUpdated }

// UpdateHistory appends the agent's current {v, goal, task} snapshot and
// clears the just-updated flag, ending the tick for this agent.
func (a *Agent) UpdateHistory() {
	snap := Snapshot{V: a.v}
	if a.hasGoal {
		g := a.goal
		snap.Goal = &g
	}
	if a.hasTask {
		t := a.task
		snap.Task = &t
	}
	a.history = append(a.history, snap)
	a.goalJustUpdated = false
}

// History returns the recorded snapshots, oldest first. Do not mutate.
func (a *Agent) History() []Snapshot { return a.history }
