package core

import (
	"fmt"
	"sort"
	"sync"
)

// Graph is the only owner of Nodes; every other component carries
// back-references by VertexID rather than pointers, so Nodes, Agents, and
// solver-internal search nodes never share ownership (see DESIGN.md,
// "arena + index").
type Graph struct {
	Directed bool

	nodes   map[VertexID]*Node
	order   []VertexID // insertion order, for stable iteration/logging
	adj     map[VertexID]map[VertexID]bool
	pickup  []VertexID
	deliv   []VertexID
	endpts  []VertexID
	station map[int][]VertexID

	mu        sync.Mutex // guards the lazily-built path/distance caches
	pathCache map[pathKey]cachedPath
	distAll   [][]int // dense all-pairs table, built by WarshallFloyd
	indexOf   map[VertexID]int
}

type pathKey struct {
	u, v VertexID
}

type cachedPath struct {
	nodes []VertexID
	ok    bool
}

// NewGraph creates an empty graph. Pass directed=true to disable the
// automatic reverse-edge insertion AddEdge otherwise performs.
func NewGraph(directed bool) *Graph {
	return &Graph{
		Directed:  directed,
		nodes:     make(map[VertexID]*Node),
		adj:       make(map[VertexID]map[VertexID]bool),
		station:   make(map[int][]VertexID),
		pathCache: make(map[pathKey]cachedPath),
	}
}

// AddNode inserts a node, assigning it the next dense Index.
func (g *Graph) AddNode(n *Node) {
	n.Index = len(g.order)
	g.nodes[n.ID] = n
	g.order = append(g.order, n.ID)
	if g.adj[n.ID] == nil {
		g.adj[n.ID] = make(map[VertexID]bool)
	}
	if n.Pickup {
		g.pickup = append(g.pickup, n.ID)
	}
	if n.Delivery {
		g.deliv = append(g.deliv, n.ID)
	}
	if n.Endpoint {
		g.endpts = append(g.endpts, n.ID)
	}
	if n.Station > 0 {
		g.station[n.Station] = append(g.station[n.Station], n.ID)
	}
}

// AddEdge connects u->v. Unless the graph is Directed, it also adds v->u,
// keeping adjacency symmetric (Data Model §3 invariant).
func (g *Graph) AddEdge(u, v VertexID) {
	g.addDirected(u, v)
	if !g.Directed {
		g.addDirected(v, u)
	}
}

func (g *Graph) addDirected(u, v VertexID) {
	if g.adj[u] == nil {
		g.adj[u] = make(map[VertexID]bool)
	}
	if g.adj[u][v] {
		return
	}
	g.adj[u][v] = true
	nu := g.nodes[u]
	nu.neighbors = append(nu.neighbors, v)
}

// Node looks up a node by ID, or nil if absent.
func (g *Graph) Node(id VertexID) *Node { return g.nodes[id] }

// NumNodes returns the node count.
func (g *Graph) NumNodes() int { return len(g.order) }

// Nodes returns node IDs in insertion order. Do not mutate.
func (g *Graph) Nodes() []VertexID { return g.order }

// Neighbors returns the neighbor list of v, or nil if v is unknown.
func (g *Graph) Neighbors(v VertexID) []VertexID {
	n := g.nodes[v]
	if n == nil {
		return nil
	}
	return n.neighbors
}

// HasEdge reports whether a directed hop u->v exists.
func (g *Graph) HasEdge(u, v VertexID) bool {
	return g.adj[u] != nil && g.adj[u][v]
}

// Pickups, Deliveries, Endpoints return immutable snapshots of the
// corresponding marked subsets (Data Model §3).
func (g *Graph) Pickups() []VertexID    { return append([]VertexID(nil), g.pickup...) }
func (g *Graph) Deliveries() []VertexID { return append([]VertexID(nil), g.deliv...) }
func (g *Graph) Endpoints() []VertexID  { return append([]VertexID(nil), g.endpts...) }

// MarkPickup, MarkDelivery, MarkEndpoint flag an already-inserted node and
// register it into the corresponding subset. Overlay loaders (mapio) use
// these rather than setting Node fields directly, since AddNode snapshots
// the subsets at insertion time.
func (g *Graph) MarkPickup(id VertexID) {
	n := g.nodes[id]
	if n == nil || n.Pickup {
		return
	}
	n.Pickup = true
	g.pickup = append(g.pickup, id)
}

func (g *Graph) MarkDelivery(id VertexID) {
	n := g.nodes[id]
	if n == nil || n.Delivery {
		return
	}
	n.Delivery = true
	g.deliv = append(g.deliv, id)
}

func (g *Graph) MarkEndpoint(id VertexID) {
	n := g.nodes[id]
	if n == nil || n.Endpoint {
		return
	}
	n.Endpoint = true
	g.endpts = append(g.endpts, id)
}

// SetStation assigns node id to station number n, registering it into the
// station subset (overwriting any prior assignment's subset membership).
func (g *Graph) SetStation(id VertexID, n int) {
	node := g.nodes[id]
	if node == nil {
		return
	}
	if node.Station > 0 {
		old := g.station[node.Station]
		for i, v := range old {
			if v == id {
				g.station[node.Station] = append(old[:i], old[i+1:]...)
				break
			}
		}
	}
	node.Station = n
	if n > 0 {
		g.station[n] = append(g.station[n], id)
	}
}

// Station returns the immutable subset of nodes assigned to station n.
func (g *Graph) Station(n int) []VertexID {
	return append([]VertexID(nil), g.station[n]...)
}

// NumStations reports how many distinct station numbers were registered.
func (g *Graph) NumStations() int { return len(g.station) }

func (g *Graph) String() string {
	return fmt.Sprintf("Graph{nodes=%d, directed=%v}", len(g.order), g.Directed)
}

// sortedVertexIDs is a small helper used by loaders/tests that need
// deterministic iteration over a VertexID set.
func sortedVertexIDs(ids map[VertexID]bool) []VertexID {
	out := make([]VertexID, 0, len(ids))
	for id := range ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
