package core

import "testing"

// createGrid builds an n x n 4-connected grid, matching the teacher's test
// helper naming and shape (internal/algo/solver_test.go's createGrid).
func createGrid(n int) *Graph {
	g := NewGraph(false)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			g.AddNode(&Node{ID: VertexID(y*n + x), Pos: Pos{X: x, Y: y}})
		}
	}
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			id := VertexID(y*n + x)
			if x+1 < n {
				g.AddEdge(id, VertexID(y*n+x+1))
			}
			if y+1 < n {
				g.AddEdge(id, VertexID((y+1)*n+x))
			}
		}
	}
	return g
}

func TestGraphAddEdgeSymmetric(t *testing.T) {
	g := createGrid(3)
	if !g.HasEdge(0, 1) || !g.HasEdge(1, 0) {
		t.Fatalf("undirected AddEdge should register both directions")
	}
}

func TestGraphDirectedNotSymmetric(t *testing.T) {
	g := NewGraph(true)
	g.AddNode(&Node{ID: 0})
	g.AddNode(&Node{ID: 1})
	g.AddEdge(0, 1)
	if !g.HasEdge(0, 1) {
		t.Fatalf("expected directed edge 0->1")
	}
	if g.HasEdge(1, 0) {
		t.Fatalf("directed graph should not add the reverse edge")
	}
}

func TestPathAndDist(t *testing.T) {
	g := createGrid(3)
	path, ok := g.Path(0, 8)
	if !ok {
		t.Fatalf("expected a path across the grid")
	}
	if len(path) != 5 {
		t.Fatalf("expected corner-to-corner path length 5 (4 hops), got %d", len(path))
	}
	if d := g.Dist(0, 8); d != 4 {
		t.Fatalf("expected hop distance 4, got %d", d)
	}
}

func TestWarshallFloydMatchesPathDist(t *testing.T) {
	g := createGrid(4)
	g.WarshallFloyd()
	for _, u := range g.Nodes() {
		for _, v := range g.Nodes() {
			want := g.heuristic(u, v) // Manhattan on a grid equals hop distance
			if got := g.Dist(u, v); got != want {
				t.Fatalf("Dist(%d,%d) = %d, want %d", u, v, got, want)
			}
		}
	}
}

func TestMarkPickupUpdatesSubset(t *testing.T) {
	g := createGrid(2)
	if len(g.Pickups()) != 0 {
		t.Fatalf("expected no pickups before marking")
	}
	g.MarkPickup(0)
	pk := g.Pickups()
	if len(pk) != 1 || pk[0] != 0 {
		t.Fatalf("expected node 0 registered as a pickup, got %v", pk)
	}
	if !g.Node(0).Pickup {
		t.Fatalf("expected node 0's Pickup flag set")
	}
}

func TestSetStationReassignment(t *testing.T) {
	g := createGrid(2)
	g.SetStation(0, 1)
	g.SetStation(0, 2)
	if len(g.Station(1)) != 0 {
		t.Fatalf("expected station 1 to no longer contain node 0")
	}
	if s := g.Station(2); len(s) != 1 || s[0] != 0 {
		t.Fatalf("expected station 2 to contain node 0, got %v", s)
	}
}
