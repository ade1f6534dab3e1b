package mission

import "testing"

// buildDiamond joins a locked and an unlocked path on a shared room:
//
//	entrance -> a(room) -> lock -> c(room)
//	entrance -> b(room) ----------> c(room)
func buildDiamond() (*Graph, NodeID) {
	g := NewGraph(Entrance)
	a := g.AddNode(Room)
	b := g.AddNode(Room)
	lock := g.AddNode(Lock)
	c := g.AddNode(Room)
	goal := g.AddNode(Goal)
	g.Goal = goal

	g.AddEdge(g.Start, a, false)
	g.AddEdge(g.Start, b, false)
	g.AddEdge(a, lock, false)
	g.AddEdge(lock, c, false)
	g.AddEdge(b, c, false)
	g.AddEdge(c, goal, true)
	return g, c
}

func TestPropagateLockCounts(t *testing.T) {
	g := buildLinear(t)
	g.PropagateLockCounts()

	want := map[Symbol]int{Entrance: 0, Room: 0, Key: 0, Lock: 1, Goal: 1}
	for _, n := range g.Nodes() {
		if n.LockCount != want[n.Symbol] {
			t.Errorf("%v LockCount = %d, want %d", n.Symbol, n.LockCount, want[n.Symbol])
		}
	}
}

func TestPropagateLockCountsDiamond(t *testing.T) {
	g, shared := buildDiamond()
	g.PropagateLockCounts()

	if got := g.Node(shared).LockCount; got != 1 {
		t.Errorf("shared room LockCount = %d, want 1 (deepest parent)", got)
	}
	if got := g.Node(g.Goal).LockCount; got != 1 {
		t.Errorf("goal LockCount = %d, want 1", got)
	}
}

func TestLockCountMonotonic(t *testing.T) {
	g, _ := buildDiamond()
	g.PropagateLockCounts()

	for _, n := range g.Nodes() {
		for _, e := range n.Children {
			child := g.Node(e.To)
			if child.LockCount < n.LockCount {
				t.Errorf("%v(%d) has lock count %d below parent %v(%d)",
					child.Symbol, child.ID, child.LockCount, n.Symbol, n.LockCount)
			}
			if child.Symbol.IsLock() && child.LockCount < n.LockCount+1 {
				t.Errorf("lock %d lock count %d, want at least %d", child.ID, child.LockCount, n.LockCount+1)
			}
		}
	}
}

func TestPriorityOrderTightFollowsParent(t *testing.T) {
	g := NewGraph(Entrance)
	a := g.AddNode(Room)
	b := g.AddNode(Room)
	tight := g.AddNode(Test)
	goal := g.AddNode(Goal)
	g.Goal = goal

	g.AddEdge(g.Start, a, false)
	g.AddEdge(g.Start, b, false)
	g.AddEdge(a, tight, true)
	g.AddEdge(b, goal, false)

	order := g.PriorityOrder()
	if len(order.Nodes) != g.Len() {
		t.Fatalf("order has %d nodes, want %d", len(order.Nodes), g.Len())
	}

	pos := positions(order)
	if pos[tight] != pos[a]+1 {
		t.Errorf("tight child at %d, parent at %d; want immediately after", pos[tight], pos[a])
	}
	if order.ParentOf(tight) != a {
		t.Errorf("ParentOf(tight) = %d, want %d", order.ParentOf(tight), a)
	}
	if order.ParentOf(g.Start) != NoNode {
		t.Errorf("ParentOf(start) = %d, want NoNode", order.ParentOf(g.Start))
	}
}

func TestPriorityOrderDefersToTightParent(t *testing.T) {
	// fork-style loop: room -> test, room -> side =t=> test
	g := NewGraph(Entrance)
	room := g.AddNode(Room)
	test := g.AddNode(Test)
	side := g.AddNode(Room)
	goal := g.AddNode(Goal)
	g.Goal = goal

	g.AddEdge(g.Start, room, false)
	g.AddEdge(room, test, false)
	g.AddEdge(room, side, false)
	g.AddEdge(side, test, true)
	g.AddEdge(room, goal, false)

	order := g.PriorityOrder()
	pos := positions(order)

	if len(order.Nodes) != g.Len() {
		t.Fatalf("order has %d nodes, want %d", len(order.Nodes), g.Len())
	}
	if order.ParentOf(test) != side {
		t.Errorf("ParentOf(test) = %d, want tight parent %d", order.ParentOf(test), side)
	}
	if pos[test] != pos[side]+1 {
		t.Errorf("test at %d, side at %d; want immediately after its tight parent", pos[test], pos[side])
	}

	seen := map[NodeID]int{}
	for _, id := range order.Nodes {
		seen[id]++
	}
	for id, count := range seen {
		if count != 1 {
			t.Errorf("node %d emitted %d times", id, count)
		}
	}
}

func TestPriorityOrderParentsFirst(t *testing.T) {
	g, _ := buildDiamond()
	order := g.PriorityOrder()
	pos := positions(order)

	for _, id := range order.Nodes {
		if parent := order.ParentOf(id); parent != NoNode && pos[parent] > pos[id] {
			t.Errorf("node %d emitted before its generation parent %d", id, parent)
		}
	}
}

func TestLayoutPositions(t *testing.T) {
	g := buildLinear(t)
	g.LayoutPositions()

	if pos := g.Node(g.Start).Pos; pos != (Position{0, 0}) {
		t.Errorf("start Pos = %v, want {0 0}", pos)
	}
	if pos := g.Node(g.Goal).Pos; pos.Y != 3 {
		t.Errorf("goal depth = %d, want 3", pos.Y)
	}
	// key and lock share depth 2
	if key, lock := g.Node(3).Pos, g.Node(2).Pos; key.Y != lock.Y || key.X == lock.X {
		t.Errorf("siblings at %v and %v, want same row, distinct columns", key, lock)
	}
}

func positions(o *Order) map[NodeID]int {
	pos := make(map[NodeID]int, len(o.Nodes))
	for i, id := range o.Nodes {
		pos[id] = i
	}
	return pos
}
