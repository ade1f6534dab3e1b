package mission

// PropagateLockCounts assigns every node the number of locked doors between
// the start and that node. A node reachable through several parents keeps
// the highest count; lock symbols add one on top of their parent's count.
func (g *Graph) PropagateLockCounts() {
	if g.Node(g.Start) == nil {
		return
	}

	for _, n := range g.nodes {
		n.LockCount = 0
	}

	visited := make([]bool, len(g.nodes))
	visited[g.Start] = true
	queue := []NodeID{g.Start}

	// Re-enqueueing on every increase converges on a DAG; the cap guards
	// against a malformed catalog producing a cycle through a lock.
	budget := len(g.nodes) * len(g.nodes)

	for len(queue) > 0 && budget > 0 {
		budget--
		current := g.nodes[queue[0]]
		queue = queue[1:]

		for _, e := range current.Children {
			child := g.nodes[e.To]
			want := current.LockCount
			if child.Symbol.IsLock() {
				want++
			}
			if !visited[child.ID] {
				visited[child.ID] = true
				child.LockCount = want
				queue = append(queue, child.ID)
				continue
			}
			if want > child.LockCount {
				child.LockCount = want
				queue = append(queue, child.ID)
			}
		}
	}
}

// Order is the generation-priority walk of a mission graph
type Order struct {
	Nodes  []NodeID // Nodes in the order rooms must be built
	Parent []NodeID // Generation parent of each node, indexed by NodeID
}

// ParentOf returns the node whose room a node is generated from, or NoNode
func (o *Order) ParentOf(id NodeID) NodeID {
	if id < 0 || int(id) >= len(o.Parent) {
		return NoNode
	}
	return o.Parent[id]
}

// PriorityOrder walks the graph breadth first, emitting tightly coupled
// children immediately after their binding parent. A loosely coupled child
// that is tightly coupled to another node is skipped until that node is
// reached, so every node is enqueued exactly once.
func (g *Graph) PriorityOrder() *Order {
	order := &Order{Parent: make([]NodeID, len(g.nodes))}
	for i := range order.Parent {
		order.Parent[i] = NoNode
	}
	if g.Node(g.Start) == nil {
		return order
	}

	queued := make([]bool, len(g.nodes))
	queued[g.Start] = true
	deque := []NodeID{g.Start}

	for len(deque) > 0 {
		current := g.nodes[deque[0]]
		deque = deque[1:]
		order.Nodes = append(order.Nodes, current.ID)

		var front, back []NodeID
		for _, e := range prioritized(current.Children) {
			if queued[e.To] {
				continue
			}
			if !e.Tight && g.HasTightParent(e.To) {
				continue
			}
			queued[e.To] = true
			order.Parent[e.To] = current.ID
			if e.Tight {
				front = append(front, e.To)
			} else {
				back = append(back, e.To)
			}
		}

		next := make([]NodeID, 0, len(front)+len(deque)+len(back))
		next = append(next, front...)
		next = append(next, deque...)
		next = append(next, back...)
		deque = next
	}

	return order
}

// prioritized returns the edges with tight ones first, keeping relative order
func prioritized(edges []Edge) []Edge {
	out := make([]Edge, 0, len(edges))
	for _, e := range edges {
		if e.Tight {
			out = append(out, e)
		}
	}
	for _, e := range edges {
		if !e.Tight {
			out = append(out, e)
		}
	}
	return out
}

// LayoutPositions assigns diagnostic positions: Y is the BFS depth from the
// start, X the index within that depth.
func (g *Graph) LayoutPositions() {
	if g.Node(g.Start) == nil {
		return
	}

	depth := make([]int, len(g.nodes))
	seen := make([]bool, len(g.nodes))
	seen[g.Start] = true
	queue := []NodeID{g.Start}
	width := map[int]int{}

	for len(queue) > 0 {
		current := g.nodes[queue[0]]
		queue = queue[1:]

		d := depth[current.ID]
		current.Pos = Position{X: width[d], Y: d}
		width[d]++

		for _, e := range current.Children {
			if !seen[e.To] {
				seen[e.To] = true
				depth[e.To] = d + 1
				queue = append(queue, e.To)
			}
		}
	}
}
