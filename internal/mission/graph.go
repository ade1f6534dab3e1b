package mission

import (
	"errors"
	"fmt"
)

var (
	ErrNoStart         = errors.New("mission: graph has no start node")
	ErrMultipleStarts  = errors.New("mission: graph has more than one node without parents")
	ErrNoGoal          = errors.New("mission: graph has no goal node")
	ErrMultipleGoals   = errors.New("mission: graph has more than one goal node")
	ErrGoalUnreachable = errors.New("mission: goal is not reachable from start")
	ErrNotTerminal     = errors.New("mission: graph still contains non-terminal symbols")
)

// NodeID addresses a node inside a Graph's node arena
type NodeID int

// NoNode marks an absent node reference
const NoNode NodeID = -1

// NoRoom marks a mission node that has no placed room yet
const NoRoom = -1

// Edge is a parent to child link. Tight edges force the child to be built
// directly against a door of its parent.
type Edge struct {
	To    NodeID
	Tight bool
}

// Position is a diagnostic 2-D layout coordinate
type Position struct {
	X, Y int
}

// Node is a single quest step
type Node struct {
	ID         NodeID
	Symbol     Symbol
	Children   []Edge
	LockCount  int
	TemplateID int      // Only meaningful while a rule is executing
	Pos        Position // Diagnostic layout position
	Room       int      // Placed dungeon room handle (NoRoom until placed)
}

// TightChildren returns the number of tightly coupled children
func (n *Node) TightChildren() int {
	count := 0
	for _, e := range n.Children {
		if e.Tight {
			count++
		}
	}
	return count
}

// HasChild reports whether an edge to id exists
func (n *Node) HasChild(id NodeID) bool {
	for _, e := range n.Children {
		if e.To == id {
			return true
		}
	}
	return false
}

// Graph is the mission structure produced by the grammar engine
type Graph struct {
	nodes []*Node
	Start NodeID
	Goal  NodeID
}

// NewGraph creates a graph holding a single start node with the given symbol
func NewGraph(start Symbol) *Graph {
	g := &Graph{Goal: NoNode}
	g.Start = g.AddNode(start)
	if start == Goal {
		g.Goal = g.Start
	}
	return g
}

// AddNode appends a new node and returns its ID
func (g *Graph) AddNode(sym Symbol) NodeID {
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, &Node{ID: id, Symbol: sym, Room: NoRoom})
	return id
}

// Node returns the node with the given ID, or nil if it does not exist
func (g *Graph) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(g.nodes) {
		return nil
	}
	return g.nodes[id]
}

// Nodes returns the node arena in ID order
func (g *Graph) Nodes() []*Node {
	return g.nodes
}

// Len returns the number of nodes
func (g *Graph) Len() int {
	return len(g.nodes)
}

// AddEdge links parent to child. An existing edge only has its tight flag updated.
func (g *Graph) AddEdge(parent, child NodeID, tight bool) {
	p := g.Node(parent)
	if p == nil || g.Node(child) == nil {
		return
	}
	for i := range p.Children {
		if p.Children[i].To == child {
			p.Children[i].Tight = tight
			return
		}
	}
	p.Children = append(p.Children, Edge{To: child, Tight: tight})
}

// RemoveEdge unlinks parent from child, returning whether the edge existed
func (g *Graph) RemoveEdge(parent, child NodeID) bool {
	p := g.Node(parent)
	if p == nil {
		return false
	}
	for i, e := range p.Children {
		if e.To == child {
			p.Children = append(p.Children[:i], p.Children[i+1:]...)
			return true
		}
	}
	return false
}

// Parents returns every node with an edge to id, in ID order
func (g *Graph) Parents(id NodeID) []NodeID {
	var parents []NodeID
	for _, n := range g.nodes {
		if n.HasChild(id) {
			parents = append(parents, n.ID)
		}
	}
	return parents
}

// TightParent returns the node holding a tight edge to id, or NoNode
func (g *Graph) TightParent(id NodeID) NodeID {
	for _, n := range g.nodes {
		for _, e := range n.Children {
			if e.To == id && e.Tight {
				return n.ID
			}
		}
	}
	return NoNode
}

// HasTightParent reports whether id is tightly coupled to some parent
func (g *Graph) HasTightParent(id NodeID) bool {
	return g.TightParent(id) != NoNode
}

// IsTightEdge reports whether parent holds a tight edge to child
func (g *Graph) IsTightEdge(parent, child NodeID) bool {
	p := g.Node(parent)
	if p == nil {
		return false
	}
	for _, e := range p.Children {
		if e.To == child {
			return e.Tight
		}
	}
	return false
}

// NonTerminals returns the IDs of nodes whose symbol is still a placeholder
func (g *Graph) NonTerminals() []NodeID {
	var out []NodeID
	for _, n := range g.nodes {
		if !n.Symbol.IsTerminal() {
			out = append(out, n.ID)
		}
	}
	return out
}

// Count returns how many nodes carry the given symbol
func (g *Graph) Count(sym Symbol) int {
	count := 0
	for _, n := range g.nodes {
		if n.Symbol == sym {
			count++
		}
	}
	return count
}

// AppendFiller adds a filler dead end that hangs off parent. Filler nodes
// inherit their parent's lock count.
func (g *Graph) AppendFiller(parent NodeID) NodeID {
	id := g.AddNode(Filler)
	if p := g.Node(parent); p != nil {
		g.AddEdge(parent, id, true)
		g.nodes[id].LockCount = p.LockCount
	}
	return id
}

// RemoveFiller undoes AppendFiller for a filler that could not be placed.
// Only the most recently appended node can be removed.
func (g *Graph) RemoveFiller(id NodeID) bool {
	n := g.Node(id)
	if n == nil || n.Symbol != Filler || int(id) != len(g.nodes)-1 {
		return false
	}
	for _, parent := range g.Parents(id) {
		g.RemoveEdge(parent, id)
	}
	g.nodes = g.nodes[:len(g.nodes)-1]
	return true
}

// Reachable returns every node reachable from start in BFS order
func (g *Graph) Reachable() []NodeID {
	if g.Node(g.Start) == nil {
		return nil
	}
	visited := make([]bool, len(g.nodes))
	visited[g.Start] = true
	queue := []NodeID{g.Start}
	var order []NodeID

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		order = append(order, current)

		for _, e := range g.nodes[current].Children {
			if !visited[e.To] {
				visited[e.To] = true
				queue = append(queue, e.To)
			}
		}
	}

	return order
}

// Validate checks the structural invariants of a finished mission graph:
// exactly one parentless start, exactly one goal, goal reachable, no placeholders.
func (g *Graph) Validate() error {
	if g.Node(g.Start) == nil {
		return ErrNoStart
	}

	hasParent := make([]bool, len(g.nodes))
	for _, n := range g.nodes {
		for _, e := range n.Children {
			hasParent[e.To] = true
		}
	}
	for _, n := range g.nodes {
		if !hasParent[n.ID] && n.ID != g.Start {
			return fmt.Errorf("%w: node %d (%s)", ErrMultipleStarts, n.ID, n.Symbol)
		}
	}
	if hasParent[g.Start] {
		return fmt.Errorf("%w: start node %d has a parent", ErrNoStart, g.Start)
	}

	goals := g.Count(Goal)
	if goals == 0 || g.Node(g.Goal) == nil {
		return ErrNoGoal
	}
	if goals > 1 {
		return fmt.Errorf("%w: found %d", ErrMultipleGoals, goals)
	}

	reachable := false
	for _, id := range g.Reachable() {
		if id == g.Goal {
			reachable = true
			break
		}
	}
	if !reachable {
		return ErrGoalUnreachable
	}

	if nt := g.NonTerminals(); len(nt) > 0 {
		return fmt.Errorf("%w: %d left", ErrNotTerminal, len(nt))
	}

	return nil
}
