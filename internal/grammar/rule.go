// Package grammar rewrites mission graphs with a context-sensitive graph
// grammar until only terminal symbols remain.
package grammar

import (
	"github.com/lawnchairsociety/dungeonforge/internal/mission"
)

// Template IDs with a fixed meaning. Any other positive ID creates a new node.
const (
	RootID    = 1 // The node being rewritten
	MatchedID = 2 // The pre-existing child matched by a 2-node pattern
)

// TemplateNode is one node of a rule side, identified by a small local ID
type TemplateNode struct {
	ID     int
	Symbol mission.Symbol
}

// TemplateEdge links two template nodes by ID
type TemplateEdge struct {
	From, To int
	Tight    bool
}

// Template is a small graph used as either side of a rule
type Template struct {
	Nodes []TemplateNode
	Edges []TemplateEdge
}

// Node returns the template node with the given ID
func (t Template) Node(id int) (TemplateNode, bool) {
	for _, n := range t.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return TemplateNode{}, false
}

// Rule is a named rewrite from a left pattern to a right template
type Rule struct {
	Category string
	Name     string
	Left     Template
	Right    Template
}

// IsEdgeRule reports whether the left side is a parent plus matched child
func (r Rule) IsEdgeRule() bool {
	return len(r.Left.Nodes) == 2
}

// matchesNode reports whether a 1-node rule applies to sym
func (r Rule) matchesNode(sym mission.Symbol) bool {
	if r.IsEdgeRule() {
		return false
	}
	root, _ := r.Left.Node(RootID)
	return root.Symbol == sym
}

// matchesEdge reports whether a 2-node rule applies to parent -> child
func (r Rule) matchesEdge(parent, child mission.Symbol, tight bool) bool {
	if !r.IsEdgeRule() || len(r.Left.Edges) != 1 {
		return false
	}
	root, _ := r.Left.Node(RootID)
	matched, _ := r.Left.Node(MatchedID)
	return root.Symbol == parent && matched.Symbol == child && r.Left.Edges[0].Tight == tight
}

// validate checks the structural invariants of a single rule
func (r Rule) validate() error {
	if r.Category == "" || r.Name == "" {
		return catalogErr(r, "category and name are required")
	}

	// Left side
	if n := len(r.Left.Nodes); n == 0 || n > 2 {
		return catalogErr(r, "left side has %d nodes, want 1 or 2", n)
	}
	root, ok := r.Left.Node(RootID)
	if !ok {
		return catalogErr(r, "left side has no start node (id %d)", RootID)
	}
	if root.Symbol.IsTerminal() {
		return catalogErr(r, "left start node %s is terminal", root.Symbol)
	}
	if r.IsEdgeRule() {
		if _, ok := r.Left.Node(MatchedID); !ok {
			return catalogErr(r, "2-node left side must use id %d for the child", MatchedID)
		}
		if len(r.Left.Edges) != 1 || r.Left.Edges[0].From != RootID || r.Left.Edges[0].To != MatchedID {
			return catalogErr(r, "2-node left side needs exactly one edge %d->%d", RootID, MatchedID)
		}
	} else if len(r.Left.Edges) != 0 {
		return catalogErr(r, "1-node left side cannot have edges")
	}

	// Right side
	if len(r.Right.Nodes) == 0 {
		return catalogErr(r, "right side is empty")
	}
	if _, ok := r.Right.Node(RootID); !ok {
		return catalogErr(r, "right side has no start node (id %d)", RootID)
	}
	seen := make(map[int]bool, len(r.Right.Nodes))
	for _, n := range r.Right.Nodes {
		if n.ID < RootID {
			return catalogErr(r, "template id %d must be positive", n.ID)
		}
		if seen[n.ID] {
			return catalogErr(r, "template id %d declared twice", n.ID)
		}
		if !n.Symbol.IsValid() {
			return catalogErr(r, "template id %d has invalid symbol", n.ID)
		}
		seen[n.ID] = true
	}
	if seen[MatchedID] != r.IsEdgeRule() {
		if r.IsEdgeRule() {
			return catalogErr(r, "right side drops the matched child (id %d)", MatchedID)
		}
		return catalogErr(r, "id %d used without a 2-node left side", MatchedID)
	}
	for _, e := range r.Right.Edges {
		if !seen[e.From] || !seen[e.To] {
			return catalogErr(r, "edge %d->%d references an undeclared id", e.From, e.To)
		}
		if e.From == e.To {
			return catalogErr(r, "edge %d->%d is a self loop", e.From, e.To)
		}
	}

	return nil
}

// RuleSet is a validated catalog of rules grouped by category
type RuleSet struct {
	categories []string
	rules      map[string][]Rule
	count      int
}

// NewRuleSet validates rules and groups them by category. Category order
// follows first appearance so random draws stay reproducible.
func NewRuleSet(rules []Rule) (*RuleSet, error) {
	rs := &RuleSet{rules: make(map[string][]Rule)}

	names := make(map[string]bool, len(rules))
	for _, r := range rules {
		if err := r.validate(); err != nil {
			return nil, err
		}
		key := r.Category + "/" + r.Name
		if names[key] {
			return nil, catalogErr(r, "duplicate rule name in category")
		}
		names[key] = true

		if _, ok := rs.rules[r.Category]; !ok {
			rs.categories = append(rs.categories, r.Category)
		}
		rs.rules[r.Category] = append(rs.rules[r.Category], r)
		rs.count++
	}

	return rs, nil
}

// Categories returns the category names in catalog order
func (rs *RuleSet) Categories() []string {
	return rs.categories
}

// Rules returns the rules of a category
func (rs *RuleSet) Rules(category string) []Rule {
	return rs.rules[category]
}

// Len returns the total number of rules
func (rs *RuleSet) Len() int {
	return rs.count
}
