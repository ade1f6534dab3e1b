package grammar

import (
	"fmt"
	"math/rand"

	"github.com/lawnchairsociety/dungeonforge/internal/logger"
	"github.com/lawnchairsociety/dungeonforge/internal/mission"
)

// DefaultMaxPasses bounds the number of breadth-first rewrite passes
const DefaultMaxPasses = 200

// Engine rewrites mission graphs using a rule set and a seeded RNG
type Engine struct {
	rules     *RuleSet
	rng       *rand.Rand
	MaxPasses int

	// Stats from the last run
	Passes   int
	Rewrites int
}

// NewEngine creates an engine drawing every random choice from rng
func NewEngine(rules *RuleSet, rng *rand.Rand) *Engine {
	return &Engine{
		rules:     rules,
		rng:       rng,
		MaxPasses: DefaultMaxPasses,
	}
}

// Generate rewrites a fresh graph from the dungeon start symbol, validates it
// and annotates lock counts and diagnostic positions.
func (e *Engine) Generate() (*mission.Graph, error) {
	g := mission.NewGraph(mission.Dungeon)

	if err := e.Rewrite(g); err != nil {
		return nil, err
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("grammar: invalid mission graph: %w", err)
	}

	g.PropagateLockCounts()
	g.LayoutPositions()

	logger.Debug("Mission graph generated",
		"nodes", g.Len(),
		"passes", e.Passes,
		"rewrites", e.Rewrites)

	return g, nil
}

// Rewrite applies rules until no non-terminal symbols remain
func (e *Engine) Rewrite(g *mission.Graph) error {
	e.Passes = 0
	e.Rewrites = 0

	for {
		remaining := g.NonTerminals()
		if len(remaining) == 0 {
			return nil
		}
		if e.MaxPasses > 0 && e.Passes >= e.MaxPasses {
			return fmt.Errorf("%w: %d non-terminals left after %d passes", ErrGrammarStuck, len(remaining), e.Passes)
		}

		e.Passes++
		if e.pass(g) == 0 {
			return fmt.Errorf("%w: no rule matches %s", ErrGrammarStuck, describe(g, remaining))
		}
	}
}

// pass walks the graph breadth first from the start node, rewriting every
// non-terminal that a rule matches. Nodes created during the pass are
// walked through but left for the next pass. Returns the number of rewrites.
func (e *Engine) pass(g *mission.Graph) int {
	rewrites := 0
	existing := mission.NodeID(g.Len())
	visited := map[mission.NodeID]bool{g.Start: true}
	queue := []mission.NodeID{g.Start}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		n := g.Node(id)
		if id < existing && !n.Symbol.IsTerminal() {
			if e.rewriteNode(g, n) {
				rewrites++
			}
		}

		for _, edge := range n.Children {
			if !visited[edge.To] {
				visited[edge.To] = true
				queue = append(queue, edge.To)
			}
		}
	}

	e.Rewrites += rewrites
	return rewrites
}

// match is one applicable rule, with the child edge a 2-node rule matched
type match struct {
	rule   Rule
	edge   mission.Edge
	paired bool
}

// rewriteNode picks a matching rule for n and executes it. Edge rules take
// precedence over node rules.
func (e *Engine) rewriteNode(g *mission.Graph, n *mission.Node) bool {
	edgeMatches, nodeMatches := e.collect(g, n)

	candidates := edgeMatches
	if len(candidates) == 0 {
		candidates = nodeMatches
	}
	if len(candidates) == 0 {
		return false
	}

	// Uniform over categories first, then over rules of that category
	categories := make([]string, 0, len(candidates))
	for _, m := range candidates {
		if len(categories) == 0 || categories[len(categories)-1] != m.rule.Category {
			categories = append(categories, m.rule.Category)
		}
	}
	category := categories[e.rng.Intn(len(categories))]

	var inCategory []match
	for _, m := range candidates {
		if m.rule.Category == category {
			inCategory = append(inCategory, m)
		}
	}
	chosen := inCategory[e.rng.Intn(len(inCategory))]

	e.apply(g, n, chosen)

	logger.Debug("Rule applied",
		"node", n.ID,
		"category", chosen.rule.Category,
		"rule", chosen.rule.Name)

	return true
}

// collect gathers the 2-node and 1-node matches for n. Matches are grouped
// by category in catalog order and each rule is listed once, bound to the
// first child edge it matches.
func (e *Engine) collect(g *mission.Graph, n *mission.Node) (edgeMatches, nodeMatches []match) {
	for _, category := range e.rules.Categories() {
		for _, r := range e.rules.Rules(category) {
			if !r.IsEdgeRule() {
				if r.matchesNode(n.Symbol) {
					nodeMatches = append(nodeMatches, match{rule: r})
				}
				continue
			}
			for _, edge := range n.Children {
				child := g.Node(edge.To)
				if r.matchesEdge(n.Symbol, child.Symbol, edge.Tight) {
					edgeMatches = append(edgeMatches, match{rule: r, edge: edge, paired: true})
					break
				}
			}
		}
	}
	return edgeMatches, nodeMatches
}

// apply executes a rule on n. The rewritten node keeps its identity and
// incoming edges; the matched child keeps its identity and outgoing edges.
func (e *Engine) apply(g *mission.Graph, n *mission.Node, m match) {
	if m.paired {
		g.RemoveEdge(n.ID, m.edge.To)
	}

	ids := map[int]mission.NodeID{RootID: n.ID}
	if m.paired {
		ids[MatchedID] = m.edge.To
	}

	for _, tn := range m.rule.Right.Nodes {
		id, ok := ids[tn.ID]
		if !ok {
			id = g.AddNode(tn.Symbol)
			ids[tn.ID] = id
		}
		target := g.Node(id)
		target.Symbol = tn.Symbol
		target.TemplateID = tn.ID
		if tn.Symbol == mission.Goal {
			g.Goal = id
		}
	}

	for _, te := range m.rule.Right.Edges {
		g.AddEdge(ids[te.From], ids[te.To], te.Tight)
	}

	// Template IDs are only meaningful while the rule executes
	for _, id := range ids {
		g.Node(id).TemplateID = 0
	}
}

// describe lists the stuck symbols for error messages
func describe(g *mission.Graph, ids []mission.NodeID) string {
	out := ""
	for i, id := range ids {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s(%d)", g.Node(id).Symbol, id)
	}
	return out
}
