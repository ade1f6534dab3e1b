package grammar

import (
	m "github.com/lawnchairsociety/dungeonforge/internal/mission"
)

// node builds a template node
func node(id int, sym m.Symbol) TemplateNode {
	return TemplateNode{ID: id, Symbol: sym}
}

// loose builds a loosely coupled template edge
func loose(from, to int) TemplateEdge {
	return TemplateEdge{From: from, To: to}
}

// tight builds a tightly coupled template edge
func tight(from, to int) TemplateEdge {
	return TemplateEdge{From: from, To: to, Tight: true}
}

// nodeRule builds a 1-node rule rewriting sym
func nodeRule(category, name string, sym m.Symbol, right Template) Rule {
	return Rule{
		Category: category,
		Name:     name,
		Left:     Template{Nodes: []TemplateNode{node(RootID, sym)}},
		Right:    right,
	}
}

// edgeRules builds one 2-node rule per continuation symbol. The left side
// always matches a loosely coupled edge sym -> cont.
func edgeRules(category, name string, sym m.Symbol, conts []m.Symbol, right func(cont m.Symbol) Template) []Rule {
	rules := make([]Rule, 0, len(conts))
	for _, cont := range conts {
		rules = append(rules, Rule{
			Category: category,
			Name:     name + ">" + cont.String(),
			Left: Template{
				Nodes: []TemplateNode{node(RootID, sym), node(MatchedID, cont)},
				Edges: []TemplateEdge{loose(RootID, MatchedID)},
			},
			Right: right(cont),
		})
	}
	return rules
}

var (
	chainConts  = []m.Symbol{m.BossLock, m.Lock}
	lockConts   = []m.Symbol{m.BossLock, m.Lock, m.Room}
	linearConts = []m.Symbol{m.BossLock, m.Lock, m.Key, m.BossKey, m.Room}
	hookConts   = []m.Symbol{m.Key, m.BossKey}
)

// DefaultRules returns the built-in rule catalog
func DefaultRules() []Rule {
	var rules []Rule

	// Dungeon: the whole level skeleton. The boss key hangs off a side hook.
	rules = append(rules,
		nodeRule("dungeon", "standard", m.Dungeon, Template{
			Nodes: []TemplateNode{
				node(1, m.Entrance), node(3, m.Chain), node(4, m.BossLock),
				node(5, m.Boss), node(6, m.Goal), node(7, m.Hook), node(8, m.BossKey),
			},
			Edges: []TemplateEdge{
				loose(1, 3), loose(3, 4), tight(4, 5), tight(5, 6), loose(3, 7), loose(7, 8),
			},
		}),
		nodeRule("dungeon", "compact", m.Dungeon, Template{
			Nodes: []TemplateNode{
				node(1, m.Entrance), node(3, m.Chain), node(4, m.BossLock),
				node(5, m.Boss), node(6, m.Goal), node(7, m.Hook), node(8, m.BossKey),
			},
			Edges: []TemplateEdge{
				loose(1, 3), loose(3, 4), tight(4, 5), tight(5, 6), loose(1, 7), loose(7, 8),
			},
		}),
	)

	// Chain: main progression up to its continuation
	rules = append(rules, edgeRules("chain-linear", "room", m.Chain, chainConts, func(cont m.Symbol) Template {
		return Template{
			Nodes: []TemplateNode{node(1, m.Room), node(3, m.ChainLinear), node(2, cont)},
			Edges: []TemplateEdge{loose(1, 3), loose(3, 2)},
		}
	})...)
	rules = append(rules, edgeRules("chain-linear", "test", m.Chain, chainConts, func(cont m.Symbol) Template {
		return Template{
			Nodes: []TemplateNode{node(1, m.Test), node(3, m.ChainLinear), node(2, cont)},
			Edges: []TemplateEdge{loose(1, 3), loose(3, 2)},
		}
	})...)
	rules = append(rules, edgeRules("chain-keylock", "keylock", m.Chain, chainConts, func(cont m.Symbol) Template {
		return Template{
			Nodes: []TemplateNode{node(1, m.Room), node(3, m.KeyLock), node(2, cont)},
			Edges: []TemplateEdge{loose(1, 3), loose(3, 2)},
		}
	})...)
	rules = append(rules, edgeRules("chain-keylock", "keylock-fork", m.Chain, chainConts, func(cont m.Symbol) Template {
		return Template{
			Nodes: []TemplateNode{node(1, m.Room), node(3, m.KeyLock), node(4, m.Fork), node(2, cont)},
			Edges: []TemplateEdge{loose(1, 3), loose(3, 2), loose(1, 4)},
		}
	})...)
	rules = append(rules, edgeRules("chain-split", "double-keylock", m.Chain, chainConts, func(cont m.Symbol) Template {
		return Template{
			Nodes: []TemplateNode{
				node(1, m.Test), node(3, m.KeyLock), node(4, m.Room), node(5, m.KeyLock), node(2, cont),
			},
			Edges: []TemplateEdge{loose(1, 3), loose(3, 4), loose(4, 5), loose(5, 2)},
		}
	})...)

	// KeyLock: a locked region whose key sits in front of it
	rules = append(rules, edgeRules("keylock", "basic", m.KeyLock, lockConts, func(cont m.Symbol) Template {
		return Template{
			Nodes: []TemplateNode{
				node(1, m.Room), node(3, m.Lock), node(4, m.ChainLinear), node(5, m.Key), node(2, cont),
			},
			Edges: []TemplateEdge{loose(1, 3), tight(3, 4), loose(4, 2), loose(1, 5)},
		}
	})...)
	rules = append(rules, edgeRules("keylock", "guarded", m.KeyLock, lockConts, func(cont m.Symbol) Template {
		return Template{
			Nodes: []TemplateNode{
				node(1, m.Test), node(3, m.Lock), node(4, m.Room), node(5, m.Hook), node(6, m.Key), node(2, cont),
			},
			Edges: []TemplateEdge{loose(1, 3), tight(3, 4), loose(4, 2), loose(1, 5), loose(5, 6)},
		}
	})...)
	rules = append(rules, edgeRules("keylock", "item", m.KeyLock, lockConts, func(cont m.Symbol) Template {
		return Template{
			Nodes: []TemplateNode{
				node(1, m.Room), node(3, m.Lock), node(4, m.Room), node(5, m.ChainLinear), node(6, m.Key), node(2, cont),
			},
			Edges: []TemplateEdge{loose(1, 3), tight(3, 4), loose(4, 2), loose(1, 5), loose(5, 6)},
		}
	})...)

	// ChainLinear: a short run of rooms
	rules = append(rules, edgeRules("linear", "single", m.ChainLinear, linearConts, func(cont m.Symbol) Template {
		return Template{
			Nodes: []TemplateNode{node(1, m.Room), node(2, cont)},
			Edges: []TemplateEdge{loose(1, 2)},
		}
	})...)
	rules = append(rules, edgeRules("linear", "test", m.ChainLinear, linearConts, func(cont m.Symbol) Template {
		return Template{
			Nodes: []TemplateNode{node(1, m.Test), node(2, cont)},
			Edges: []TemplateEdge{loose(1, 2)},
		}
	})...)
	rules = append(rules, edgeRules("linear", "treasure", m.ChainLinear, linearConts, func(cont m.Symbol) Template {
		return Template{
			Nodes: []TemplateNode{node(1, m.Room), node(3, m.Treasure), node(2, cont)},
			Edges: []TemplateEdge{loose(1, 2), loose(1, 3)},
		}
	})...)
	rules = append(rules, edgeRules("linear", "extend", m.ChainLinear, linearConts, func(cont m.Symbol) Template {
		return Template{
			Nodes: []TemplateNode{node(1, m.Room), node(3, m.ChainLinear), node(2, cont)},
			Edges: []TemplateEdge{loose(1, 3), loose(3, 2)},
		}
	})...)
	rules = append(rules, edgeRules("linear-secret", "secret", m.ChainLinear, linearConts, func(cont m.Symbol) Template {
		return Template{
			Nodes: []TemplateNode{node(1, m.Room), node(3, m.Secret), node(2, cont)},
			Edges: []TemplateEdge{loose(1, 2), loose(1, 3)},
		}
	})...)

	// Hook: side branch ending in a key
	rules = append(rules, edgeRules("hook", "direct", m.Hook, hookConts, func(cont m.Symbol) Template {
		return Template{
			Nodes: []TemplateNode{node(1, m.Room), node(2, cont)},
			Edges: []TemplateEdge{loose(1, 2)},
		}
	})...)
	rules = append(rules, edgeRules("hook", "test", m.Hook, hookConts, func(cont m.Symbol) Template {
		return Template{
			Nodes: []TemplateNode{node(1, m.Test), node(2, cont)},
			Edges: []TemplateEdge{tight(1, 2)},
		}
	})...)
	rules = append(rules, edgeRules("hook", "miniboss", m.Hook, hookConts, func(cont m.Symbol) Template {
		return Template{
			Nodes: []TemplateNode{node(1, m.MiniBoss), node(2, cont)},
			Edges: []TemplateEdge{tight(1, 2)},
		}
	})...)

	// Fork: optional dead ends
	rules = append(rules,
		nodeRule("fork", "treasure", m.Fork, Template{
			Nodes: []TemplateNode{node(1, m.Treasure)},
		}),
		nodeRule("fork", "secret", m.Fork, Template{
			Nodes: []TemplateNode{node(1, m.Room), node(3, m.Secret)},
			Edges: []TemplateEdge{loose(1, 3)},
		}),
		nodeRule("fork", "test-treasure", m.Fork, Template{
			Nodes: []TemplateNode{node(1, m.Test), node(3, m.Treasure)},
			Edges: []TemplateEdge{tight(1, 3)},
		}),
		nodeRule("fork", "dead-end", m.Fork, Template{
			Nodes: []TemplateNode{node(1, m.Room)},
		}),
		// Test room reachable from the fork but built against the side room
		nodeRule("fork", "loop", m.Fork, Template{
			Nodes: []TemplateNode{node(1, m.Room), node(3, m.Test), node(4, m.Room)},
			Edges: []TemplateEdge{loose(1, 3), loose(1, 4), tight(4, 3)},
		}),
	)

	return rules
}

// DefaultRuleSet returns the built-in catalog, validated
func DefaultRuleSet() (*RuleSet, error) {
	return NewRuleSet(DefaultRules())
}
