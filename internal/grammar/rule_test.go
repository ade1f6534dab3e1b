package grammar

import (
	"errors"
	"testing"

	"github.com/lawnchairsociety/dungeonforge/internal/mission"
)

func TestDefaultRuleSetValid(t *testing.T) {
	rs, err := DefaultRuleSet()
	if err != nil {
		t.Fatalf("DefaultRuleSet() error: %v", err)
	}
	if rs.Len() != len(DefaultRules()) {
		t.Errorf("Len() = %d, want %d", rs.Len(), len(DefaultRules()))
	}

	// Every non-terminal must be rewritable by at least one rule
	covered := map[mission.Symbol]bool{}
	for _, category := range rs.Categories() {
		for _, r := range rs.Rules(category) {
			root, _ := r.Left.Node(RootID)
			covered[root.Symbol] = true
		}
	}
	for _, s := range mission.Symbols() {
		if !s.IsTerminal() && !covered[s] {
			t.Errorf("no rule rewrites %v", s)
		}
	}
}

func TestCatalogErrors(t *testing.T) {
	valid := nodeRule("fork", "dead-end", mission.Fork, Template{
		Nodes: []TemplateNode{node(1, mission.Room)},
	})

	tests := []struct {
		name   string
		mutate func(r *Rule)
	}{
		{"three left nodes", func(r *Rule) {
			r.Left.Nodes = append(r.Left.Nodes, node(2, mission.Room), node(3, mission.Room))
		}},
		{"no left start", func(r *Rule) {
			r.Left.Nodes = []TemplateNode{node(5, mission.Fork)}
		}},
		{"no right start", func(r *Rule) {
			r.Right.Nodes = []TemplateNode{node(3, mission.Room)}
		}},
		{"empty right", func(r *Rule) {
			r.Right = Template{}
		}},
		{"terminal left", func(r *Rule) {
			r.Left.Nodes = []TemplateNode{node(1, mission.Room)}
		}},
		{"matched id without edge rule", func(r *Rule) {
			r.Right.Nodes = append(r.Right.Nodes, node(2, mission.Room))
		}},
		{"dangling edge", func(r *Rule) {
			r.Right.Edges = []TemplateEdge{loose(1, 9)}
		}},
		{"missing name", func(r *Rule) {
			r.Name = ""
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			r.Left.Nodes = append([]TemplateNode(nil), valid.Left.Nodes...)
			r.Right.Nodes = append([]TemplateNode(nil), valid.Right.Nodes...)
			tt.mutate(&r)

			_, err := NewRuleSet([]Rule{r})
			if !errors.Is(err, ErrCatalog) {
				t.Fatalf("NewRuleSet() = %v, want ErrCatalog", err)
			}
			var catErr *CatalogError
			if !errors.As(err, &catErr) {
				t.Fatalf("error %v is not a *CatalogError", err)
			}
			if catErr.Category != "fork" {
				t.Errorf("Category = %q, want fork", catErr.Category)
			}
		})
	}
}

func TestDuplicateRuleName(t *testing.T) {
	r := nodeRule("fork", "dead-end", mission.Fork, Template{
		Nodes: []TemplateNode{node(1, mission.Room)},
	})

	_, err := NewRuleSet([]Rule{r, r})
	var catErr *CatalogError
	if !errors.As(err, &catErr) {
		t.Fatalf("NewRuleSet() = %v, want *CatalogError", err)
	}
	if catErr.Rule != "dead-end" {
		t.Errorf("Rule = %q, want dead-end", catErr.Rule)
	}

	// Same name in another category is fine
	other := r
	other.Category = "fork-alt"
	if _, err := NewRuleSet([]Rule{r, other}); err != nil {
		t.Errorf("NewRuleSet() error: %v", err)
	}
}

func TestEdgeRuleMustKeepMatchedChild(t *testing.T) {
	r := Rule{
		Category: "hook",
		Name:     "drop",
		Left: Template{
			Nodes: []TemplateNode{node(1, mission.Hook), node(2, mission.Key)},
			Edges: []TemplateEdge{loose(1, 2)},
		},
		Right: Template{Nodes: []TemplateNode{node(1, mission.Room)}},
	}

	if _, err := NewRuleSet([]Rule{r}); !errors.Is(err, ErrCatalog) {
		t.Errorf("NewRuleSet() = %v, want ErrCatalog", err)
	}
}

func TestCategoriesKeepCatalogOrder(t *testing.T) {
	rs, err := DefaultRuleSet()
	if err != nil {
		t.Fatalf("DefaultRuleSet() error: %v", err)
	}
	cats := rs.Categories()
	if len(cats) == 0 || cats[0] != "dungeon" {
		t.Errorf("Categories()[0] = %v, want dungeon", cats)
	}
}
