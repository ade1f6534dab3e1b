package layout

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lawnchairsociety/dungeonforge/internal/blueprint"
	"github.com/lawnchairsociety/dungeonforge/internal/generator"
	"github.com/lawnchairsociety/dungeonforge/internal/grammar"
)

// level generates the first successful level at or after seed
func level(t *testing.T, seed uint64) (*generator.Result, *blueprint.Catalog) {
	t.Helper()
	cat, err := blueprint.Default()
	if err != nil {
		t.Fatalf("blueprint.Default() error: %v", err)
	}
	rules, err := grammar.DefaultRuleSet()
	if err != nil {
		t.Fatalf("grammar.DefaultRuleSet() error: %v", err)
	}
	for ; seed < 1000; seed++ {
		if res, err := generator.Generate(seed, cat, rules, generator.DefaultOptions()); err == nil {
			return res, cat
		}
	}
	t.Fatal("no seed produced a level")
	return nil, nil
}

func TestSaveLoadBuild(t *testing.T) {
	res, cat := level(t, 11)
	path := filepath.Join(t.TempDir(), "level.yaml")

	if err := Save(path, res); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if !FileExists(path) {
		t.Fatal("FileExists() = false after Save")
	}

	data, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if data.Seed != res.Seed {
		t.Errorf("Seed = %d, want %d", data.Seed, res.Seed)
	}
	if len(data.Objects) != len(res.Population.Objects) {
		t.Errorf("Objects = %d, want %d", len(data.Objects), len(res.Population.Objects))
	}

	lvl, err := data.Build(cat)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	// The rebuilt layout hashes the same as the generated one
	if got, want := generator.DungeonFingerprint(lvl.Dungeon), res.Fingerprint.Dungeon; got != want {
		t.Errorf("rebuilt dungeon fingerprint = %s, want %s", got, want)
	}
	if lvl.Mission.Len() != res.Mission.Len() {
		t.Errorf("mission nodes = %d, want %d", lvl.Mission.Len(), res.Mission.Len())
	}
	if lvl.Mission.Start != res.Mission.Start || lvl.Mission.Goal != res.Mission.Goal {
		t.Error("mission start/goal not restored")
	}
	for _, n := range res.Mission.Nodes() {
		got := lvl.Mission.Node(n.ID)
		if got.Symbol != n.Symbol || got.LockCount != n.LockCount || got.Room != n.Room || len(got.Children) != len(n.Children) {
			t.Errorf("node %d = %+v, want %+v", n.ID, got, n)
		}
	}
}

func TestBuildUnknownBlueprint(t *testing.T) {
	res, _ := level(t, 3)
	data := FromResult(res)

	other, err := blueprint.NewCatalog([]*blueprint.Blueprint{mustParse(t)})
	if err != nil {
		t.Fatalf("NewCatalog() error: %v", err)
	}
	if _, err := data.Build(other); !errors.Is(err, ErrUnknownBlueprint) {
		t.Errorf("Build() error = %v, want ErrUnknownBlueprint", err)
	}
}

func TestBuildBadLink(t *testing.T) {
	res, cat := level(t, 5)
	data := FromResult(res)

	broken := false
	for r := range data.Rooms {
		for d := range data.Rooms[r].Doors {
			if !broken && data.Rooms[r].Doors[d].Link != "" {
				data.Rooms[r].Doors[d].Link = "999.0"
				broken = true
			}
		}
	}
	if !broken {
		t.Fatal("level has no linked doors")
	}

	if _, err := data.Build(cat); !errors.Is(err, ErrBadLink) {
		t.Errorf("Build() error = %v, want ErrBadLink", err)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Load() of a missing file should fail")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("rooms: [unterminated"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil {
		t.Error("Load() of malformed YAML should fail")
	}
}

func TestRender(t *testing.T) {
	res, cat := level(t, 2)
	lvl, err := FromResult(res).Build(cat)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	lines := lvl.Render()
	if len(lines) == 0 {
		t.Fatal("Render() returned no lines")
	}
	joined := strings.Join(lines, "\n")
	if strings.Count(joined, string(glyphEntrance)) != 2 {
		t.Errorf("map should show the two entrance door tiles:\n%s", joined)
	}
	if strings.Count(joined, string(glyphGoal)) != 2 {
		t.Errorf("map should show the two goal door tiles:\n%s", joined)
	}
	if strings.ContainsRune(joined, glyphStray) {
		t.Errorf("map shows an unresolved door:\n%s", joined)
	}

	if got := len(lvl.Summary()); got != lvl.Dungeon.Len() {
		t.Errorf("Summary() = %d lines, want %d", got, lvl.Dungeon.Len())
	}
	if !strings.Contains(Legend(), "bombable wall") {
		t.Error("Legend() missing bombable wall entry")
	}
}

func TestParseDoorRef(t *testing.T) {
	ref, err := parseDoorRef("12.3")
	if err != nil || ref.Room != 12 || ref.Door != 3 {
		t.Errorf("parseDoorRef(12.3) = %v, %v", ref, err)
	}
	for _, bad := range []string{"", "12", "a.b", "1.x"} {
		if _, err := parseDoorRef(bad); !errors.Is(err, ErrBadLink) {
			t.Errorf("parseDoorRef(%q) error = %v, want ErrBadLink", bad, err)
		}
	}
}

func mustParse(t *testing.T) *blueprint.Blueprint {
	t.Helper()
	b, err := blueprint.ParseLayout("closet", 0, 0, "\n##DD##\n#....#\n######\n")
	if err != nil {
		t.Fatalf("ParseLayout() error: %v", err)
	}
	return b
}
