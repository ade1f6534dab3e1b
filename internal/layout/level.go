// Package layout exports generated levels to YAML for tile painters and
// rebuilds them from that file.
package layout

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lawnchairsociety/dungeonforge/internal/blueprint"
	"github.com/lawnchairsociety/dungeonforge/internal/dungeon"
	"github.com/lawnchairsociety/dungeonforge/internal/generator"
	"github.com/lawnchairsociety/dungeonforge/internal/geom"
	"github.com/lawnchairsociety/dungeonforge/internal/mission"
)

var (
	ErrUnknownBlueprint = errors.New("layout: unknown blueprint")
	ErrDoorMismatch     = errors.New("layout: door list does not match blueprint")
	ErrBadLink          = errors.New("layout: invalid door link")
)

// LevelData is the serialized form of a generated level
type LevelData struct {
	Seed        uint64          `yaml:"seed"`
	Fingerprint string          `yaml:"fingerprint"`
	SavedAt     time.Time       `yaml:"saved_at"`
	Mission     MissionData     `yaml:"mission"`
	StartRoom   int             `yaml:"start_room"`
	GoalRoom    int             `yaml:"goal_room"`
	Rooms       []RoomData      `yaml:"rooms"`
	Encounters  []EncounterData `yaml:"encounters,omitempty"`
	Objects     []ObjectData    `yaml:"objects,omitempty"`
}

// MissionData is the serialized mission graph
type MissionData struct {
	Start int        `yaml:"start"`
	Goal  int        `yaml:"goal"`
	Nodes []NodeData `yaml:"nodes"`
}

// NodeData is one mission node
type NodeData struct {
	ID        int        `yaml:"id"`
	Symbol    string     `yaml:"symbol"`
	LockCount int        `yaml:"lock_count"`
	Room      int        `yaml:"room"`
	Children  []EdgeData `yaml:"children,omitempty,flow"`
}

// EdgeData is one mission edge
type EdgeData struct {
	To    int  `yaml:"to"`
	Tight bool `yaml:"tight,omitempty"`
}

// RoomData is one placed room
type RoomData struct {
	ID        int        `yaml:"id"`
	Blueprint string     `yaml:"blueprint"`
	X         int        `yaml:"x"`
	Y         int        `yaml:"y"`
	Rotation  string     `yaml:"rotation"`
	Parent    int        `yaml:"parent"`
	Distance  int        `yaml:"distance"`
	Mission   int        `yaml:"mission"`
	Doors     []DoorData `yaml:"doors"`
}

// DoorData is one door of a placed room. Tiles are world coordinates,
// x0 y0 x1 y1.
type DoorData struct {
	Tiles     [4]int `yaml:"tiles,flow"`
	Dir       string `yaml:"dir"`
	Level     int    `yaml:"level,omitempty"`
	State     string `yaml:"state"`
	Link      string `yaml:"link,omitempty"` // room.door
	Flag      string `yaml:"flag,omitempty"`
	BlockedBy int    `yaml:"blocked_by"`
	Bombable  bool   `yaml:"bombable,omitempty"`
}

// EncounterData is the enemy roster of one room
type EncounterData struct {
	Room     int    `yaml:"room"`
	Tier     string `yaml:"tier"`
	Enemies  int    `yaml:"enemies"`
	MiniBoss bool   `yaml:"mini_boss,omitempty"`
	Boss     bool   `yaml:"boss,omitempty"`
}

// ObjectData is one placed gameplay object
type ObjectData struct {
	Kind string `yaml:"kind"`
	Room int    `yaml:"room"`
	Door string `yaml:"door,omitempty"`
}

// Level is a rebuilt level ready for rendering or painting
type Level struct {
	Seed    uint64
	Mission *mission.Graph
	Dungeon *dungeon.Graph
	Data    *LevelData
}

// FromResult converts a generation result to its serialized form
func FromResult(res *generator.Result) *LevelData {
	data := &LevelData{
		Seed:        res.Seed,
		Fingerprint: res.Fingerprint.Mission + "/" + res.Fingerprint.Dungeon,
		SavedAt:     time.Now(),
		Mission:     serializeMission(res.Mission),
		StartRoom:   int(res.Dungeon.Start),
		GoalRoom:    int(res.Dungeon.Goal),
		Rooms:       make([]RoomData, 0, res.Dungeon.Len()),
	}

	for _, r := range res.Dungeon.Rooms {
		data.Rooms = append(data.Rooms, serializeRoom(r))
	}

	if pop := res.Population; pop != nil {
		for _, e := range pop.Encounters {
			data.Encounters = append(data.Encounters, EncounterData{
				Room:     int(e.Room),
				Tier:     e.Tier.String(),
				Enemies:  e.Enemies,
				MiniBoss: e.MiniBoss,
				Boss:     e.Boss,
			})
		}
		for _, o := range pop.Objects {
			od := ObjectData{Kind: o.Kind.String(), Room: int(o.Room)}
			if o.Door != nil {
				od.Door = o.Door.String()
			}
			data.Objects = append(data.Objects, od)
		}
	}

	return data
}

func serializeMission(m *mission.Graph) MissionData {
	md := MissionData{
		Start: int(m.Start),
		Goal:  int(m.Goal),
		Nodes: make([]NodeData, 0, m.Len()),
	}
	for _, n := range m.Nodes() {
		nd := NodeData{
			ID:        int(n.ID),
			Symbol:    n.Symbol.String(),
			LockCount: n.LockCount,
			Room:      n.Room,
		}
		for _, e := range n.Children {
			nd.Children = append(nd.Children, EdgeData{To: int(e.To), Tight: e.Tight})
		}
		md.Nodes = append(md.Nodes, nd)
	}
	return md
}

func serializeRoom(r *dungeon.Room) RoomData {
	rd := RoomData{
		ID:        int(r.ID),
		Blueprint: r.Blueprint.Name,
		X:         r.Pos.X,
		Y:         r.Pos.Y,
		Rotation:  r.Rotation.String(),
		Parent:    int(r.Parent),
		Distance:  r.Distance,
		Mission:   int(r.Mission),
		Doors:     make([]DoorData, 0, len(r.Doors)),
	}
	for i := range r.Doors {
		d := &r.Doors[i]
		dd := DoorData{
			Tiles:     [4]int{d.Tiles[0].X, d.Tiles[0].Y, d.Tiles[1].X, d.Tiles[1].Y},
			Dir:       d.Dir.String(),
			Level:     d.Level,
			State:     d.State.String(),
			Flag:      d.Flag.String(),
			BlockedBy: int(d.BlockedBy),
			Bombable:  d.Bombable,
		}
		if d.Link != nil {
			dd.Link = d.Link.String()
		}
		rd.Doors = append(rd.Doors, dd)
	}
	return rd
}

// Save writes a generation result to a YAML file
func Save(path string, res *generator.Result) error {
	return FromResult(res).Save(path)
}

// Save writes the level to a YAML file
func (ld *LevelData) Save(path string) error {
	out, err := yaml.Marshal(ld)
	if err != nil {
		return fmt.Errorf("failed to marshal level: %w", err)
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("failed to write level file: %w", err)
	}
	return nil
}

// Load reads a level YAML file
func Load(path string) (*LevelData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read level file: %w", err)
	}
	var ld LevelData
	if err := yaml.Unmarshal(raw, &ld); err != nil {
		return nil, fmt.Errorf("failed to parse level YAML: %w", err)
	}
	return &ld, nil
}

// pendingLink is a door link resolved after every room exists
type pendingLink struct {
	from dungeon.DoorRef
	to   string
}

// Build rebuilds the mission and the placed rooms against a catalog. Door
// tiles are recomputed from the blueprints; links are resolved in a second
// pass once every room exists.
func (ld *LevelData) Build(cat *blueprint.Catalog) (*Level, error) {
	m, err := ld.Mission.build()
	if err != nil {
		return nil, err
	}

	g := dungeon.NewGraph()
	g.Start = dungeon.RoomID(ld.StartRoom)
	g.Goal = dungeon.RoomID(ld.GoalRoom)

	var links []pendingLink
	for i, rd := range ld.Rooms {
		if rd.ID != i {
			return nil, fmt.Errorf("layout: room %d listed at position %d", rd.ID, i)
		}
		room, roomLinks, err := rd.build(cat)
		if err != nil {
			return nil, fmt.Errorf("failed to rebuild room %d: %w", rd.ID, err)
		}
		g.Rooms = append(g.Rooms, room)
		links = append(links, roomLinks...)
	}

	for _, l := range links {
		ref, err := parseDoorRef(l.to)
		if err != nil {
			return nil, err
		}
		target := g.DoorAt(ref)
		if target == nil {
			return nil, fmt.Errorf("%w: %s -> %s", ErrBadLink, l.from, l.to)
		}
		link := target.Ref
		g.DoorAt(l.from).Link = &link
	}

	return &Level{Seed: ld.Seed, Mission: m, Dungeon: g, Data: ld}, nil
}

func (md MissionData) build() (*mission.Graph, error) {
	if len(md.Nodes) == 0 {
		return nil, fmt.Errorf("layout: mission has no nodes")
	}

	symbols := make([]mission.Symbol, len(md.Nodes))
	for i, nd := range md.Nodes {
		if nd.ID != i {
			return nil, fmt.Errorf("layout: mission node %d listed at position %d", nd.ID, i)
		}
		sym, err := mission.ParseSymbol(nd.Symbol)
		if err != nil {
			return nil, fmt.Errorf("layout: node %d: %w", nd.ID, err)
		}
		symbols[i] = sym
	}

	m := mission.NewGraph(symbols[0])
	for _, sym := range symbols[1:] {
		m.AddNode(sym)
	}
	for _, nd := range md.Nodes {
		n := m.Node(mission.NodeID(nd.ID))
		n.LockCount = nd.LockCount
		n.Room = nd.Room
		for _, e := range nd.Children {
			if m.Node(mission.NodeID(e.To)) == nil {
				return nil, fmt.Errorf("layout: node %d has edge to missing node %d", nd.ID, e.To)
			}
			m.AddEdge(n.ID, mission.NodeID(e.To), e.Tight)
		}
	}
	m.Start = mission.NodeID(md.Start)
	m.Goal = mission.NodeID(md.Goal)
	return m, nil
}

func (rd RoomData) build(cat *blueprint.Catalog) (*dungeon.Room, []pendingLink, error) {
	bp, ok := cat.Get(rd.Blueprint)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownBlueprint, rd.Blueprint)
	}
	if len(rd.Doors) != len(bp.Doors) {
		return nil, nil, fmt.Errorf("%w: %q has %d doors, file lists %d", ErrDoorMismatch, bp.Name, len(bp.Doors), len(rd.Doors))
	}
	rot, err := geom.ParseDirection(rd.Rotation)
	if err != nil {
		return nil, nil, err
	}

	room := dungeon.NewRoom(dungeon.RoomID(rd.ID), bp, geom.Pt(rd.X, rd.Y), rot)
	room.Parent = dungeon.RoomID(rd.Parent)
	room.Distance = rd.Distance
	room.Mission = mission.NodeID(rd.Mission)

	var links []pendingLink
	for i, dd := range rd.Doors {
		d := &room.Doors[i]
		if d.Tiles[0] != geom.Pt(dd.Tiles[0], dd.Tiles[1]) || d.Tiles[1] != geom.Pt(dd.Tiles[2], dd.Tiles[3]) {
			return nil, nil, fmt.Errorf("%w: door %d of %q is at %v", ErrDoorMismatch, i, bp.Name, d.Tiles)
		}
		if d.State, err = dungeon.ParseDoorState(dd.State); err != nil {
			return nil, nil, err
		}
		if d.Flag, err = dungeon.ParseDoorFlag(dd.Flag); err != nil {
			return nil, nil, err
		}
		d.BlockedBy = dungeon.RoomID(dd.BlockedBy)
		d.Bombable = dd.Bombable
		if dd.Link != "" {
			links = append(links, pendingLink{from: d.Ref, to: dd.Link})
		}
	}
	return room, links, nil
}

// parseDoorRef reads the "room.door" form written by DoorRef.String
func parseDoorRef(s string) (dungeon.DoorRef, error) {
	room, door, ok := strings.Cut(s, ".")
	if !ok {
		return dungeon.DoorRef{}, fmt.Errorf("%w: %q", ErrBadLink, s)
	}
	r, err1 := strconv.Atoi(room)
	d, err2 := strconv.Atoi(door)
	if err1 != nil || err2 != nil {
		return dungeon.DoorRef{}, fmt.Errorf("%w: %q", ErrBadLink, s)
	}
	return dungeon.DoorRef{Room: dungeon.RoomID(r), Door: d}, nil
}

// FileExists checks if a level file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
