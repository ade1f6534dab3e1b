package dungeon

import (
	"math/rand"
	"testing"

	"github.com/lawnchairsociety/dungeonforge/internal/blueprint"
	"github.com/lawnchairsociety/dungeonforge/internal/geom"
	"github.com/lawnchairsociety/dungeonforge/internal/mission"
)

const hallLayout = `
###DD###
#......#
#......#
#......#
#......#
###DD###
`

func mustBlueprint(t *testing.T, name string, flags blueprint.Flag, layout string) *blueprint.Blueprint {
	t.Helper()
	b, err := blueprint.ParseLayout(name, 0, flags, layout)
	if err != nil {
		t.Fatalf("ParseLayout(%s) error: %v", name, err)
	}
	return b
}

// testAssembler returns an assembler with empty state, ready for rooms to
// be placed by hand.
func testAssembler(t *testing.T) *Assembler {
	t.Helper()
	cat, err := blueprint.Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}
	a := NewAssembler(cat, rand.New(rand.NewSource(1)), DefaultOptions())
	a.mission = mission.NewGraph(mission.Entrance)
	a.graph = NewGraph()
	a.occ = NewOccupancy()
	return a
}

// place adds a room without any door resolution
func (a *Assembler) place(bp *blueprint.Blueprint, pos geom.Point, rot geom.Rotation, node mission.NodeID) *Room {
	r := NewRoom(RoomID(a.graph.Len()), bp, pos, rot)
	r.Mission = node
	a.graph.Rooms = append(a.graph.Rooms, r)
	a.occ.RegisterRoom(r)
	return r
}

func TestNewRoomResolvesDoors(t *testing.T) {
	// door at local (2,5)-(3,5) facing north
	layout := `
##DD##
#....#
#....#
#....#
#....#
######
`
	bp := mustBlueprint(t, "north", 0, layout)
	r := NewRoom(0, bp, geom.Pt(10, 10), geom.North)

	d := r.Doors[0]
	if d.Tiles != [2]geom.Point{geom.Pt(12, 15), geom.Pt(13, 15)} {
		t.Errorf("door tiles = %v, want (12,15)-(13,15)", d.Tiles)
	}
	if d.Dir != geom.North {
		t.Errorf("door dir = %v, want north", d.Dir)
	}
	if d.State != Unconnected || d.BlockedBy != NoRoom || d.Link != nil {
		t.Errorf("new door = %+v, want unconnected and unlinked", d)
	}
}

func TestNewRoomRotatedDoor(t *testing.T) {
	bp := mustBlueprint(t, "hall", 0, hallLayout)
	r := NewRoom(0, bp, geom.Pt(0, 0), geom.East)

	// north door turns east, south door turns west
	if r.Doors[0].Dir != geom.East || r.Doors[1].Dir != geom.West {
		t.Errorf("door dirs = %v, %v; want east, west", r.Doors[0].Dir, r.Doors[1].Dir)
	}
	// local (3,5),(4,5) rotated east -> (5,-3),(5,-4)
	if r.Doors[0].Tiles != [2]geom.Point{geom.Pt(5, -3), geom.Pt(5, -4)} {
		t.Errorf("east door tiles = %v", r.Doors[0].Tiles)
	}
}

func TestGraphLinkAndBlock(t *testing.T) {
	a := testAssembler(t)
	bp := mustBlueprint(t, "hall", 0, hallLayout)
	r0 := a.place(bp, geom.Pt(0, 0), geom.North, 0)
	r1 := a.place(bp, geom.Pt(0, 8), geom.North, 0)
	r1.Parent = r0.ID

	a.graph.Link(r0.Doors[0].Ref, r1.Doors[1].Ref, Connected)
	d0, d1 := a.graph.DoorAt(r0.Doors[0].Ref), a.graph.DoorAt(r1.Doors[1].Ref)
	if d0.Link == nil || *d0.Link != d1.Ref || d1.Link == nil || *d1.Link != d0.Ref {
		t.Error("Link should make both sides point at each other")
	}

	if got := a.graph.UnconnectedDoors(); len(got) != 2 {
		t.Errorf("UnconnectedDoors() = %v, want 2 doors", got)
	}
	a.graph.Block(r0.Doors[1].Ref, NoRoom)
	if got := a.graph.BlockedDoors(); len(got) != 1 || got[0] != r0.Doors[1].Ref {
		t.Errorf("BlockedDoors() = %v, want [%v]", got, r0.Doors[1].Ref)
	}
	if children := a.graph.Children(r0.ID); len(children) != 1 || children[0] != r1.ID {
		t.Errorf("Children(0) = %v, want [1]", children)
	}
	if a.graph.DoorAt(DoorRef{Room: 5, Door: 0}) != nil {
		t.Error("DoorAt on a missing room should be nil")
	}
}

func TestOccupancy(t *testing.T) {
	o := NewOccupancy()
	bp := mustBlueprint(t, "hall", 0, hallLayout)
	r := NewRoom(3, bp, geom.Pt(0, 0), geom.North)

	if !o.RegisterRoom(r) {
		t.Fatal("RegisterRoom() on an empty index should succeed")
	}
	if o.Len() != len(bp.Solid()) {
		t.Errorf("Len() = %d, want %d", o.Len(), len(bp.Solid()))
	}

	owner, ok := o.At(geom.Pt(3, 5))
	if !ok || owner.Room != 3 || owner.Kind != DoorTile || owner.Door != 0 {
		t.Errorf("At(3,5) = %+v, want door 0 of room 3", owner)
	}
	if owner, _ := o.At(geom.Pt(1, 1)); owner.Kind != FloorTile {
		t.Errorf("At(1,1) kind = %v, want floor", owner.Kind)
	}

	if o.Register(geom.Pt(1, 1), Owner{Room: 4}) {
		t.Error("Register() must not steal an owned tile")
	}
	if !o.Collides([]geom.Point{geom.Pt(100, 100), geom.Pt(0, 0)}) {
		t.Error("Collides() should report the owned corner")
	}

	o.Release(3)
	if o.Len() != 0 {
		t.Errorf("Len() after Release = %d, want 0", o.Len())
	}
}

func TestDoorStateRoundTrip(t *testing.T) {
	for _, s := range []DoorState{Unconnected, Connected, Blocked, ChanceConnected} {
		got, err := ParseDoorState(s.String())
		if err != nil || got != s {
			t.Errorf("ParseDoorState(%q) = %v, %v", s.String(), got, err)
		}
	}
	for _, f := range []DoorFlag{NoFlag, EntranceFlag, GoalFlag} {
		got, err := ParseDoorFlag(f.String())
		if err != nil || got != f {
			t.Errorf("ParseDoorFlag(%q) = %v, %v", f.String(), got, err)
		}
	}
}
