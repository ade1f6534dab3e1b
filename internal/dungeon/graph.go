// Package dungeon places concrete rooms for a mission graph and tracks how
// their doors connect.
package dungeon

import (
	"fmt"

	"github.com/lawnchairsociety/dungeonforge/internal/blueprint"
	"github.com/lawnchairsociety/dungeonforge/internal/geom"
	"github.com/lawnchairsociety/dungeonforge/internal/mission"
)

// RoomID addresses a room inside a Graph's room arena
type RoomID int

// NoRoom marks an absent room reference
const NoRoom RoomID = -1

// DoorState is the resolution of a placed door
type DoorState int

const (
	Unconnected DoorState = iota
	Connected
	Blocked
	ChanceConnected
)

func (s DoorState) String() string {
	switch s {
	case Unconnected:
		return "unconnected"
	case Connected:
		return "connected"
	case Blocked:
		return "blocked"
	case ChanceConnected:
		return "chance"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ParseDoorState converts a state name back to a DoorState
func ParseDoorState(name string) (DoorState, error) {
	for s := Unconnected; s <= ChanceConnected; s++ {
		if s.String() == name {
			return s, nil
		}
	}
	return Unconnected, fmt.Errorf("dungeon: unknown door state %q", name)
}

// DoorFlag marks the single entrance and goal doors
type DoorFlag int

const (
	NoFlag DoorFlag = iota
	EntranceFlag
	GoalFlag
)

func (f DoorFlag) String() string {
	switch f {
	case EntranceFlag:
		return "entrance"
	case GoalFlag:
		return "goal"
	default:
		return ""
	}
}

// ParseDoorFlag converts a flag name back to a DoorFlag
func ParseDoorFlag(name string) (DoorFlag, error) {
	switch name {
	case "":
		return NoFlag, nil
	case "entrance":
		return EntranceFlag, nil
	case "goal":
		return GoalFlag, nil
	}
	return NoFlag, fmt.Errorf("dungeon: unknown door flag %q", name)
}

// DoorRef addresses one door of one room
type DoorRef struct {
	Room RoomID
	Door int
}

func (r DoorRef) String() string {
	return fmt.Sprintf("%d.%d", r.Room, r.Door)
}

// Door is a blueprint door bound to a placed room. World tiles and direction
// are resolved when the room is placed.
type Door struct {
	Ref       DoorRef
	Tiles     [2]geom.Point // World tiles, canonical order
	Dir       geom.Direction
	Level     int
	State     DoorState
	Link      *DoorRef // Door on the other side, nil until connected
	Flag      DoorFlag
	BlockedBy RoomID // Room whose tile blocked the doorway
	Bombable  bool
}

// Free reports whether the door is still available for a new connection
func (d *Door) Free() bool {
	return d.State == Unconnected
}

// Room is a placed blueprint instance
type Room struct {
	ID        RoomID
	Pos       geom.Point
	Rotation  geom.Rotation
	Parent    RoomID
	Blueprint *blueprint.Blueprint
	Doors     []Door
	Distance  int
	Mission   mission.NodeID
}

// World maps a blueprint-local tile into world space
func (r *Room) World(local geom.Point) geom.Point {
	return geom.Transform(local, r.Pos, r.Rotation)
}

// Tiles returns the room's colliding tiles in world space
func (r *Room) Tiles() []geom.Point {
	solid := r.Blueprint.Solid()
	out := make([]geom.Point, len(solid))
	for i, p := range solid {
		out[i] = r.World(p)
	}
	return out
}

// FreeDoors counts doors still available for connection
func (r *Room) FreeDoors() int {
	count := 0
	for i := range r.Doors {
		if r.Doors[i].Free() {
			count++
		}
	}
	return count
}

// NewRoom places bp at pos with rotation rot and resolves its doors. The
// room is not added to any graph.
func NewRoom(id RoomID, bp *blueprint.Blueprint, pos geom.Point, rot geom.Rotation) *Room {
	r := &Room{
		ID:        id,
		Pos:       pos,
		Rotation:  rot,
		Parent:    NoRoom,
		Blueprint: bp,
		Doors:     make([]Door, len(bp.Doors)),
		Mission:   mission.NoNode,
	}
	for i, spec := range bp.Doors {
		r.Doors[i] = Door{
			Ref:       DoorRef{Room: id, Door: i},
			Tiles:     geom.Canonical(r.World(spec.Tiles[0]), r.World(spec.Tiles[1])),
			Dir:       spec.Dir.Rotate(rot),
			Level:     spec.Level,
			State:     Unconnected,
			BlockedBy: NoRoom,
		}
	}
	return r
}

// Graph is the placed layout
type Graph struct {
	Rooms []*Room
	Start RoomID
	Goal  RoomID
}

// NewGraph creates an empty layout
func NewGraph() *Graph {
	return &Graph{Start: NoRoom, Goal: NoRoom}
}

// Room returns the room with the given ID, or nil
func (g *Graph) Room(id RoomID) *Room {
	if id < 0 || int(id) >= len(g.Rooms) {
		return nil
	}
	return g.Rooms[id]
}

// Len returns the number of rooms
func (g *Graph) Len() int {
	return len(g.Rooms)
}

// DoorAt resolves a door reference, or nil
func (g *Graph) DoorAt(ref DoorRef) *Door {
	r := g.Room(ref.Room)
	if r == nil || ref.Door < 0 || ref.Door >= len(r.Doors) {
		return nil
	}
	return &r.Doors[ref.Door]
}

// Children returns the rooms that were built against the given room
func (g *Graph) Children(id RoomID) []RoomID {
	var out []RoomID
	for _, r := range g.Rooms {
		if r.Parent == id && r.ID != id {
			out = append(out, r.ID)
		}
	}
	return out
}

// UnconnectedDoors returns every free door in room order. This is the pool
// new rooms are attached to.
func (g *Graph) UnconnectedDoors() []DoorRef {
	var out []DoorRef
	for _, r := range g.Rooms {
		for i := range r.Doors {
			if r.Doors[i].Free() {
				out = append(out, r.Doors[i].Ref)
			}
		}
	}
	return out
}

// BlockedDoors returns every door that must be sealed, in room order
func (g *Graph) BlockedDoors() []DoorRef {
	var out []DoorRef
	for _, r := range g.Rooms {
		for i := range r.Doors {
			if r.Doors[i].State == Blocked {
				out = append(out, r.Doors[i].Ref)
			}
		}
	}
	return out
}

// Link joins two doors in the given state
func (g *Graph) Link(a, b DoorRef, state DoorState) {
	da, db := g.DoorAt(a), g.DoorAt(b)
	if da == nil || db == nil {
		return
	}
	ra, rb := a, b
	da.State, da.Link = state, &rb
	db.State, db.Link = state, &ra
}

// Block seals a door, recording the room responsible
func (g *Graph) Block(ref DoorRef, by RoomID) {
	if d := g.DoorAt(ref); d != nil {
		d.State = Blocked
		d.Link = nil
		d.BlockedBy = by
	}
}
