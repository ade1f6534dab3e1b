package dungeon

import (
	"github.com/lawnchairsociety/dungeonforge/internal/blueprint"
	"github.com/lawnchairsociety/dungeonforge/internal/geom"
)

// OwnerKind is what a room has placed on a tile
type OwnerKind int

const (
	FloorTile OwnerKind = iota
	WallTile
	DoorTile
	ThresholdTile // Gap between two connected doors
)

func (k OwnerKind) String() string {
	switch k {
	case FloorTile:
		return "floor"
	case WallTile:
		return "wall"
	case DoorTile:
		return "door"
	case ThresholdTile:
		return "threshold"
	default:
		return "unknown"
	}
}

// Owner records which room holds a tile
type Owner struct {
	Room RoomID
	Kind OwnerKind
	Door int // Door index when Kind is DoorTile, else -1
}

// Occupancy maps world tiles to the single room that owns them. Wall tops
// are never registered.
type Occupancy struct {
	tiles map[geom.Point]Owner
	owned map[RoomID][]geom.Point
}

// NewOccupancy creates an empty index
func NewOccupancy() *Occupancy {
	return &Occupancy{
		tiles: make(map[geom.Point]Owner),
		owned: make(map[RoomID][]geom.Point),
	}
}

// At returns the owner of a tile
func (o *Occupancy) At(p geom.Point) (Owner, bool) {
	owner, ok := o.tiles[p]
	return owner, ok
}

// Len returns the number of registered tiles
func (o *Occupancy) Len() int {
	return len(o.tiles)
}

// Collides reports whether any of the points is already owned
func (o *Occupancy) Collides(points []geom.Point) bool {
	for _, p := range points {
		if _, ok := o.tiles[p]; ok {
			return true
		}
	}
	return false
}

// Register claims a tile. Returns false if another owner already holds it.
func (o *Occupancy) Register(p geom.Point, owner Owner) bool {
	if _, ok := o.tiles[p]; ok {
		return false
	}
	o.tiles[p] = owner
	o.owned[owner.Room] = append(o.owned[owner.Room], p)
	return true
}

// RegisterRoom claims every colliding tile of a placed room
func (o *Occupancy) RegisterRoom(r *Room) bool {
	bp := r.Blueprint
	ok := true
	for _, local := range bp.Solid() {
		owner := Owner{Room: r.ID, Kind: ownerKind(bp.Tiles[local]), Door: -1}
		if owner.Kind == DoorTile {
			owner.Door = bp.DoorIndexAt(local)
		}
		if !o.Register(r.World(local), owner) {
			ok = false
		}
	}
	return ok
}

// Release drops every tile owned by a room
func (o *Occupancy) Release(room RoomID) {
	for _, p := range o.owned[room] {
		if owner, ok := o.tiles[p]; ok && owner.Room == room {
			delete(o.tiles, p)
		}
	}
	delete(o.owned, room)
}

// Tiles returns the tiles owned by a room in registration order
func (o *Occupancy) Tiles(room RoomID) []geom.Point {
	return o.owned[room]
}

func ownerKind(k blueprint.TileKind) OwnerKind {
	switch k {
	case blueprint.Wall:
		return WallTile
	case blueprint.Door:
		return DoorTile
	default:
		return FloorTile
	}
}
