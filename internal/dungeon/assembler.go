package dungeon

import (
	"fmt"
	"math/rand"

	"github.com/lawnchairsociety/dungeonforge/internal/blueprint"
	"github.com/lawnchairsociety/dungeonforge/internal/geom"
	"github.com/lawnchairsociety/dungeonforge/internal/logger"
	"github.com/lawnchairsociety/dungeonforge/internal/mission"
)

const (
	DefaultSelectAttempts = 10
	DefaultPlaceAttempts  = 20
	DefaultFillerAttempts = 5
	DefaultFillerChance   = 1.0 / 3
	DefaultScanDistance   = 10

	// doorGap is the distance between two connected doors along the facing
	// direction. The tile in between is the threshold.
	doorGap = 2
)

// Options bounds the assembler's search
type Options struct {
	SelectAttempts int     // Blueprint/door picks per target door
	PlaceAttempts  int     // Target doors tried per mission node
	FillerAttempts int     // Picks per filler room
	FillerChance   float64 // Probability an unused door gets a filler room
	ScanDistance   int     // Tiles scanned outward from each new door
}

// DefaultOptions returns the standard search bounds
func DefaultOptions() Options {
	return Options{
		SelectAttempts: DefaultSelectAttempts,
		PlaceAttempts:  DefaultPlaceAttempts,
		FillerAttempts: DefaultFillerAttempts,
		FillerChance:   DefaultFillerChance,
		ScanDistance:   DefaultScanDistance,
	}
}

// chance is a coincidental connection awaiting lock validation
type chance struct {
	a, b DoorRef
}

// doorChange is an undo entry for a door of an already placed room
type doorChange struct {
	ref  DoorRef
	prev Door
}

// mark is the assembler state to return to when a placement is rolled back
type mark struct {
	chances  int
	warnings int
}

// requirement is what a mission node asks of its blueprint
type requirement struct {
	key  blueprint.FilterKey // Level is filled in per target door
	free int                 // Free doors needed besides the attaching one
}

// Assembler places one room per mission node. It owns the occupancy index
// and the in-progress layout until Assemble returns.
type Assembler struct {
	catalog *blueprint.Catalog
	rng     *rand.Rand
	opts    Options

	mission  *mission.Graph
	graph    *Graph
	occ      *Occupancy
	chances  []chance
	warnings []Warning
	undo     []doorChange

	// Attempts counts every placement attempt of the last run
	Attempts int
}

// NewAssembler creates an assembler drawing every random choice from rng
func NewAssembler(catalog *blueprint.Catalog, rng *rand.Rand, opts Options) *Assembler {
	def := DefaultOptions()
	if opts.SelectAttempts <= 0 {
		opts.SelectAttempts = def.SelectAttempts
	}
	if opts.PlaceAttempts <= 0 {
		opts.PlaceAttempts = def.PlaceAttempts
	}
	if opts.FillerAttempts <= 0 {
		opts.FillerAttempts = def.FillerAttempts
	}
	if opts.ScanDistance <= 0 {
		opts.ScanDistance = def.ScanDistance
	}
	if opts.FillerChance < 0 {
		opts.FillerChance = 0
	}

	return &Assembler{
		catalog: catalog,
		rng:     rng,
		opts:    opts,
	}
}

// Assemble realises the mission graph, visiting nodes in the given priority
// order. Any exhausted placement aborts the whole run.
func (a *Assembler) Assemble(m *mission.Graph, order *mission.Order) (*Graph, error) {
	if len(order.Nodes) == 0 || order.Nodes[0] != m.Start {
		return nil, ErrBadOrder
	}

	a.mission = m
	a.graph = NewGraph()
	a.occ = NewOccupancy()
	a.chances = nil
	a.warnings = nil
	a.undo = nil
	a.Attempts = 0

	if err := a.placeStart(m.Node(m.Start)); err != nil {
		return nil, err
	}

	for _, id := range order.Nodes[1:] {
		if err := a.placeNode(m.Node(id), order.ParentOf(id)); err != nil {
			return nil, err
		}
	}

	a.finalize()
	a.validateChances()
	a.markBombable()

	logger.Debug("Dungeon assembled",
		"rooms", a.graph.Len(),
		"attempts", a.Attempts,
		"blocked", len(a.graph.BlockedDoors()),
		"warnings", len(a.warnings))

	return a.graph, nil
}

// Warnings returns the recoverable problems of the last run
func (a *Assembler) Warnings() []Warning {
	return a.warnings
}

// Occupancy returns the tile index of the last run
func (a *Assembler) Occupancy() *Occupancy {
	return a.occ
}

// requirementFor derives the door budget of a mission node: one free door
// per tight child plus the attaching door. Loose children may attach anywhere.
// Leaves need exactly one door.
func requirementFor(n *mission.Node, start bool) requirement {
	req := requirement{free: n.TightChildren()}

	switch n.Symbol {
	case mission.Boss:
		req.key.Flags |= blueprint.FlagBoss
	case mission.Filler:
		req.key.Flags |= blueprint.FlagFiller
	}

	switch {
	case start:
		// The entrance takes one door; loose children need at least one more
		if req.free == 0 && len(n.Children) > 0 {
			req.free = 1
		}
		req.free++
		req.key.Flags |= blueprint.FlagStart
		req.key.Doors = req.free
		req.key.Compare = blueprint.AtLeast
	case len(n.Children) == 0:
		req.key.Doors = 1
		req.key.Compare = blueprint.Exactly
	default:
		req.key.Doors = req.free + 1
		req.key.Compare = blueprint.AtLeast
	}
	return req
}

// placeStart puts the entrance room at the origin with a random rotation and
// reserves one of its doors as the dungeon entrance.
func (a *Assembler) placeStart(n *mission.Node) error {
	req := requirementFor(n, true)
	candidates := a.catalog.Filter(req.key)
	if len(candidates) == 0 {
		return &PlacementError{Node: n.ID, Symbol: n.Symbol, Last: ErrNoStartBlueprint}
	}
	a.Attempts++

	bp := candidates[a.rng.Intn(len(candidates))]
	rotations := geom.AllDirections()
	rot := rotations[a.rng.Intn(len(rotations))]

	room := NewRoom(0, bp, geom.Point{}, rot)
	room.Mission = n.ID
	a.graph.Rooms = append(a.graph.Rooms, room)
	a.graph.Start = room.ID
	a.occ.RegisterRoom(room)

	entrance := &room.Doors[a.rng.Intn(len(room.Doors))]
	entrance.State = Connected
	entrance.Flag = EntranceFlag
	a.registerThreshold(room.ID, entrance)

	n.Room = int(room.ID)

	logger.Debug("Start room placed",
		"blueprint", bp.Name,
		"rotation", rot.String(),
		"entrance", entrance.Ref.String())

	return nil
}

// placeNode attaches the room for n to the dungeon. The outer loop picks a
// target door, the inner loop picks blueprints for it.
func (a *Assembler) placeNode(n *mission.Node, genParent mission.NodeID) error {
	req := requirementFor(n, false)

	result, attempts, err := retry(a.opts.PlaceAttempts, func(int) (outcome, error) {
		targets := a.targetDoors(n)
		if len(targets) == 0 {
			return exhausted, errNoTargetDoor
		}
		target := targets[a.rng.Intn(len(targets))]

		inner, _, err := retry(a.opts.SelectAttempts, func(int) (outcome, error) {
			return a.tryPlace(n, target, req)
		})
		if inner == success {
			return success, nil
		}
		return retryable, err
	})

	if result != success {
		logger.Debug("Placement exhausted",
			"node", n.ID,
			"symbol", n.Symbol.String(),
			"generated_from", genParent,
			"free_doors", len(a.graph.UnconnectedDoors()))
		return &PlacementError{Node: n.ID, Symbol: n.Symbol, Attempts: attempts, Last: err}
	}
	return nil
}

// targetDoors lists the doors n may attach to. Tightly coupled nodes bind to
// their parent's room; every other node may use any unconnected door in the
// dungeon. Lock regions are enforced afterwards by validateChances.
func (a *Assembler) targetDoors(n *mission.Node) []DoorRef {
	if tp := a.mission.TightParent(n.ID); tp != mission.NoNode {
		return a.freeDoorsOf(a.roomOf(tp))
	}
	return a.graph.UnconnectedDoors()
}

// roomOf returns the placed room of a mission node, or NoRoom
func (a *Assembler) roomOf(id mission.NodeID) RoomID {
	n := a.mission.Node(id)
	if n == nil || n.Room == mission.NoRoom {
		return NoRoom
	}
	return RoomID(n.Room)
}

// freeDoorsOf lists the unconnected doors of one room
func (a *Assembler) freeDoorsOf(id RoomID) []DoorRef {
	r := a.graph.Room(id)
	if r == nil {
		return nil
	}
	var out []DoorRef
	for i := range r.Doors {
		if r.Doors[i].Free() {
			out = append(out, r.Doors[i].Ref)
		}
	}
	return out
}

// tryPlace makes one attempt at building a room for n against target
func (a *Assembler) tryPlace(n *mission.Node, target DoorRef, req requirement) (outcome, error) {
	a.Attempts++

	td := a.graph.DoorAt(target)
	key := req.key
	key.Level = td.Level

	candidates := a.catalog.Filter(key)
	if len(candidates) == 0 {
		return exhausted, fmt.Errorf("%w (%v)", errNoBlueprint, key)
	}
	bp := candidates[a.rng.Intn(len(candidates))]

	doors := bp.DoorsAt(td.Level)
	if len(doors) == 0 {
		return retryable, errNoDoorLevel
	}
	di := doors[a.rng.Intn(len(doors))]
	spec := bp.Doors[di]

	// Doors must face each other, two tiles apart
	rot := geom.RotationBetween(spec.Dir, td.Dir.Flip())
	rotated := geom.Canonical(geom.RotatePoint(spec.Tiles[0], rot), geom.RotatePoint(spec.Tiles[1], rot))
	pos := td.Tiles[0].Add(td.Dir.Delta().Mul(doorGap)).Sub(rotated[0])

	room := NewRoom(RoomID(a.graph.Len()), bp, pos, rot)
	threshold := thresholdOf(td)
	if a.occ.Collides(room.Tiles()) || a.occ.Collides(threshold[:]) {
		return retryable, errCollision
	}

	m := a.begin()
	a.commit(n, room, di, target)
	if !a.resolveDoors(room, di, req) || !a.obligationsMet(room) {
		a.rollback(m, room, n)
		return retryable, errDoorBudget
	}

	logger.Debug("Room placed",
		"node", n.ID,
		"symbol", n.Symbol.String(),
		"room", room.ID,
		"blueprint", bp.Name,
		"pos", room.Pos.String(),
		"rotation", rot.String())

	return success, nil
}

// begin opens a new undo scope for one placement
func (a *Assembler) begin() mark {
	a.undo = a.undo[:0]
	return mark{chances: len(a.chances), warnings: len(a.warnings)}
}

// record saves a door of an existing room before it is modified
func (a *Assembler) record(ref DoorRef) {
	if d := a.graph.DoorAt(ref); d != nil {
		a.undo = append(a.undo, doorChange{ref: ref, prev: *d})
	}
}

// commit adds the room to the layout and binds it to its target door
func (a *Assembler) commit(n *mission.Node, room *Room, door int, target DoorRef) {
	parent := a.graph.Room(target.Room)
	room.Parent = parent.ID
	room.Distance = parent.Distance + 1
	room.Mission = n.ID

	a.graph.Rooms = append(a.graph.Rooms, room)
	a.occ.RegisterRoom(room)
	a.registerThreshold(room.ID, a.graph.DoorAt(target))

	a.record(target)
	a.graph.Link(target, room.Doors[door].Ref, Connected)

	n.Room = int(room.ID)
	if n.ID == a.mission.Goal {
		room.Doors[door].Flag = GoalFlag
		a.graph.Goal = room.ID
	}
}

// rollback removes a committed room and restores every door it touched
func (a *Assembler) rollback(m mark, room *Room, n *mission.Node) {
	for i := len(a.undo) - 1; i >= 0; i-- {
		change := a.undo[i]
		*a.graph.DoorAt(change.ref) = change.prev
	}
	a.undo = a.undo[:0]
	a.chances = a.chances[:m.chances]
	a.warnings = a.warnings[:m.warnings]

	a.occ.Release(room.ID)
	a.graph.Rooms = a.graph.Rooms[:room.ID]
	if a.graph.Goal == room.ID {
		a.graph.Goal = NoRoom
	}
	n.Room = mission.NoRoom
}

// resolveDoors scans the new room's other doors, then re-checks existing
// doorways the new room may now fill. Reports whether enough doors are left.
func (a *Assembler) resolveDoors(room *Room, matched int, req requirement) bool {
	for i := range room.Doors {
		d := &room.Doors[i]
		if i == matched || !d.Free() {
			continue
		}

		hit := a.scan(d.Ref)
		switch hit.kind {
		case scanBlocked:
			a.graph.Block(d.Ref, hit.by)
		case scanMate:
			a.record(hit.mate)
			mate := a.graph.DoorAt(hit.mate)
			if mate.Level != d.Level {
				a.warnings = append(a.warnings, Warning{
					Kind:  FloorMismatchWarning,
					Doors: [2]DoorRef{d.Ref, hit.mate},
					A:     d.Level,
					B:     mate.Level,
				})
				a.graph.Block(d.Ref, hit.mate.Room)
				a.graph.Block(hit.mate, room.ID)
				continue
			}
			a.graph.Link(d.Ref, hit.mate, ChanceConnected)
			a.registerThreshold(room.ID, d)
			a.chances = append(a.chances, chance{a: d.Ref, b: hit.mate})
		}
	}

	for _, other := range a.graph.Rooms {
		if other.ID == room.ID {
			continue
		}
		for i := range other.Doors {
			d := &other.Doors[i]
			if !d.Free() {
				continue
			}
			if by, ok := a.doorwayOwner(d); ok && by == room.ID {
				a.record(d.Ref)
				a.graph.Block(d.Ref, room.ID)
			}
		}
	}

	return room.FreeDoors() >= req.free
}

// obligationsMet checks that every placed room still has a free door for
// each tightly coupled child that is not built yet.
func (a *Assembler) obligationsMet(room *Room) bool {
	for _, r := range a.graph.Rooms {
		if r.ID == room.ID {
			continue
		}
		if r.FreeDoors() < a.pendingTight(r) {
			return false
		}
	}
	return true
}

// pendingTight counts a room's tightly coupled mission children without a room
func (a *Assembler) pendingTight(r *Room) int {
	n := a.mission.Node(r.Mission)
	if n == nil {
		return 0
	}
	pending := 0
	for _, e := range n.Children {
		if e.Tight && a.mission.Node(e.To).Room == mission.NoRoom {
			pending++
		}
	}
	return pending
}

// thresholdOf returns the two tiles just outside a door
func thresholdOf(d *Door) [2]geom.Point {
	step := d.Dir.Delta()
	return [2]geom.Point{d.Tiles[0].Add(step), d.Tiles[1].Add(step)}
}

// registerThreshold claims the tiles in front of a door for room
func (a *Assembler) registerThreshold(room RoomID, d *Door) {
	for _, p := range thresholdOf(d) {
		a.occ.Register(p, Owner{Room: room, Kind: ThresholdTile, Door: -1})
	}
}
