// Package populate decides what lives in each placed room: enemy tiers and
// counts, keys, locked doors and treasure. It reads the finished mission and
// layout and draws only from the in-game random stream.
package populate

import (
	"fmt"
	"math/rand"

	"github.com/lawnchairsociety/dungeonforge/internal/dungeon"
	"github.com/lawnchairsociety/dungeonforge/internal/mission"
)

// Tier is the difficulty band of a room's enemies
type Tier int

const (
	TierSafe Tier = iota
	TierEasy
	TierMedium
	TierHard
	TierElite
)

func (t Tier) String() string {
	switch t {
	case TierSafe:
		return "safe"
	case TierEasy:
		return "easy"
	case TierMedium:
		return "medium"
	case TierHard:
		return "hard"
	case TierElite:
		return "elite"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// TierFor derives a room's tier from how many locks guard it. The entrance
// and the exit are always safe, the boss always elite.
func TierFor(n *mission.Node) Tier {
	switch n.Symbol {
	case mission.Entrance, mission.Goal:
		return TierSafe
	case mission.Boss:
		return TierElite
	}

	switch {
	case n.LockCount <= 0:
		return TierEasy
	case n.LockCount == 1:
		return TierMedium
	case n.LockCount == 2:
		return TierHard
	default:
		return TierElite
	}
}

// ObjectKind is a placeable gameplay object
type ObjectKind int

const (
	SpawnPoint ObjectKind = iota
	Exit
	SmallKey
	BossKey
	LockedDoor
	BossDoor
	Chest
	BombableWall
)

func (k ObjectKind) String() string {
	switch k {
	case SpawnPoint:
		return "spawn"
	case Exit:
		return "exit"
	case SmallKey:
		return "key"
	case BossKey:
		return "boss-key"
	case LockedDoor:
		return "locked-door"
	case BossDoor:
		return "boss-door"
	case Chest:
		return "chest"
	case BombableWall:
		return "bombable-wall"
	default:
		return fmt.Sprintf("object(%d)", int(k))
	}
}

// Object is one placed gameplay object. Door objects carry the door they
// sit in.
type Object struct {
	Kind ObjectKind
	Room dungeon.RoomID
	Door *dungeon.DoorRef
}

// Encounter is the enemy roster of one room
type Encounter struct {
	Room     dungeon.RoomID
	Symbol   mission.Symbol
	Tier     Tier
	Enemies  int
	MiniBoss bool
	Boss     bool
}

// Population is everything placed into a dungeon, in room order
type Population struct {
	Encounters []Encounter
	Objects    []Object
}

// Count returns how many objects of a kind were placed
func (p *Population) Count(kind ObjectKind) int {
	count := 0
	for _, o := range p.Objects {
		if o.Kind == kind {
			count++
		}
	}
	return count
}

// Enemies returns the total number of regular enemies
func (p *Population) Enemies() int {
	total := 0
	for _, e := range p.Encounters {
		total += e.Enemies
	}
	return total
}

// Populate fills every room of g. rng must be the in-game stream so the
// mission and layout draws stay untouched.
func Populate(m *mission.Graph, g *dungeon.Graph, rng *rand.Rand) *Population {
	p := &Population{}

	for _, r := range g.Rooms {
		n := m.Node(r.Mission)
		if n == nil {
			continue
		}

		e := Encounter{Room: r.ID, Symbol: n.Symbol, Tier: TierFor(n)}
		rollEnemies(&e, rng)
		p.Encounters = append(p.Encounters, e)

		p.placeObjects(r, n, rng)
	}

	for _, ref := range g.BlockedDoors() {
		if d := g.DoorAt(ref); d.Bombable {
			door := ref
			p.Objects = append(p.Objects, Object{Kind: BombableWall, Room: ref.Room, Door: &door})
		}
	}

	return p
}

// rollEnemies picks the enemy count for a room from its symbol
func rollEnemies(e *Encounter, rng *rand.Rand) {
	switch e.Symbol {
	case mission.Entrance, mission.Goal:
		// Safe rooms
	case mission.Boss:
		e.Boss = true
		e.Enemies = rng.Intn(2)
	case mission.MiniBoss:
		e.MiniBoss = true
		e.Enemies = 1 + rng.Intn(2)
	case mission.Test:
		e.Enemies = between(rng, 2, 4) + int(e.Tier)
	case mission.Treasure:
		e.Enemies = between(rng, 1, 2)
	case mission.Room, mission.Lock, mission.BossLock:
		if rng.Float32() < 0.4 {
			e.Enemies = between(rng, 1, 2)
		}
	case mission.Key, mission.BossKey, mission.Secret:
		e.Enemies = rng.Intn(2)
	case mission.Filler:
		if rng.Float32() < 0.2 {
			e.Enemies = 1
		}
	case mission.Dungeon, mission.Chain, mission.ChainLinear, mission.KeyLock, mission.Hook, mission.Fork:
		// Never placed
	}
}

// placeObjects adds the objects a room's symbol calls for
func (p *Population) placeObjects(r *dungeon.Room, n *mission.Node, rng *rand.Rand) {
	add := func(kind ObjectKind, door *dungeon.DoorRef) {
		p.Objects = append(p.Objects, Object{Kind: kind, Room: r.ID, Door: door})
	}

	switch n.Symbol {
	case mission.Entrance:
		add(SpawnPoint, flaggedDoor(r, dungeon.EntranceFlag))
	case mission.Goal:
		add(Exit, nil)
	case mission.Key:
		add(SmallKey, nil)
	case mission.BossKey:
		add(BossKey, nil)
	case mission.Lock:
		add(LockedDoor, entryDoor(r))
	case mission.BossLock:
		add(BossDoor, entryDoor(r))
	case mission.Treasure, mission.Secret:
		add(Chest, nil)
	case mission.Filler:
		if rng.Float32() < 0.25 {
			add(Chest, nil)
		}
	case mission.Boss, mission.MiniBoss, mission.Room, mission.Test:
		// Enemies only
	case mission.Dungeon, mission.Chain, mission.ChainLinear, mission.KeyLock, mission.Hook, mission.Fork:
	}
}

// entryDoor returns the door a room was built through
func entryDoor(r *dungeon.Room) *dungeon.DoorRef {
	for i := range r.Doors {
		d := &r.Doors[i]
		if d.State == dungeon.Connected && d.Link != nil && d.Link.Room == r.Parent {
			ref := d.Ref
			return &ref
		}
	}
	return nil
}

// flaggedDoor returns the door carrying flag, if any
func flaggedDoor(r *dungeon.Room, flag dungeon.DoorFlag) *dungeon.DoorRef {
	for i := range r.Doors {
		if r.Doors[i].Flag == flag {
			ref := r.Doors[i].Ref
			return &ref
		}
	}
	return nil
}

// between returns a value in [lo, hi]
func between(rng *rand.Rand, lo, hi int) int {
	return lo + rng.Intn(hi-lo+1)
}
