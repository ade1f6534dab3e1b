package dungeon

import (
	"github.com/lawnchairsociety/dungeonforge/internal/logger"
	"github.com/lawnchairsociety/dungeonforge/internal/mission"
)

// finalize resolves every door that is still unconnected: some get a small
// filler room, the rest are sealed.
func (a *Assembler) finalize() {
	fillers := 0
	for _, ref := range a.graph.UnconnectedDoors() {
		d := a.graph.DoorAt(ref)
		if !d.Free() {
			// Claimed by an earlier filler
			continue
		}

		if a.rng.Float64() < a.opts.FillerChance && a.placeFiller(ref) {
			fillers++
			continue
		}

		by := NoRoom
		if hit := a.scan(ref); hit.kind != scanOpen {
			by = hit.by
		}
		a.graph.Block(ref, by)
	}

	if fillers > 0 {
		logger.Debug("Filler rooms added", "count", fillers)
	}
}

// placeFiller tries to snap a one-door dead end onto a door. The filler's
// mission node is removed again when no room fits.
func (a *Assembler) placeFiller(ref DoorRef) bool {
	host := a.graph.Room(ref.Room)
	id := a.mission.AppendFiller(host.Mission)
	n := a.mission.Node(id)
	req := requirementFor(n, false)

	result, _, _ := retry(a.opts.FillerAttempts, func(int) (outcome, error) {
		return a.tryPlace(n, ref, req)
	})
	if result == success {
		return true
	}

	a.mission.RemoveFiller(id)
	return false
}

// validateChances discards chance connections that would let the player
// skip a lock. Both doors are sealed instead.
func (a *Assembler) validateChances() {
	for _, c := range a.chances {
		da, db := a.graph.DoorAt(c.a), a.graph.DoorAt(c.b)
		if da == nil || db == nil || da.State != ChanceConnected || db.State != ChanceConnected {
			continue
		}

		la := a.lockCountOf(c.a.Room)
		lb := a.lockCountOf(c.b.Room)
		if la == lb {
			continue
		}

		w := Warning{Kind: LockBypassWarning, Doors: [2]DoorRef{c.a, c.b}, A: la, B: lb}
		a.warnings = append(a.warnings, w)
		a.graph.Block(c.a, c.b.Room)
		a.graph.Block(c.b, c.a.Room)
	}
}

// lockCountOf returns the lock count of the mission node a room realises
func (a *Assembler) lockCountOf(id RoomID) int {
	r := a.graph.Room(id)
	if r == nil {
		return 0
	}
	if n := a.mission.Node(r.Mission); n != nil {
		return n.LockCount
	}
	return 0
}

// markBombable flags sealed doors whose blocker is a secret room
func (a *Assembler) markBombable() {
	for _, r := range a.graph.Rooms {
		for i := range r.Doors {
			d := &r.Doors[i]
			if d.State != Blocked || d.BlockedBy == NoRoom || d.BlockedBy == r.ID {
				continue
			}
			blocker := a.graph.Room(d.BlockedBy)
			if blocker == nil {
				continue
			}
			if n := a.mission.Node(blocker.Mission); n != nil && n.Symbol == mission.Secret {
				d.Bombable = true
			}
		}
	}
}
