package dungeon

// scanKind is what an outward door scan ran into
type scanKind int

const (
	scanOpen    scanKind = iota // Nothing within range
	scanBlocked                 // A tile of some room
	scanMate                    // A free, facing door exactly one gap away
)

// scanHit is the result of an outward door scan
type scanHit struct {
	kind scanKind
	by   RoomID
	mate DoorRef
}

// scan walks outward from a door up to ScanDistance tiles. The first occupied
// tile decides: another room's free door facing back at the mate position on
// both columns is a chance connection, anything else blocks the door.
func (a *Assembler) scan(ref DoorRef) scanHit {
	d := a.graph.DoorAt(ref)
	step := d.Dir.Delta()

	for k := 1; k <= a.opts.ScanDistance; k++ {
		o0, ok0 := a.occ.At(d.Tiles[0].Add(step.Mul(k)))
		o1, ok1 := a.occ.At(d.Tiles[1].Add(step.Mul(k)))
		if !ok0 && !ok1 {
			continue
		}

		if k == doorGap && ok0 && ok1 &&
			o0.Kind == DoorTile && o1.Kind == DoorTile &&
			o0.Room == o1.Room && o0.Door == o1.Door && o0.Room != ref.Room {
			mate := DoorRef{Room: o0.Room, Door: o0.Door}
			if md := a.graph.DoorAt(mate); md != nil && md.Free() && md.Dir == d.Dir.Flip() {
				return scanHit{kind: scanMate, by: mate.Room, mate: mate}
			}
		}

		by := o0.Room
		if !ok0 {
			by = o1.Room
		}
		return scanHit{kind: scanBlocked, by: by}
	}

	return scanHit{kind: scanOpen, by: NoRoom}
}

// doorwayOwner returns the room holding a tile in a door's doorway: the
// threshold or the spot a connecting door would take.
func (a *Assembler) doorwayOwner(d *Door) (RoomID, bool) {
	step := d.Dir.Delta()
	for k := 1; k <= doorGap; k++ {
		for _, t := range d.Tiles {
			if o, ok := a.occ.At(t.Add(step.Mul(k))); ok {
				return o.Room, true
			}
		}
	}
	return NoRoom, false
}
