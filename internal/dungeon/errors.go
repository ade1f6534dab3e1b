package dungeon

import (
	"errors"
	"fmt"

	"github.com/lawnchairsociety/dungeonforge/internal/mission"
)

var (
	ErrPlacementExhausted = errors.New("dungeon: placement attempts exhausted")
	ErrNoStartBlueprint   = errors.New("dungeon: no blueprint can host the entrance")
	ErrBadOrder           = errors.New("dungeon: priority order must begin with the start node")
)

// Reasons a single placement attempt fails
var (
	errNoTargetDoor = errors.New("no unconnected door to attach to")
	errNoBlueprint  = errors.New("no blueprint matches the door requirement")
	errNoDoorLevel  = errors.New("blueprint has no door on the target level")
	errCollision    = errors.New("room collides with placed tiles")
	errDoorBudget   = errors.New("not enough free doors after placement")
)

// PlacementError reports a mission node that could not be realised
type PlacementError struct {
	Node     mission.NodeID
	Symbol   mission.Symbol
	Attempts int
	Last     error // Reason the final attempt failed
}

func (e *PlacementError) Error() string {
	return fmt.Sprintf("dungeon: could not place %s node %d after %d attempts: %v",
		e.Symbol, e.Node, e.Attempts, e.Last)
}

// Unwrap exposes both ErrPlacementExhausted and the last failure reason
func (e *PlacementError) Unwrap() []error {
	if e.Last == nil {
		return []error{ErrPlacementExhausted}
	}
	return []error{ErrPlacementExhausted, e.Last}
}

// WarningKind classifies recoverable assembly problems
type WarningKind int

const (
	// LockBypassWarning: a chance connection joined rooms with different
	// lock counts and was discarded.
	LockBypassWarning WarningKind = iota
	// FloorMismatchWarning: a chance connection joined doors on different
	// floor levels and was discarded.
	FloorMismatchWarning
)

func (k WarningKind) String() string {
	switch k {
	case LockBypassWarning:
		return "lock_bypass"
	case FloorMismatchWarning:
		return "floor_mismatch"
	default:
		return fmt.Sprintf("warning(%d)", int(k))
	}
}

// Warning is a recoverable problem. Both doors end up Blocked.
type Warning struct {
	Kind  WarningKind
	Doors [2]DoorRef
	A, B  int // Lock counts or floor levels on either side
}

func (w Warning) Error() string {
	switch w.Kind {
	case LockBypassWarning:
		return fmt.Sprintf("chance connection %v-%v bypasses a lock (lock count %d vs %d)", w.Doors[0], w.Doors[1], w.A, w.B)
	case FloorMismatchWarning:
		return fmt.Sprintf("chance connection %v-%v joins floor %d to floor %d", w.Doors[0], w.Doors[1], w.A, w.B)
	default:
		return fmt.Sprintf("%v at %v-%v", w.Kind, w.Doors[0], w.Doors[1])
	}
}
