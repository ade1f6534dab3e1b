// Package mission models the abstract quest structure of a dungeon: a graph
// of grammar symbols joined by tightly or loosely coupled edges.
package mission

import "fmt"

// Symbol is a value of the mission grammar alphabet.
// Non-terminals sort below firstTerminal, terminals at or above it.
type Symbol int

const (
	Dungeon     Symbol = iota // Start symbol of the grammar
	Chain                     // Main progression towards the boss
	ChainLinear               // Linear run of rooms ending in a fixed continuation
	KeyLock                   // A locked region plus the key that opens it
	Hook                      // Side branch that ends in a key
	Fork                      // Optional dead-end branch
	Entrance                  // Dungeon entrance (mission start)
	Goal                      // Level exit behind the boss
	Boss                      // Boss encounter
	MiniBoss                  // Mini-boss guarding a key
	Lock                      // Room behind a locked door
	BossLock                  // Room behind the boss door
	Key                       // Room holding a small key
	BossKey                   // Room holding the boss key
	Room                      // Plain exploration room
	Test                      // Combat challenge
	Treasure                  // Optional reward room
	Secret                    // Hidden room behind a bombable wall
	Filler                    // Dead end added while sealing unused doorways

	symbolCount
)

// firstTerminal is the boundary ordinal between placeholders and room purposes
const firstTerminal = Entrance

var symbolNames = [...]string{
	Dungeon:     "dungeon",
	Chain:       "chain",
	ChainLinear: "chain_linear",
	KeyLock:     "key_lock",
	Hook:        "hook",
	Fork:        "fork",
	Entrance:    "entrance",
	Goal:        "goal",
	Boss:        "boss",
	MiniBoss:    "mini_boss",
	Lock:        "lock",
	BossLock:    "boss_lock",
	Key:         "key",
	BossKey:     "boss_key",
	Room:        "room",
	Test:        "test",
	Treasure:    "treasure",
	Secret:      "secret",
	Filler:      "filler",
}

// Symbols returns every symbol of the alphabet in ordinal order
func Symbols() []Symbol {
	out := make([]Symbol, 0, int(symbolCount))
	for s := Dungeon; s < symbolCount; s++ {
		out = append(out, s)
	}
	return out
}

// IsValid reports whether s is a member of the alphabet
func (s Symbol) IsValid() bool {
	return s >= Dungeon && s < symbolCount
}

// IsTerminal reports whether s names a concrete room purpose
func (s Symbol) IsTerminal() bool {
	return s >= firstTerminal && s < symbolCount
}

// IsLock reports whether entering a room with this symbol passes a locked door
func (s Symbol) IsLock() bool {
	switch s {
	case Lock, BossLock:
		return true
	case Dungeon, Chain, ChainLinear, KeyLock, Hook, Fork,
		Entrance, Goal, Boss, MiniBoss, Key, BossKey, Room, Test, Treasure, Secret, Filler:
		return false
	}
	return false
}

// IsKey reports whether the room holds a key
func (s Symbol) IsKey() bool {
	switch s {
	case Key, BossKey:
		return true
	case Dungeon, Chain, ChainLinear, KeyLock, Hook, Fork,
		Entrance, Goal, Boss, MiniBoss, Lock, BossLock, Room, Test, Treasure, Secret, Filler:
		return false
	}
	return false
}

// String returns the snake_case name of the symbol
func (s Symbol) String() string {
	if s.IsValid() {
		return symbolNames[s]
	}
	return fmt.Sprintf("symbol(%d)", int(s))
}

// ParseSymbol converts a symbol name back to a Symbol
func ParseSymbol(name string) (Symbol, error) {
	for _, s := range Symbols() {
		if symbolNames[s] == name {
			return s, nil
		}
	}
	return Dungeon, fmt.Errorf("mission: unknown symbol %q", name)
}
