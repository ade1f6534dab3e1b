package generator

import (
	"encoding/hex"
	"fmt"
	"hash"

	"golang.org/x/crypto/blake2b"

	"github.com/lawnchairsociety/dungeonforge/internal/dungeon"
	"github.com/lawnchairsociety/dungeonforge/internal/mission"
)

// Fingerprint identifies a generated level. Two runs of the same seed with
// the same catalogs must produce equal fingerprints.
type Fingerprint struct {
	Mission string // Rewritten mission graph, before assembly
	Dungeon string // Placed rooms and door resolutions
}

// String abbreviates both digests to their first 12 hex characters
func (f Fingerprint) String() string {
	return Short(f.Mission) + "/" + Short(f.Dungeon)
}

// Short abbreviates a digest for display
func Short(digest string) string {
	if len(digest) > 12 {
		return digest[:12]
	}
	return digest
}

// MissionFingerprint hashes node symbols, lock counts and edges in ID order
func MissionFingerprint(m *mission.Graph) string {
	h := newHash()
	fmt.Fprintf(h, "start=%d goal=%d\n", m.Start, m.Goal)
	for _, n := range m.Nodes() {
		fmt.Fprintf(h, "%d %s %d", n.ID, n.Symbol, n.LockCount)
		for _, e := range n.Children {
			fmt.Fprintf(h, " %d:%t", e.To, e.Tight)
		}
		fmt.Fprintln(h)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// DungeonFingerprint hashes every room placement and door state
func DungeonFingerprint(g *dungeon.Graph) string {
	h := newHash()
	fmt.Fprintf(h, "start=%d goal=%d\n", g.Start, g.Goal)
	for _, r := range g.Rooms {
		fmt.Fprintf(h, "%d %s %v %s p%d m%d\n",
			r.ID, r.Blueprint.Name, r.Pos, r.Rotation, r.Parent, r.Mission)
		for i := range r.Doors {
			d := &r.Doors[i]
			link := "-"
			if d.Link != nil {
				link = d.Link.String()
			}
			fmt.Fprintf(h, "  %s %s %s %s b%d %t\n", d.Ref, d.State, link, d.Flag, d.BlockedBy, d.Bombable)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

func newHash() hash.Hash {
	// Only fails for keys longer than 64 bytes
	h, _ := blake2b.New256(nil)
	return h
}
