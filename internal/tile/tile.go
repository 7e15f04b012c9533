// Package tile is the tile compatibility model: an immutable catalog of tile
// kinds, each with per-direction adjacency lists authored in the kind's
// unrotated frame, and the pure Compatible check the solver builds on.
package tile

import (
	"fmt"

	"wavechase/internal/geom"
)

// Class is the classification tag of a tile kind.
type Class uint8

const (
	ClassFloor Class = iota
	ClassWall
	ClassDoor
	ClassPortal
	ClassBorder
	ClassBorderTunnel
	classCount
)

var classNames = [classCount]string{
	"floor", "wall", "door", "portal", "border", "border_tunnel",
}

// String returns the catalog spelling of the class.
func (c Class) String() string {
	if c >= classCount {
		return "unknown"
	}
	return classNames[c]
}

// ParseClass maps a catalog spelling back to a Class.
func ParseClass(s string) (Class, error) {
	for i, n := range classNames {
		if n == s {
			return Class(i), nil
		}
	}
	return 0, fmt.Errorf("unknown tile class %q", s)
}

// Walkable reports whether agents may stand on tiles of this class.
func (c Class) Walkable() bool {
	switch c {
	case ClassFloor, ClassDoor, ClassPortal, ClassBorderTunnel:
		return true
	}
	return false
}

// IsGate reports whether the class is access controlled (doors and portals).
func (c Class) IsGate() bool {
	return c == ClassDoor || c == ClassPortal
}

// Neighbor is one adjacency list entry: the named kind may sit next to the
// owner when its rotation relative to the owner equals Rotation.
type Neighbor struct {
	Kind     string
	Rotation int
}

// Kind is an immutable catalog entry.
type Kind struct {
	Name  string
	Class Class
	Glyph string // terminal glyph, may be double width
	ASCII rune   // single-column fallback used by text output

	// Adjacent is indexed by geom.Dir in the kind's unrotated frame.
	Adjacent [4][]Neighbor
}

// Walkable reports whether the kind's class is walkable.
func (k *Kind) Walkable() bool { return k.Class.Walkable() }

// String returns the kind name.
func (k *Kind) String() string { return k.Name }

// accepts reports whether k, rotated by rotSelf, lists other (rotated by
// rotOther) as a legal neighbour in world direction dir.
func (k *Kind) accepts(other *Kind, rotSelf, rotOther int, dir geom.Dir) bool {
	local := dir.Rotate(-rotSelf)
	want := geom.Mod4(rotOther)
	for _, n := range k.Adjacent[local] {
		if n.Kind == other.Name && geom.Mod4(n.Rotation+rotSelf) == want {
			return true
		}
	}
	return false
}

// Compatible reports whether kind a at rotation rotA may have kind b at
// rotation rotB as its neighbour in world direction dir. Both kinds must
// independently allow the pairing.
func Compatible(a *Kind, rotA int, b *Kind, rotB int, dir geom.Dir) bool {
	if a == nil || b == nil || dir == geom.None {
		return false
	}
	return a.accepts(b, rotA, rotB, dir) && b.accepts(a, rotB, rotA, dir.Opposite())
}

// Option is a (kind, rotation) pair, the atomic unit the solver reasons about.
type Option struct {
	Kind     *Kind
	Rotation int
}

// String renders the option as name@rotation.
func (o Option) String() string {
	if o.Kind == nil {
		return "<none>"
	}
	return fmt.Sprintf("%s@%d", o.Kind.Name, o.Rotation)
}

// CompatibleWith reports whether o may have n as its neighbour in dir.
func (o Option) CompatibleWith(n Option, dir geom.Dir) bool {
	return Compatible(o.Kind, o.Rotation, n.Kind, n.Rotation, dir)
}

// Rotations returns the four rotations of k in ascending order.
func Rotations(k *Kind) []Option {
	if k == nil {
		return nil
	}
	return []Option{{k, 0}, {k, 1}, {k, 2}, {k, 3}}
}

// ExpandOptions returns every rotation of every kind, kinds in input order.
// Nil kinds and repeated kinds are skipped.
func ExpandOptions(kinds []*Kind) []Option {
	seen := make(map[*Kind]bool, len(kinds))
	out := make([]Option, 0, len(kinds)*4)
	for _, k := range kinds {
		if k == nil || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, Rotations(k)...)
	}
	return out
}
