package tile

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"wavechase/internal/geom"
)

// ErrUnknownKind is returned when an adjacency entry names a kind the
// catalog does not define.
var ErrUnknownKind = errors.New("tile: unknown kind")

// Catalog is an ordered, name-indexed set of kinds. Order is the authoring
// order and is what the solver iterates, so it is part of determinism.
type Catalog struct {
	kinds  []*Kind
	byName map[string]*Kind
}

// NewCatalog validates the kinds and indexes them by name.
func NewCatalog(kinds ...*Kind) (*Catalog, error) {
	c := &Catalog{byName: make(map[string]*Kind, len(kinds))}
	for _, k := range kinds {
		if k == nil || k.Name == "" {
			return nil, errors.New("tile: kind without a name")
		}
		if _, dup := c.byName[k.Name]; dup {
			return nil, fmt.Errorf("tile: duplicate kind %q", k.Name)
		}
		c.byName[k.Name] = k
		c.kinds = append(c.kinds, k)
	}
	for _, k := range c.kinds {
		for d, list := range k.Adjacent {
			for _, n := range list {
				if _, ok := c.byName[n.Kind]; !ok {
					return nil, fmt.Errorf("%w %q in %s adjacency of %q", ErrUnknownKind, n.Kind, geom.Dir(d), k.Name)
				}
				if n.Rotation < 0 || n.Rotation > 3 {
					return nil, fmt.Errorf("tile: rotation %d out of range in %q", n.Rotation, k.Name)
				}
			}
		}
	}
	return c, nil
}

// Kind returns the named kind or nil.
func (c *Catalog) Kind(name string) *Kind { return c.byName[name] }

// Kinds returns all kinds in authoring order.
func (c *Catalog) Kinds() []*Kind { return c.kinds }

// ByClass returns the kinds of one class in authoring order.
func (c *Catalog) ByClass(cl Class) []*Kind {
	var out []*Kind
	for _, k := range c.kinds {
		if k.Class == cl {
			out = append(out, k)
		}
	}
	return out
}

// Interior returns every kind that may appear off the border ring.
func (c *Catalog) Interior() []*Kind {
	var out []*Kind
	for _, k := range c.kinds {
		if k.Class != ClassBorder && k.Class != ClassBorderTunnel {
			out = append(out, k)
		}
	}
	return out
}

// --- YAML form ---

type rawCatalog struct {
	Kinds []rawKind `yaml:"kinds"`
}

type rawKind struct {
	Name     string                   `yaml:"name"`
	Class    string                   `yaml:"class"`
	Glyph    string                   `yaml:"glyph"`
	ASCII    string                   `yaml:"ascii"`
	Adjacent map[string][]rawNeighbor `yaml:"adjacent"`
}

// rawNeighbor accepts either a bare kind name (any rotation) or a mapping
// {kind, rotation} where rotation is 0..3, "any", "even" or "odd".
type rawNeighbor struct {
	Kind      string
	Rotations []int
}

func (n *rawNeighbor) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		n.Kind = node.Value
		n.Rotations = []int{0, 1, 2, 3}
		return nil
	}
	var m struct {
		Kind     string    `yaml:"kind"`
		Rotation yaml.Node `yaml:"rotation"`
	}
	if err := node.Decode(&m); err != nil {
		return err
	}
	rots, err := parseRotation(m.Rotation.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	n.Kind = m.Kind
	n.Rotations = rots
	return nil
}

func parseRotation(s string) ([]int, error) {
	switch s {
	case "", "any":
		return []int{0, 1, 2, 3}, nil
	case "even":
		return []int{0, 2}, nil
	case "odd":
		return []int{1, 3}, nil
	}
	r, err := strconv.Atoi(s)
	if err != nil || r < 0 || r > 3 {
		return nil, fmt.Errorf("invalid rotation %q", s)
	}
	return []int{r}, nil
}

var dirKeys = map[string][]geom.Dir{
	"up":    {geom.Up},
	"right": {geom.Right},
	"down":  {geom.Down},
	"left":  {geom.Left},
	"all":   {geom.Up, geom.Right, geom.Down, geom.Left},
}

// LoadCatalog parses a YAML tile catalog.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var raw rawCatalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode tile catalog: %w", err)
	}
	kinds := make([]*Kind, 0, len(raw.Kinds))
	for _, rk := range raw.Kinds {
		cl, err := ParseClass(rk.Class)
		if err != nil {
			return nil, fmt.Errorf("kind %q: %w", rk.Name, err)
		}
		k := &Kind{Name: rk.Name, Class: cl, Glyph: rk.Glyph, ASCII: '?'}
		if rk.ASCII != "" {
			k.ASCII, _ = utf8.DecodeRuneInString(rk.ASCII)
		}
		// "all" first so per-direction lists append after it in a stable order.
		for _, key := range []string{"all", "up", "right", "down", "left"} {
			list, ok := rk.Adjacent[key]
			if !ok {
				continue
			}
			for _, d := range dirKeys[key] {
				for _, n := range list {
					for _, rot := range n.Rotations {
						k.Adjacent[d] = append(k.Adjacent[d], Neighbor{Kind: n.Kind, Rotation: rot})
					}
				}
			}
		}
		for key := range rk.Adjacent {
			if _, ok := dirKeys[key]; !ok {
				return nil, fmt.Errorf("kind %q: unknown direction %q", rk.Name, key)
			}
		}
		kinds = append(kinds, k)
	}
	return NewCatalog(kinds...)
}
